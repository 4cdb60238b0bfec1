package assist

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"novel-backend/internal/llm"
	"novel-backend/internal/shared/server/middleware"
	"novel-backend/internal/shared/server/respond"
)

const providerHeader = "X-LLM-Provider"

// Handler wires HTTP handlers to the assist service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assist routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chapters/:id/continue", h.continueChapter)
	rg.POST("/chapters/:id/summarize", h.summarize)
}

type continueRequest struct {
	Provider    string `json:"provider"`
	Instruction string `json:"instruction" binding:"max=2000"`
	Context     string `json:"context"`
	Words       int    `json:"words" binding:"min=0"`
}

type summarizeRequest struct {
	Provider string `json:"provider"`
	Words    int    `json:"words" binding:"min=0"`
}

func (h *Handler) continueChapter(c *gin.Context) {
	id := c.Param("id")
	middleware.SetChapterID(c, id)

	var req continueRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
			return
		}
	}
	provider := pickProvider(c, req.Provider)
	middleware.SetProvider(c, provider)

	res, err := h.Svc.Continue(c.Request.Context(), id, ContinueInput{
		Provider:    provider,
		Instruction: req.Instruction,
		Context:     req.Context,
		Words:       req.Words,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) summarize(c *gin.Context) {
	id := c.Param("id")
	middleware.SetChapterID(c, id)

	var req summarizeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
			return
		}
	}
	provider := pickProvider(c, req.Provider)
	middleware.SetProvider(c, provider)

	res, err := h.Svc.Summarize(c.Request.Context(), id, provider, req.Words)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, res)
}

func pickProvider(c *gin.Context, fromBody string) string {
	if p := strings.TrimSpace(fromBody); p != "" {
		return p
	}
	return strings.TrimSpace(c.GetHeader(providerHeader))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyChapter):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, ErrChapterMissing):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, err.Error(), nil)
	case errors.Is(err, llm.ErrUnknownProvider):
		respond.Error(c, http.StatusBadRequest, respond.CodeUnknownProvider, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, respond.CodeLLMTimeout, "provider timed out", nil)
	case errors.Is(err, ErrGeneration):
		respond.Error(c, http.StatusBadGateway, respond.CodeLLMUnavailable, "provider failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to generate text", nil)
	}
}
