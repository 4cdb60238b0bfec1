package critiques

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"novel-backend/internal/critique"
	"novel-backend/internal/llm"
	"novel-backend/internal/shared/server/middleware"
	"novel-backend/internal/shared/server/respond"
)

// ProviderHeader selects the LLM provider when the body does not.
const ProviderHeader = "X-LLM-Provider"

// Handler wires HTTP handlers to the critiques service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches critique routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/chapters/:id/critique", h.view)
	rg.POST("/chapters/:id/critique", h.generate)
	rg.POST("/critiques/batch", h.batch)
	rg.POST("/critiques/parse", h.parse)
	rg.GET("/critiques/schema", h.schema)
}

type generateRequest struct {
	Provider string `json:"provider"`
	Force    bool   `json:"force"`
}

type batchRequest struct {
	ChapterIDs []string `json:"chapterIds" binding:"required,min=1"`
	Provider   string   `json:"provider"`
	Force      bool     `json:"force"`
}

type parseRequest struct {
	Text string `json:"text"`
}

func (h *Handler) view(c *gin.Context) {
	id := c.Param("id")
	middleware.SetChapterID(c, id)
	v, err := h.Svc.View(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "failed to load critique")
		return
	}
	respond.OK(c, toViewResponse(v))
}

func (h *Handler) generate(c *gin.Context) {
	id := c.Param("id")
	middleware.SetChapterID(c, id)

	var req generateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
			return
		}
	}
	provider := selectProvider(c, req.Provider)
	middleware.SetProvider(c, provider)

	v, err := h.Svc.Generate(c.Request.Context(), id, GenerateOptions{Provider: provider, Force: req.Force})
	if err != nil {
		writeError(c, err, "failed to generate critique")
		return
	}
	if v.Provider != "" {
		middleware.SetProvider(c, v.Provider)
	}
	respond.OK(c, toViewResponse(v))
}

func (h *Handler) batch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "chapterIds is required", nil)
		return
	}
	provider := selectProvider(c, req.Provider)
	middleware.SetProvider(c, provider)

	items, err := h.Svc.GenerateBatch(c.Request.Context(), req.ChapterIDs, GenerateOptions{Provider: provider, Force: req.Force})
	if err != nil {
		writeError(c, err, "failed to generate critiques")
		return
	}
	resp := make([]BatchItemResponse, 0, len(items))
	for _, it := range items {
		item := BatchItemResponse{ChapterID: it.ChapterID, OK: it.Err == nil}
		if it.Err != nil {
			item.Error = it.Err.Error()
		} else if it.View != nil {
			v := toViewResponse(*it.View)
			item.Result = &v
		}
		resp = append(resp, item)
	}
	respond.OK(c, gin.H{"items": resp})
}

func (h *Handler) parse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	respond.OK(c, gin.H{"critique": PresentCritique(h.Svc.Parse(req.Text))})
}

func (h *Handler) schema(c *gin.Context) {
	payload, err := critique.SchemaJSON()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to build schema", nil)
		return
	}
	c.Data(http.StatusOK, "application/schema+json", payload)
}

func selectProvider(c *gin.Context, fromBody string) string {
	if p := strings.TrimSpace(fromBody); p != "" {
		return p
	}
	return strings.TrimSpace(c.GetHeader(ProviderHeader))
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyChapter):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, ErrChapterMissing):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, err.Error(), nil)
	case errors.Is(err, llm.ErrUnknownProvider):
		respond.Error(c, http.StatusBadRequest, respond.CodeUnknownProvider, err.Error(), nil)
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, respond.CodeLLMTimeout, "critique provider timed out", nil)
	case errors.Is(err, ErrGeneration):
		respond.Error(c, http.StatusBadGateway, respond.CodeLLMUnavailable, "critique provider failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, fallback, nil)
	}
}
