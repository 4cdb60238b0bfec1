package chapters

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"novel-backend/internal/extract"
	"novel-backend/internal/shared/server/middleware"
	"novel-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches volume and chapter routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/volumes", h.createVolume)
	rg.GET("/volumes", h.listVolumes)
	rg.GET("/volumes/:id/chapters", h.listChapters)
	rg.POST("/chapters", h.create)
	rg.POST("/chapters/import", h.importFile)
	rg.GET("/chapters/:id", h.get)
	rg.PUT("/chapters/:id", h.update)
	rg.GET("/chapters/:id/locate", h.locate)
}

type createVolumeRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

func (h *Handler) createVolume(c *gin.Context) {
	var req createVolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "title is required", nil)
		return
	}
	v, err := h.Svc.CreateVolume(c.Request.Context(), req.Title)
	if err != nil {
		writeError(c, err, "failed to create volume")
		return
	}
	respond.Created(c, toVolumeResponse(v))
}

func (h *Handler) listVolumes(c *gin.Context) {
	vols, err := h.Svc.ListVolumes(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to list volumes")
		return
	}
	resp := make([]VolumeResponse, 0, len(vols))
	for _, v := range vols {
		resp = append(resp, toVolumeResponse(v))
	}
	respond.OK(c, resp)
}

func (h *Handler) listChapters(c *gin.Context) {
	chs, err := h.Svc.ListByVolume(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to list chapters")
		return
	}
	resp := make([]ChapterResponse, 0, len(chs))
	for _, ch := range chs {
		resp = append(resp, toChapterResponse(ch, false))
	}
	respond.OK(c, resp)
}

type createChapterRequest struct {
	VolumeID string `json:"volumeId" binding:"required"`
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
}

func (h *Handler) create(c *gin.Context) {
	var req createChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "volumeId and title are required", nil)
		return
	}
	ch, err := h.Svc.Create(c.Request.Context(), req.VolumeID, req.Title, req.Content)
	if err != nil {
		writeError(c, err, "failed to create chapter")
		return
	}
	middleware.SetChapterID(c, ch.ID)
	respond.Created(c, toChapterResponse(ch, true))
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	middleware.SetChapterID(c, id)
	ch, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "failed to fetch chapter")
		return
	}
	respond.OK(c, toChapterResponse(ch, true))
}

type updateChapterRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *Handler) update(c *gin.Context) {
	id := c.Param("id")
	middleware.SetChapterID(c, id)

	var req updateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	if req.Title == nil && req.Content == nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "title or content is required", nil)
		return
	}
	res, err := h.Svc.Update(c.Request.Context(), id, UpdateInput{Title: req.Title, Content: req.Content})
	if err != nil {
		writeError(c, err, "failed to update chapter")
		return
	}
	respond.OK(c, UpdateResponse{
		Chapter: toChapterResponse(res.Chapter, true),
		Changes: res.Changes,
		Stats:   res.Stats,
	})
}

func (h *Handler) importFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "file is required", nil)
		return
	}
	volumeID := strings.TrimSpace(c.PostForm("volumeId"))
	if volumeID == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "volumeId is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "unable to read file", nil)
		return
	}

	ch, err := h.Svc.Import(c.Request.Context(), volumeID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data, c.PostForm("title"))
	if err != nil {
		writeError(c, err, "failed to import chapter")
		return
	}
	middleware.SetChapterID(c, ch.ID)
	respond.Created(c, toChapterResponse(ch, true))
}

func (h *Handler) locate(c *gin.Context) {
	id := c.Param("id")
	middleware.SetChapterID(c, id)
	matches, err := h.Svc.Locate(c.Request.Context(), id, c.Query("q"))
	if err != nil {
		writeError(c, err, "failed to locate text")
		return
	}
	respond.OK(c, gin.H{"matches": matches})
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrEmptyContent):
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
	case errors.Is(err, extract.ErrUnsupported):
		respond.Error(c, http.StatusUnsupportedMediaType, respond.CodeUnsupported, err.Error(), nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrVolumeNotFound):
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, fallback, nil)
	}
}
