package qa

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docbase-backend/internal/documents"
	"docbase-backend/internal/shared/server/respond"
)

// Handler wires question answering routes to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches qa routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/qa/question", h.ask)
	rg.GET("/qa/recent", h.recent)
}

type questionRequest struct {
	Question string `json:"question"`
}

func (h *Handler) ask(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "question is required", nil)
		return
	}

	resp, err := h.Svc.Ask(c.Request.Context(), question)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to answer question", nil)
		return
	}
	respond.OK(c, resp)
}

func (h *Handler) recent(c *gin.Context) {
	page := intQuery(c, "page", 0)
	if page < 0 {
		page = 0
	}
	size := intQuery(c, "size", 10)
	if size <= 0 {
		size = 10
	}

	result, err := h.Svc.Recent(c.Request.Context(), page, size)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch recent documents", nil)
		return
	}
	respond.OK(c, documents.NewPageResponse(result))
}

func intQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
