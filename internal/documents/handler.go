package documents

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"docbase-backend/internal/shared/server/middleware"
	"docbase-backend/internal/shared/server/respond"
)

const maxUploadSize = 20 << 20 // 20MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/upload", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/user", h.listByAuthor)
	rg.GET("/documents/search", h.searchKeyword)
	rg.POST("/documents/search", h.search)
	rg.GET("/documents/unprocessed", h.listUnprocessed)
	rg.GET("/documents/:id", h.get)
	rg.PUT("/documents/:id", h.update)
	rg.DELETE("/documents/:id", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	authorID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "title is required", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	doc, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		Title:            title,
		Description:      c.PostForm("description"),
		TagNames:         tagNamesFromForm(c),
		ContentType:      fileHeader.Header.Get("Content-Type"),
		OriginalFilename: fileHeader.Filename,
		AuthorID:         authorID,
	}, file)
	if err != nil {
		h.respondError(c, err, "failed to upload document")
		return
	}

	c.Set("documentId", doc.ID)
	respond.JSON(c, http.StatusCreated, NewResponse(doc))
}

func (h *Handler) get(c *gin.Context) {
	doc, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "failed to fetch document")
		return
	}
	respond.OK(c, NewResponse(doc))
}

func (h *Handler) list(c *gin.Context) {
	page, size, sort, ok := h.paging(c)
	if !ok {
		return
	}
	result, err := h.Svc.List(c.Request.Context(), page, size, sort)
	if err != nil {
		h.respondError(c, err, "failed to list documents")
		return
	}
	respond.OK(c, NewPageResponse(result))
}

func (h *Handler) listByAuthor(c *gin.Context) {
	username := middleware.UsernameFromContext(c)
	if q := strings.TrimSpace(c.Query("username")); q != "" {
		username = q
	}
	if username == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "username is required", nil)
		return
	}

	page, size, sort, ok := h.paging(c)
	if !ok {
		return
	}
	result, err := h.Svc.ListByAuthor(c.Request.Context(), username, page, size, sort)
	if err != nil {
		h.respondError(c, err, "failed to list documents")
		return
	}
	respond.OK(c, NewPageResponse(result))
}

type searchRequest struct {
	Title       string     `json:"title"`
	ContentType string     `json:"contentType"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	AuthorID    string     `json:"authorId"`
}

func (h *Handler) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	page, size, sort, ok := h.paging(c)
	if !ok {
		return
	}

	result, err := h.Svc.Search(c.Request.Context(), Filter{
		Title:       strings.TrimSpace(req.Title),
		ContentType: strings.TrimSpace(req.ContentType),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		AuthorID:    strings.TrimSpace(req.AuthorID),
	}, page, size, sort)
	if err != nil {
		h.respondError(c, err, "failed to search documents")
		return
	}
	respond.OK(c, NewPageResponse(result))
}

func (h *Handler) searchKeyword(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "keyword is required", nil)
		return
	}

	page, size, sort, ok := h.paging(c)
	if !ok {
		return
	}
	result, err := h.Svc.SearchKeyword(c.Request.Context(), keyword, page, size, sort)
	if err != nil {
		h.respondError(c, err, "failed to search documents")
		return
	}
	respond.OK(c, NewPageResponse(result))
}

type updateRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	doc, err := h.Svc.UpdateMetadata(c.Request.Context(), c.Param("id"), req.Title, req.Description, req.Tags)
	if err != nil {
		h.respondError(c, err, "failed to update document")
		return
	}
	respond.OK(c, NewResponse(doc))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err, "failed to delete document")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listUnprocessed(c *gin.Context) {
	docs, err := h.Svc.ListUnprocessed(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "failed to list unprocessed documents")
		return
	}
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, NewResponse(doc))
	}
	respond.OK(c, out)
}

func (h *Handler) paging(c *gin.Context) (page, size int, sort Sort, ok bool) {
	page = intQuery(c, "page", 0)
	if page < 0 {
		page = 0
	}
	size = intQuery(c, "size", 10)
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}

	sort, err := ParseSort(c.Query("sortBy"), c.DefaultQuery("sortDir", "desc"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return 0, 0, Sort{}, false
	}
	return page, size, sort, true
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
	case errors.Is(err, ErrAuthorNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "author not found", nil)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidSort):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrStorage):
		respond.Error(c, http.StatusBadGateway, "storage_error", "file storage unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func tagNamesFromForm(c *gin.Context) []string {
	raw := c.PostFormArray("tags")
	var out []string
	for _, entry := range raw {
		for _, name := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
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
