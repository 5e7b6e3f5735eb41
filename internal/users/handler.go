package users

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docbase-backend/internal/shared/server/respond"
)

// Handler wires identity registration glue to HTTP.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches user routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/users", h.register)
	rg.GET("/users/:username", h.getByUsername)
}

type registerRequest struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Username) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "username is required", nil)
		return
	}

	user, err := h.Svc.Register(c.Request.Context(), User{
		ID:       strings.TrimSpace(req.ID),
		Username: strings.TrimSpace(req.Username),
		Email:    strings.TrimSpace(req.Email),
		FullName: strings.TrimSpace(req.FullName),
	})
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register user", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, user)
}

func (h *Handler) getByUsername(c *gin.Context) {
	user, err := h.Svc.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch user", nil)
		return
	}
	respond.OK(c, user)
}
