package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/ledger-api/internal/service/auth"
	"github.com/medichain/ledger-api/pkg/errors"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid login payload", err))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": resp})
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)
}
