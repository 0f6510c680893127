package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/ledger-api/internal/handler"
	"github.com/medichain/ledger-api/internal/model"
	adminService "github.com/medichain/ledger-api/internal/service/admin"
	"github.com/medichain/ledger-api/pkg/errors"
)

type Handler struct {
	service *adminService.Service
}

func NewHandler(service *adminService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SetRegistrationFee(c *gin.Context) {
	var req model.SetFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid fee payload", err))
		return
	}

	if err := h.service.SetRegistrationFee(c.Request.Context(), *req.Amount); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) SetAppointmentFee(c *gin.Context) {
	var req model.SetFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid fee payload", err))
		return
	}

	if err := h.service.SetAppointmentFee(c.Request.Context(), *req.Amount); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) SetOwner(c *gin.Context) {
	var req model.SetOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid owner payload", err))
		return
	}

	if err := h.service.SetOwner(c.Request.Context(), req.AccountID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) Fees(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.service.Fees(c.Request.Context())))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/fees", h.Fees)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.PUT("/fees/registration", h.SetRegistrationFee)
		admin.PUT("/fees/appointment", h.SetAppointmentFee)
		admin.PUT("/owner", h.SetOwner)
	}
}
