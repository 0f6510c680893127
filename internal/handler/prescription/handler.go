package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/ledger-api/internal/handler"
	"github.com/medichain/ledger-api/internal/model"
	prescriptionService "github.com/medichain/ledger-api/internal/service/prescription"
	"github.com/medichain/ledger-api/pkg/errors"
)

type Handler struct {
	service *prescriptionService.Service
}

func NewHandler(service *prescriptionService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Prescribe(c *gin.Context) {
	var req model.PrescribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid prescription payload", err))
		return
	}

	rx, err := h.service.Prescribe(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rx))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	rx, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rx))
}

func (h *Handler) List(c *gin.Context) {
	prescriptions, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescriptions))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.GET("", h.List)
		prescriptions.GET("/:id", h.Get)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.POST("", h.Prescribe)
	}
}
