package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/ledger-api/internal/handler"
	"github.com/medichain/ledger-api/internal/model"
	appointmentService "github.com/medichain/ledger-api/internal/service/appointment"
	"github.com/medichain/ledger-api/pkg/errors"
)

type Handler struct {
	service *appointmentService.Service
}

func NewHandler(service *appointmentService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Book(c *gin.Context) {
	var req model.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid appointment payload", err))
		return
	}

	apt, err := h.service.Book(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(apt))
}

func (h *Handler) Complete(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	apt, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(apt))
}

func (h *Handler) List(c *gin.Context) {
	appointments, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.List)
		appointments.GET("/:id", h.Get)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.Book)
		appointments.POST("/:id/complete", h.Complete)
	}
}
