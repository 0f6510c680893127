package doctor

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/ledger-api/internal/handler"
	"github.com/medichain/ledger-api/internal/model"
	appointmentService "github.com/medichain/ledger-api/internal/service/appointment"
	doctorService "github.com/medichain/ledger-api/internal/service/doctor"
	prescriptionService "github.com/medichain/ledger-api/internal/service/prescription"
	"github.com/medichain/ledger-api/pkg/errors"
)

type Handler struct {
	service       *doctorService.Service
	appointments  *appointmentService.Service
	prescriptions *prescriptionService.Service
}

func NewHandler(service *doctorService.Service, appointments *appointmentService.Service, prescriptions *prescriptionService.Service) *Handler {
	return &Handler{
		service:       service,
		appointments:  appointments,
		prescriptions: prescriptions,
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterDoctorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid doctor payload", err))
		return
	}

	doctor, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(doctor))
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	doctor, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	doctor, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) List(c *gin.Context) {
	doctors, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) ListApproved(c *gin.Context) {
	doctors, err := h.service.ListApproved(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) MostPopular(c *gin.Context) {
	doctors, err := h.service.MostPopular(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) Appointments(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	appointments, err := h.appointments.ListByDoctor(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointments))
}

func (h *Handler) Prescriptions(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	prescriptions, err := h.prescriptions.ListByDoctor(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescriptions))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("", h.Register)
		doctors.GET("", h.List)
		doctors.GET("/approved", h.ListApproved)
		doctors.GET("/popular", h.MostPopular)
		doctors.GET("/:id", h.Get)
		doctors.GET("/:id/appointments", h.Appointments)
		doctors.GET("/:id/prescriptions", h.Prescriptions)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	doctors := r.Group("/doctors")
	{
		doctors.POST("/:id/approve", h.Approve)
	}
}
