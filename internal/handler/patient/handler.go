package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/ledger-api/internal/handler"
	"github.com/medichain/ledger-api/internal/model"
	appointmentService "github.com/medichain/ledger-api/internal/service/appointment"
	inventoryService "github.com/medichain/ledger-api/internal/service/inventory"
	patientService "github.com/medichain/ledger-api/internal/service/patient"
	prescriptionService "github.com/medichain/ledger-api/internal/service/prescription"
	"github.com/medichain/ledger-api/pkg/errors"
)

type Handler struct {
	service       *patientService.Service
	appointments  *appointmentService.Service
	prescriptions *prescriptionService.Service
	inventory     *inventoryService.Service
}

func NewHandler(service *patientService.Service, appointments *appointmentService.Service, prescriptions *prescriptionService.Service, inventory *inventoryService.Service) *Handler {
	return &Handler{
		service:       service,
		appointments:  appointments,
		prescriptions: prescriptions,
		inventory:     inventory,
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid patient payload", err))
		return
	}

	patient, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(patient))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	patient, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) List(c *gin.Context) {
	if account := c.Query("account"); account != "" {
		patient, err := h.service.FindByAccount(account)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
		return
	}

	patients, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patients))
}

func (h *Handler) AppendMedicalNote(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.MedicalNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid note payload", err))
		return
	}

	patient, err := h.service.AppendMedicalNote(c.Request.Context(), id, req.Note)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(patient))
}

func (h *Handler) MedicalHistory(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	history, err := h.service.MedicalHistory(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(history))
}

func (h *Handler) Appointments(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	appointments, err := h.appointments.ListByPatient(c.Request.Context(), id)
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

	prescriptions, err := h.prescriptions.ListByPatient(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescriptions))
}

func (h *Handler) Orders(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	orders, err := h.inventory.ListOrdersByPatient(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
}

func (h *Handler) BoughtMedicines(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	medicines, err := h.service.BoughtMedicines(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(medicines))
}

// RegisterRoutes wires the open surface; registration and projections need
// no token.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.Register)
		patients.GET("", h.List)
		patients.GET("/:id", h.Get)
		patients.GET("/:id/appointments", h.Appointments)
		patients.GET("/:id/prescriptions", h.Prescriptions)
		patients.GET("/:id/orders", h.Orders)
		patients.GET("/:id/medicines", h.BoughtMedicines)
	}
}

// RegisterProtectedRoutes wires the authenticated surface.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("/:id/medical-history", h.MedicalHistory)
		patients.POST("/:id/medical-history", h.AppendMedicalNote)
	}
}
