package medicine

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/ledger-api/internal/handler"
	"github.com/medichain/ledger-api/internal/model"
	inventoryService "github.com/medichain/ledger-api/internal/service/inventory"
	"github.com/medichain/ledger-api/pkg/errors"
)

type Handler struct {
	inventory *inventoryService.Service
}

func NewHandler(inventory *inventoryService.Service) *Handler {
	return &Handler{inventory: inventory}
}

func (h *Handler) Add(c *gin.Context) {
	var req model.AddMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid medicine payload", err))
		return
	}

	medicine, err := h.inventory.AddMedicine(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(medicine))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	medicine, err := h.inventory.GetMedicine(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(medicine))
}

func (h *Handler) List(c *gin.Context) {
	medicines, err := h.inventory.ListMedicines(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(medicines))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	medicines := r.Group("/medicines")
	{
		medicines.GET("", h.List)
		medicines.GET("/:id", h.Get)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	medicines := r.Group("/medicines")
	{
		medicines.POST("", h.Add)
	}
}
