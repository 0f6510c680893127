package order

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

// Purchase reserves stock and creates a pending order; settlement happens
// asynchronously once the external transfer resolves.
func (h *Handler) Purchase(c *gin.Context) {
	var req model.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.InvalidArgument("invalid purchase payload", err))
		return
	}

	order, err := h.inventory.Purchase(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(order))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	order, err := h.inventory.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(order))
}

func (h *Handler) List(c *gin.Context) {
	orders, err := h.inventory.ListOrders(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(orders))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	orders := r.Group("/orders")
	{
		orders.POST("", h.Purchase)
	}
}
