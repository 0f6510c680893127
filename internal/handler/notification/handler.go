package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/ledger-api/internal/handler"
	notificationService "github.com/medichain/ledger-api/internal/service/notification"
)

type Handler struct {
	service *notificationService.Service
}

func NewHandler(service *notificationService.Service) *Handler {
	return &Handler{service: service}
}

// List returns the notification log, optionally filtered by recipient.
func (h *Handler) List(c *gin.Context) {
	recipient := c.Query("recipient")

	var err error
	var out interface{}
	if recipient != "" {
		out, err = h.service.ListFor(recipient)
	} else {
		out, err = h.service.List()
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

// Mine returns the calling actor's notifications in emission order.
func (h *Handler) Mine(c *gin.Context) {
	out, err := h.service.ListFor(c.GetString("accountID"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/notifications", h.List)
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/notifications/mine", h.Mine)
}
