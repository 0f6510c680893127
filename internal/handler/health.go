package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports process liveness.
func Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
