package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medichain/ledger-api/pkg/errors"
)

// ParseID parses the named path parameter as a record id.
func ParseID(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.InvalidArgument("invalid "+name, err)
	}
	return id, nil
}
