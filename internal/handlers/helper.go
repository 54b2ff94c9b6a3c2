package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam extracts a positive uint path parameter. A zero return means
// the response has already been written.
func parseIDParam(c *gin.Context, param string) uint {
	idStr := c.Param(param)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "must be a positive integer",
		})
		return 0
	}
	return uint(id)
}

// parseUintQuery extracts an optional uint query parameter.
func parseUintQuery(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	out := uint(v)
	return &out
}

// requiredUintQuery extracts a mandatory uint query parameter. A zero
// return means the response has already been written.
func requiredUintQuery(c *gin.Context, name string) uint {
	raw := c.Query(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name,
			Details: "query parameter is required and must be a positive integer",
		})
		return 0
	}
	return uint(v)
}
