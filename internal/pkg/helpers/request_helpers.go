package helpers

import (
	"strconv"

	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/gin-gonic/gin"
)

// ParseIDParam reads a positive int64 path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(name, "Invalid "+name+" parameter")
	}
	return id, nil
}

// ParseBoolQuery reads an optional boolean query parameter, falling back to def when absent
func ParseBoolQuery(c *gin.Context, name string, def bool) (bool, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.NewValidationError(name, name+" must be true or false")
	}
	return v, nil
}
