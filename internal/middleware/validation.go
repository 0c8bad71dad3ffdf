package middleware

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// HandleBindingError answers 400 for a request body or query that failed to
// bind. Rule violations are reported per field.
func HandleBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	fields := make([]dto.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, dto.FieldError{
			Field:   jsonName(fe.Field()),
			Message: formatValidationError(fe),
		})
	}
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, fields[0].Message).
		WithField(fields[0].Field).
		WithDetails(fields)
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	field := jsonName(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + e.Param()
	case "max":
		return field + " must be at most " + e.Param()
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return field + " must be one of: " + e.Param()
	case "gt":
		return field + " must be greater than " + e.Param()
	default:
		return field + " validation failed: " + e.Tag()
	}
}

// jsonName lower-cases the first letter of a Go field name (FirstName -> firstName)
func jsonName(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	for i, r := range field {
		if !unicode.IsUpper(r) {
			if i > 1 {
				i--
			}
			return strings.ToLower(field[:i]) + field[i:]
		}
	}
	return strings.ToLower(field)
}
