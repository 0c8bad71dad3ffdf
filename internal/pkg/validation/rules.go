package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/brightnest/daycare/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	EmailPattern = `^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`

	// Digits with optional leading +, spaces, dashes and parentheses
	PhonePattern = `^\+?[0-9 ()\-]{6,20}$`

	PasswordMinLength = 8

	NameMaxLength = 150
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
	Phone *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
	Phone: regexp.MustCompile(PhonePattern),
}

// StringValidation describes the rules of one string field
type StringValidation struct {
	Field    string
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
	Message  string
}

// NewStringValidation creates a new required string validation
func NewStringValidation(field, value string) *StringValidation {
	return &StringValidation{
		Field:    field,
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp, message string) *StringValidation {
	v.Pattern = pattern
	v.Message = message
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate returns a validation error describing the first broken rule
func (v *StringValidation) Validate() error {
	value := strings.TrimSpace(v.Value)
	if value == "" {
		if v.Required {
			return apperrors.NewValidationError(v.Field, v.Field+" is required")
		}
		return nil
	}

	length := utf8.RuneCountInString(value)
	if v.MinLen > 0 && length < v.MinLen {
		return apperrors.NewValidationError(v.Field, v.Field+" is too short")
	}
	if v.MaxLen > 0 && length > v.MaxLen {
		return apperrors.NewValidationError(v.Field, v.Field+" is too long")
	}
	if v.Pattern != nil && !v.Pattern.MatchString(value) {
		msg := v.Message
		if msg == "" {
			msg = v.Field + " has an invalid format"
		}
		return apperrors.NewValidationError(v.Field, msg)
	}
	return nil
}

// First returns the first non-nil error
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Email validates an email address
func Email(value string) error {
	return NewStringValidation("email", strings.ToLower(value)).
		WithMaxLength(254).
		WithPattern(CompiledPatterns.Email, "Invalid email format").
		Validate()
}

// Password validates a new password
func Password(value string) error {
	if utf8.RuneCountInString(value) < PasswordMinLength {
		return apperrors.NewValidationError("password", "Password must be at least 8 characters")
	}
	return nil
}

// Phone validates an optional phone number
func Phone(value string) error {
	return NewStringValidation("phoneNumber", value).
		WithRequired(false).
		WithPattern(CompiledPatterns.Phone, "Invalid phone number").
		Validate()
}

// Name validates a person name field
func Name(field, value string, required bool) error {
	return NewStringValidation(field, value).
		WithRequired(required).
		WithMaxLength(NameMaxLength).
		Validate()
}
