package validator

import (
	"sync"

	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	initOnce sync.Once
)

func NewValidator() *validator.Validate {
	validate = validator.New()
	return validate
}

// GetValidator returns the shared validator, creating it on first use
func GetValidator() *validator.Validate {
	initOnce.Do(func() {
		if validate == nil {
			validate = validator.New()
		}
	})
	return validate
}

func ValidateRequest(req interface{}) error {
	if err := GetValidator().Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsEmail reports whether s is a syntactically valid email address
func IsEmail(s string) bool {
	return GetValidator().Var(s, "required,email") == nil
}

// IsDate reports whether s is a YYYY-MM-DD calendar date
func IsDate(s string) bool {
	return GetValidator().Var(s, "required,datetime=2006-01-02") == nil
}

// IsCurrencyCode reports whether s is an ISO 4217 alphabetic code
func IsCurrencyCode(s string) bool {
	return GetValidator().Var(s, "required,iso4217") == nil
}
