// Package validator wraps struct validation for the guardian service
// request DTOs and registers the domain's custom rules.
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError describes one failed field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
	Rule    string `json:"rule"`
}

// ValidationErrors is a collection of field failures
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	parts := make([]string, len(ve))
	for i, e := range ve {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return strings.Join(parts, "; ")
}

// HasErrors reports whether any field failed
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// ToValidationErrors converts a go-playground error into our shape
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "", Message: err.Error(), Rule: "invalid"}}
	}
	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "telephone":
		return "must contain at least 8 digits"
	case "postal_code":
		return "must be a 4 or 5 digit postal code"
	case "national_id":
		return "must be an 8 digit national id"
	case "birthday":
		return "must be a date in YYYY-MM-DD form"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

var (
	telephonePattern  = regexp.MustCompile(`^[0-9]{8,}$`)
	postalCodePattern = regexp.MustCompile(`^[0-9]{4,5}$`)
	nationalIDPattern = regexp.MustCompile(`^[0-9]{8}$`)
	birthdayPattern   = regexp.MustCompile(`^[0-9]{4}-[0-9]{2}-[0-9]{2}$`)
)

// Validator validates request DTOs
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with all custom rules registered
func New() *Validator {
	validate := validator.New()

	validate.RegisterValidation("telephone", func(fl validator.FieldLevel) bool {
		return telephonePattern.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("postal_code", func(fl validator.FieldLevel) bool {
		return postalCodePattern.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("national_id", func(fl validator.FieldLevel) bool {
		return nationalIDPattern.MatchString(fl.Field().String())
	})
	validate.RegisterValidation("birthday", func(fl validator.FieldLevel) bool {
		return birthdayPattern.MatchString(fl.Field().String())
	})

	return &Validator{validate: validate}
}

// Validate validates any DTO struct, returning nil when all rules pass
func (v *Validator) Validate(s any) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}
