package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound reports that a mutation target no longer exists server-side.
	ErrNotFound = errors.New("not found")
	// ErrNetwork reports a transport or availability failure talking to the gateway.
	ErrNetwork = errors.New("gateway unavailable")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input is incomplete or inconsistent. When it
// is produced locally no gateway call has been made.
type ValidationError struct {
	Fields []FieldError
	// Message carries the server-provided text when the gateway rejected the input.
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Message != "" {
			return "validation failed: " + e.Message
		}
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names so errors line up with the admin API payloads.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate checks PartnerInput, CategoryInput and ProductInput values. It returns
// nil or a *ValidationError.
func Validate(in any) error {
	var fields []FieldError

	if err := validatorInstance().Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate input: %w", err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fieldName(fe), Message: validationMessage(fe)})
		}
	}

	if p, ok := productInput(in); ok {
		if p.Price.IsNegative() {
			fields = append(fields, FieldError{Field: "price", Message: "must not be negative"})
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func productInput(in any) (ProductInput, bool) {
	switch v := in.(type) {
	case ProductInput:
		return v, true
	case *ProductInput:
		if v != nil {
			return *v, true
		}
	}
	return ProductInput{}, false
}

// fieldName drops the struct prefix but keeps slice indexes, e.g. "images[1]".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.IndexByte(ns, '.'); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	default:
		return "is invalid"
	}
}
