package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldErrors maps a field name to a human-readable problem
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(e))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// collect runs the struct tags of v into fields
func collect(v any, fields FieldErrors) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}
	return nil
}

// Validate checks the descriptive fields of a jump. Billing fields are
// owned by the billing state machine and are not validated here.
func (j *Jump) Validate() error {
	fields := make(FieldErrors)

	if err := collect(j, fields); err != nil {
		return err
	}

	// required_if only checks for a nil slice
	if j.WorkJump && len(j.InvoiceItems) == 0 {
		fields["InvoiceItems"] = "is required for work jumps"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

// Validate checks a configured rate
func (r ServiceRate) Validate() error {
	fields := make(FieldErrors)
	if err := collect(r, fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required for work jumps"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte", "max":
		return "must be at most " + fe.Param()
	default:
		return fe.Error()
	}
}
