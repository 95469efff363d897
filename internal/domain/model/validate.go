package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire names so messages match what the store says.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		switch fld.Name {
		case "ImageURL":
			return "image_url"
		case "VisitedAt":
			return "visited_at"
		default:
			return strings.ToLower(fld.Name)
		}
	})
	return v
}

// FieldError describes one invalid attribute of a location record.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors is the set of problems found while validating a record.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, e := range fe {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validate checks a normalized location against the record invariants:
// non-empty title, city and country, and coordinates within their domains.
// It returns FieldErrors when the record is invalid.
func (l Location) Validate() error {
	err := validate.Struct(l)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{Field: e.Field(), Message: formatFieldError(e)})
	}
	return out
}

func formatFieldError(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, e.Param())
	case "gte", "lte":
		if field == "x" {
			return fmt.Sprintf("x (longitude) must be between %g and %g", MinLongitude, MaxLongitude)
		}
		return fmt.Sprintf("y (latitude) must be between %g and %g", MinLatitude, MaxLatitude)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
