package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError reports a parameter outside its declared range or with the
// wrong shape.
type ValidationError struct {
	// Field is the dotted JSON path, for example "basic.exposure" or
	// "tone_curve.points[2][1]".
	Field string
	// Tag is the failed constraint: gte, lte, len or type.
	Tag string
	// Bound is the constraint parameter, such as the range limit.
	Bound string
	// Value is the offending value when known.
	Value any
}

func (e *ValidationError) Error() string {
	field := e.Field
	if field == "" {
		field = "parameters"
	}
	switch e.Tag {
	case "gte":
		return fmt.Sprintf("%s: must be >= %s, got %v", field, e.Bound, e.Value)
	case "lte":
		return fmt.Sprintf("%s: must be <= %s, got %v", field, e.Bound, e.Value)
	case "len":
		return fmt.Sprintf("%s: must have exactly %s elements, got %v", field, e.Bound, e.Value)
	case "type":
		return fmt.Sprintf("%s: expected %s, got %v", field, e.Bound, e.Value)
	default:
		return fmt.Sprintf("%s: invalid value %v (%s)", field, e.Value, e.Tag)
	}
}

// Validate checks every field against its declared range.
func (p ColorParams) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("failed to validate parameters: %w", err)
	}

	fe := verrs[0]
	value := fe.Value()
	if fe.Tag() == "len" {
		value = reflect.ValueOf(fe.Value()).Len()
	}
	return &ValidationError{
		Field: trimRoot(fe.Namespace()),
		Tag:   fe.Tag(),
		Bound: fe.Param(),
		Value: value,
	}
}

// trimRoot drops the leading struct name from a validator namespace.
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// decodeError converts a JSON decoding failure into a ValidationError.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{
			Field: typeErr.Field,
			Tag:   "type",
			Bound: typeErr.Type.String(),
			Value: typeErr.Value,
		}
	}
	return &ValidationError{Tag: "json", Value: err.Error()}
}
