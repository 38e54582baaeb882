package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Validator validates structs using `validate` tags. Supported rules:
// required, min=<n>, max=<n>, oneof=<a> <b> <c>.
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate validates a struct
func (v *Validator) Validate(s interface{}) error {
	val := reflect.ValueOf(s)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return fmt.Errorf("validate expects a struct")
	}

	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		tag := fieldType.Tag.Get("validate")

		if tag == "" {
			continue
		}

		if err := v.validateField(field, tag); err != nil {
			return fmt.Errorf("%s: %w", fieldType.Name, err)
		}
	}

	return nil
}

// validateField validates a single field
func (v *Validator) validateField(field reflect.Value, tag string) error {
	for _, rule := range strings.Split(tag, ",") {
		parts := strings.SplitN(rule, "=", 2)
		name := parts[0]
		param := ""
		if len(parts) == 2 {
			param = parts[1]
		}

		switch name {
		case "required":
			if field.IsZero() {
				return fmt.Errorf("field is required")
			}

		case "min":
			n, err := strconv.Atoi(param)
			if err != nil {
				continue
			}
			if size, ok := fieldSize(field); ok && size < n {
				return fmt.Errorf("minimum is %d", n)
			}

		case "max":
			n, err := strconv.Atoi(param)
			if err != nil {
				continue
			}
			if size, ok := fieldSize(field); ok && size > n {
				return fmt.Errorf("maximum is %d", n)
			}

		case "oneof":
			if field.Kind() != reflect.String || field.String() == "" {
				continue
			}
			allowed := strings.Fields(param)
			found := false
			for _, a := range allowed {
				if field.String() == a {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
			}
		}
	}

	return nil
}

// fieldSize returns the comparable size of a field: length for strings and
// slices, the value itself for integers.
func fieldSize(field reflect.Value) (int, bool) {
	switch field.Kind() {
	case reflect.String, reflect.Slice, reflect.Map:
		return field.Len(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(field.Int()), true
	default:
		return 0, false
	}
}
