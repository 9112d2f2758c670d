package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// FieldError describes the first rule a struct field failed
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + " " + e.Message
}

// ValidateStruct validates a struct based on validate tags.
// Supported rules: required, email, uuid, min=N, max=N, oneof=a b c.
// The json tag name is reported as the field name when present.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return errors.New("not a struct")
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)
		tag := field.Tag.Get("validate")

		if tag == "" {
			continue
		}

		name := fieldName(field)
		rules := strings.Split(tag, ",")
		for _, rule := range rules {
			if err := validateField(name, value, rule); err != nil {
				return err
			}
		}
	}

	return nil
}

func fieldName(field reflect.StructField) string {
	if jsonTag := field.Tag.Get("json"); jsonTag != "" {
		if name := strings.Split(jsonTag, ",")[0]; name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

// validateField validates a single field based on a rule
func validateField(fieldName string, value reflect.Value, rule string) error {
	// optional pointers are only checked when set
	if value.Kind() == reflect.Ptr && rule != "required" {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}

	switch {
	case rule == "required":
		if isZero(value) {
			return &FieldError{Field: fieldName, Message: "is required"}
		}
	case rule == "email":
		if value.Kind() == reflect.String && value.String() != "" {
			if err := ValidateEmail(value.String()); err != nil {
				return &FieldError{Field: fieldName, Message: "must be a valid email"}
			}
		}
	case rule == "uuid":
		if value.Kind() == reflect.String && value.String() != "" {
			if _, err := uuid.Parse(value.String()); err != nil {
				return &FieldError{Field: fieldName, Message: "must be a valid UUID"}
			}
		}
	case strings.HasPrefix(rule, "min="):
		minVal, _ := strconv.Atoi(strings.TrimPrefix(rule, "min="))
		if n, ok := length(value); ok && n < minVal {
			return &FieldError{Field: fieldName, Message: fmt.Sprintf("must be at least %d characters", minVal)}
		}
	case strings.HasPrefix(rule, "max="):
		maxVal, _ := strconv.Atoi(strings.TrimPrefix(rule, "max="))
		if n, ok := length(value); ok && n > maxVal {
			return &FieldError{Field: fieldName, Message: fmt.Sprintf("must be at most %d characters", maxVal)}
		}
	case strings.HasPrefix(rule, "oneof="):
		if value.Kind() == reflect.String && value.String() != "" {
			options := strings.Fields(strings.TrimPrefix(rule, "oneof="))
			for _, opt := range options {
				if value.String() == opt {
					return nil
				}
			}
			return &FieldError{Field: fieldName, Message: "must be one of " + strings.Join(options, ", ")}
		}
	}
	return nil
}

func length(v reflect.Value) (int, bool) {
	switch v.Kind() {
	case reflect.String:
		return len(strings.TrimSpace(v.String())), true
	case reflect.Slice, reflect.Map:
		return v.Len(), true
	}
	return 0, false
}

// isZero checks if a value is zero/empty
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return false
	}
}

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidateRequired validates that a field is not empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

// SanitizeString sanitizes a string by removing potentially dangerous characters
func SanitizeString(s string) string {
	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")
	// Trim whitespace
	s = strings.TrimSpace(s)
	return s
}
