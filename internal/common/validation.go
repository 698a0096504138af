package common

import (
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

// Validator provides validation utilities
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors. Rules after the first failing
// one are skipped.
func (v *Validator) Field(fieldName string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
			break
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorMessage returns the collected messages joined for display
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}
	messages := make([]string, 0, len(v.errors))
	for _, err := range v.errors {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, " ")
}

// Err returns a UserInputInvalid error when validation failed
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return InputError(v.ErrorMessage())
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value any) *ValidationError

func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", true
		}
		return *v, true
	}
	return "", false
}

// Required rejects nil and blank strings
func Required(fieldName string, value any) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: fmt.Sprintf("O campo %q é obrigatório.", fieldName)}
	}
	if s, ok := asString(value); ok && strings.TrimSpace(s) == "" {
		return &ValidationError{Field: fieldName, Value: value, Message: fmt.Sprintf("O campo %q é obrigatório.", fieldName)}
	}
	return nil
}

// MinLength rejects strings shorter than min runes
func MinLength(min int) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		s, ok := asString(value)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(s) < min {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("O campo %q deve ter pelo menos %d caracteres.", fieldName, min),
			}
		}
		return nil
	}
}

// Email rejects values that are not a bare e-mail address
func Email(fieldName string, value any) *ValidationError {
	s, _ := asString(value)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != strings.TrimSpace(s) {
		return &ValidationError{Field: fieldName, Value: value, Message: "Informe um e-mail válido."}
	}
	return nil
}

// HTTPURL rejects values that are not absolute http or https URLs
func HTTPURL(fieldName string, value any) *ValidationError {
	s, _ := asString(value)
	if !IsHTTPURL(s) {
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "Por favor, insira uma URL válida (começando com http:// ou https://).",
		}
	}
	return nil
}

// IsHTTPURL reports whether raw parses as an absolute http(s) URL with a host.
func IsHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Percent rejects numbers outside 0..100
func Percent(fieldName string, value any) *ValidationError {
	f, ok := value.(float64)
	if !ok || math.IsNaN(f) || f < 0 || f > 100 {
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "Por favor, insira uma nota válida entre 0 e 100.",
		}
	}
	return nil
}

// UUID rejects strings that do not parse as UUIDs
func UUID(fieldName string, value any) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return &ValidationError{Field: fieldName, Value: value, Message: fmt.Sprintf("O campo %q deve ser texto.", fieldName)}
	}
	if _, err := uuid.Parse(str); err != nil {
		return &ValidationError{Field: fieldName, Value: value, Message: fmt.Sprintf("O campo %q deve ser um UUID válido.", fieldName)}
	}
	return nil
}
