// internal/apperror/errors.go
package apperror

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Error is a domain failure with a stable machine-readable code. Its message
// doubles as the i18n key used to localize it at the API boundary.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Message
}

// Extensions is picked up by the GraphQL engine and rendered under
// "extensions" of the formatted error.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

var (
	ErrLoginRequired        = New("login-required", "auth.login_required", http.StatusUnauthorized)
	ErrPermissionDenied     = New("permission-denied", "auth.permission_denied", http.StatusForbidden)
	ErrAuthenticationFailed = New("authentication-failed", "auth.authentication_failed", http.StatusUnauthorized)
	ErrInvalidCredentials   = New("invalid-credentials", "auth.invalid_credentials", http.StatusUnauthorized)
	ErrCategoryDoesNotExist = New("invalid-category", "category.does_not_exist", http.StatusNotFound)
	ErrDuplicateName        = New("duplicate-name", "validation.duplicate_name", http.StatusConflict)
	ErrDoesNotExist         = New("does-not-exist", "common.does_not_exist", http.StatusNotFound)
)

// Code returns the code of the first *Error in err's chain, or "".
func Code(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsDomain reports whether err carries a domain code.
func IsDomain(err error) bool {
	return Code(err) != ""
}

// IsNotFound matches both the domain not-found errors and gorm's.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDoesNotExist) ||
		errors.Is(err, ErrCategoryDoesNotExist) ||
		errors.Is(err, gorm.ErrRecordNotFound)
}

// FieldError groups the messages reported against one input field.
type FieldError struct {
	Field    string   `json:"field"`
	Messages []string `json:"messages"`
}

// ValidationError reports input problems field by field. It is returned to
// clients inside mutation payloads rather than as a top-level error.
type ValidationError struct {
	Fields []FieldError
	Cause  error
}

// Unwrap exposes the domain error behind the field errors, if any.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+strings.Join(f.Messages, ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends message to field, creating the entry on first use.
func (e *ValidationError) Add(field, message string) {
	for i := range e.Fields {
		if e.Fields[i].Field == field {
			e.Fields[i].Messages = append(e.Fields[i].Messages, message)
			return
		}
	}
	e.Fields = append(e.Fields, FieldError{Field: field, Messages: []string{message}})
}

// Field builds a single-field ValidationError caused by cause.
func Field(field, message string, cause error) *ValidationError {
	return &ValidationError{
		Fields: []FieldError{{Field: field, Messages: []string{message}}},
		Cause:  cause,
	}
}

// OrNil returns nil when no field errors were collected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// FieldErrors extracts the field errors carried by err, if any.
func FieldErrors(err error) ([]FieldError, bool) {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Fields, true
	}
	return nil, false
}
