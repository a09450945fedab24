// Package apperr defines the error taxonomy shared by the storage,
// event and HTTP layers. Callers test with errors.Is / errors.As and
// the HTTP boundary translates with StatusCode.
package apperr

import (
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrNotFound reports an unknown record id.
	ErrNotFound = errors.New("not found")
	// ErrNotAuthorized reports a user mutating a record they do not own.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrUnauthenticated reports a missing, invalid or expired credential.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrCapacityExceeded reports a going RSVP on a full event.
	ErrCapacityExceeded = errors.New("event is full")
	// ErrEventExpired reports an RSVP on an event whose date has passed.
	ErrEventExpired = errors.New("event has already taken place")
	// ErrDuplicate reports a storage-level unique constraint violation.
	ErrDuplicate = errors.New("already exists")
	// ErrConflict reports a lost optimistic version check. Callers may retry.
	ErrConflict = errors.New("event was modified concurrently")
)

// FieldError is a single violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every violated constraint of one input.
type ValidationError struct {
	Fields []FieldError
}

// Add records a violation for field.
func (v *ValidationError) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// Has reports whether field has at least one violation.
func (v *ValidationError) Has(field string) bool {
	for _, f := range v.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Err returns v as an error, or nil when nothing was recorded.
func (v *ValidationError) Err() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

func (v *ValidationError) Error() string {
	msgs := make([]string, 0, len(v.Fields))
	for _, f := range v.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, ", ")
}

// StatusCode maps err onto the HTTP status the API responds with.
func StatusCode(err error) int {
	var verr *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrEventExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
