package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/clock"
	"github.com/eventhub-rsvp/app/internal/database"
	"github.com/eventhub-rsvp/app/internal/events"
)

const maxBodyBytes = 1 << 20

// Env carries the dependencies shared by every handler.
type Env struct {
	Store  *database.Store
	Events *events.Service
	Clock  clock.Clock
	Logger *slog.Logger

	SessionTTL time.Duration
	// PublicURL is the base used for links in iCal and QR output.
	PublicURL string
}

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Message string              `json:"message"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response.", "error", err)
	}
}

// WriteError translates err into its status code and JSON body. Internal
// errors are logged and replaced by a generic message.
func (env *Env) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusCode(err)
	resp := errorResponse{Message: err.Error()}

	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = verr.Fields
	}
	if status == http.StatusInternalServerError {
		env.Logger.Error("Request failed.", "method", r.Method, "path", r.URL.Path, "error", err)
		resp.Message = "Server error"
	}
	WriteJSON(w, status, resp)
}

// decodeJSON reads a JSON request body into dst. A malformed body is
// reported as a validation error on "body".
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		verr := &apperr.ValidationError{}
		if errors.Is(err, io.EOF) {
			verr.Add("body", "Request body is required")
		} else {
			verr.Add("body", "Malformed JSON: "+err.Error())
		}
		return verr
	}
	return nil
}

type messageResponse struct {
	Message string `json:"message"`
}
