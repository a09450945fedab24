package handlers

import (
	"net/http"

	"github.com/eventhub-rsvp/app/internal/events"
	"github.com/eventhub-rsvp/app/internal/models"
)

type rsvpRequest struct {
	Status models.RSVPStatus `json:"status"`
}

// SubmitRSVP records the caller's attendance for an event and returns
// the updated event.
// This handler should be wrapped by AuthMiddleware.
func SubmitRSVP(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		var req rsvpRequest
		if err := decodeJSON(w, r, &req); err != nil {
			env.WriteError(w, r, err)
			return
		}

		user, err := env.Store.GetUserByID(r.Context(), userID)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}

		e, _, err := env.Events.RSVP(r.Context(), r.PathValue("id"), events.RSVPRequest{
			UserID:   user.ID,
			UserName: user.Username,
			Status:   req.Status,
		})
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, e)
	}
}

// CancelRSVP withdraws the caller's RSVP. It is equivalent to submitting
// not_going.
func CancelRSVP(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		e, err := env.Events.CancelRSVP(r.Context(), r.PathValue("id"), userID)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, e)
	}
}
