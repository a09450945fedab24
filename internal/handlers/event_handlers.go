package handlers

import (
	"net/http"

	"github.com/eventhub-rsvp/app/internal/events"
	"github.com/eventhub-rsvp/app/internal/models"
)

// ListEvents returns the events matching the search, category, location,
// date and price query parameters.
func ListEvents(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := events.ParseFilter(r.URL.Query())
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		list, err := env.Events.List(r.Context(), f)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, nonNil(list))
	}
}

// GetEvent returns one event with its attendees.
func GetEvent(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e, err := env.Events.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, e)
	}
}

// CreateEvent stores a new event owned by the caller.
// This handler should be wrapped by AuthMiddleware.
func CreateEvent(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		var input events.EventInput
		if err := decodeJSON(w, r, &input); err != nil {
			env.WriteError(w, r, err)
			return
		}
		e, err := env.Events.Create(r.Context(), userID, input)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, e)
	}
}

// UpdateEvent applies a partial edit. Only the creator may edit.
func UpdateEvent(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		var patch events.EventPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			env.WriteError(w, r, err)
			return
		}
		e, err := env.Events.Update(r.Context(), userID, r.PathValue("id"), patch)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, e)
	}
}

// DeleteEvent removes an event. Only the creator may delete.
func DeleteEvent(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		if err := env.Events.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, messageResponse{Message: "Event removed"})
	}
}

// CreatedEvents lists the caller's own events.
func CreatedEvents(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		list, err := env.Events.Created(r.Context(), userID)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, nonNil(list))
	}
}

// AttendingEvents lists the events the caller is going to.
func AttendingEvents(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		list, err := env.Events.Attending(r.Context(), userID)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, nonNil(list))
	}
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil(list []*models.Event) []*models.Event {
	if list == nil {
		return []*models.Event{}
	}
	return list
}
