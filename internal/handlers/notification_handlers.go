package handlers

import (
	"net/http"
	"strconv"

	"github.com/eventhub-rsvp/app/internal/models"
)

// ListNotifications returns the caller's notifications, newest first.
// With ?unread=true only unread ones are returned.
func ListNotifications(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))

		notes, err := env.Store.ListNotifications(r.Context(), userID, unreadOnly)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		if notes == nil {
			notes = []*models.Notification{}
		}
		WriteJSON(w, http.StatusOK, notes)
	}
}

// MarkNotificationRead flags one of the caller's notifications as read.
func MarkNotificationRead(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		if err := env.Store.MarkNotificationRead(r.Context(), userID, r.PathValue("id")); err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, messageResponse{Message: "Notification marked as read"})
	}
}
