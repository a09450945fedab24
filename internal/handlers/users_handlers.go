package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/database"
)

type profileRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// GetProfile returns the caller's account.
func GetProfile(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		user, err := env.Store.GetUserByID(r.Context(), userID)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, user)
	}
}

// UpdateProfile changes the caller's username, email or password. A new
// password is only accepted together with the current one.
func UpdateProfile(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		var req profileRequest
		if err := decodeJSON(w, r, &req); err != nil {
			env.WriteError(w, r, err)
			return
		}
		user, err := env.Store.GetUserByID(r.Context(), userID)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}

		verr := &apperr.ValidationError{}
		if email := strings.TrimSpace(req.Email); email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				verr.Add("email", "A valid email is required")
			}
		}
		if req.NewPassword != "" {
			if len(req.NewPassword) < minPasswordLen {
				verr.Add("newPassword", fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
			}
			if err := database.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
				verr.Add("currentPassword", "Current password is incorrect")
			}
		}
		if err := verr.Err(); err != nil {
			env.WriteError(w, r, err)
			return
		}

		updated, err := env.Store.UpdateProfile(r.Context(), userID, database.ProfileUpdate{
			Username:    req.Username,
			Email:       req.Email,
			NewPassword: req.NewPassword,
		})
		if err != nil {
			if errors.Is(err, apperr.ErrDuplicate) {
				err = fmt.Errorf("username or email already registered: %w", apperr.ErrDuplicate)
			}
			env.WriteError(w, r, err)
			return
		}
		env.Logger.Info("Profile updated.", "user", userID, "passwordChanged", req.NewPassword != "")
		WriteJSON(w, http.StatusOK, updated)
	}
}

// DeleteAccount removes the caller together with their events and RSVPs
// and ends the session.
func DeleteAccount(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := CurrentUserID(r.Context())
		removal, err := env.Store.DeleteUser(r.Context(), userID)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		env.Logger.Info("Account deleted.", "user", userID,
			"eventsDeleted", removal.EventsDeleted, "rsvpsWithdrawn", removal.RSVPsWithdrawn)
		clearSessionCookie(w, r)
		WriteJSON(w, http.StatusOK, messageResponse{Message: "Account deleted"})
	}
}
