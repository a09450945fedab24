package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/database"
	"github.com/eventhub-rsvp/app/internal/models"
)

const (
	sessionCookieName = "session_token"
	minPasswordLen    = 6
)

type contextKey int

const userIDKey contextKey = iota

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Register creates a user account.
func Register(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			env.WriteError(w, r, err)
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)

		verr := &apperr.ValidationError{}
		if req.Username == "" {
			verr.Add("username", "Username is required")
		}
		if _, err := mail.ParseAddress(req.Email); err != nil || !strings.Contains(req.Email, "@") {
			verr.Add("email", "A valid email is required")
		}
		if len(req.Password) < minPasswordLen {
			verr.Add("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
		}
		if err := verr.Err(); err != nil {
			env.WriteError(w, r, err)
			return
		}

		user, err := env.Store.CreateUser(r.Context(), req.Username, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, apperr.ErrDuplicate) {
				err = fmt.Errorf("username or email already registered: %w", apperr.ErrDuplicate)
			}
			env.WriteError(w, r, err)
			return
		}
		env.Logger.Info("User registered.", "user", user.ID)
		WriteJSON(w, http.StatusCreated, user)
	}
}

// Login checks credentials and issues a session token, returned in the
// body and as a cookie.
func Login(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			env.WriteError(w, r, err)
			return
		}
		invalid := fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthenticated)

		user, err := env.Store.GetUserByEmail(r.Context(), req.Email)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				err = invalid
			}
			env.WriteError(w, r, err)
			return
		}
		if err := database.VerifyPassword(user.PasswordHash, req.Password); err != nil {
			env.WriteError(w, r, invalid)
			return
		}

		session, err := env.Store.CreateSession(r.Context(), user.ID, env.SessionTTL)
		if err != nil {
			env.WriteError(w, r, fmt.Errorf("could not create session: %w", err))
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    session.Token,
			Path:     "/",
			Expires:  session.ExpiresAt,
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
		WriteJSON(w, http.StatusOK, loginResponse{Token: session.Token, ExpiresAt: session.ExpiresAt, User: user})
	}
}

// Logout ends the session presented with the request, if any.
func Logout(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := sessionToken(r); token != "" {
			if err := env.Store.DeleteSession(r.Context(), token); err != nil {
				env.WriteError(w, r, err)
				return
			}
		}
		clearSessionCookie(w, r)
		WriteJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
	}
}

// AuthMiddleware rejects requests without a valid session and stores the
// caller's user id in the request context.
func AuthMiddleware(env *Env, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			env.WriteError(w, r, apperr.ErrUnauthenticated)
			return
		}
		userID, err := env.Store.GetSessionUserID(r.Context(), token)
		if err != nil {
			env.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

// CurrentUserID returns the user id AuthMiddleware stored in ctx.
func CurrentUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionToken reads a bearer token, falling back to the session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
