package handlers

import (
	"fmt"
	"net/http"
	"time"
)

// NewRouter wires every API route onto a ServeMux and wraps it with
// request logging and panic recovery.
func NewRouter(env *Env) http.Handler {
	mux := http.NewServeMux()
	auth := func(h http.HandlerFunc) http.HandlerFunc { return AuthMiddleware(env, h) }

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth Routes
	mux.HandleFunc("POST /register", Register(env))
	mux.HandleFunc("POST /login", Login(env))
	mux.HandleFunc("POST /logout", Logout(env))

	// Profile Routes
	mux.HandleFunc("GET /profile", auth(GetProfile(env)))
	mux.HandleFunc("PUT /profile", auth(UpdateProfile(env)))
	mux.HandleFunc("DELETE /profile", auth(DeleteAccount(env)))

	// Event Routes
	mux.HandleFunc("GET /events", ListEvents(env))
	mux.HandleFunc("POST /events", auth(CreateEvent(env)))
	mux.HandleFunc("GET /events/created", auth(CreatedEvents(env)))
	mux.HandleFunc("GET /events/attending", auth(AttendingEvents(env)))
	mux.HandleFunc("GET /events/{id}", GetEvent(env))
	mux.HandleFunc("PUT /events/{id}", auth(UpdateEvent(env)))
	mux.HandleFunc("DELETE /events/{id}", auth(DeleteEvent(env)))
	mux.HandleFunc("GET /events/{id}/ical", EventICal(env))
	mux.HandleFunc("GET /events/{id}/qr", EventQR(env))

	// RSVP Routes
	mux.HandleFunc("POST /events/{id}/rsvp", auth(SubmitRSVP(env)))
	mux.HandleFunc("DELETE /events/{id}/rsvp", auth(CancelRSVP(env)))

	// Notification Routes
	mux.HandleFunc("GET /notifications", auth(ListNotifications(env)))
	mux.HandleFunc("POST /notifications/{id}/read", auth(MarkNotificationRead(env)))

	return env.logRequests(mux)
}

// statusRecorder remembers the status code written through it and
// whether the response has started.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wroteHeader = true
	return s.ResponseWriter.Write(b)
}

// logRequests logs every request and turns a handler panic into a 500
// when nothing has been written yet. A panic after the response started
// can only be logged.
func (env *Env) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				err := fmt.Errorf("panic: %v", p)
				if rec.wroteHeader {
					env.Logger.Error("Handler panicked after writing the response.",
						"method", r.Method, "path", r.URL.Path, "error", err)
				} else {
					env.WriteError(rec, r, err)
				}
			}
			env.Logger.Info("Request handled.",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		}()
		next.ServeHTTP(rec, r)
	})
}
