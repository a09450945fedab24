package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eventhub-rsvp/app/internal/clock"
	"github.com/eventhub-rsvp/app/internal/database"
	"github.com/eventhub-rsvp/app/internal/events"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"golang.org/x/crypto/bcrypt"
)

// testServer holds a running API and its dependencies.
type testServer struct {
	server *httptest.Server
	store  *database.Store
	clock  *clock.FakeClock
	client *http.Client
}

// setupTestServer starts the full router on an in-memory SQLite database,
// the same way main.go assembles it.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.InitDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	clk := clock.Fake(time.Now().UTC().Truncate(time.Second))
	store := database.NewStore(db, clk)
	store.SetBcryptCost(bcrypt.MinCost)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &Env{
		Store:      store,
		Events:     events.NewService(store, clk, logger, 0),
		Clock:      clk,
		Logger:     logger,
		SessionTTL: 30 * 24 * time.Hour,
		PublicURL:  "https://events.example.com",
	}

	ts := httptest.NewServer(NewRouter(env))
	t.Cleanup(func() {
		ts.Close()
		db.Close()
	})
	return &testServer{server: ts, store: store, clock: clk, client: ts.Client()}
}

// do sends a JSON request, authenticated with token when non-empty, and
// returns the status and raw body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	return resp.StatusCode, data
}

// registerAndLogin creates a user and returns its id and bearer token.
func (ts *testServer) registerAndLogin(t *testing.T, username string) (string, string) {
	t.Helper()
	email := username + "@example.com"
	status, body := ts.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": username, "email": email, "password": "password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("Register(%s) status = %d, body = %s", username, status, body)
	}
	status, body = ts.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": email, "password": "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("Login(%s) status = %d, body = %s", username, status, body)
	}
	var resp loginResponse
	decode(t, body, &resp)
	return resp.User.ID, resp.Token
}

// createEvent posts a valid event two days ahead with the given capacity.
func (ts *testServer) createEvent(t *testing.T, token, title string, maxAttendees int) eventBody {
	t.Helper()
	status, body := ts.do(t, http.MethodPost, "/events", token, map[string]any{
		"title":        title,
		"description":  "An evening of lightning talks",
		"date":         ts.clock.Now().Add(48 * time.Hour),
		"location":     "Lisbon",
		"category":     "seminar",
		"maxAttendees": maxAttendees,
	})
	if status != http.StatusCreated {
		t.Fatalf("CreateEvent(%s) status = %d, body = %s", title, status, body)
	}
	var e eventBody
	decode(t, body, &e)
	return e
}

// eventBody mirrors the event JSON the API returns.
type eventBody struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Creator          string `json:"creator"`
	CreatorName      string `json:"creatorName"`
	MaxAttendees     int    `json:"maxAttendees"`
	CurrentAttendees int    `json:"currentAttendees"`
	Version          int64  `json:"version"`
	Attendees        []struct {
		User     string `json:"user"`
		Username string `json:"username"`
		Status   string `json:"status"`
	} `json:"attendees"`
}

func decode(t *testing.T, body []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(body, dst); err != nil {
		t.Fatalf("Failed to decode %s: %v", body, err)
	}
}

func newCookieClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}
