package database

import (
	"context"
	"testing"
	"time"

	"github.com/eventhub-rsvp/app/internal/clock"
	"github.com/eventhub-rsvp/app/internal/models"
	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	return setupTestStoreWithClock(t, nil)
}

func setupTestStoreWithClock(t *testing.T, clk clock.Clock) *Store {
	t.Helper()
	db, err := InitDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	store := NewStore(db, clk)
	store.SetBcryptCost(bcrypt.MinCost)
	return store
}

func createTestUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), username, username+"@example.com", "password")
	if err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

func createTestEvent(t *testing.T, s *Store, creatorID, title string, date time.Time) *models.Event {
	t.Helper()
	now := time.Now().UTC().Round(time.Second)
	e := &models.Event{
		ID:               "evt-" + title,
		Title:            title,
		Description:      "A description long enough",
		Date:             date.UTC().Round(time.Second),
		Location:         "Main Hall",
		Category:         models.CategoryWorkshop,
		Tags:             []string{"go", "testing"},
		MaxAttendees:     2,
		CurrentAttendees: 1,
		Creator:          creatorID,
		Status:           models.EventStatusPublished,
		Attendees:        []models.Attendee{{UserID: creatorID, Status: models.RSVPStatusGoing, RSVPDate: now}},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.CreateEvent(context.Background(), e); err != nil {
		t.Fatalf("Failed to create test event %s: %v", title, err)
	}
	return e
}
