package events

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/models"
)

var testNow = time.Date(2026, 6, 10, 15, 30, 0, 0, time.UTC)

func intPtr(n int) *int { return &n }

func validInput() EventInput {
	return EventInput{
		Title:        "Go Meetup",
		Description:  "Talks about concurrency patterns",
		Date:         testNow.Add(7 * 24 * time.Hour).Format(time.RFC3339),
		Location:     "Berlin",
		Category:     models.CategoryConference,
		MaxAttendees: intPtr(2),
	}
}

func TestNew(t *testing.T) {
	e, err := New(validInput(), "creator", testNow)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.ID == "" {
		t.Errorf("New() did not assign an ID")
	}
	if e.Creator != "creator" || e.Status != models.EventStatusPublished {
		t.Errorf("New() creator/status = %q/%q", e.Creator, e.Status)
	}
	if len(e.Attendees) != 1 {
		t.Fatalf("New() attendees = %+v, want creator only", e.Attendees)
	}
	if a := e.Attendees[0]; a.UserID != "creator" || a.Status != models.RSVPStatusGoing || !a.RSVPDate.Equal(testNow) {
		t.Errorf("New() creator RSVP = %+v", a)
	}
	if e.CurrentAttendees != 1 {
		t.Errorf("New() CurrentAttendees = %d, want 1", e.CurrentAttendees)
	}
	if e.Tags == nil {
		t.Errorf("New() Tags = nil, want empty slice")
	}
}

func TestNewDefaultsCapacity(t *testing.T) {
	in := validInput()
	in.MaxAttendees = nil
	e, err := New(in, "creator", testNow)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.MaxAttendees != DefaultMaxAttendees {
		t.Errorf("New() MaxAttendees = %d, want %d", e.MaxAttendees, DefaultMaxAttendees)
	}
}

func TestNewValidation(t *testing.T) {
	t.Run("short title", func(t *testing.T) {
		in := validInput()
		in.Title = "ab"
		_, err := New(in, "creator", testNow)
		var verr *apperr.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("New() error = %v, want ValidationError", err)
		}
		if !verr.Has("title") || len(verr.Fields) != 1 {
			t.Errorf("New() violations = %+v, want only title", verr.Fields)
		}
		if !strings.Contains(err.Error(), "Title must be at least 3 characters") {
			t.Errorf("New() error = %q, want title message", err)
		}
	})

	t.Run("all violations reported", func(t *testing.T) {
		in := EventInput{
			Title:        "  x ",
			Description:  "short",
			Category:     "party",
			Price:        -5,
			MaxAttendees: intPtr(0),
			Status:       "archived",
		}
		_, err := New(in, "", testNow)
		var verr *apperr.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("New() error = %v, want ValidationError", err)
		}
		for _, field := range []string{"title", "description", "date", "location", "category", "maxAttendees", "price", "status", "creator"} {
			if !verr.Has(field) {
				t.Errorf("New() did not report %s; got %+v", field, verr.Fields)
			}
		}
	})

	t.Run("title counted in characters", func(t *testing.T) {
		in := validInput()
		in.Title = "日本語"
		if _, err := New(in, "creator", testNow); err != nil {
			t.Errorf("New() with 3-rune title error = %v", err)
		}
	})
}

func TestIsFullAndHasPassed(t *testing.T) {
	e, err := New(validInput(), "creator", testNow)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.IsFull() {
		t.Errorf("IsFull() = true with 1/2 attendees")
	}
	e.CurrentAttendees = 2
	if !e.IsFull() {
		t.Errorf("IsFull() = false with 2/2 attendees")
	}
	if e.HasPassed(testNow) {
		t.Errorf("HasPassed() = true before the event date")
	}
	if !e.HasPassed(e.Date.Add(time.Second)) {
		t.Errorf("HasPassed() = false after the event date")
	}
}

func TestUpdate(t *testing.T) {
	e, err := New(validInput(), "creator", testNow)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e, _, err = ApplyRSVP(e, RSVPRequest{UserID: "guest", Status: models.RSVPStatusGoing}, testNow)
	if err != nil {
		t.Fatalf("ApplyRSVP() error = %v", err)
	}

	t.Run("non-creator rejected", func(t *testing.T) {
		title := "Hijacked"
		if _, err := Update(e, "guest", EventPatch{Title: &title}, testNow); !errors.Is(err, apperr.ErrNotAuthorized) {
			t.Errorf("Update() by non-creator error = %v, want ErrNotAuthorized", err)
		}
	})

	t.Run("creator edits descriptive fields", func(t *testing.T) {
		title := "Go Meetup v2"
		tags := []string{" go ", "", "meetup"}
		price := 12.5
		got, err := Update(e, "creator", EventPatch{Title: &title, Tags: &tags, Price: &price}, testNow.Add(time.Hour))
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.Title != title || got.Price != price || len(got.Tags) != 2 || got.Tags[0] != "go" {
			t.Errorf("Update() = %+v", got)
		}
		if e.Title != "Go Meetup" {
			t.Errorf("Update() mutated its input")
		}
		if len(got.Attendees) != 2 || got.CurrentAttendees != 2 {
			t.Errorf("Update() changed attendees: %+v", got.Attendees)
		}
	})

	t.Run("capacity below going count", func(t *testing.T) {
		max := 1
		_, err := Update(e, "creator", EventPatch{MaxAttendees: &max}, testNow)
		var verr *apperr.ValidationError
		if !errors.As(err, &verr) || !verr.Has("maxAttendees") {
			t.Errorf("Update() error = %v, want maxAttendees violation", err)
		}
	})

	t.Run("invalid patch lists every field", func(t *testing.T) {
		title, location := "x", ""
		_, err := Update(e, "creator", EventPatch{Title: &title, Location: &location}, testNow)
		var verr *apperr.ValidationError
		if !errors.As(err, &verr) || !verr.Has("title") || !verr.Has("location") {
			t.Errorf("Update() error = %v, want title and location violations", err)
		}
	})
}

func TestNewDateFormats(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"RFC 3339", "2026-07-01T18:00:00+02:00", time.Date(2026, 7, 1, 16, 0, 0, 0, time.UTC), false},
		{"Day only", "2026-07-01", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), false},
		{"Local datetime", "2026-07-01T18:30", time.Date(2026, 7, 1, 18, 30, 0, 0, time.UTC), false},
		{"Garbage", "next friday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Date = tt.raw
			e, err := New(in, "creator", testNow)
			if tt.wantErr {
				var verr *apperr.ValidationError
				if !errors.As(err, &verr) || !verr.Has("date") {
					t.Fatalf("New(%q) error = %v, want date violation", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("New(%q) error = %v", tt.raw, err)
			}
			if !e.Date.Equal(tt.want) {
				t.Errorf("New(%q).Date = %v, want %v", tt.raw, e.Date, tt.want)
			}
		})
	}
}

func TestNewBadDateListedWithOtherViolations(t *testing.T) {
	in := EventInput{Title: "ab", Date: "01/06/2030", Category: "party"}
	_, err := New(in, "creator", testNow)
	var verr *apperr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("New() error = %v, want ValidationError", err)
	}
	dates := 0
	for _, f := range verr.Fields {
		if f.Field == "date" {
			dates++
		}
	}
	if dates != 1 {
		t.Errorf("New() reported %d date violations, want 1: %+v", dates, verr.Fields)
	}
	for _, field := range []string{"title", "description", "location", "category"} {
		if !verr.Has(field) {
			t.Errorf("New() did not report %s; got %+v", field, verr.Fields)
		}
	}
}

func TestUpdateDate(t *testing.T) {
	e, err := New(validInput(), "creator", testNow)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	day := "2026-08-15"
	got, err := Update(e, "creator", EventPatch{Date: &day}, testNow)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if want := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Errorf("Update().Date = %v, want %v", got.Date, want)
	}

	bad := "soon"
	if _, err := Update(e, "creator", EventPatch{Date: &bad}, testNow); !errors.As(err, new(*apperr.ValidationError)) {
		t.Errorf("Update() with bad date error = %v, want ValidationError", err)
	}
}
