// Package events holds the RSVP and capacity rules of the service: the
// event aggregate, the RSVP state transition and the list/filter
// projection. Everything except Service is pure given its inputs and an
// explicit "now".
package events

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/models"
	"github.com/google/uuid"
)

const (
	minTitleLen       = 3
	minDescriptionLen = 10

	// DefaultMaxAttendees applies when a create request omits capacity.
	DefaultMaxAttendees = 100
)

// EventInput carries the fields of a create request.
type EventInput struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Date         string             `json:"date"`
	Location     string             `json:"location"`
	Category     models.Category    `json:"category"`
	ImageURL     string             `json:"imageUrl"`
	Tags         []string           `json:"tags"`
	Price        float64            `json:"price"`
	MaxAttendees *int               `json:"maxAttendees"`
	Status       models.EventStatus `json:"status"`
}

// EventPatch carries a creator edit. Nil fields are left unchanged.
type EventPatch struct {
	Title        *string             `json:"title"`
	Description  *string             `json:"description"`
	Date         *string             `json:"date"`
	Location     *string             `json:"location"`
	Category     *models.Category    `json:"category"`
	ImageURL     *string             `json:"imageUrl"`
	Tags         *[]string           `json:"tags"`
	Price        *float64            `json:"price"`
	MaxAttendees *int                `json:"maxAttendees"`
	Status       *models.EventStatus `json:"status"`
}

// New validates input and builds an event owned by creatorID. The
// creator holds the first going RSVP.
func New(input EventInput, creatorID string, now time.Time) (*models.Event, error) {
	maxAttendees := DefaultMaxAttendees
	if input.MaxAttendees != nil {
		maxAttendees = *input.MaxAttendees
	}
	status := input.Status
	if status == "" {
		status = models.EventStatusPublished
	}
	verr := &apperr.ValidationError{}
	date := parseDateField(verr, input.Date)

	e := &models.Event{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Date:         date,
		Location:     strings.TrimSpace(input.Location),
		Category:     input.Category,
		ImageURL:     strings.TrimSpace(input.ImageURL),
		Tags:         cleanTags(input.Tags),
		Price:        input.Price,
		MaxAttendees: maxAttendees,
		Creator:      creatorID,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	validate(e, verr)
	if creatorID == "" {
		verr.Add("creator", "Creator is required")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	e.Attendees = []models.Attendee{{UserID: creatorID, Status: models.RSVPStatusGoing, RSVPDate: now}}
	Recount(e)
	return e, nil
}

// Update applies a creator edit to a copy of e. The id, creator and
// attendee list are never touched.
func Update(e *models.Event, userID string, patch EventPatch, now time.Time) (*models.Event, error) {
	if userID != e.Creator {
		return nil, fmt.Errorf("edit event %s: %w", e.ID, apperr.ErrNotAuthorized)
	}

	verr := &apperr.ValidationError{}
	next := e.Clone()
	if patch.Title != nil {
		next.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Date != nil {
		next.Date = parseDateField(verr, *patch.Date)
	}
	if patch.Location != nil {
		next.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.Category != nil {
		next.Category = *patch.Category
	}
	if patch.ImageURL != nil {
		next.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.Tags != nil {
		next.Tags = cleanTags(*patch.Tags)
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.MaxAttendees != nil {
		next.MaxAttendees = *patch.MaxAttendees
	}
	if patch.Status != nil {
		next.Status = *patch.Status
	}

	Recount(next)
	validate(next, verr)
	if next.MaxAttendees >= 1 && next.MaxAttendees < next.CurrentAttendees {
		verr.Add("maxAttendees", fmt.Sprintf("Maximum attendees cannot be less than current attendees (%d)", next.CurrentAttendees))
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}
	next.UpdatedAt = now
	return next, nil
}

// Recount recomputes the derived going count. Every mutation path
// calls it before handing the event back.
func Recount(e *models.Event) {
	n := 0
	for _, a := range e.Attendees {
		if a.Status == models.RSVPStatusGoing {
			n++
		}
	}
	e.CurrentAttendees = n
}

// dateLayouts are the accepted event date formats. A bare day is
// midnight UTC.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04", "2006-01-02"}

// ParseDate reads an event date in any of dateLayouts.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// parseDateField parses raw, recording a "date" violation on verr when
// raw is present but unreadable. An empty raw yields the zero time.
func parseDateField(verr *apperr.ValidationError, raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	t, err := ParseDate(raw)
	if err != nil {
		verr.Add("date", "Date must be YYYY-MM-DD or an RFC 3339 timestamp")
	}
	return t
}

// validate adds e's violations to verr, skipping fields verr already
// reports.
func validate(e *models.Event, verr *apperr.ValidationError) {
	switch {
	case e.Title == "":
		verr.Add("title", "Title is required")
	case utf8.RuneCountInString(e.Title) < minTitleLen:
		verr.Add("title", fmt.Sprintf("Title must be at least %d characters", minTitleLen))
	}
	switch {
	case e.Description == "":
		verr.Add("description", "Description is required")
	case utf8.RuneCountInString(e.Description) < minDescriptionLen:
		verr.Add("description", fmt.Sprintf("Description must be at least %d characters", minDescriptionLen))
	}
	if e.Date.IsZero() && !verr.Has("date") {
		verr.Add("date", "Date is required")
	}
	if e.Location == "" {
		verr.Add("location", "Location is required")
	}
	switch {
	case e.Category == "":
		verr.Add("category", "Category is required")
	case !e.Category.Valid():
		verr.Add("category", fmt.Sprintf("%s is not a valid category", e.Category))
	}
	if e.MaxAttendees < 1 {
		verr.Add("maxAttendees", "Maximum attendees must be at least 1")
	}
	if e.Price < 0 {
		verr.Add("price", "Price cannot be negative")
	}
	if !e.Status.Valid() {
		verr.Add("status", fmt.Sprintf("%s is not a valid status", e.Status))
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
