package models

import "time"

// Category is the closed set of event kinds.
type Category string

const (
	CategoryConference Category = "conference"
	CategoryWorkshop   Category = "workshop"
	CategorySeminar    Category = "seminar"
	CategoryConcert    Category = "concert"
	CategorySports     Category = "sports"
	CategoryOther      Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryConference,
	CategoryWorkshop,
	CategorySeminar,
	CategoryConcert,
	CategorySports,
	CategoryOther,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled:
		return true
	}
	return false
}

// Event is the aggregate the RSVP logic operates on.
type Event struct {
	ID               string      `json:"id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Date             time.Time   `json:"date"`
	Location         string      `json:"location"`
	Category         Category    `json:"category"`
	ImageURL         string      `json:"imageUrl"`
	Tags             []string    `json:"tags"`
	Price            float64     `json:"price"`
	MaxAttendees     int         `json:"maxAttendees"`
	CurrentAttendees int         `json:"currentAttendees"` // derived, see events.Recount
	Creator          string      `json:"creator"`
	CreatorName      string      `json:"creatorName,omitempty"` // read-only, filled from users
	Attendees        []Attendee  `json:"attendees"`
	Status           EventStatus `json:"status"`
	Version          int64       `json:"version"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// IsFull reports whether the going count has reached capacity.
func (e *Event) IsFull() bool {
	return e.CurrentAttendees >= e.MaxAttendees
}

// HasPassed reports whether the event date lies before now.
func (e *Event) HasPassed(now time.Time) bool {
	return now.After(e.Date)
}

// AttendeeFor returns the index of userID's RSVP record, or -1.
func (e *Event) AttendeeFor(userID string) int {
	for i, a := range e.Attendees {
		if a.UserID == userID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so transitions never alias the caller's slices.
func (e *Event) Clone() *Event {
	c := *e
	if e.Tags != nil {
		c.Tags = make([]string, len(e.Tags))
		copy(c.Tags, e.Tags)
	}
	if e.Attendees != nil {
		c.Attendees = make([]Attendee, len(e.Attendees))
		copy(c.Attendees, e.Attendees)
	}
	return &c
}
