package models

import "time"

// RSVPStatus is a user's declared attendance on an event.
type RSVPStatus string

const (
	RSVPStatusGoing    RSVPStatus = "going"
	RSVPStatusMaybe    RSVPStatus = "maybe"
	RSVPStatusNotGoing RSVPStatus = "not_going"
)

func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPStatusGoing, RSVPStatusMaybe, RSVPStatusNotGoing:
		return true
	}
	return false
}

// Attendee is one RSVP record. At most one exists per (event, user).
type Attendee struct {
	UserID   string     `json:"user"`
	Username string     `json:"username,omitempty"` // populated on reads for display
	Status   RSVPStatus `json:"status"`
	RSVPDate time.Time  `json:"rsvpDate"`
}
