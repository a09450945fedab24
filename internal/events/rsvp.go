package events

import (
	"fmt"
	"time"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/models"
)

// RSVPRequest is one user's desired attendance. UserName only feeds the
// notification text; it falls back to UserID when empty.
type RSVPRequest struct {
	UserID   string
	UserName string
	Status   models.RSVPStatus
}

// ApplyRSVP computes the event that results from req. The input event
// is never modified; on error the caller's copy is still the state of
// record. A non-nil notification is returned when a user other than the
// creator ends up going.
func ApplyRSVP(e *models.Event, req RSVPRequest, now time.Time) (*models.Event, *models.Notification, error) {
	verr := &apperr.ValidationError{}
	if req.UserID == "" {
		verr.Add("user", "User is required")
	}
	if !req.Status.Valid() {
		verr.Add("status", fmt.Sprintf("%q is not a valid RSVP status", req.Status))
	}
	if err := verr.Err(); err != nil {
		return nil, nil, err
	}
	if e.HasPassed(now) {
		return nil, nil, fmt.Errorf("rsvp to event %s: %w", e.ID, apperr.ErrEventExpired)
	}

	next := e.Clone()
	idx := next.AttendeeFor(req.UserID)

	switch {
	case req.Status == models.RSVPStatusNotGoing:
		if idx >= 0 {
			next.Attendees = removeAt(next.Attendees, idx)
		}
	case idx >= 0 && next.Attendees[idx].Status == req.Status:
		// Same status again: keep the original record and position.
	default:
		alreadyGoing := idx >= 0 && next.Attendees[idx].Status == models.RSVPStatusGoing
		if req.Status == models.RSVPStatusGoing && next.IsFull() && !alreadyGoing {
			return nil, nil, fmt.Errorf("rsvp to event %s (%d/%d): %w",
				e.ID, e.CurrentAttendees, e.MaxAttendees, apperr.ErrCapacityExceeded)
		}
		if idx >= 0 {
			next.Attendees = removeAt(next.Attendees, idx)
		}
		next.Attendees = append(next.Attendees, models.Attendee{
			UserID:   req.UserID,
			Username: req.UserName,
			Status:   req.Status,
			RSVPDate: now,
		})
	}

	Recount(next)
	next.UpdatedAt = now

	var note *models.Notification
	if req.Status == models.RSVPStatusGoing && req.UserID != next.Creator {
		name := req.UserName
		if name == "" {
			name = req.UserID
		}
		note = &models.Notification{
			UserID:    next.Creator,
			EventID:   next.ID,
			Type:      models.NotificationRSVPConfirmation,
			Message:   fmt.Sprintf("%s RSVP'd to %s", name, next.Title),
			CreatedAt: now,
		}
	}
	return next, note, nil
}

// CancelRSVP removes userID's record. It is ApplyRSVP with not_going.
func CancelRSVP(e *models.Event, userID string, now time.Time) (*models.Event, error) {
	next, _, err := ApplyRSVP(e, RSVPRequest{UserID: userID, Status: models.RSVPStatusNotGoing}, now)
	return next, err
}

// CanAcceptRSVP reports whether ApplyRSVP would accept the transition.
func CanAcceptRSVP(e *models.Event, userID string, status models.RSVPStatus, now time.Time) bool {
	_, _, err := ApplyRSVP(e, RSVPRequest{UserID: userID, Status: status}, now)
	return err == nil
}

func removeAt(attendees []models.Attendee, i int) []models.Attendee {
	out := make([]models.Attendee, 0, len(attendees)-1)
	out = append(out, attendees[:i]...)
	return append(out, attendees[i+1:]...)
}
