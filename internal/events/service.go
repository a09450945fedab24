package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/clock"
	"github.com/eventhub-rsvp/app/internal/models"
)

// DefaultMaxAttempts bounds how often a write is re-applied after losing
// a version check.
const DefaultMaxAttempts = 3

// Store is the persistence the service needs. SaveEvent must write e and
// note atomically, and only if the stored version still equals
// expectedVersion; otherwise it returns apperr.ErrConflict. On success it
// sets e.Version to the new version.
type Store interface {
	CreateEvent(ctx context.Context, e *models.Event) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]*models.Event, error)
	ListEventsByCreator(ctx context.Context, userID string) ([]*models.Event, error)
	ListEventsAttending(ctx context.Context, userID string) ([]*models.Event, error)
	SaveEvent(ctx context.Context, e *models.Event, expectedVersion int64, note *models.Notification) error
	DeleteEvent(ctx context.Context, id string) error
}

// Service runs the event rules against a Store.
type Service struct {
	store       Store
	clock       clock.Clock
	logger      *slog.Logger
	maxAttempts int
}

// NewService creates a Service. maxAttempts < 1 selects DefaultMaxAttempts.
func NewService(store Store, clk clock.Clock, logger *slog.Logger, maxAttempts int) *Service {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, clock: clk, logger: logger, maxAttempts: maxAttempts}
}

// Create validates input and stores a new event with the creator attending.
func (s *Service) Create(ctx context.Context, creatorID string, input EventInput) (*models.Event, error) {
	e, err := New(input, creatorID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateEvent(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	s.logger.Info("Event created.", "event", e.ID, "creator", creatorID, "maxAttendees", e.MaxAttendees)
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.store.GetEvent(ctx, id)
}

// List returns the stored events matching f, ordered by date.
func (s *Service) List(ctx context.Context, f Filter) ([]*models.Event, error) {
	all, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return List(all, f, s.clock.Now()), nil
}

// Created returns the events userID created.
func (s *Service) Created(ctx context.Context, userID string) ([]*models.Event, error) {
	es, err := s.store.ListEventsByCreator(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list created events: %w", err)
	}
	return CreatedBy(es, userID), nil
}

// Attending returns the events where userID is going.
func (s *Service) Attending(ctx context.Context, userID string) ([]*models.Event, error) {
	es, err := s.store.ListEventsAttending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attending events: %w", err)
	}
	return AttendingAs(es, userID), nil
}

// Update applies a creator edit.
func (s *Service) Update(ctx context.Context, userID, id string, patch EventPatch) (*models.Event, error) {
	e, _, err := s.mutate(ctx, id, func(cur *models.Event) (*models.Event, *models.Notification, error) {
		next, err := Update(cur, userID, patch, s.clock.Now())
		return next, nil, err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Event updated.", "event", id, "version", e.Version)
	return e, nil
}

// Delete removes an event. Only its creator may do so.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	e, err := s.store.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if e.Creator != userID {
		return fmt.Errorf("delete event %s: %w", id, apperr.ErrNotAuthorized)
	}
	if err := s.store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Event deleted.", "event", id)
	return nil
}

// RSVP applies req to event id and persists the result together with
// any notification it raised.
func (s *Service) RSVP(ctx context.Context, id string, req RSVPRequest) (*models.Event, *models.Notification, error) {
	e, note, err := s.mutate(ctx, id, func(cur *models.Event) (*models.Event, *models.Notification, error) {
		return ApplyRSVP(cur, req, s.clock.Now())
	})
	if err != nil {
		s.logger.Debug("RSVP rejected.", "event", id, "user", req.UserID, "status", req.Status, "error", err)
		return nil, nil, err
	}
	s.logger.Info("RSVP recorded.", "event", id, "user", req.UserID, "status", req.Status,
		"currentAttendees", e.CurrentAttendees, "maxAttendees", e.MaxAttendees)
	return e, note, nil
}

// CancelRSVP removes userID's RSVP from event id.
func (s *Service) CancelRSVP(ctx context.Context, id, userID string) (*models.Event, error) {
	e, _, err := s.RSVP(ctx, id, RSVPRequest{UserID: userID, Status: models.RSVPStatusNotGoing})
	return e, err
}

// mutate is the read-modify-write loop behind every event write. A lost
// version check re-reads and re-applies fn; any other error ends the loop.
func (s *Service) mutate(ctx context.Context, id string, fn func(*models.Event) (*models.Event, *models.Notification, error)) (*models.Event, *models.Notification, error) {
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		cur, err := s.store.GetEvent(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		next, note, err := fn(cur)
		if err != nil {
			return nil, nil, err
		}
		err = s.store.SaveEvent(ctx, next, cur.Version, note)
		if err == nil {
			return next, note, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, nil, fmt.Errorf("failed to save event %s: %w", id, err)
		}
		lastErr = err
		s.logger.Warn("Event version moved, retrying.", "event", id, "attempt", attempt)
	}
	return nil, nil, lastErr
}
