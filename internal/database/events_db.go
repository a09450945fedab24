package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/models"
)

const eventColumns = `id, title, description, event_date, location, category, image_url, tags,
	price, max_attendees, current_attendees, creator_id, status, version, created_at, updated_at`

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// CreateEvent inserts e and its initial attendees.
func (s *Store) CreateEvent(ctx context.Context, e *models.Event) error {
	tags, err := json.Marshal(nonNilTags(e.Tags))
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO events (`+eventColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.Title, e.Description, e.Date.UTC(), e.Location, string(e.Category), e.ImageURL, string(tags),
			e.Price, e.MaxAttendees, e.CurrentAttendees, e.Creator, string(e.Status), e.Version,
			e.CreatedAt.UTC(), e.UpdatedAt.UTC())
		if err != nil {
			return translate(err)
		}
		return replaceAttendees(ctx, tx, e)
	})
}

// GetEvent retrieves an event with its attendees in RSVP order.
func (s *Store) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM events WHERE id = ?", id)
	e, err := scanEvent(row)
	if err != nil {
		return nil, translate(err)
	}
	if err := s.attachAttendees(ctx, []*models.Event{e}); err != nil {
		return nil, err
	}
	if err := s.attachCreatorNames(ctx, []*models.Event{e}); err != nil {
		return nil, err
	}
	return e, nil
}

// ListEvents retrieves all events in insertion order.
func (s *Store) ListEvents(ctx context.Context) ([]*models.Event, error) {
	return s.queryEvents(ctx, "SELECT "+eventColumns+" FROM events ORDER BY seq ASC")
}

// ListEventsByCreator retrieves the events userID created, by date.
func (s *Store) ListEventsByCreator(ctx context.Context, userID string) ([]*models.Event, error) {
	return s.queryEvents(ctx,
		"SELECT "+eventColumns+" FROM events WHERE creator_id = ? ORDER BY event_date ASC, seq ASC", userID)
}

// ListEventsAttending retrieves the events where userID holds a going
// RSVP, by date.
func (s *Store) ListEventsAttending(ctx context.Context, userID string) ([]*models.Event, error) {
	return s.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE id IN (SELECT event_id FROM attendees WHERE user_id = ? AND status = ?)
		ORDER BY event_date ASC, seq ASC`, userID, string(models.RSVPStatusGoing))
}

// SaveEvent overwrites the stored event with e if its version is still
// expectedVersion, writing note in the same transaction. A moved version
// yields apperr.ErrConflict, a missing event apperr.ErrNotFound.
func (s *Store) SaveEvent(ctx context.Context, e *models.Event, expectedVersion int64, note *models.Notification) error {
	tags, err := json.Marshal(nonNilTags(e.Tags))
	if err != nil {
		return err
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE events SET
				title = ?, description = ?, event_date = ?, location = ?, category = ?, image_url = ?,
				tags = ?, price = ?, max_attendees = ?, current_attendees = ?, status = ?,
				version = version + 1, updated_at = ?
			WHERE id = ? AND version = ?`,
			e.Title, e.Description, e.Date.UTC(), e.Location, string(e.Category), e.ImageURL,
			string(tags), e.Price, e.MaxAttendees, e.CurrentAttendees, string(e.Status),
			e.UpdatedAt.UTC(), e.ID, expectedVersion)
		if err != nil {
			return translate(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var one int
			err := tx.QueryRowContext(ctx, "SELECT 1 FROM events WHERE id = ?", e.ID).Scan(&one)
			if err != nil {
				return translate(err)
			}
			return apperr.ErrConflict
		}

		if err := replaceAttendees(ctx, tx, e); err != nil {
			return err
		}
		if note != nil {
			return insertNotification(ctx, tx, note, s.clock.Now())
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.Version = expectedVersion + 1
	return nil
}

// DeleteEvent removes an event and its RSVP records.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM attendees WHERE event_id = ?", id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.ErrNotFound
		}
		return nil
	})
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if err := s.attachAttendees(ctx, events); err != nil {
		return nil, err
	}
	if err := s.attachCreatorNames(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

// attachAttendees loads the RSVP records of events in one query,
// populating usernames where the user is known.
func (s *Store) attachAttendees(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}
	byID := make(map[string]*models.Event, len(events))
	placeholders := make([]string, 0, len(events))
	args := make([]any, 0, len(events))
	for _, e := range events {
		e.Attendees = []models.Attendee{}
		byID[e.ID] = e
		placeholders = append(placeholders, "?")
		args = append(args, e.ID)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.event_id, a.user_id, COALESCE(u.username, ''), a.status, a.rsvp_date
		FROM attendees a
		LEFT JOIN users u ON u.id = a.user_id
		WHERE a.event_id IN (`+strings.Join(placeholders, ", ")+`)
		ORDER BY a.event_id, a.position ASC`, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var eventID string
		var a models.Attendee
		if err := rows.Scan(&eventID, &a.UserID, &a.Username, &a.Status, &a.RSVPDate); err != nil {
			return err
		}
		if e, ok := byID[eventID]; ok {
			e.Attendees = append(e.Attendees, a)
		}
	}
	return rows.Err()
}

// attachCreatorNames fills CreatorName for creators that still have an
// account.
func (s *Store) attachCreatorNames(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}
	byCreator := make(map[string][]*models.Event)
	args := make([]any, 0, len(events))
	for _, e := range events {
		if _, seen := byCreator[e.Creator]; !seen {
			args = append(args, e.Creator)
		}
		byCreator[e.Creator] = append(byCreator[e.Creator], e)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, username FROM users WHERE id IN ("+placeholders(len(args))+")", args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, username string
		if err := rows.Scan(&id, &username); err != nil {
			return err
		}
		for _, e := range byCreator[id] {
			e.CreatorName = username
		}
	}
	return rows.Err()
}

func replaceAttendees(ctx context.Context, q querier, e *models.Event) error {
	if _, err := q.ExecContext(ctx, "DELETE FROM attendees WHERE event_id = ?", e.ID); err != nil {
		return err
	}
	for i, a := range e.Attendees {
		_, err := q.ExecContext(ctx,
			"INSERT INTO attendees (event_id, user_id, status, rsvp_date, position) VALUES (?, ?, ?, ?, ?)",
			e.ID, a.UserID, string(a.Status), a.RSVPDate.UTC(), i)
		if err != nil {
			return fmt.Errorf("failed to store rsvp for user %s: %w", a.UserID, translate(err))
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*models.Event, error) {
	e := &models.Event{}
	var tags string
	var category, status string
	var date, createdAt, updatedAt time.Time
	err := row.Scan(&e.ID, &e.Title, &e.Description, &date, &e.Location, &category, &e.ImageURL, &tags,
		&e.Price, &e.MaxAttendees, &e.CurrentAttendees, &e.Creator, &status, &e.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("event %s has malformed tags: %w", e.ID, err)
	}
	e.Category = models.Category(category)
	e.Status = models.EventStatus(status)
	e.Date = date.UTC()
	e.CreatedAt = createdAt.UTC()
	e.UpdatedAt = updatedAt.UTC()
	return e, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
