package database

import (
	"context"
	"errors"
	"time"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/models"
	"github.com/google/uuid"
)

// CreateSession issues a random bearer token for userID valid for ttl.
func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*models.Session, error) {
	sessionID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	session := &models.Session{
		Token:     sessionID.String(),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO sessions(token, user_id, expires_at, created_at) VALUES(?, ?, ?, ?)",
		session.Token, session.UserID, session.ExpiresAt, session.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return session, nil
}

// GetSessionUserID resolves a token to its user. Unknown and expired
// tokens both yield apperr.ErrUnauthenticated; expired ones are removed.
func (s *Store) GetSessionUserID(ctx context.Context, token string) (string, error) {
	var userID string
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM sessions WHERE token = ?", token).Scan(&userID, &expiresAt)
	if err != nil {
		if errors.Is(translate(err), apperr.ErrNotFound) {
			return "", apperr.ErrUnauthenticated
		}
		return "", err
	}
	if s.clock.Now().After(expiresAt) {
		if err := s.DeleteSession(ctx, token); err != nil {
			return "", err
		}
		return "", apperr.ErrUnauthenticated
	}
	return userID, nil
}

// DeleteSession forgets token. Deleting an unknown token is not an error.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	return err
}
