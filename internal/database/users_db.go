package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser hashes the password and inserts a new user. A taken
// username or email yields apperr.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost())
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     strings.TrimSpace(username),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hashedPassword),
		CreatedAt:    s.clock.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users(id, username, email, password_hash, created_at) VALUES(?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at FROM users WHERE email = ?",
		strings.ToLower(strings.TrimSpace(email)))
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	row := s.db.QueryRowContext(ctx,
		"SELECT id, username, email, password_hash, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// VerifyPassword compares a stored hashed password with a plaintext password.
func VerifyPassword(hashedPassword string, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return apperr.ErrUnauthenticated
	}
	return nil
}

// SetBcryptCost overrides the hashing cost used by CreateUser.
func (s *Store) SetBcryptCost(cost int) {
	s.cost = cost
}

func (s *Store) bcryptCost() int {
	if s.cost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	return s.cost
}

// ProfileUpdate holds the account fields a user may change. Empty fields
// are left as they are.
type ProfileUpdate struct {
	Username    string
	Email       string
	NewPassword string
}

// UpdateProfile applies upd to userID and returns the stored user. A
// username or email held by someone else yields apperr.ErrDuplicate.
func (s *Store) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(upd.Username); v != "" {
		user.Username = v
	}
	if v := strings.ToLower(strings.TrimSpace(upd.Email)); v != "" {
		user.Email = v
	}
	if upd.NewPassword != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(upd.NewPassword), s.bcryptCost())
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hashedPassword)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE users SET username = ?, email = ?, password_hash = ? WHERE id = ?",
		user.Username, user.Email, user.PasswordHash, user.ID)
	if err != nil {
		return nil, translate(err)
	}
	return user, nil
}

// AccountRemoval summarises what DeleteUser removed.
type AccountRemoval struct {
	EventsDeleted  int
	RSVPsWithdrawn int
}

// DeleteUser removes userID in one transaction together with the events
// they created, their RSVPs on other events, their sessions and their
// notifications. Every event that loses an RSVP is recounted and its
// version bumped so concurrent writers see the change.
func (s *Store) DeleteUser(ctx context.Context, userID string) (AccountRemoval, error) {
	var removal AccountRemoval
	now := s.clock.Now().UTC()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", userID).Scan(&one); err != nil {
			return translate(err)
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT DISTINCT a.event_id FROM attendees a
			JOIN events e ON e.id = a.event_id
			WHERE a.user_id = ? AND e.creator_id != ?`, userID, userID)
		if err != nil {
			return err
		}
		var touched []any
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			touched = append(touched, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			DELETE FROM attendees
			WHERE event_id IN (SELECT id FROM events WHERE creator_id = ?)`, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM events WHERE creator_id = ?", userID)
		if err != nil {
			return err
		}
		deleted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removal.EventsDeleted = int(deleted)

		res, err = tx.ExecContext(ctx, "DELETE FROM attendees WHERE user_id = ?", userID)
		if err != nil {
			return err
		}
		withdrawn, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removal.RSVPsWithdrawn = int(withdrawn)

		if len(touched) > 0 {
			args := append([]any{string(models.RSVPStatusGoing), now}, touched...)
			_, err := tx.ExecContext(ctx, `
				UPDATE events SET
					current_attendees = (SELECT COUNT(*) FROM attendees a WHERE a.event_id = events.id AND a.status = ?),
					version = version + 1,
					updated_at = ?
				WHERE id IN (`+placeholders(len(touched))+`)`, args...)
			if err != nil {
				return err
			}
		}

		for _, q := range []string{
			"DELETE FROM sessions WHERE user_id = ?",
			"DELETE FROM notifications WHERE user_id = ?",
			"DELETE FROM users WHERE id = ?",
		} {
			if _, err := tx.ExecContext(ctx, q, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return AccountRemoval{}, err
	}
	return removal, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
