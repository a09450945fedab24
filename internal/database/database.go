package database

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/eventhub-rsvp/app/internal/apperr"
	"github.com/eventhub-rsvp/app/internal/clock"
	"github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// InitDB opens the SQLite database named by dataSourceName and applies
// the schema. In-memory databases are pinned to a single connection so
// every query sees the same data.
func InitDB(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, err
	}
	if strings.Contains(dataSourceName, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err = loadSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func loadSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Store implements the persistence used by the event service and the
// HTTP layer on top of one *sql.DB.
type Store struct {
	db    *sql.DB
	clock clock.Clock
	cost  int // bcrypt cost, zero means bcrypt.DefaultCost
}

// NewStore wraps db. clk stamps users, sessions and notifications and
// decides session expiry; nil selects clock.Real().
func NewStore(db *sql.DB, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.Real()
	}
	return &Store{db: db, clock: clk}
}

// DB exposes the underlying handle, mainly for tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// translate maps driver errors onto the apperr taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.ErrNotFound
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", apperr.ErrDuplicate, err)
	}
	return err
}
