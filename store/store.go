// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/danielhkuo/safeweb/db"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Store runs the parameterized queries behind every view. Queries are written
// with ? placeholders and rebound for the active driver.
type Store struct {
	db *sqlx.DB
}

func New(conn *sql.DB, dbType string) (*Store, error) {
	driver, err := db.DriverName(dbType)
	if err != nil {
		return nil, err
	}
	return &Store{db: sqlx.NewDb(conn, driver)}, nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// now returns the current time truncated to the precision both dialects keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
