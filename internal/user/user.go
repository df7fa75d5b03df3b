// internal/user/user.go
//
// Platform users.
//
// Context
// -------
// Identity arrives from the auth proxy as headers; this package owns the
// `users` table row behind them.  The gate calls FirstOrCreate on every
// authenticated request, so both paths are single-statement and cheap.
//
// Notes
// -----
//   - Usernames are unique; the upsert races resolve on that constraint.
package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no user row matches.
var ErrNotFound = errors.New("user: not found")

// Record mirrors one `users` row.
type Record struct {
	ID            int64     `db:"id"`
	Username      string    `db:"username"`
	Email         string    `db:"email"`
	Name          *string   `db:"name"`
	PremiumPlanID *int64    `db:"premium_plan_id"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

const recordColumns = `id, username, email, name, premium_plan_id, created_at, updated_at`

// Store wraps the platform DB pool with user queries.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// ByUsername fetches a user by their unique username.
func (s *Store) ByUsername(ctx context.Context, username string) (*Record, error) {
	const q = `SELECT ` + recordColumns + ` FROM users WHERE username = $1 LIMIT 1`
	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// FirstOrCreate returns the user for username, inserting a row with the
// proxy-supplied email and display name when absent.  A concurrent insert
// loses on the unique constraint and falls back to the fetch.
func (s *Store) FirstOrCreate(ctx context.Context, username, email, name string) (*Record, error) {
	rec, err := s.ByUsername(ctx, username)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	const q = `
        INSERT INTO users (username, email, name, created_at, updated_at)
        VALUES ($1, $2, NULLIF($3, ''), NOW(), NOW())
        RETURNING ` + recordColumns
	var created Record
	if err := s.db.GetContext(ctx, &created, q, username, email, name); err != nil {
		if existing, ferr := s.ByUsername(ctx, username); ferr == nil {
			return existing, nil
		}
		return nil, err
	}
	return &created, nil
}
