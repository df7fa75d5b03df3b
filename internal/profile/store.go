// internal/profile/store.go
//
// Profile lookups used by the tenant resolver and the access gate.
//
// Context
// -------
// These helpers answer the resolver's ordered questions about an inbound
// host: is it a verified custom domain, a shared subdomain, or an access
// token?  Each lookup has a paired existence probe so the caller can tell
// "reserved but not public" apart from "no such tenant"—the distinction
// drives 404 versus logout-redirect at the gate.
//
// Workflow
// --------
//  1. Callers supply a *sqlx.DB connected to the platform database.
//  2. Each helper executes exactly one parameterised SELECT.
//  3. Rows are scanned into `profile.Record`; sql.ErrNoRows becomes
//     ErrNotFound so callers never import database/sql.
//
// Notes
// -----
//   - Column list matches the fields in `Record`; update both together.
//   - The custom-domain lookup joins the plan table at SQL level so the
//     pro-tier requirement cannot be forgotten by a caller.
package profile

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Sentinel errors shared by the store methods.
var (
	ErrNotFound    = errors.New("profile: not found")
	ErrSlugTaken   = errors.New("profile: website url already taken")
	ErrSameURL     = errors.New("profile: personal website url unchanged")
	ErrTokenExists = errors.New("profile: access token already exists")
)

const recordColumns = `
        id, user_id, name, website_url, personal_website_url,
        share_website, share_personal_website,
        domain_key, domain_value, domain_verified,
        access_token, created_at, updated_at`

// Store wraps the platform DB pool with profile queries.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// ByUserID fetches the profile owned by userID.
func (s *Store) ByUserID(ctx context.Context, userID int64) (*Record, error) {
	const q = `SELECT ` + recordColumns + ` FROM profiles WHERE user_id = $1 LIMIT 1`
	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, userID); err != nil {
		return nil, mapNoRows(err)
	}
	return &rec, nil
}

// Create inserts an empty profile for userID with the given display name.
func (s *Store) Create(ctx context.Context, userID int64, name string) (*Record, error) {
	const q = `
        INSERT INTO profiles (user_id, name, created_at, updated_at)
        VALUES ($1, $2, NOW(), NOW())
        RETURNING ` + recordColumns
	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, userID, name); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Ensure returns the profile for userID, creating it when absent.  The
// create path loses a race gracefully: a unique-violation insert falls
// back to the fetch.
func (s *Store) Ensure(ctx context.Context, userID int64, name string) (*Record, error) {
	rec, err := s.ByUserID(ctx, userID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	rec, err = s.Create(ctx, userID, name)
	if err != nil {
		// Concurrent create; the row exists now.
		if existing, ferr := s.ByUserID(ctx, userID); ferr == nil {
			return existing, nil
		}
		return nil, err
	}
	return rec, nil
}

// ByHostURL fetches the profile publishing hostURL as a custom domain.
// The join enforces pro tier and the personal sharing flag at SQL level;
// ownership verification is the caller's next step.
func (s *Store) ByHostURL(ctx context.Context, hostURL string) (*Record, error) {
	const q = `
        SELECT p.id, p.user_id, p.name, p.website_url, p.personal_website_url,
               p.share_website, p.share_personal_website,
               p.domain_key, p.domain_value, p.domain_verified,
               p.access_token, p.created_at, p.updated_at
        FROM   profiles p
        JOIN   users u         ON p.user_id = u.id
        JOIN   premium_plans pp ON u.premium_plan_id = pp.id
        WHERE  p.personal_website_url = $1
          AND  p.share_personal_website = TRUE
          AND  pp.key = 'pro'
        LIMIT  1`
	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, hostURL); err != nil {
		return nil, mapNoRows(err)
	}
	return &rec, nil
}

// ByWebsiteURL fetches the profile publishing slug as a shared subdomain.
func (s *Store) ByWebsiteURL(ctx context.Context, slug string) (*Record, error) {
	const q = `SELECT ` + recordColumns + `
        FROM profiles WHERE website_url = $1 AND share_website = TRUE LIMIT 1`
	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, slug); err != nil {
		return nil, mapNoRows(err)
	}
	return &rec, nil
}

// ByAccessToken fetches the profile whose access token matches the
// left-most host label.  Tokens only grant access while the personal
// sharing flag is on.
func (s *Store) ByAccessToken(ctx context.Context, token string) (*Record, error) {
	const q = `SELECT ` + recordColumns + `
        FROM profiles WHERE access_token = $1 AND share_personal_website = TRUE LIMIT 1`
	var rec Record
	if err := s.db.GetContext(ctx, &rec, q, token); err != nil {
		return nil, mapNoRows(err)
	}
	return &rec, nil
}

// PersonalDomainExists reports whether any profile row claims hostURL,
// regardless of sharing, plan, or verification state.
func (s *Store) PersonalDomainExists(ctx context.Context, hostURL string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM profiles WHERE personal_website_url = $1 LIMIT 1`, hostURL)
}

// SubdomainExists reports whether any profile row claims slug as its
// website_url, shared or not.
func (s *Store) SubdomainExists(ctx context.Context, slug string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM profiles WHERE website_url = $1 LIMIT 1`, slug)
}

// AccessTokenExists reports whether token is already assigned.
func (s *Store) AccessTokenExists(ctx context.Context, token string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM profiles WHERE access_token = $1 LIMIT 1`, token)
}

func (s *Store) exists(ctx context.Context, q, arg string) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one, q, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func mapNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
