// internal/profile/publish.go
//
// Publishing mutations: subdomain slug, custom domain, and sharing flags.
//
// Context
// -------
// The two sharing flags are mutually exclusive.  Every statement that can
// raise one flag lowers the other in the same UPDATE, so the invariant
// holds after any sequence of saves and toggles without application-level
// locking.
//
// Changing `personal_website_url` invalidates the old ownership proof:
// the same UPDATE resets `domain_verified` and clears the key pair.  The
// CASE guards keep a no-op save (same URL resubmitted) from destroying an
// existing verification; that path is rejected earlier with ErrSameURL.
package profile

import (
	"context"
	"errors"
)

// SaveWebsiteURL claims slug as the caller's subdomain and turns subdomain
// sharing on.  A slug held by another tenant yields ErrSlugTaken (the
// user-facing 409).  Reserved-name screening happens at the API layer,
// before the claim reaches the store.
func (s *Store) SaveWebsiteURL(ctx context.Context, userID int64, slug string) (*PublishState, error) {
	taken, err := s.slugHeldByOther(ctx, slug, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlugTaken
	}

	const q = `
        UPDATE profiles
        SET    website_url = $2,
               share_website = TRUE,
               share_personal_website = FALSE,
               updated_at = NOW()
        WHERE  user_id = $1
        RETURNING website_url, personal_website_url, share_website, share_personal_website`
	var st PublishState
	if err := s.db.GetContext(ctx, &st, q, userID, slug); err != nil {
		return nil, mapNoRows(err)
	}
	return &st, nil
}

// DeleteWebsiteURL releases the subdomain and turns subdomain sharing off.
func (s *Store) DeleteWebsiteURL(ctx context.Context, userID int64) (*PublishState, error) {
	const q = `
        UPDATE profiles
        SET    website_url = NULL,
               share_website = FALSE,
               updated_at = NOW()
        WHERE  user_id = $1
        RETURNING website_url, personal_website_url, share_website, share_personal_website`
	var st PublishState
	if err := s.db.GetContext(ctx, &st, q, userID); err != nil {
		return nil, mapNoRows(err)
	}
	return &st, nil
}

// ToggleShareWebsite sets the subdomain sharing flag.  Raising it lowers
// the personal flag in the same statement.
func (s *Store) ToggleShareWebsite(ctx context.Context, userID int64, share bool) (*PublishState, error) {
	const q = `
        UPDATE profiles
        SET    share_website = $2,
               share_personal_website = CASE WHEN $2 = TRUE THEN FALSE
                                             ELSE share_personal_website END,
               updated_at = NOW()
        WHERE  user_id = $1
        RETURNING website_url, personal_website_url, share_website, share_personal_website`
	var st PublishState
	if err := s.db.GetContext(ctx, &st, q, userID, share); err != nil {
		return nil, mapNoRows(err)
	}
	return &st, nil
}

// SavePersonalWebsiteURL claims domain as the caller's custom domain,
// turns personal sharing on, and—because the URL changed—resets the
// verification latch and clears the challenge pair.  Resubmitting the
// current URL is refused so an established verification is never wiped by
// a double-click.
func (s *Store) SavePersonalWebsiteURL(ctx context.Context, userID int64, domain string) (*PublishState, error) {
	cur, err := s.ByUserID(ctx, userID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if cur != nil && cur.PersonalWebsiteURL != nil && *cur.PersonalWebsiteURL == domain {
		return nil, ErrSameURL
	}

	const q = `
        UPDATE profiles
        SET    personal_website_url = $2,
               share_personal_website = TRUE,
               share_website = FALSE,
               domain_verified = FALSE,
               domain_key = NULL,
               domain_value = NULL,
               updated_at = NOW()
        WHERE  user_id = $1
        RETURNING website_url, personal_website_url, share_website, share_personal_website`
	var st PublishState
	if err := s.db.GetContext(ctx, &st, q, userID, domain); err != nil {
		return nil, mapNoRows(err)
	}
	return &st, nil
}

// DeletePersonalWebsiteURL releases the custom domain and clears every
// verification column.
func (s *Store) DeletePersonalWebsiteURL(ctx context.Context, userID int64) (*PublishState, error) {
	const q = `
        UPDATE profiles
        SET    personal_website_url = NULL,
               share_personal_website = FALSE,
               domain_verified = FALSE,
               domain_key = NULL,
               domain_value = NULL,
               updated_at = NOW()
        WHERE  user_id = $1
        RETURNING website_url, personal_website_url, share_website, share_personal_website`
	var st PublishState
	if err := s.db.GetContext(ctx, &st, q, userID); err != nil {
		return nil, mapNoRows(err)
	}
	return &st, nil
}

// ToggleSharePersonalWebsite sets the personal sharing flag.  Raising it
// lowers the subdomain flag in the same statement.
func (s *Store) ToggleSharePersonalWebsite(ctx context.Context, userID int64, share bool) (*PublishState, error) {
	const q = `
        UPDATE profiles
        SET    share_personal_website = $2,
               share_website = CASE WHEN $2 = TRUE THEN FALSE
                                    ELSE share_website END,
               updated_at = NOW()
        WHERE  user_id = $1
        RETURNING website_url, personal_website_url, share_website, share_personal_website`
	var st PublishState
	if err := s.db.GetContext(ctx, &st, q, userID, share); err != nil {
		return nil, mapNoRows(err)
	}
	return &st, nil
}

// slugHeldByOther reports whether slug is claimed by a different user.
func (s *Store) slugHeldByOther(ctx context.Context, slug string, userID int64) (bool, error) {
	const q = `SELECT 1 FROM profiles WHERE website_url = $1 AND user_id <> $2 LIMIT 1`
	var one int
	err := s.db.GetContext(ctx, &one, q, slug, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(mapNoRows(err), ErrNotFound) {
		return false, nil
	}
	return false, err
}
