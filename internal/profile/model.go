// internal/profile/model.go
//
// `profiles` table row model.
//
// Context
// -------
// One profile row per platform user.  The publishing state is captured by
// two nullable URL columns plus two sharing flags, with the invariant that
// at most one sharing flag is true at any time (enforced in SQL by the
// toggle and save statements, never in application code).
//
// Domain verification lives in three columns: the challenge name
// (`domain_key`), the secret (`domain_value`), and the one-way latch
// (`domain_verified`).  Changing `personal_website_url` clears all three.
//
// Schema reference (2025-08-12)
//
//	CREATE TABLE profiles (
//	    id                     BIGSERIAL PRIMARY KEY,
//	    user_id                BIGINT NOT NULL UNIQUE REFERENCES users(id),
//	    name                   TEXT NOT NULL DEFAULT '',
//	    website_url            TEXT UNIQUE,
//	    personal_website_url   TEXT UNIQUE,
//	    share_website          BOOLEAN NOT NULL DEFAULT FALSE,
//	    share_personal_website BOOLEAN NOT NULL DEFAULT FALSE,
//	    domain_key             TEXT,
//	    domain_value           TEXT,
//	    domain_verified        BOOLEAN NOT NULL DEFAULT FALSE,
//	    access_token           TEXT UNIQUE,
//	    created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
// Notes
// -----
// • Nullable text columns are `*string`; callers must nil-check before use.
// • This struct contains no behaviour—pure data model for sqlx scans.
package profile

import "time"

// Record mirrors one row in the `profiles` table.
type Record struct {
	ID                   uint64    `db:"id"`
	UserID               int64     `db:"user_id"`
	Name                 string    `db:"name"`
	WebsiteURL           *string   `db:"website_url"`
	PersonalWebsiteURL   *string   `db:"personal_website_url"`
	ShareWebsite         bool      `db:"share_website"`
	SharePersonalWebsite bool      `db:"share_personal_website"`
	DomainKey            *string   `db:"domain_key"`
	DomainValue          *string   `db:"domain_value"`
	DomainVerified       bool      `db:"domain_verified"`
	AccessToken          *string   `db:"access_token"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

// PublishState is the typed result returned by the publishing mutations,
// mirroring the RETURNING clause they share.
type PublishState struct {
	WebsiteURL           *string `db:"website_url" json:"website_url"`
	PersonalWebsiteURL   *string `db:"personal_website_url" json:"personal_website_url"`
	ShareWebsite         bool    `db:"share_website" json:"share_website"`
	SharePersonalWebsite bool    `db:"share_personal_website" json:"share_personal_website"`
}

// DomainState carries the verification columns consumed by the settings
// page and the ownership verifier.
type DomainState struct {
	PersonalWebsiteURL *string `db:"personal_website_url"`
	DomainKey          *string `db:"domain_key"`
	DomainValue        *string `db:"domain_value"`
	DomainVerified     bool    `db:"domain_verified"`
}
