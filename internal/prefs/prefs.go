// internal/prefs/prefs.go
//
// Rendering preferences.
//
// Context
// -------
// A user picks one visual template and one color scheme; `user_templates`
// holds exactly one active row per user linking the two.  Save is an
// upsert keyed on user_id, Active is a three-way join resolving the
// template identifier and the palette hex values the renderer needs.
package prefs

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a user has no preference row yet.
var ErrNotFound = errors.New("prefs: not found")

// Selection is the raw user_templates row.
type Selection struct {
	UserID     int64 `db:"user_id"`
	TemplateID int64 `db:"template_id"`
	ColorID    int64 `db:"color_id"`
}

// Active is a resolved selection: the template identifier the renderer
// loads by name, plus the chosen palette.
type Active struct {
	TemplateID         int64  `db:"template_id" json:"template_id"`
	TemplateIdentifier string `db:"template_identifier" json:"template_identifier"`
	ColorID            int64  `db:"color_id" json:"color_id"`
	Primary            string `db:"primary_color" json:"primary_color"`
	Secondary          string `db:"secondary_color" json:"secondary_color"`
	Background         string `db:"background_color" json:"background_color"`
	Text               string `db:"text_color" json:"text_color"`
}

// Store wraps the platform DB pool with preference queries.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// Save upserts the single active preference row for userID.
func (s *Store) Save(ctx context.Context, userID, templateID, colorID int64) error {
	const q = `
        INSERT INTO user_templates (user_id, template_id, color_id, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        ON CONFLICT (user_id)
        DO UPDATE SET template_id = $2, color_id = $3, updated_at = NOW()`
	_, err := s.db.ExecContext(ctx, q, userID, templateID, colorID)
	return err
}

// ActiveByUserID resolves the user's selection into identifiers and
// palette values.
func (s *Store) ActiveByUserID(ctx context.Context, userID int64) (*Active, error) {
	const q = `
        SELECT t.id   AS template_id,
               t.identifier AS template_identifier,
               c.id   AS color_id,
               c.primary_color, c.secondary_color, c.background_color, c.text_color
        FROM   user_templates ut
        JOIN   templates t ON ut.template_id = t.id
        JOIN   colors    c ON ut.color_id = c.id
        WHERE  ut.user_id = $1
        LIMIT  1`
	var a Active
	if err := s.db.GetContext(ctx, &a, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
