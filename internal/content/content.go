// internal/content/content.go
//
// Publicly-visible portfolio content.
//
// Context
// -------
// Every content entity carries a `hide_on_website` flag and soft-delete
// timestamp.  The resolver must never leak hidden or deleted rows into a
// public render context, so the visibility filter lives here in SQL, once
// per entity, rather than in the handlers.
//
// Notes
// -----
//   - All six entity queries share the same WHERE clause shape; keep them
//     in sync when adding columns.
package content

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Skill is one public skills row.
type Skill struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Level *int   `db:"level" json:"level,omitempty"`
}

// Project is one public projects row.
type Project struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description,omitempty"`
	URL         *string `db:"url" json:"url,omitempty"`
}

// Education is one public education row.
type Education struct {
	ID        int64      `db:"id" json:"id"`
	School    string     `db:"school" json:"school"`
	Degree    *string    `db:"degree" json:"degree,omitempty"`
	StartDate *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// Experience is one public experiences row.
type Experience struct {
	ID          int64      `db:"id" json:"id"`
	Company     string     `db:"company" json:"company"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	StartDate   *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time `db:"end_date" json:"end_date,omitempty"`
}

// Certification is one public certifications row.
type Certification struct {
	ID       int64      `db:"id" json:"id"`
	Name     string     `db:"name" json:"name"`
	Issuer   *string    `db:"issuer" json:"issuer,omitempty"`
	IssuedAt *time.Time `db:"issued_at" json:"issued_at,omitempty"`
}

// Publication is one public publications row.
type Publication struct {
	ID          int64      `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Publisher   *string    `db:"publisher" json:"publisher,omitempty"`
	URL         *string    `db:"url" json:"url,omitempty"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
}

// Public bundles everything a tenant shows on their site.
type Public struct {
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Education      []Education     `json:"education"`
	Experiences    []Experience    `json:"experiences"`
	Certifications []Certification `json:"certifications"`
	Publications   []Publication   `json:"publications"`
}

// Store wraps the platform DB pool with content queries.
type Store struct {
	db *sqlx.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sqlx.DB) *Store { return &Store{db: db} }

// Shared visibility filter; $1 is always user_id.
const visible = ` WHERE user_id = $1 AND hide_on_website = FALSE AND deleted_at IS NULL ORDER BY id`

// PublicByUserID gathers every visible content row for userID.  The six
// selects run sequentially on one pool connection; the result is small
// (a personal portfolio, not a feed).
func (s *Store) PublicByUserID(ctx context.Context, userID int64) (*Public, error) {
	pub := &Public{
		Skills:         []Skill{},
		Projects:       []Project{},
		Education:      []Education{},
		Experiences:    []Experience{},
		Certifications: []Certification{},
		Publications:   []Publication{},
	}

	steps := []struct {
		dest any
		q    string
	}{
		{&pub.Skills, `SELECT id, name, level FROM skills` + visible},
		{&pub.Projects, `SELECT id, title, description, url FROM projects` + visible},
		{&pub.Education, `SELECT id, school, degree, start_date, end_date FROM education` + visible},
		{&pub.Experiences, `SELECT id, company, title, description, start_date, end_date FROM experiences` + visible},
		{&pub.Certifications, `SELECT id, name, issuer, issued_at FROM certifications` + visible},
		{&pub.Publications, `SELECT id, title, publisher, url, published_at FROM publications` + visible},
	}
	for _, st := range steps {
		if err := s.db.SelectContext(ctx, st.dest, st.q, userID); err != nil {
			return nil, err
		}
	}
	return pub, nil
}
