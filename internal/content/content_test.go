// internal/content/content_test.go
//
// Verifies the visibility filter is applied to every entity query.
//
// Run: go test ./internal/content -v

package content

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func TestPublicByUserIDFiltersVisibility(t *testing.T) {
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer raw.Close()
	s := NewStore(sqlx.NewDb(raw, "sqlmock"))

	filter := regexp.QuoteMeta(`WHERE user_id = $1 AND hide_on_website = FALSE AND deleted_at IS NULL ORDER BY id`)

	mock.ExpectQuery(`SELECT id, name, level FROM skills ` + filter).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "level"}).
			AddRow(1, "Go", 5).AddRow(2, "SQL", nil))
	mock.ExpectQuery(`SELECT id, title, description, url FROM projects ` + filter).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "url"}).
			AddRow(1, "folio", "site builder", nil))
	mock.ExpectQuery(`FROM education ` + filter).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "school", "degree", "start_date", "end_date"}))
	mock.ExpectQuery(`FROM experiences ` + filter).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company", "title", "description", "start_date", "end_date"}))
	mock.ExpectQuery(`FROM certifications ` + filter).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "issuer", "issued_at"}))
	mock.ExpectQuery(`FROM publications ` + filter).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "publisher", "url", "published_at"}))

	pub, err := s.PublicByUserID(context.Background(), 5)
	if err != nil {
		t.Fatalf("PublicByUserID error: %v", err)
	}
	if len(pub.Skills) != 2 || len(pub.Projects) != 1 {
		t.Fatalf("unexpected counts: %#v", pub)
	}
	if pub.Education == nil || pub.Publications == nil {
		t.Fatal("empty sections must be non-nil slices")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
