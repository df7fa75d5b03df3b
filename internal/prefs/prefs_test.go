// internal/prefs/prefs_test.go
//
// Unit-tests for the preference upsert and joined fetch using sqlmock.
//
// Run: go test ./internal/prefs -v

package prefs

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return NewStore(sqlx.NewDb(raw, "sqlmock")), mock
}

func TestSaveUpserts(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO user_templates (user_id, template_id, color_id, created_at, updated_at) VALUES ($1, $2, $3, NOW(), NOW()) ON CONFLICT (user_id) DO UPDATE SET template_id = $2, color_id = $3, updated_at = NOW()`,
	)).
		WithArgs(int64(5), int64(2), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Save(context.Background(), 5, 2, 9); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestActiveByUserID(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery("SELECT t.id").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"template_id", "template_identifier", "color_id",
			"primary_color", "secondary_color", "background_color", "text_color",
		}).AddRow(2, "minimal", 9, "#111111", "#444444", "#ffffff", "#000000"))

	a, err := s.ActiveByUserID(context.Background(), 5)
	if err != nil {
		t.Fatalf("ActiveByUserID error: %v", err)
	}
	if a.TemplateIdentifier != "minimal" || a.Primary != "#111111" {
		t.Fatalf("unexpected result: %#v", a)
	}
}

func TestActiveByUserIDMissing(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery("SELECT t.id").
		WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"template_id"}))

	_, err := s.ActiveByUserID(context.Background(), 6)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
