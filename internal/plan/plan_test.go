// internal/plan/plan_test.go
//
// Unit-tests for plan tier lookup using sqlmock.
//
// Run: go test ./internal/plan -v

package plan

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

const tierQuery = `SELECT pp.key FROM users u JOIN premium_plans pp ON u.premium_plan_id = pp.id WHERE u.id = $1`

func TestByUser(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(tierQuery)).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("pro"))

	got, err := ByUser(context.Background(), db, 7)
	if err != nil {
		t.Fatalf("ByUser error: %v", err)
	}
	if got != Pro {
		t.Fatalf("tier = %v, want Pro", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestByUserWithoutPlanIsBasic(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(tierQuery)).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"key"}))

	got, err := ByUser(context.Background(), db, 8)
	if err != nil {
		t.Fatalf("ByUser error: %v", err)
	}
	if got != Basic {
		t.Fatalf("tier = %v, want Basic", got)
	}
}

func TestRequire(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(tierQuery)).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("plus"))

	err := Require(context.Background(), db, 9, Pro)
	if !errors.Is(err, ErrTierRequired) {
		t.Fatalf("expected ErrTierRequired, got %v", err)
	}
}

func TestTierOrdering(t *testing.T) {
	if !(Basic < Plus && Plus < Pro) {
		t.Fatal("tier ladder out of order")
	}
	if ParseTier("unknown") != Basic {
		t.Fatal("unknown plan key must map to Basic")
	}
}
