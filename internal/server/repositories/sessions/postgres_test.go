package sessions

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+user_sessions\s*\(user_id,\s*token_id,\s*expires_at\)`).
		WithArgs("u-1", "t-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), "u-1", "t-1", time.Hour); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestIsValid(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+EXISTS\s*\(\s*SELECT\s+1\s+FROM\s+user_sessions`

	mock.ExpectQuery(q).
		WithArgs("u-1", "t-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	valid, err := repo.IsValid(context.Background(), "u-1", "t-1")
	if err != nil || !valid {
		t.Fatalf("expected valid session, got valid=%v err=%v", valid, err)
	}

	mock.ExpectQuery(q).
		WithArgs("u-1", "t-gone").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	valid, err = repo.IsValid(context.Background(), "u-1", "t-gone")
	if err != nil {
		t.Fatalf("IsValid error: %v", err)
	}
	if valid {
		t.Fatalf("expected revoked session to be invalid")
	}
}

func TestIsValid_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*SELECT\s+EXISTS`).
		WithArgs("u-1", "t-1").
		WillReturnError(errors.New("db down"))

	_, err := repo.IsValid(context.Background(), "u-1", "t-1")
	if err == nil {
		t.Fatalf("expected wrapped db error, got nil")
	}
}

func TestRevoke_Idempotent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+user_sessions\s+WHERE\s+token_id\s*=\s*\$1`

	mock.ExpectExec(q).WithArgs("t-1").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.Revoke(context.Background(), "t-1"); err != nil {
		t.Fatalf("Revoke error: %v", err)
	}

	// Deleting an already-deleted row is not an error.
	mock.ExpectExec(q).WithArgs("t-1").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.Revoke(context.Background(), "t-1"); err != nil {
		t.Fatalf("second Revoke error: %v", err)
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*DELETE\s+FROM\s+user_sessions\s+WHERE\s+expires_at\s*<=\s*NOW\(\)`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := repo.DeleteExpired(context.Background())
	if err != nil {
		t.Fatalf("DeleteExpired error: %v", err)
	}
	if purged != 3 {
		t.Fatalf("expected 3 purged rows, got %d", purged)
	}
}
