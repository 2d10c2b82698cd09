package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
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

	q := `(?s)^\s*INSERT\s+INTO\s+users\s*\(id,\s*email,\s*name,\s*password_hash,\s*google_id\)`

	now := time.Now()
	rows := sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now)
	mock.ExpectQuery(q).
		WithArgs("u-1", "ana@example.com", "Ana", "digest", nil).
		WillReturnRows(rows)

	u := &models.User{ID: "u-1", Email: "ana@example.com", Name: "Ana", PasswordHash: "digest"}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != "u-1" || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^\s*INSERT\s+INTO\s+users`).
		WithArgs("u-1", "ana@example.com", "Ana", "digest", nil).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{ID: "u-1", Email: "ana@example.com", Name: "Ana", PasswordHash: "digest"})
	if err == nil {
		t.Fatalf("expected wrapped db error, got nil")
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*FROM\s+users\s+WHERE\s+email\s*=\s*\$1`

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "email", "name", "password_hash",
		"reset_token", "reset_token_expires", "google_id",
		"created_at", "updated_at",
	}).AddRow("u-1", "ana@example.com", "Ana", "digest", nil, nil, nil, now, now)
	mock.ExpectQuery(q).WithArgs("ana@example.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.ID != "u-1" || got.Email != "ana@example.com" || got.ResetToken != nil {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+.*FROM\s+users\s+WHERE\s+email`).
		WithArgs("nobody@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("expected common.ErrorNotFound, got %v", err)
	}
}

func TestSetResetToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	expires := time.Now().Add(time.Hour)
	mock.ExpectExec(`(?s)^\s*UPDATE\s+users\s+SET\s+reset_token\s*=\s*\$1`).
		WithArgs("tok", expires, "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.SetResetToken(context.Background(), "u-1", "tok", expires); err != nil {
		t.Fatalf("SetResetToken error: %v", err)
	}
}

func TestConsumeResetToken_MatchAndMiss(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+users\s+SET\s+password_hash\s*=\s*\$1,\s*reset_token\s*=\s*NULL`

	mock.ExpectExec(q).
		WithArgs("newhash", "ana@example.com", "tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	ok, err := repo.ConsumeResetToken(context.Background(), "ana@example.com", "tok", "newhash")
	if err != nil || !ok {
		t.Fatalf("expected success, got ok=%v err=%v", ok, err)
	}

	// Second consume with the same token finds no matching row.
	mock.ExpectExec(q).
		WithArgs("newhash", "ana@example.com", "tok").
		WillReturnResult(sqlmock.NewResult(0, 0))
	ok, err = repo.ConsumeResetToken(context.Background(), "ana@example.com", "tok", "newhash")
	if err != nil {
		t.Fatalf("ConsumeResetToken error: %v", err)
	}
	if ok {
		t.Fatalf("expected second consume to miss")
	}
}
