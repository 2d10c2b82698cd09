package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, password_hash, reset_token, reset_token_expires, google_id, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash,
		&user.ResetToken, &user.ResetTokenExpires, &user.GoogleID,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new user row. The caller provides the ID.
// A unique-constraint violation on email is reported as common.ErrorConflict.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (id, email, name, password_hash, google_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.GoogleID).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// GetByID returns the user with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail returns the user with the given email (case-sensitive exact
// match), or common.ErrorNotFound.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByGoogleID returns the user linked to the given Google subject,
// or common.ErrorNotFound.
func (r *PostgresRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE google_id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, googleID))
}

// LinkGoogleID attaches a Google subject to an existing account.
func (r *PostgresRepository) LinkGoogleID(ctx context.Context, userID string, googleID string) error {
	query := `UPDATE users SET google_id = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, googleID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// SetResetToken stores a pending reset token for the user, replacing any
// prior one. At most one reset token is active per user at a time.
func (r *PostgresRepository) SetResetToken(ctx context.Context, userID string, token string, expires time.Time) error {
	query := `
		UPDATE users
		SET reset_token = $1, reset_token_expires = $2, updated_at = NOW()
		WHERE id = $3
	`
	if _, err := r.db.ExecContext(ctx, query, token, expires, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ConsumeResetToken atomically checks that a user with this email holds this
// exact unexpired token and, if so, updates the password hash and clears both
// reset fields. It reports false for every mismatch (expired, wrong token,
// unknown email) without distinguishing them. The single conditional UPDATE
// guarantees that of two concurrent calls with the same token at most one
// finds a matching row.
func (r *PostgresRepository) ConsumeResetToken(ctx context.Context, email string, token string, newPasswordHash string) (bool, error) {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_token_expires = NULL, updated_at = NOW()
		WHERE email = $2 AND reset_token = $3 AND reset_token_expires > NOW()
	`
	res, err := r.db.ExecContext(ctx, query, newPasswordHash, email, token)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected == 1, nil
}
