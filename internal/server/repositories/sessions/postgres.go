package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
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

// Create inserts a session row for userID with an expiry of now+validity.
func (r *PostgresRepository) Create(ctx context.Context, userID string, tokenID string, validity time.Duration) error {
	query := `
		INSERT INTO user_sessions (user_id, token_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, userID, tokenID, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// IsValid reports whether a live session row exists for the exact
// (user, token) pair. The existence probe runs as one statement so there is
// no read-then-act window under concurrent requests.
func (r *PostgresRepository) IsValid(ctx context.Context, userID string, tokenID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM user_sessions
			WHERE user_id = $1 AND token_id = $2 AND expires_at > NOW()
		)
	`
	var valid bool
	if err := r.db.QueryRowContext(ctx, query, userID, tokenID).Scan(&valid); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return valid, nil
}

// Revoke deletes the session row for tokenID. Deleting a row that is already
// gone is a no-op.
func (r *PostgresRepository) Revoke(ctx context.Context, tokenID string) error {
	query := `
		DELETE FROM user_sessions
		WHERE token_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, tokenID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// DeleteExpired removes lapsed session rows and returns how many were purged.
// Expired rows are already excluded from IsValid, so this sweep is storage
// maintenance, not a correctness requirement.
func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM user_sessions
		WHERE expires_at <= NOW()
	`
	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return affected, nil
}
