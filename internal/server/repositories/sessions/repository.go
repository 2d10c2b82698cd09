// Package sessions provides repositories for the server-side table of live
// sessions. A session row is the authority for revocation: a token whose
// signature still verifies is rejected once its row is gone.
package sessions

import (
	"context"
	"time"
)

// Repository is the persistence contract for live sessions.
//
// IsValid must be a single atomic existence check so that concurrent requests
// cannot race a read-then-act window. Revoke is idempotent: deleting a
// non-existent row is not an error. Multiple sessions per user may coexist;
// revoking one must not affect the others.
type Repository interface {
	Create(ctx context.Context, userID string, tokenID string, validity time.Duration) error
	IsValid(ctx context.Context, userID string, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
