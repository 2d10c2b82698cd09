// Package users provides repositories for account records, including the
// password-reset token lifecycle.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository is the persistence contract for user accounts.
//
// ConsumeResetToken must be atomic with respect to concurrent calls with the
// same token: at most one call may observe success.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	LinkGoogleID(ctx context.Context, userID string, googleID string) error
	SetResetToken(ctx context.Context, userID string, token string, expires time.Time) error
	ConsumeResetToken(ctx context.Context, email string, token string, newPasswordHash string) (bool, error)
}
