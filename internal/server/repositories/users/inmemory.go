package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// InMemoryRepository is a mutex-guarded Repository used in tests and for
// running the server without PostgreSQL. The single lock gives the same
// atomicity for ConsumeResetToken that the conditional UPDATE gives in SQL.
type InMemoryRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
}

// NewInMemoryRepository returns an empty in-memory user repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*models.User)}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, common.ErrorConflict
		}
	}

	now := time.Now()
	stored := cloneUser(user)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.users[stored.ID] = stored

	return cloneUser(stored), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.GoogleID != nil && *u.GoogleID == googleID {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *InMemoryRepository) LinkGoogleID(ctx context.Context, userID string, googleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	id := googleID
	u.GoogleID = &id
	u.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) SetResetToken(ctx context.Context, userID string, token string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return common.ErrorNotFound
	}
	t := token
	e := expires
	u.ResetToken = &t
	u.ResetTokenExpires = &e
	u.UpdatedAt = time.Now()
	return nil
}

func (r *InMemoryRepository) ConsumeResetToken(ctx context.Context, email string, token string, newPasswordHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email != email {
			continue
		}
		if u.ResetToken == nil || u.ResetTokenExpires == nil {
			return false, nil
		}
		if *u.ResetToken != token || !u.ResetTokenExpires.After(time.Now()) {
			return false, nil
		}
		u.PasswordHash = newPasswordHash
		u.ResetToken = nil
		u.ResetTokenExpires = nil
		u.UpdatedAt = time.Now()
		return true, nil
	}
	return false, nil
}
