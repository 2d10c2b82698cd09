package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// InMemoryRepository is a mutex-guarded Repository used in tests and for
// running the server without PostgreSQL.
type InMemoryRepository struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

// NewInMemoryRepository returns an empty in-memory session repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{sessions: make(map[string]*models.Session)}
}

func (r *InMemoryRepository) Create(ctx context.Context, userID string, tokenID string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.sessions[tokenID] = &models.Session{
		ID:        tokenID,
		UserID:    userID,
		TokenID:   tokenID,
		ExpiresAt: now.Add(validity),
		CreatedAt: now,
	}
	return nil
}

func (r *InMemoryRepository) IsValid(ctx context.Context, userID string, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[tokenID]
	if !ok {
		return false, nil
	}
	return s.UserID == userID && s.ExpiresAt.After(time.Now()), nil
}

func (r *InMemoryRepository) Revoke(ctx context.Context, tokenID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, tokenID)
	return nil
}

func (r *InMemoryRepository) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged int64
	now := time.Now()
	for id, s := range r.sessions {
		if !s.ExpiresAt.After(now) {
			delete(r.sessions, id)
			purged++
		}
	}
	return purged, nil
}
