package repomanager

import (
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager backs the repositories with process-local maps.
// Useful for tests and for running the server without PostgreSQL.
type InMemoryRepositoryManager struct {
	users    *users.InMemoryRepository
	sessions *sessions.InMemoryRepository
}

// NewInMemoryRepositoryManager constructs an empty in-memory backend.
func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:    users.NewInMemoryRepository(),
		sessions: sessions.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Sessions() sessions.Repository {
	return m.sessions
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
