// Package repomanager wires concrete repository implementations to a shared
// storage backend and applies schema migrations on startup.
package repomanager

import (
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

// RepositoryManager exposes the repositories backed by one storage backend.
type RepositoryManager interface {
	Users() users.Repository
	Sessions() sessions.Repository
	Close() error
}
