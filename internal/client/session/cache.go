// Package session caches the client's session token between runs. The token
// is the only persisted piece of session state; user details are fetched from
// the server when needed.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/taskkeeper/internal/filex"
)

const tokenFileName = "token"

// User is the signed-in account as the server last reported it. It is held in
// memory only; a new process fetches it again.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Cache stores the bearer token and the current user. The token is mirrored
// to a file so a new process picks up the previous session; the user is
// memory-only. All methods are safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	path  string
	token string
	user  *User
}

// NewCache ensures dirName exists under the working directory and loads any
// previously saved token from it. A missing or unreadable token file simply
// means no session.
func NewCache(dirName string) (*Cache, error) {
	dir, err := filex.EnsureDir(dirName)
	if err != nil {
		return nil, fmt.Errorf("token dir: %w", err)
	}

	c := &Cache{path: filepath.Join(dir, tokenFileName)}
	if data, err := os.ReadFile(c.path); err == nil {
		c.token = strings.TrimSpace(string(data))
	}
	return c, nil
}

// Token returns the cached token, or "" when the client has no session.
func (c *Cache) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetToken stores the token in memory and on disk. The file is readable by
// the owner only.
func (c *Cache) SetToken(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = token
	if err := os.WriteFile(c.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("token write: %w", err)
	}
	return nil
}

// SetUser stores the current user in memory.
func (c *Cache) SetUser(u *User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = u
}

// User returns the cached user, or nil when none is known.
func (c *Cache) User() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user
}

// Clear drops the session, token and user alike, from memory and disk.
// Clearing an empty cache is a no-op.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = ""
	c.user = nil
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("token remove: %w", err)
	}
	return nil
}
