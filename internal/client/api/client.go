// Package api is the HTTP client for the auth gateway. It speaks the JSON
// wire format of the /api/auth endpoints and keeps the session token cache in
// sync with the server's verdicts.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
)

var (
	// ErrUnavailable reports that the server could not be reached at all.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized reports that the server rejected the credentials or the
	// session token.
	ErrUnauthorized = errors.New("unauthorized")
)

// User is the account representation the server returns. It never carries
// credential material.
type User = session.User

type authResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client calls the auth gateway. Successful logins store the session token in
// the cache; a 401 from any call clears it (see authTransport).
type Client struct {
	baseURL string
	cache   *session.Cache
	http    *http.Client
}

// NewClient builds a client for the gateway at baseURL using cache for the
// session token.
func NewClient(baseURL string, cache *session.Cache) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		cache:   cache,
		http: &http.Client{
			Timeout:   10 * time.Second,
			Transport: newAuthTransport(cache, http.DefaultTransport),
		},
	}
}

// do sends one JSON request and decodes the response into out (when non-nil).
// Error bodies are surfaced as plain errors carrying the server's message;
// a 401 additionally matches ErrUnauthorized.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("request encode: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("request build: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var er errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		msg := er.Error
		if msg == "" {
			msg = resp.Status
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
		}
		return errors.New(msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("response decode: %w", err)
		}
	}
	return nil
}

// Register creates an account and stores the session token it returns.
func (c *Client) Register(ctx context.Context, email, name string, password []byte) (*User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"name":     name,
		"password": string(password),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetToken(resp.Token); err != nil {
		return nil, err
	}
	c.cache.SetUser(&resp.User)
	return &resp.User, nil
}

// Login authenticates with email and password and stores the session token.
func (c *Client) Login(ctx context.Context, email string, password []byte) (*User, error) {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": string(password),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetToken(resp.Token); err != nil {
		return nil, err
	}
	c.cache.SetUser(&resp.User)
	return &resp.User, nil
}

// Me returns the account behind the cached session token and refreshes the
// cached user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	c.cache.SetUser(&resp.User)
	return &resp.User, nil
}

// Logout revokes the session on the server and drops the local session state.
// The local state is cleared regardless of the server outcome; revocation is
// idempotent on the server side, so nothing is lost if the call failed.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	if clearErr := c.cache.Clear(); clearErr != nil {
		return clearErr
	}
	if err != nil && !errors.Is(err, ErrUnauthorized) {
		return err
	}
	return nil
}

// RequestPasswordReset asks the server to mail a reset link. The server's
// acknowledgement message is returned for display.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/request-password-reset", map[string]string{
		"email": email,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResetPassword completes a password reset with the emailed token.
func (c *Client) ResetPassword(ctx context.Context, email, token string, newPassword []byte) (string, error) {
	var resp messageResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"email":       email,
		"token":       token,
		"newPassword": string(newPassword),
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
