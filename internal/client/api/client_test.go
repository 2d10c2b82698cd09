package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *session.Cache {
	t.Helper()
	t.Chdir(t.TempDir())
	c, err := session.NewCache(".tk-test")
	require.NoError(t, err)
	return c
}

func TestLogin_StoresTokenAndAttachesBearer(t *testing.T) {
	cache := newTestCache(t)

	var seenAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "a@x.com", req["email"])
			require.Equal(t, "pw", req["password"])
			json.NewEncoder(w).Encode(authResponse{
				User:  User{ID: "u-1", Email: "a@x.com", Name: "Ana"},
				Token: "tok-123",
			})
		case "/api/auth/me":
			seenAuth = r.Header.Get("Authorization")
			json.NewEncoder(w).Encode(struct {
				User User `json:"user"`
			}{User: User{ID: "u-1", Email: "a@x.com", Name: "Ana"}})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, cache)
	ctx := context.Background()

	user, err := c.Login(ctx, "a@x.com", []byte("pw"))
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
	require.Equal(t, "tok-123", cache.Token())
	require.NotNil(t, cache.User())
	require.Equal(t, "Ana", cache.User().Name)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", me.Email)
	require.Equal(t, "Bearer tok-123", seenAuth)
}

func TestUnauthorizedResponse_ClearsCache(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.SetToken("stale-token"))
	cache.SetUser(&session.User{ID: "u-1", Email: "a@x.com", Name: "Ana"})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errorResponse{Error: "Not authenticated"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, cache)

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Contains(t, err.Error(), "Not authenticated")

	// The server said the session is dead, so the local cache dropped it.
	require.Equal(t, "", cache.Token())
	require.Nil(t, cache.User())
}

func TestNetworkError_KeepsCache(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.SetToken("still-good"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	c := NewClient(srv.URL, cache)

	_, err := c.Me(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)

	// A transport failure is not a verdict on the session.
	require.Equal(t, "still-good", cache.Token())
}

func TestRegister_StoresToken(t *testing.T) {
	cache := newTestCache(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(authResponse{
			User:  User{ID: "u-2", Email: "b@x.com", Name: "Bob"},
			Token: "tok-reg",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, cache)

	user, err := c.Register(context.Background(), "b@x.com", "Bob", []byte("pw"))
	require.NoError(t, err)
	require.Equal(t, "Bob", user.Name)
	require.Equal(t, "tok-reg", cache.Token())
}

func TestRegister_ConflictSurfacesServerMessage(t *testing.T) {
	cache := newTestCache(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: "Email already in use"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, cache)

	_, err := c.Register(context.Background(), "b@x.com", "Bob", []byte("pw"))
	require.EqualError(t, err, "Email already in use")
	require.Equal(t, "", cache.Token())
}

func TestLogout_ClearsCacheEvenWhenSessionAlreadyGone(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.SetToken("tok"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(errorResponse{Error: "Invalid token"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, cache)

	require.NoError(t, c.Logout(context.Background()))
	require.Equal(t, "", cache.Token())
}

func TestLogout_ClearsCacheOnNetworkFailureToo(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, cache.SetToken("tok"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, cache)

	err := c.Logout(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	// The user asked to log out; local state goes regardless of the server.
	require.Equal(t, "", cache.Token())
}

func TestPasswordResetCalls(t *testing.T) {
	cache := newTestCache(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/request-password-reset":
			json.NewEncoder(w).Encode(messageResponse{
				Message: "If an account with that email exists, you will receive a password reset link",
			})
		case "/api/auth/reset-password":
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "tok-reset", req["token"])
			require.Equal(t, "newpw", req["newPassword"])
			json.NewEncoder(w).Encode(messageResponse{Message: "Password has been reset successfully"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, cache)
	ctx := context.Background()

	msg, err := c.RequestPasswordReset(ctx, "a@x.com")
	require.NoError(t, err)
	require.Contains(t, msg, "password reset link")

	msg, err = c.ResetPassword(ctx, "a@x.com", "tok-reset", []byte("newpw"))
	require.NoError(t, err)
	require.Equal(t, "Password has been reset successfully", msg)
}
