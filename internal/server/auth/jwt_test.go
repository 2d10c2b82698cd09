package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

func TestIssueAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	userID := "user-123"

	tok, sessionID, err := IssueToken(userID, secret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}
	if len(sessionID) != SessionIDSize*2 {
		t.Fatalf("expected session id of %d hex chars, got %d", SessionIDSize*2, len(sessionID))
	}

	claims, err := ParseToken(tok, secret)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("userID mismatch: got %q want %q", claims.UserID, userID)
	}
	if claims.SessionID != sessionID {
		t.Fatalf("sessionID mismatch: got %q want %q", claims.SessionID, sessionID)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatalf("expected iat and exp to be set")
	}
}

func TestIssueToken_FreshSessionIDs(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	_, a, err := IssueToken("u1", secret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}
	_, b, err := IssueToken("u1", secret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}
	if a == b {
		t.Fatalf("two issued session ids are identical")
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, _, err := IssueToken("u1", secret, -1*time.Second)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	_, err = ParseToken(tok, secret)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := IssueToken("u2", []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("IssueToken error: %v", err)
	}

	_, err = ParseToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken for bad signature, got %v", err)
	}
}

func TestParseToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken for malformed token, got %v", err)
	}
}
