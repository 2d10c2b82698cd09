// Package auth provides the credential hasher and the session token codec
// used by the TaskKeeper server.
package auth

import (
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// SessionIDSize is the number of random bytes in a session identifier.
// The encoded identifier is twice as long (hex).
const SessionIDSize = 16

// Claims is the fixed payload shape of a signed session token. The JSON field
// names are part of the wire format and must not change.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"userId"`
	SessionID string `json:"tokenId"`
}

// IssueToken mints a signed session token for userID together with a fresh
// unguessable session identifier. The caller is expected to persist the
// session row; the token alone is not authoritative for revocation.
func IssueToken(userID string, secretKey []byte, validityDuration time.Duration) (string, string, error) {
	sessionID, err := common.MakeRandHexString(SessionIDSize)
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID:    userID,
		SessionID: sessionID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", "", err
	}

	return tokenString, sessionID, nil
}

// ParseToken checks the signature and expiry of a session token and returns
// its claims. Every failure mode (bad signature, structural corruption,
// expiry, missing claims) collapses into common.ErrInvalidToken so callers
// cannot leak which check failed.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if claims.UserID == "" || claims.SessionID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
