package auth

import "golang.org/x/crypto/bcrypt"

// dummyPasswordHash is a well-formed bcrypt digest that no password of ours
// ever produced. Login runs verification against it when the email is unknown
// so that both failure paths cost the same.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword produces a bcrypt digest of the password with a per-call
// random salt embedded in the digest.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether password matches the bcrypt digest.
// Malformed digests and any internal error are reported as a mismatch,
// never as an exception a caller could mistake for success.
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// CheckDummyPassword burns the same work as a real verification.
// It always returns false.
func CheckDummyPassword(password string) bool {
	_ = CheckPassword(password, dummyPasswordHash)
	return false
}
