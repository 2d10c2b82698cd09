// Package users implements the authentication domain logic: registration,
// login (password and Google), logout, identity queries and the
// password-reset flow. The HTTP layer maps the sentinel errors returned here
// to wire statuses.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/mail"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/oauth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
	"github.com/google/uuid"
)

// resetTokenSize is the number of random bytes in a reset secret.
const resetTokenSize = 32

// Service is the authentication gateway's domain layer.
type Service struct {
	repo        users.Repository
	sessionRepo sessions.Repository
	mailer      mail.Mailer
	google      oauth.GoogleVerifier
	logger      logging.Logger
	jwtSecret   []byte
	sessionTTL  time.Duration
	resetTTL    time.Duration
	frontendURL string
}

// NewService wires the gateway domain logic to its collaborators.
// mailer and google may be nil; the corresponding flows then degrade
// (no email is sent, Google sign-in is rejected as unauthorized).
func NewService(repo users.Repository, sessionRepo sessions.Repository, mailer mail.Mailer, google oauth.GoogleVerifier, cfg *config.Config, logger logging.Logger) *Service {
	return &Service{
		repo:        repo,
		sessionRepo: sessionRepo,
		mailer:      mailer,
		google:      google,
		logger:      logger.With("module", "users_service"),
		jwtSecret:   []byte(cfg.SecretKey),
		sessionTTL:  cfg.SessionValidityDuration,
		resetTTL:    cfg.ResetTokenValidityDuration,
		frontendURL: cfg.FrontendURL,
	}
}

// issueSession mints a signed token for the user and records the matching
// session row. The row, not the signature, is what makes the token
// authoritative on later requests.
func (s *Service) issueSession(ctx context.Context, userID string) (string, error) {
	token, sessionID, err := auth.IssueToken(userID, s.jwtSecret, s.sessionTTL)
	if err != nil {
		return "", fmt.Errorf("token issue error: %w", err)
	}
	if err := s.sessionRepo.Create(ctx, userID, sessionID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("session create error: %w", err)
	}
	return token, nil
}

// Register creates an account and logs it in. Duplicate email is reported as
// common.ErrorConflict; registration inherently confirms availability, so
// this error is not considered sensitive.
func (s *Service) Register(ctx context.Context, email, name, password string) (*models.User, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error(ctx, "password hash failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}

	user, err = s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, "", common.ErrorConflict
		}
		s.logger.Error(ctx, "user create failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "session issue failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and opens a new session. Unknown email and wrong
// password are indistinguishable to the caller: both cost one hash
// verification and both return common.ErrorUnauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.CheckDummyPassword(password)
			return nil, "", common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "session issue failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

// LoginWithGoogle exchanges a Google authorization code for an identity, then
// finds the linked account, links by email, or registers a new account with
// an unusable random password. It opens a session exactly as Login does.
func (s *Service) LoginWithGoogle(ctx context.Context, code string) (*models.User, string, error) {
	if s.google == nil {
		return nil, "", common.ErrorUnauthorized
	}

	identity, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn(ctx, "google exchange failed", "error", err)
		return nil, "", common.ErrorUnauthorized
	}

	user, err := s.repo.GetByGoogleID(ctx, identity.Subject)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	if user == nil {
		user, err = s.linkOrCreateGoogleUser(ctx, identity)
		if err != nil {
			return nil, "", err
		}
	}

	token, err := s.issueSession(ctx, user.ID)
	if err != nil {
		s.logger.Error(ctx, "session issue failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	return user, token, nil
}

func (s *Service) linkOrCreateGoogleUser(ctx context.Context, identity *oauth.Identity) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, identity.Email)
	if err == nil {
		if err := s.repo.LinkGoogleID(ctx, user.ID, identity.Subject); err != nil {
			s.logger.Error(ctx, "google link failed", "error", err)
			return nil, common.ErrorInternal
		}
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	// First sign-in: the account gets a random password hash so the password
	// flow cannot be used until a reset sets a real one.
	secret, err := common.MakeRandHexString(resetTokenSize)
	if err != nil {
		return nil, common.ErrorInternal
	}
	hash, err := auth.HashPassword(secret)
	if err != nil {
		return nil, common.ErrorInternal
	}

	googleID := identity.Subject
	name := identity.Name
	if name == "" {
		name = identity.Email
	}
	user = &models.User{
		ID:           uuid.NewString(),
		Email:        identity.Email,
		Name:         name,
		PasswordHash: hash,
		GoogleID:     &googleID,
	}
	user, err = s.repo.Create(ctx, user)
	if err != nil {
		s.logger.Error(ctx, "google user create failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered via google", "user_id", user.ID)
	return user, nil
}

// Logout revokes the session named by the token. Revocation is idempotent, so
// a token whose session is already gone still logs out cleanly.
func (s *Service) Logout(ctx context.Context, tokenString string) error {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return common.ErrInvalidToken
	}
	if err := s.sessionRepo.Revoke(ctx, claims.SessionID); err != nil {
		s.logger.Error(ctx, "session revoke failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// Authenticate verifies the token signature and expiry, then cross-checks the
// session store so revoked sessions are rejected immediately. It returns the
// authenticated user id.
func (s *Service) Authenticate(ctx context.Context, tokenString string) (string, error) {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return "", common.ErrInvalidToken
	}

	valid, err := s.sessionRepo.IsValid(ctx, claims.UserID, claims.SessionID)
	if err != nil {
		s.logger.Error(ctx, "session check failed", "error", err)
		return "", common.ErrorInternal
	}
	if !valid {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}

// CurrentUser resolves the token to a full user record, applying the same
// verify-and-cross-check as Authenticate.
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (*models.User, error) {
	userID, err := s.Authenticate(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	return user, nil
}

// RequestPasswordReset issues a single-use reset secret for the account, if
// one exists, and mails a reset link. The outcome visible to the caller is
// identical whether or not the email matched; mail failures are logged only,
// never surfaced, because the response was already decided.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return common.ErrorInternal
	}

	token, err := common.MakeRandHexString(resetTokenSize)
	if err != nil {
		s.logger.Error(ctx, "reset token generation failed", "error", err)
		return common.ErrorInternal
	}
	expires := time.Now().Add(s.resetTTL)

	if err := s.repo.SetResetToken(ctx, user.ID, token, expires); err != nil {
		s.logger.Error(ctx, "reset token store failed", "error", err)
		return common.ErrorInternal
	}

	s.sendResetMail(ctx, user, token)
	return nil
}

func (s *Service) sendResetMail(ctx context.Context, user *models.User, token string) {
	if s.mailer == nil {
		s.logger.Warn(ctx, "no mailer configured, skipping reset mail", "user_id", user.ID)
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s&email=%s",
		s.frontendURL, token, url.QueryEscape(user.Email))

	msg := mail.Message{
		To:      user.Email,
		Subject: "Password Reset",
		Body: fmt.Sprintf(
			"Hello %s,\n\nYou requested a password reset. Open the link below to choose a new password:\n\n%s\n\nIf you did not request this, ignore this message. The link expires in 1 hour.\n",
			user.Name, resetURL),
	}
	if err := s.mailer.Send(msg); err != nil {
		s.logger.Error(ctx, "reset mail send failed", "error", err, "user_id", user.ID)
	}
}

// PurgeExpiredSessions removes lapsed session rows. Expired sessions are
// already invisible to validity checks; this is storage maintenance only.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	purged, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error(ctx, "session purge failed", "error", err)
		return 0, common.ErrorInternal
	}
	if purged > 0 {
		s.logger.Info(ctx, "purged expired sessions", "count", purged)
	}
	return purged, nil
}

// ResetPassword consumes a reset secret and sets the new password. It returns
// false for every mismatch (unknown email, wrong token, expired token) so the
// caller presents one indistinguishable failure. Of two concurrent calls with
// the same token at most one succeeds; the loser observes false.
func (s *Service) ResetPassword(ctx context.Context, email, token, newPassword string) (bool, error) {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error(ctx, "password hash failed", "error", err)
		return false, common.ErrorInternal
	}

	ok, err := s.repo.ConsumeResetToken(ctx, email, token, hash)
	if err != nil {
		s.logger.Error(ctx, "reset consume failed", "error", err)
		return false, common.ErrorInternal
	}
	if ok {
		s.logger.Info(ctx, "password reset completed", "email", email)
	}
	return ok, nil
}
