package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// toUserResponse strips everything a client must never see: the password
// hash and the reset fields.
func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Password == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Email, password, and name are required")
		return
	}

	user, token, err := s.users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			writeError(w, http.StatusBadRequest, "Email already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{User: toUserResponse(user), Token: token})
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "Authorization code is required")
		return
	}

	user, token, err := s.users.LoginWithGoogle(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "Google sign-in failed")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{User: toUserResponse(user), Token: token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	if err := s.users.Logout(r.Context(), token); err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeMessage(w, http.StatusOK, "Successfully logged out")
}

// handleMe is an identity query, not an authorization gate: every failed
// check collapses into the same 401 body.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := s.users.CurrentUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, struct {
		User userResponse `json:"user"`
	}{User: toUserResponse(user)})
}

func (s *Server) handleRequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := s.users.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Identical body whether or not the email matched an account.
	writeMessage(w, http.StatusOK, "If an account with that email exists, you will receive a password reset link")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token       string `json:"token"`
		Email       string `json:"email"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &req); err != nil || req.Token == "" || req.Email == "" || req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "Token, email, and new password are required")
		return
	}

	ok, err := s.users.ResetPassword(r.Context(), req.Email, req.Token, req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token. Please request a new password reset.")
		return
	}

	writeMessage(w, http.StatusOK, "Password has been reset successfully")
}

func (s *Server) handleSessionCleanup(w http.ResponseWriter, r *http.Request) {
	if _, err := s.users.PurgeExpiredSessions(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeMessage(w, http.StatusOK, "Expired sessions purged")
}
