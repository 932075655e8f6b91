package api

import (
	"database/sql"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/gildedrose/internal/auth"
	"github.com/erazemk/gildedrose/internal/logging"
	"github.com/erazemk/gildedrose/internal/model"
	"github.com/erazemk/gildedrose/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		jsonError(w, r, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		logger.Error("failed to look up user", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("login failed", logging.FieldUser, req.Username, "remote", r.RemoteAddr)
		jsonError(w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		logger.Error("failed to generate token", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "failed to generate token")
		return
	}

	logger.Info("user logged in", logging.FieldUser, user.Username, "role", user.Role)
	jsonResponse(w, r, http.StatusOK, loginResponse{Token: token})
}

// Logout handles POST /api/auth/logout. The presented token stays revoked
// until it would have expired anyway.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}

	expiresAt := time.Now().Add(auth.TokenExpiry)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, expiresAt); err != nil {
		logging.FromContext(r.Context()).Error("failed to revoke token", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "failed to log out")
		return
	}

	logging.FromContext(r.Context()).Info("user logged out", logging.FieldUser, claims.Username)
	jsonResponse(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, r, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, r, http.StatusBadRequest, "current and new password required")
		return
	}

	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.GetUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		logger.Error("failed to load user", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, r, http.StatusUnauthorized, "account no longer exists")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, r, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, r, http.StatusInternalServerError, "failed to hash password")
		return
	}

	if _, err := store.UpdateUserPassword(r.Context(), h.DB, claims.UserID, string(hash)); err != nil {
		logger.Error("failed to update password", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "failed to update password")
		return
	}

	logger.Info("user changed own password", logging.FieldUser, claims.Username)
	jsonResponse(w, r, http.StatusOK, map[string]string{"message": "password updated"})
}
