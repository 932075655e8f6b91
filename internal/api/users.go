package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/gildedrose/internal/logging"
	"github.com/erazemk/gildedrose/internal/model"
	"github.com/erazemk/gildedrose/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	DB *sql.DB
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list users", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, r, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || req.Role == "" {
		jsonError(w, r, http.StatusBadRequest, "username, password, and role required")
		return
	}

	if !model.ValidRole(req.Role) {
		jsonError(w, r, http.StatusBadRequest, "invalid role")
		return
	}

	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := store.GetUserByUsername(r.Context(), h.DB, req.Username)
	if err != nil {
		logger.Error("failed to look up user", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		jsonError(w, r, http.StatusConflict, "username already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, r, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, string(hash), req.Role)
	if err != nil {
		logger.Error("failed to create user", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "failed to create user")
		return
	}

	logger.Info("user created", logging.FieldUser, GetClaims(r.Context()).Username, "new_user", user.Username, "role", user.Role)
	jsonResponse(w, r, http.StatusCreated, user)
}

// ResetPassword handles PUT /api/users/{id}/password.
func (h *UsersHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, r, http.StatusInternalServerError, "failed to hash password")
		return
	}

	ok, err := store.UpdateUserPassword(r.Context(), h.DB, id, string(hash))
	if err != nil {
		logger.Error("failed to reset password", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "failed to reset password")
		return
	}
	if !ok {
		jsonError(w, r, http.StatusNotFound, "user not found")
		return
	}

	logger.Info("user password reset", logging.FieldUser, GetClaims(r.Context()).Username, "target_user_id", id)
	jsonResponse(w, r, http.StatusOK, map[string]string{"message": "password reset"})
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	claims := GetClaims(r.Context())
	if claims.UserID == id {
		jsonError(w, r, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	ok, err := store.DeleteUser(r.Context(), h.DB, id)
	if err != nil {
		logger.Error("failed to delete user", "error", err)
		jsonError(w, r, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if !ok {
		jsonError(w, r, http.StatusNotFound, "user not found")
		return
	}

	logger.Info("user deleted", logging.FieldUser, claims.Username, "deleted_user_id", id)
	jsonResponse(w, r, http.StatusOK, map[string]string{"message": "user deleted"})
}
