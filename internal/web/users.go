package web

import (
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/gildedrose/internal/logging"
	"github.com/erazemk/gildedrose/internal/model"
	"github.com/erazemk/gildedrose/internal/store"
)

type usersPage struct {
	PageData
	Users []model.User
	Roles []string
}

// UsersPage handles GET /users (admin only).
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	s.renderUsers(w, r, http.StatusOK, "", "")
}

func (s *Server) renderUsers(w http.ResponseWriter, r *http.Request, status int, errMsg, okMsg string) {
	users, err := store.ListUsers(r.Context(), s.DB)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list users", "error", err)
		errMsg = "Could not load users."
	}

	s.Templates.RenderStatus(w, r, status, "users.html", &usersPage{
		PageData: PageData{Title: "Users", User: GetWebClaims(r.Context()), Error: errMsg, Success: okMsg},
		Users:    users,
		Roles:    []string{model.RoleUser, model.RoleManager, model.RoleAdmin},
	})
}

// UserCreateSubmit handles POST /users (admin only).
func (s *Server) UserCreateSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	logger := logging.FromContext(r.Context())

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	role := r.FormValue("role")

	if username == "" || !model.ValidRole(role) {
		s.renderUsers(w, r, http.StatusBadRequest, "Enter a username and pick a role.", "")
		return
	}
	if err := model.ValidatePassword(password); err != nil {
		s.renderUsers(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	existing, err := store.GetUserByUsername(r.Context(), s.DB, username)
	if err != nil {
		logger.Error("failed to look up user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		s.renderUsers(w, r, http.StatusConflict, "That username is taken.", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	if _, err := store.CreateUser(r.Context(), s.DB, username, string(hash), role); err != nil {
		logger.Error("failed to create user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	logger.Info("user created", logging.FieldUser, claims.Username, "new_user", username, "role", role)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// UserResetPasswordSubmit handles POST /users/{id}/password (admin only).
func (s *Server) UserResetPasswordSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	logger := logging.FromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	newPassword := r.FormValue("new_password")
	if err := model.ValidatePassword(newPassword); err != nil {
		s.renderUsers(w, r, http.StatusBadRequest, err.Error(), "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "failed to hash password", http.StatusInternalServerError)
		return
	}

	ok, err := store.UpdateUserPassword(r.Context(), s.DB, id, string(hash))
	if err != nil {
		logger.Error("failed to reset password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	logger.Info("user password reset", logging.FieldUser, claims.Username, "target_user_id", id)
	s.renderUsers(w, r, http.StatusOK, "", "Password reset.")
}

// UserDeleteSubmit handles POST /users/{id}/delete (admin only).
func (s *Server) UserDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	logger := logging.FromContext(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if id == claims.UserID {
		s.renderUsers(w, r, http.StatusBadRequest, "You cannot delete your own account.", "")
		return
	}

	ok, err := store.DeleteUser(r.Context(), s.DB, id)
	if err != nil {
		logger.Error("failed to delete user", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	logger.Info("user deleted", logging.FieldUser, claims.Username, "deleted_user_id", id)
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// SettingsPage handles GET /settings.
func (s *Server) SettingsPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, r, "settings.html", &PageData{
		Title: "Settings",
		User:  GetWebClaims(r.Context()),
	})
}

// SettingsSubmit handles POST /settings (change own password).
func (s *Server) SettingsSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	logger := logging.FromContext(r.Context())

	render := func(status int, errMsg, okMsg string) {
		s.Templates.RenderStatus(w, r, status, "settings.html", &PageData{
			Title:   "Settings",
			User:    claims,
			Error:   errMsg,
			Success: okMsg,
		})
	}

	currentPassword := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")

	if currentPassword == "" || newPassword == "" {
		render(http.StatusBadRequest, "Enter your current and new password.", "")
		return
	}
	if err := model.ValidatePassword(newPassword); err != nil {
		render(http.StatusBadRequest, err.Error(), "")
		return
	}

	user, err := store.GetUser(r.Context(), s.DB, claims.UserID)
	if err != nil || user == nil {
		logger.Error("failed to load user", "error", err)
		render(http.StatusInternalServerError, "Could not load your account.", "")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		render(http.StatusUnauthorized, "Your current password is incorrect.", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		render(http.StatusInternalServerError, "Could not save the password.", "")
		return
	}

	if _, err := store.UpdateUserPassword(r.Context(), s.DB, claims.UserID, string(hash)); err != nil {
		logger.Error("failed to update password", "error", err)
		render(http.StatusInternalServerError, "Could not save the password.", "")
		return
	}

	logger.Info("user changed own password", logging.FieldUser, claims.Username)
	render(http.StatusOK, "", "Password changed.")
}
