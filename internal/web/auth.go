package web

import (
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/gildedrose/internal/auth"
	"github.com/erazemk/gildedrose/internal/logging"
	"github.com/erazemk/gildedrose/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, r, "login.html", &PageData{Title: "Sign in"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	username := r.FormValue("username")
	password := r.FormValue("password")

	fail := func(msg string) {
		s.Templates.RenderStatus(w, r, http.StatusUnauthorized, "login.html", &PageData{
			Title: "Sign in",
			Error: msg,
		})
	}

	if username == "" || password == "" {
		fail("Enter a username and password.")
		return
	}

	user, err := store.GetUserByUsername(r.Context(), s.DB, username)
	if err != nil {
		logger.Error("failed to look up user", "error", err)
	}
	if user == nil {
		fail("Wrong username or password.")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Warn("login failed", logging.FieldUser, username, "remote", r.RemoteAddr)
		fail("Wrong username or password.")
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		logger.Error("failed to generate token", "error", err)
		fail("Sign in failed.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(auth.TokenExpiry / time.Second),
	})

	logger.Info("user logged in", logging.FieldUser, user.Username, "role", user.Role)
	http.Redirect(w, r, "/items", http.StatusSeeOther)
}

// Logout handles POST /logout. A valid session token is revoked before the
// cookie is cleared.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil {
			if err := store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
				logging.FromContext(r.Context()).Error("failed to revoke token", "error", err)
			}
		}
	}

	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
