package web

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/gildedrose/internal/inventory"
	"github.com/erazemk/gildedrose/internal/model"
	webembed "github.com/erazemk/gildedrose/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, jwtSecret string, svc *inventory.Service) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Service:   svc,
		Templates: templates,
		JWTSecret: jwtSecret,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)
	page := func(h http.HandlerFunc) http.Handler { return cookieAuth(h) }
	manager := func(h http.HandlerFunc) http.Handler { return cookieAuth(requireRole(model.RoleManager, h)) }
	admin := func(h http.HandlerFunc) http.Handler { return cookieAuth(requireRole(model.RoleAdmin, h)) }

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	mux.Handle("GET /{$}", page(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/items", http.StatusSeeOther)
	}))

	mux.Handle("GET /items", page(s.ItemsPage))
	mux.Handle("POST /items", manager(s.ItemCreateSubmit))
	mux.Handle("POST /items/quality", manager(s.AdvanceDaySubmit))
	mux.Handle("GET /items/{id}", page(s.ItemDetailPage))
	mux.Handle("POST /items/{id}", manager(s.ItemUpdateSubmit))
	mux.Handle("POST /items/{id}/delete", manager(s.ItemDeleteSubmit))
	mux.Handle("POST /items/{id}/image", manager(s.ItemImageSubmit))
	mux.Handle("GET /items/{id}/image", page(s.ItemImageGet))

	mux.Handle("GET /users", admin(s.UsersPage))
	mux.Handle("POST /users", admin(s.UserCreateSubmit))
	mux.Handle("POST /users/{id}/password", admin(s.UserResetPasswordSubmit))
	mux.Handle("POST /users/{id}/delete", admin(s.UserDeleteSubmit))

	mux.Handle("GET /settings", page(s.SettingsPage))
	mux.Handle("POST /settings", page(s.SettingsSubmit))

	return mux, nil
}
