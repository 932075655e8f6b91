package web

import (
	"database/sql"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/erazemk/gildedrose/internal/auth"
	"github.com/erazemk/gildedrose/internal/inventory"
	"github.com/erazemk/gildedrose/internal/logging"
	"github.com/erazemk/gildedrose/internal/model"
	webembed "github.com/erazemk/gildedrose/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"roleAtLeast": model.RoleAtLeast,
		"roleName": func(role string) string {
			switch role {
			case model.RoleAdmin:
				return "Administrator"
			case model.RoleManager:
				return "Manager"
			case model.RoleUser:
				return "Clerk"
			default:
				return role
			}
		},
		"typeName": func(t model.ItemType) string {
			switch t {
			case model.ItemTypeNormal:
				return "Normal"
			case model.ItemTypeAged:
				return "Aged"
			case model.ItemTypeTickets:
				return "Backstage tickets"
			case model.ItemTypeLegendary:
				return "Legendary"
			default:
				return string(t)
			}
		},
		"itemTypes": func() []model.ItemType { return model.ItemTypes },
	}
}

var pages = []string{
	"login.html",
	"items.html",
	"item_detail.html",
	"users.html",
	"settings.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data.
func (ts *Templates) Render(w http.ResponseWriter, r *http.Request, name string, data any) {
	ts.RenderStatus(w, r, http.StatusOK, name, data)
}

// RenderStatus renders a template with an explicit status code.
func (ts *Templates) RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		logging.FromContext(r.Context()).Error("failed to render template", "template", name, "error", err)
	}
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	User    *auth.Claims
	Error   string
	Success string
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB        *sql.DB
	Service   *inventory.Service
	Templates *Templates
	JWTSecret string
}
