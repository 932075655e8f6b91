package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/gildedrose/internal/auth"
	"github.com/erazemk/gildedrose/internal/db"
	"github.com/erazemk/gildedrose/internal/inventory"
	"github.com/erazemk/gildedrose/internal/model"
	"github.com/erazemk/gildedrose/internal/store"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	handler http.Handler
	svc     *inventory.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)
	svc := inventory.NewService(store.NewItems(database))

	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if _, err := store.CreateUser(context.Background(), database, "admin", string(hash), model.RoleAdmin); err != nil {
		t.Fatal(err)
	}

	handler, err := NewRouter(database, testJWTSecret, svc)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return &testEnv{handler: handler, svc: svc}
}

func (e *testEnv) request(t *testing.T, method, target, token string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(testJWTSecret, 1, "admin", role)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestTemplatesLoad(t *testing.T) {
	ts, err := LoadTemplates()
	if err != nil {
		t.Fatalf("LoadTemplates: %v", err)
	}
	for _, page := range pages {
		if _, ok := ts.templates[page]; !ok {
			t.Errorf("template %s not loaded", page)
		}
	}
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	env := setup(t)

	for _, path := range []string{"/", "/items", "/users", "/settings"} {
		rec := env.request(t, "GET", path, "", nil)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Errorf("%s: expected redirect to /login, got %d %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestLoginSetsCookie(t *testing.T) {
	env := setup(t)

	rec := env.request(t, "POST", "/login", "", url.Values{"username": {"admin"}, "password": {"password"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName && c.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected auth cookie to be set")
	}

	rec = env.request(t, "POST", "/login", "", url.Values{"username": {"admin"}, "password": {"nope"}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", rec.Code)
	}
}

func TestItemsPageAndAdvance(t *testing.T) {
	env := setup(t)
	tok := token(t, model.RoleManager)

	rec := env.request(t, "POST", "/items", tok, url.Values{
		"name": {"Aged Brie"}, "type": {"AGED"}, "sell_in": {"2"}, "quality": {"0"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("create: expected 303, got %d", rec.Code)
	}

	rec = env.request(t, "GET", "/items", tok, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Aged Brie") {
		t.Error("expected item name on items page")
	}

	rec = env.request(t, "POST", "/items/quality", tok, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("advance: expected 303, got %d", rec.Code)
	}

	items, err := env.svc.ListItems(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].SellIn != 1 || items[0].Quality != 1 {
		t.Errorf("expected (1, 1) after one day, got %+v", items)
	}
}

func TestCreateItemRejectsBadForm(t *testing.T) {
	env := setup(t)
	tok := token(t, model.RoleManager)

	rec := env.request(t, "POST", "/items", tok, url.Values{
		"name": {"Mystery"}, "type": {"CONJURED"}, "sell_in": {"1"}, "quality": {"1"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", rec.Code)
	}

	rec = env.request(t, "POST", "/items", tok, url.Values{
		"name": {"Elixir"}, "type": {"NORMAL"}, "sell_in": {"soon"}, "quality": {"1"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric sell in, got %d", rec.Code)
	}
}

func TestItemDetailEditDelete(t *testing.T) {
	env := setup(t)
	tok := token(t, model.RoleManager)

	created, err := env.svc.CreateItem(context.Background(), model.Item{Name: "Elixir", SellIn: 5, Quality: 7, Type: model.ItemTypeNormal})
	if err != nil {
		t.Fatal(err)
	}
	path := "/items/" + strconv.FormatInt(created.ID, 10)

	rec := env.request(t, "GET", path, tok, nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Elixir") {
		t.Fatalf("detail: expected 200 with item, got %d", rec.Code)
	}

	rec = env.request(t, "POST", path, tok, url.Values{
		"name": {"Elixir of the Mongoose"}, "type": {"NORMAL"}, "sell_in": {"4"}, "quality": {"6"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("update: expected 303, got %d", rec.Code)
	}
	updated, _ := env.svc.FindItem(context.Background(), created.ID)
	if updated.Name != "Elixir of the Mongoose" || updated.SellIn != 4 {
		t.Errorf("update not applied: %+v", updated)
	}

	rec = env.request(t, "POST", path+"/delete", tok, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("delete: expected 303, got %d", rec.Code)
	}
	rec = env.request(t, "GET", path, tok, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestRoleChecks(t *testing.T) {
	env := setup(t)
	userTok := token(t, model.RoleUser)

	if rec := env.request(t, "GET", "/items", userTok, nil); rec.Code != http.StatusOK {
		t.Errorf("expected user to see items, got %d", rec.Code)
	}
	if rec := env.request(t, "POST", "/items/quality", userTok, nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for user advancing, got %d", rec.Code)
	}
	if rec := env.request(t, "GET", "/users", token(t, model.RoleManager), nil); rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for manager on users page, got %d", rec.Code)
	}
	if rec := env.request(t, "GET", "/users", token(t, model.RoleAdmin), nil); rec.Code != http.StatusOK {
		t.Errorf("expected 200 for admin on users page, got %d", rec.Code)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	env := setup(t)
	tok := token(t, model.RoleAdmin)

	rec := env.request(t, "POST", "/logout", tok, nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}

	rec = env.request(t, "GET", "/items", tok, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Errorf("expected revoked session to be sent to /login, got %d", rec.Code)
	}
}
