package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/erazemk/gildedrose/internal/inventory"
	"github.com/erazemk/gildedrose/internal/metrics"
	"github.com/erazemk/gildedrose/internal/model"
	"github.com/erazemk/gildedrose/internal/scheduler"
)

// RouterOption configures optional parts of the API router.
type RouterOption func(*routerOptions)

type routerOptions struct {
	metrics   *metrics.Recorder
	scheduler func() scheduler.Status
}

// WithQualityMetrics reports the recorder's quality run counters on /healthz.
func WithQualityMetrics(rec *metrics.Recorder) RouterOption {
	return func(o *routerOptions) { o.metrics = rec }
}

// WithSchedulerStatus reports the scheduler's status on /healthz.
func WithSchedulerStatus(status func() scheduler.Status) RouterOption {
	return func(o *routerOptions) { o.scheduler = status }
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret string, svc *inventory.Service, opts ...RouterOption) http.Handler {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, Service: svc}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /healthz", healthHandler(db, o))

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Items: read (all roles), write (manager+).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(requireManager(http.HandlerFunc(itemsHandler.Create))))
	mux.Handle("POST /api/items/quality", authMW(requireManager(http.HandlerFunc(itemsHandler.UpdateQuality))))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Update))))
	mux.Handle("DELETE /api/items/{id}", authMW(requireManager(http.HandlerFunc(itemsHandler.Delete))))
	mux.Handle("PUT /api/items/{id}/image", authMW(requireManager(http.HandlerFunc(itemsHandler.UploadImage))))
	mux.Handle("GET /api/items/{id}/image", authMW(http.HandlerFunc(itemsHandler.GetImage)))

	return mux
}

type healthResponse struct {
	Status    string           `json:"status"`
	Quality   *qualityHealth   `json:"quality,omitempty"`
	Scheduler *schedulerHealth `json:"scheduler,omitempty"`
}

type qualityHealth struct {
	Runs           int   `json:"runs"`
	Errors         int   `json:"errors"`
	ItemsAdvanced  int   `json:"items_advanced"`
	LastDurationMS int64 `json:"last_duration_ms"`
}

type schedulerHealth struct {
	Runs                int        `json:"runs"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastError           string     `json:"last_error,omitempty"`
	LastAttempt         *time.Time `json:"last_attempt,omitempty"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastItemCount       int        `json:"last_item_count"`
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// healthHandler reports whether the database answers, along with the quality
// run counters and scheduler status when they are configured.
func healthHandler(db *sql.DB, o routerOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonResponse(w, r, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}

		resp := healthResponse{Status: "ok"}
		if o.metrics != nil {
			snap := o.metrics.Snapshot()
			resp.Quality = &qualityHealth{
				Runs:           snap.Runs,
				Errors:         snap.Errors,
				ItemsAdvanced:  snap.ItemsAdvanced,
				LastDurationMS: snap.LastDuration.Milliseconds(),
			}
		}
		if o.scheduler != nil {
			st := o.scheduler()
			resp.Scheduler = &schedulerHealth{
				Runs:                st.Runs,
				ConsecutiveFailures: st.ConsecutiveFailures,
				LastError:           st.LastError,
				LastAttempt:         timePtr(st.LastAttempt),
				LastSuccess:         timePtr(st.LastSuccess),
				LastItemCount:       st.LastItemCount,
			}
		}
		jsonResponse(w, r, http.StatusOK, resp)
	}
}
