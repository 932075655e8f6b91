package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/gildedrose/internal/api"
	"github.com/erazemk/gildedrose/internal/config"
	"github.com/erazemk/gildedrose/internal/db"
	"github.com/erazemk/gildedrose/internal/inventory"
	"github.com/erazemk/gildedrose/internal/logging"
	"github.com/erazemk/gildedrose/internal/metrics"
	"github.com/erazemk/gildedrose/internal/model"
	"github.com/erazemk/gildedrose/internal/scheduler"
	"github.com/erazemk/gildedrose/internal/store"
	"github.com/erazemk/gildedrose/internal/web"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// INFO/WARN go to stdout, ERROR to stderr, optionally also to a file.
	logger, closeLog, err := logging.New(logging.Config{Level: cfg.LogLevel, Path: cfg.LogPath})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		closeLog()
		os.Exit(1)
	}
	closeLog()
}

func run(cfg config.Config, logger *slog.Logger) error {
	// First run: create the database and the admin account.
	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		password, err := initDatabase(cfg.DBPath, cfg.AdminUser)
		if err != nil {
			return fmt.Errorf("initializing database: %w", err)
		}
		printInitResult(cfg.DBPath, cfg.AdminUser, password)
		fmt.Println()
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if err := db.EnsureSchema(database); err != nil {
		return fmt.Errorf("ensuring database schema: %w", err)
	}
	logger.Info("database ready", "path", cfg.DBPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading JWT secret: %w", err)
	}

	rec, metricsHandler, shutdownMetrics, err := metrics.Setup(ctx, metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	})
	if err != nil {
		return fmt.Errorf("setting up metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			logger.Error("metrics shutdown failed", "error", err)
		}
	}()

	svc := inventory.NewService(store.NewItems(database),
		inventory.WithLogger(logger),
		inventory.WithMetrics(rec),
	)

	routerOpts := []api.RouterOption{api.WithQualityMetrics(rec)}
	var sched *scheduler.Scheduler
	if cfg.AdvanceEvery > 0 {
		sched = scheduler.New(svc, logger, cfg.AdvanceEvery)
		routerOpts = append(routerOpts, api.WithSchedulerStatus(sched.Status))
	}

	apiRouter := api.NewRouter(database, jwtSecret, svc, routerOpts...)
	webRouter, err := web.NewRouter(database, jwtSecret, svc)
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /healthz", apiRouter)
	mux.Handle("/", webRouter)

	servers := []*http.Server{newServer(cfg.Addr, api.LoggingMiddleware(logger, rec, mux))}
	if metricsHandler != nil {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("GET /metrics", metricsHandler)
		servers = append(servers, newServer(cfg.Metrics.Addr, metricsMux))
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	if sched != nil {
		g.Go(func() error { return sched.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutting down %s: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped, closing database")
	return nil
}

func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// initDatabase creates a new database, ensures the schema, and creates the
// admin user. It removes the file again if any step fails.
func initDatabase(path, adminUsername string) (password string, err error) {
	database, err := db.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		database.Close()
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := db.EnsureSchema(database); err != nil {
		return "", fmt.Errorf("ensuring schema: %w", err)
	}

	password, err = generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	if err := createAdmin(database, adminUsername, password); err != nil {
		return "", err
	}
	return password, nil
}

func createAdmin(database *sql.DB, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateUser(context.Background(), database, username, string(hash), model.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}
	return nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password. It cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
