// Package config reads command-line flags whose defaults come from the
// environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"time"
)

// Config holds runtime configuration for the server.
type Config struct {
	DBPath    string
	Addr      string
	AdminUser string
	LogPath   string
	LogLevel  string
	// AdvanceEvery is the scheduled day advance interval; zero disables it.
	AdvanceEvery time.Duration
	Metrics      MetricsConfig
}

// MetricsConfig controls telemetry export settings.
type MetricsConfig struct {
	Enabled      bool
	Addr         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

const usage = `Usage: gildedrose [flags]

Flags:
  -d, -db <path>            SQLite database path (default: gildedrose.sqlite3, env GILDEDROSE_DB)
  -a, -addr <host:port>     listen address (default: :8080, env GILDEDROSE_ADDR)
  -u, -user <name>          admin username on first run (default: Admin, env GILDEDROSE_ADMIN)
  -l, -log <path>           log file path (default: stdout/stderr only, env GILDEDROSE_LOG)
  -advance-every <dur>      advance all items one day per interval, 0 disables (env GILDEDROSE_ADVANCE_EVERY)
  -metrics-addr <host:port> Prometheus listen address (default: :9090, env METRICS_ADDR)
  -h, -help                 show this help and exit

Environment only:
  GILDEDROSE_LOG_LEVEL          debug, info, warn or error (default: info)
  METRICS_ENABLED               serve metrics (default: true)
  OTEL_EXPORTER_OTLP_ENDPOINT   also push metrics over OTLP/HTTP
  OTEL_SERVICE_NAME             service.name resource attribute (default: gildedrose)
  OTEL_EXPORTER_OTLP_INSECURE   use plain HTTP for OTLP (default: true)
`

// Load parses args on top of environment defaults. It returns flag.ErrHelp
// when help was requested; usage has then already been written to out.
func Load(args []string, out io.Writer) (Config, error) {
	cfg := fromEnv()

	fs := flag.NewFlagSet("gildedrose", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }

	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fs.StringVar(&cfg.AdminUser, "user", cfg.AdminUser, "")
	fs.StringVar(&cfg.AdminUser, "u", cfg.AdminUser, "")
	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")
	fs.DurationVar(&cfg.AdvanceEvery, "advance-every", cfg.AdvanceEvery, "")
	fs.StringVar(&cfg.Metrics.Addr, "metrics-addr", cfg.Metrics.Addr, "")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return Config{}, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromEnv() Config {
	return Config{
		DBPath:       envOrDefault(envDB, defaultDB),
		Addr:         envOrDefault(envAddr, defaultAddr),
		AdminUser:    envOrDefault(envAdmin, defaultAdmin),
		LogPath:      envOrDefault(envLog, ""),
		LogLevel:     envOrDefault(envLogLevel, defaultLogLevel),
		AdvanceEvery: durationEnvOrDefault(envAdvanceEvery, 0),
		Metrics: MetricsConfig{
			Enabled:      boolEnvOrDefault(envMetricsOn, true),
			Addr:         envOrDefault(envMetricsAddr, defaultMetricsAddr),
			OtlpEndpoint: envOrDefault(envOtelEndpoint, ""),
			ServiceName:  envOrDefault(envOtelService, defaultService),
			OtlpInsecure: boolEnvOrDefault(envOtelInsecure, true),
		},
	}
}

func (c Config) validate() error {
	switch {
	case c.DBPath == "":
		return errors.New("database path must not be empty")
	case c.Addr == "":
		return errors.New("listen address must not be empty")
	case c.AdminUser == "":
		return errors.New("admin username must not be empty")
	case c.AdvanceEvery < 0:
		return errors.New("advance interval must not be negative")
	case c.Metrics.Enabled && c.Metrics.Addr == "":
		return errors.New("metrics address must not be empty when metrics are enabled")
	}
	return nil
}
