package config

const (
	envDB           = "GILDEDROSE_DB"
	envAddr         = "GILDEDROSE_ADDR"
	envAdmin        = "GILDEDROSE_ADMIN"
	envLog          = "GILDEDROSE_LOG"
	envLogLevel     = "GILDEDROSE_LOG_LEVEL"
	envAdvanceEvery = "GILDEDROSE_ADVANCE_EVERY"
	envMetricsOn    = "METRICS_ENABLED"
	envMetricsAddr  = "METRICS_ADDR"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultDB          = "gildedrose.sqlite3"
	defaultAddr        = ":8080"
	defaultAdmin       = "Admin"
	defaultLogLevel    = "info"
	defaultMetricsAddr = ":9090"
	defaultService     = "gildedrose"
)
