package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// DefaultServiceName is reported when no service name is configured.
const DefaultServiceName = "gildedrose"

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and an
// optional OTLP exporter. It returns a Recorder, the Prometheus HTTP handler
// (nil when disabled) and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}

	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, nil, err
	}
	opts := []sdkmetric.Option{sdkmetric.WithReader(promExp)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := buildOTLPReader(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	inst, err := newOtelInstruments(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	handler := promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return newRecorder(inst), handler, provider.Shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	exp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(15*time.Second)), nil
}

type otelInstruments struct {
	ctx              context.Context
	requests         metric.Int64Counter
	requestLatencyMs metric.Float64Histogram
	qualityRuns      metric.Int64Counter
	qualityErrors    metric.Int64Counter
	qualityLatencyMs metric.Float64Histogram
	itemsAdvanced    metric.Int64Counter
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter(DefaultServiceName)

	requests, err := meter.Int64Counter("http_requests_total")
	if err != nil {
		return nil, err
	}
	requestLatency, err := meter.Float64Histogram("http_request_duration_ms")
	if err != nil {
		return nil, err
	}
	qualityRuns, err := meter.Int64Counter("quality_runs_total")
	if err != nil {
		return nil, err
	}
	qualityErrors, err := meter.Int64Counter("quality_run_errors_total")
	if err != nil {
		return nil, err
	}
	qualityLatency, err := meter.Float64Histogram("quality_run_duration_ms")
	if err != nil {
		return nil, err
	}
	itemsAdvanced, err := meter.Int64Counter("quality_items_advanced_total")
	if err != nil {
		return nil, err
	}

	return &otelInstruments{
		ctx:              context.Background(),
		requests:         requests,
		requestLatencyMs: requestLatency,
		qualityRuns:      qualityRuns,
		qualityErrors:    qualityErrors,
		qualityLatencyMs: qualityLatency,
		itemsAdvanced:    itemsAdvanced,
	}, nil
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
		attribute.Int(AttrStatus, status),
	)
	o.requests.Add(o.ctx, 1, attrs)
	o.requestLatencyMs.Record(o.ctx, float64(duration.Milliseconds()), attrs)
}

func (o *otelInstruments) recordQualityRun(items int, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	attrs := metric.WithAttributes(attribute.String(AttrResult, result))
	o.qualityRuns.Add(o.ctx, 1, attrs)
	o.qualityLatencyMs.Record(o.ctx, float64(duration.Milliseconds()), attrs)
	if err != nil {
		o.qualityErrors.Add(o.ctx, 1)
		return
	}
	o.itemsAdvanced.Add(o.ctx, int64(items))
}
