package metrics

import (
	"sync"
	"time"
)

// Recorder keeps in-memory counters for quality runs and, when telemetry is
// enabled, forwards every observation to OpenTelemetry instruments.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	mu    sync.Mutex
	stats runStats
	otel  *otelInstruments
}

type runStats struct {
	runs          int
	errors        int
	itemsAdvanced int
	lastDuration  time.Duration
}

// Snapshot is a copy of the recorder's quality run counters.
type Snapshot struct {
	Runs          int
	Errors        int
	ItemsAdvanced int
	LastDuration  time.Duration
}

// NewRecorder returns a Recorder that only keeps in-memory counters.
func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{otel: otel}
}

// RecordQualityRun tracks one day advance over the inventory.
func (r *Recorder) RecordQualityRun(items int, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.stats.runs++
	r.stats.lastDuration = duration
	if err != nil {
		r.stats.errors++
	} else {
		r.stats.itemsAdvanced += items
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordQualityRun(items, duration, err)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// Snapshot returns the current quality run counters.
func (r *Recorder) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Runs:          r.stats.runs,
		Errors:        r.stats.errors,
		ItemsAdvanced: r.stats.itemsAdvanced,
		LastDuration:  r.stats.lastDuration,
	}
}
