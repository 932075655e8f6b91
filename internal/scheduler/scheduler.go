// Package scheduler advances the inventory by one day on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/gildedrose/internal/logging"
	"github.com/erazemk/gildedrose/internal/model"
)

// Advancer ages the whole inventory by one day.
type Advancer interface {
	UpdateQuality(ctx context.Context) ([]model.Item, error)
}

// Scheduler calls Advancer.UpdateQuality once per tick. Missed ticks are
// dropped rather than batched, so a tick never advances more than one day.
type Scheduler struct {
	advancer Advancer
	logger   *slog.Logger
	interval time.Duration

	ticker   *time.Ticker
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the scheduler loop.
type Status struct {
	Runs                int
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
	LastItemCount       int
}

// New constructs a Scheduler. The interval must be positive.
func New(advancer Advancer, logger *slog.Logger, interval time.Duration) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		advancer: advancer,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins ticking until the context is cancelled or Stop is called.
// The first day advance happens one interval after Start.
func (s *Scheduler) Start(ctx context.Context) {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return
	}
	s.started = true
	s.ticker = time.NewTicker(s.interval)
	s.startMu.Unlock()

	go func() {
		defer close(s.stopped)
		defer s.ticker.Stop()
		s.logger.Info("scheduler started", slog.Int64(logging.FieldDurationMS, s.interval.Milliseconds()))

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("scheduler stopped")
				return
			case <-s.done:
				s.logger.Info("scheduler stopped")
				return
			case <-s.ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight day advance to finish or
// for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.done) })

	s.startMu.Lock()
	started := s.started
	s.startMu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run blocks until ctx is cancelled, then stops the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.Start(ctx)
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Stop(shutdownCtx)
}

func (s *Scheduler) runOnce(ctx context.Context) {
	start := time.Now()
	s.recordAttempt(start)

	items, err := s.advancer.UpdateQuality(ctx)
	if err != nil {
		s.logger.Error("scheduled day advance failed", "error", err,
			logging.FieldDurationMS, time.Since(start).Milliseconds())
		s.recordFailure(err)
		return
	}

	s.recordSuccess(start, len(items))
	s.logger.Info("scheduled day advance complete",
		logging.FieldCount, len(items),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
}

func (s *Scheduler) recordAttempt(at time.Time) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.Runs++
	s.status.LastAttempt = at
}

func (s *Scheduler) recordSuccess(at time.Time, count int) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures = 0
	s.status.LastError = ""
	s.status.LastSuccess = at
	s.status.LastItemCount = count
}

func (s *Scheduler) recordFailure(err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.status.ConsecutiveFailures++
	s.status.LastError = err.Error()
}

// Status returns a snapshot of the scheduler's recent health.
func (s *Scheduler) Status() Status {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}
