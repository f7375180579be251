package engine

import (
	"context"
	"time"

	"curatord/pkg/collect"
	"curatord/pkg/logger"
)

// Cadence controls the adaptive polling intervals of the scheduler.
type Cadence struct {
	// First is the short interval used for the first cycle after
	// startup.
	First time.Duration
	// Steady is the normal interval between cycles.
	Steady time.Duration
	// Backoff is the interval after a deferred cycle (no active
	// participants).
	Backoff time.Duration
}

// DefaultCadence mirrors the capture clients: eager right after startup,
// relaxed in steady state, long backoff while the roster is quiet.
var DefaultCadence = Cadence{
	First:   30 * time.Second,
	Steady:  2 * time.Minute,
	Backoff: 10 * time.Minute,
}

func (c Cadence) withDefaults() Cadence {
	if c.First <= 0 {
		c.First = DefaultCadence.First
	}
	if c.Steady <= 0 {
		c.Steady = DefaultCadence.Steady
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultCadence.Backoff
	}
	return c
}

// Scheduler drives the engine with non-overlapping cycles: one goroutine,
// one cycle at a time. A deferred cycle only stretches the wait until the
// next one; it never blocks the loop.
type Scheduler struct {
	engine    *Engine
	collector collect.Collector
	cadence   Cadence
}

// NewScheduler returns a scheduler over the given collector.
func NewScheduler(e *Engine, c collect.Collector, cadence Cadence) *Scheduler {
	return &Scheduler{engine: e, collector: c, cadence: cadence.withDefaults()}
}

// Run loops until the context is cancelled. Cycle errors are logged; the
// scheduler always continues with the next batch.
func (s *Scheduler) Run(ctx context.Context) {
	wait := s.cadence.First
	timer := time.NewTimer(wait)
	defer timer.Stop()
	logger.Info("scheduler_started", "first", s.cadence.First, "steady", s.cadence.Steady)
	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler_stopped")
			return
		case <-timer.C:
		}

		batch := s.collector.NextBatch()
		report, err := s.engine.ProcessCycle(ctx, batch)
		switch {
		case err != nil:
			logger.Error("cycle_failed", "error", err)
			wait = s.cadence.Steady
		case report.Deferred:
			wait = s.cadence.Backoff
		default:
			wait = s.cadence.Steady
		}
		timer.Reset(wait)
	}
}
