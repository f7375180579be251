// Package monitor watches ingest queue depth and storage pressure and
// raises alerts with hysteresis so a flapping metric does not spam the
// notifier.
package monitor

import (
	"context"
	"time"

	"curatord/pkg/collect"
	"curatord/pkg/logger"
	"curatord/pkg/notify"
	"curatord/pkg/store"
	"curatord/pkg/telemetry"
)

// Config controls thresholds and the polling interval.
type Config struct {
	PollInterval time.Duration

	// queue utilization thresholds, percent of capacity
	QueueHighPct int
	QueueLowPct  int

	WALHighBytes uint64
	WALLowBytes  uint64

	// minimum time in the pressured state before recovery is considered
	RecoveryWindow time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval:   5 * time.Second,
		QueueHighPct:   80,
		QueueLowPct:    50,
		WALHighBytes:   1 << 30,
		WALLowBytes:    700 << 20,
		RecoveryWindow: 30 * time.Second,
	}
}

// Start launches the monitor goroutine. Returns a stop func.
func Start(ctx context.Context, queue *collect.Queue, notifier notify.Notifier, cfg Config) context.CancelFunc {
	if cfg.PollInterval <= 0 {
		cfg = DefaultConfig()
	}
	ctx, cancel := context.WithCancel(ctx)
	go run(ctx, queue, notifier, cfg)
	return cancel
}

func run(ctx context.Context, queue *collect.Queue, notifier notify.Notifier, cfg Config) {
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	pressured := false
	var lastHigh time.Time
	var lastDropped uint64

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			depth := queue.Len()
			queuePct := 0
			if c := queue.Cap(); c > 0 {
				queuePct = depth * 100 / c
			}
			pm := store.GetPebbleMetrics()
			telemetry.QueueDepth.Set(float64(depth))
			telemetry.WALBytes.Set(float64(pm.WALBytes))

			if d := queue.Dropped(); d > lastDropped {
				logger.Warn("ingest_dropping", "dropped_total", d)
				lastDropped = d
			}

			if queuePct >= cfg.QueueHighPct || pm.WALBytes >= cfg.WALHighBytes {
				lastHigh = time.Now()
				if !pressured {
					pressured = true
					logger.Warn("pressure_high", "queue_pct", queuePct, "wal_bytes", pm.WALBytes)
					notifier.Alert("ingest pressure high: queue or storage near capacity")
				}
				continue
			}

			if pressured && time.Since(lastHigh) > cfg.RecoveryWindow &&
				queuePct <= cfg.QueueLowPct && pm.WALBytes <= cfg.WALLowBytes {
				pressured = false
				logger.Info("pressure_recovered", "queue_pct", queuePct, "wal_bytes", pm.WALBytes)
			}
		}
	}
}
