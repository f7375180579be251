package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"curatord/pkg/engine"
	"curatord/pkg/logger"
)

// Start starts the document retention scheduler. Returns a cancel func.
// An empty cron defaults to daily @02:00; maxAgeDays <= 0 disables the
// scheduler.
func Start(ctx context.Context, eng *engine.Engine, cronExpr string, maxAgeDays int) (context.CancelFunc, error) {
	if maxAgeDays <= 0 {
		logger.Info("retention_disabled")
		return func() {}, nil
	}
	if cronExpr == "" {
		cronExpr = "0 2 * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cronExpr)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cronExpr)
	}

	logger.Info("retention_enabled", "cron", cronExpr, "max_age_days", maxAgeDays)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, eng, cronExpr, maxAgeDays)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured
// cron expression and sleeps until that time.
func runScheduler(ctx context.Context, eng *engine.Engine, cronExpr string, maxAgeDays int) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("retention_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			eng.Housekeep(maxAgeDays)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(wait):
			eng.Housekeep(maxAgeDays)
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}
