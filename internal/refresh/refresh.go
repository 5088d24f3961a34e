// Package refresh schedules periodic full rescans of the program's account
// space so the cache converges on ledger truth even without explicit
// invalidations.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"blocksd/pkg/config"
	"blocksd/pkg/logger"
)

// RunFunc performs one full rescan-and-apply pass.
type RunFunc func(ctx context.Context) error

// Start starts the refresh scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RefreshConfig, run RunFunc) (context.CancelFunc, error) {
	if !cfg.Enabled || cfg.Paused {
		logger.Info("refresh_disabled")
		return func() {}, nil
	}

	// map empty cron to default every 5 minutes
	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = "*/5 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("refresh_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid refresh cron expression: %s", cfg.Cron)
	}

	logger.Info("refresh_enabled", "cron", cronExpr)
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, run)
	return cancel, nil
}

// runScheduler uses gronx to compute the next tick for the configured cron
// expression and sleeps until that time.
func runScheduler(ctx context.Context, cronExpr string, run RunFunc) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("refresh_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("refresh_nexttick_failed", "cron", cronExpr, "error", err)
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				logger.Info("refresh_scheduler_stopping")
				return
			}
			continue
		}

		wait := time.Until(next)
		if wait <= 0 {
			// due now-ish; run immediately, then avoid a tight loop
			runOnce(ctx, run)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				logger.Info("refresh_scheduler_stopping")
				return
			}
			continue
		}

		select {
		case <-time.After(wait):
			runOnce(ctx, run)
		case <-ctx.Done():
			logger.Info("refresh_scheduler_stopping")
			return
		}
	}
}

func runOnce(ctx context.Context, run RunFunc) {
	start := time.Now()
	if err := run(ctx); err != nil {
		logger.Error("refresh_run_error", "error", err)
		return
	}
	logger.Info("refresh_run_complete", "took", time.Since(start).String())
}
