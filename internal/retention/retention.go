// Package retention schedules permanent removal of soft-deleted
// accounts once they age past the configured period.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"synapse/pkg/config"
	"synapse/pkg/logger"
	"synapse/pkg/userstore"
)

const (
	defaultCron   = "0 2 * * *"
	defaultPeriod = 720 * time.Hour
)

// Start starts the retention scheduler if enabled. Returns a cancel func.
func Start(ctx context.Context, cfg config.RetentionConfig, users *userstore.Store) (context.CancelFunc, error) {
	if !cfg.Enabled {
		logger.Info("retention_disabled")
		return func() {}, nil
	}

	cronExpr := cfg.Cron
	if cronExpr == "" {
		cronExpr = defaultCron
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("retention_invalid_cron", "cron", cfg.Cron)
		return nil, fmt.Errorf("invalid retention cron expression: %s", cfg.Cron)
	}

	period := defaultPeriod
	if cfg.Period != "" {
		d, err := time.ParseDuration(cfg.Period)
		if err != nil || d <= 0 {
			logger.Error("retention_invalid_period", "period", cfg.Period)
			return nil, fmt.Errorf("invalid retention period: %s", cfg.Period)
		}
		period = d
	}

	logger.Info("retention_enabled", "cron", cronExpr, "period", period.String())
	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr, period, users)
	return cancel, nil
}

// RunOnce purges users soft-deleted before now-period. Exposed so ops
// tooling can trigger a run outside the schedule.
func RunOnce(ctx context.Context, users *userstore.Store, period time.Duration) error {
	cutoff := time.Now().UTC().Add(-period)
	n, err := users.PurgeDeletedBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Info("retention_purged_users", "count", n, "cutoff", cutoff.Format(time.RFC3339))
	}
	return nil
}

// runScheduler computes the next tick for the cron expression with
// gronx and sleeps until then.
func runScheduler(ctx context.Context, cronExpr string, period time.Duration, users *userstore.Store) {
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
		if wait < 0 {
			wait = time.Second
		}
		select {
		case <-time.After(wait):
			if err := RunOnce(ctx, users, period); err != nil {
				logger.Error("retention_run_error", "error", err)
			}
		case <-ctx.Done():
			logger.Info("retention_scheduler_stopping")
			return
		}
	}
}
