package app

import (
	"context"

	"github.com/robfig/cron/v3"

	appLog "flightcal/internal/log"
)

// RunScheduled runs the pipeline on the configured cron schedule until
// the context is cancelled. One pass runs immediately at startup so a
// fresh calendar exists without waiting for the first tick.
func (a *App) RunScheduled(ctx context.Context) error {
	if err := a.Run(ctx); err != nil {
		appLog.Error("initial pipeline pass failed", err)
	}

	c := cron.New()
	_, err := c.AddFunc(a.cfg.Schedule, func() {
		appLog.Info("scheduled pipeline pass starting", "schedule", a.cfg.Schedule)
		if err := a.Run(ctx); err != nil {
			appLog.Error("scheduled pipeline pass failed", err)
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	appLog.Info("scheduler started", "schedule", a.cfg.Schedule)

	<-ctx.Done()

	// Wait for a running job to finish before returning.
	stop := c.Stop()
	<-stop.Done()
	appLog.Info("scheduler stopped")
	return nil
}
