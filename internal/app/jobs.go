package app

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/talkincode/fairpos/internal/report"
)

// initJobs starts the cron scheduler. Every job here is read-only over
// shared state: background timers never mutate the catalog or ledger.
func (a *Application) initJobs() {
	a.sched = cron.New()

	// End-of-day revenue summary in the log, a few minutes before the
	// venue usually closes down the till.
	_, err := a.sched.AddFunc("50 21 * * *", func() {
		var summary report.Summary
		_ = a.WithRLock(func() error {
			summary = a.exporter.Summarize(report.ScopeToday)
			return nil
		})
		zap.L().Info("daily revenue summary",
			zap.Int("transactions", summary.Transactions),
			zap.Int64("revenue", summary.Revenue),
			zap.Int64("items_sold", summary.ItemsSold),
			zap.Float64("mean_total", summary.MeanTotal),
			zap.Float64("median_total", summary.MedianTotal))
	})
	if err != nil {
		zap.L().Error("failed to schedule daily summary", zap.Error(err))
	}

	// Hourly persistence health note; dropped writes during load windows
	// are expected, a growing count outside them is not.
	_, err = a.sched.AddFunc("@hourly", func() {
		if n := a.store.DroppedWrites(); n > 0 {
			zap.L().Debug("store dropped-write counter", zap.Int64("dropped", n))
		}
	})
	if err != nil {
		zap.L().Error("failed to schedule store health job", zap.Error(err))
	}

	a.sched.Start()
}
