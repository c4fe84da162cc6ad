package metrics

import (
	"context"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

const DefaultReportInterval = 60 * time.Second

// Reporter periodically logs the recorder's aggregates. Like the session
// sweeper it is a daemon: a bad cycle is logged and the loop carries on at
// the same fixed interval.
type Reporter struct {
	recorder *Recorder
	interval time.Duration
}

func NewReporter(recorder *Recorder) *Reporter {
	return &Reporter{recorder: recorder, interval: DefaultReportInterval}
}

func (r *Reporter) WithInterval(interval time.Duration) *Reporter {
	r.interval = interval
	return r
}

// Run blocks until ctx is cancelled, reporting on a fixed interval.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reportOnce()
		}
	}
}

func (r *Reporter) reportOnce() {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("metrics report panicked", zap.Any("panic", rec))
		}
	}()

	for category, stats := range r.recorder.Snapshot() {
		if stats.Count == 0 {
			continue
		}
		logger.Info("performance metrics",
			zap.String("category", category),
			zap.Float64("last_ms", stats.Last),
			zap.Float64("avg_ms", stats.Avg),
			zap.Float64("min_ms", stats.Min),
			zap.Float64("max_ms", stats.Max),
			zap.Int("count", stats.Count))
	}
}
