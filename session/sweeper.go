package session

import (
	"context"
	"time"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"go.uber.org/zap"
)

const (
	DefaultSweepInterval = 10 * time.Minute
	DefaultIdleTimeout   = 30 * time.Minute
	DefaultArchiveWindow = 24 * time.Hour
)

// Sweeper periodically evicts idle sessions and purges expired archives.
// A failed cycle never stops the loop; the next tick sweeps again.
type Sweeper struct {
	store         *Store
	interval      time.Duration
	idleTimeout   time.Duration
	archiveWindow time.Duration
}

func NewSweeper(store *Store) *Sweeper {
	return &Sweeper{
		store:         store,
		interval:      DefaultSweepInterval,
		idleTimeout:   DefaultIdleTimeout,
		archiveWindow: DefaultArchiveWindow,
	}
}

// WithIntervals overrides the sweep timing, mainly for tests.
func (s *Sweeper) WithIntervals(interval, idleTimeout, archiveWindow time.Duration) *Sweeper {
	s.interval = interval
	s.idleTimeout = idleTimeout
	s.archiveWindow = archiveWindow
	return s
}

// Run blocks until ctx is cancelled, sweeping on a fixed interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Sweeper) sweepOnce() {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("session sweep panicked", zap.Any("panic", r))
		}
	}()

	now := time.Now()
	evicted, purged := s.store.Sweep(now.Add(-s.idleTimeout), now.Add(-s.archiveWindow))

	if evicted > 0 || purged > 0 {
		logger.Info("session sweep completed",
			zap.Int("evicted_idle", evicted),
			zap.Int("purged_archives", purged),
			zap.Int("active_web", s.store.Count(ChannelWeb)),
			zap.Int("active_voice", s.store.Count(ChannelVoice)))
	}
}
