package worker

import (
	"context"
	"time"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

const DefaultSweepInterval = 5 * time.Minute

// Purger is a session store that cannot expire entries on its own.
type Purger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

type SessionSweeper struct {
	store    Purger
	interval time.Duration
}

func NewSessionSweeper(store Purger, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SessionSweeper{
		store:    store,
		interval: interval,
	}
}

// Start blocks until ctx is cancelled.
func (w *SessionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Sweep(ctx)
		case <-ctx.Done():
			logger.Info("Worker: session sweeper stopping")
			return
		}
	}
}

func (w *SessionSweeper) Sweep(ctx context.Context) {
	start := time.Now()

	purged, err := w.store.PurgeExpired(ctx)
	if err != nil {
		logger.Warn("Worker: purging expired sessions failed", zap.Error(err))
		return
	}

	logger.Debug("Worker: expired sessions purged",
		zap.Duration("ms", time.Since(start)),
		zap.Int("purged", purged))
}
