package store

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger is the part of SolveRepo the retention loop needs.
type Purger interface {
	PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error)
}

// RunPurge deletes journal rows older than retention once at start and then
// every interval, until ctx is done.
func RunPurge(ctx context.Context, p Purger, retention, interval time.Duration, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		n, err := p.PurgeOlderThan(ctx, retention)
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn("journal purge failed", zap.Error(err))
		case n > 0:
			log.Info("journal purged", zap.Int64("rows", n), zap.Duration("retention", retention))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
	}
}
