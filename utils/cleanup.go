package utils

import (
	"context"
	"time"
)

// StartCleaner runs purge every interval in a background goroutine until ctx is done.
// It is best-effort: failures are logged and the next tick tries again.
func StartCleaner(ctx context.Context, name string, interval time.Duration, purge func(context.Context) (int64, error)) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			n, err := purge(ctx)
			if err != nil {
				Sugar.Warnf("%s cleaner failed: %v", name, err)
				continue
			}
			if n > 0 {
				Sugar.Infof("%s cleaner removed %d rows", name, n)
			}
		}
	}()
}
