package query

import (
	"context"
	"sync"
	"time"

	"github.com/relabs-tech/aqaar/core/logger"
)

// Run fetches every key with a RefetchInterval in the background until ctx is done.
// Keys registered after Run was called are not picked up. Run blocks until all
// background fetchers have stopped.
func (c *Cache) Run(ctx context.Context) {
	rlog := logger.FromContext(ctx)

	c.mutex.Lock()
	intervals := map[string]time.Duration{}
	for key, def := range c.defs {
		if def.RefetchInterval > 0 {
			intervals[key] = def.RefetchInterval
		}
	}
	c.mutex.Unlock()

	var wg sync.WaitGroup
	for key, interval := range intervals {
		wg.Add(1)
		go func(key string, interval time.Duration) {
			defer wg.Done()
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			rlog.Debugf("refetching %s every %s", key, interval)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if _, err := c.Refetch(ctx, key); err != nil && ctx.Err() == nil {
						rlog.WithError(err).Warnf("background refetch of %s failed", key)
					}
				}
			}
		}(key, interval)
	}
	wg.Wait()
}
