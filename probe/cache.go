package probe

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/healthgraph/graph"
)

// WithCache memoizes a check's evaluation for ttl, so a costly check runs at
// most once per window however often evaluation passes ask for it. Expired
// entries re-run the inner check. Errors are never cached — the next call
// retries immediately. A non-positive ttl disables caching.
func WithCache(check graph.CheckFunc, ttl time.Duration) graph.CheckFunc {
	if ttl <= 0 {
		return check
	}

	var mu sync.Mutex
	var cached graph.Evaluation
	var expiresAt time.Time

	return func(ctx context.Context) (graph.Evaluation, error) {
		mu.Lock()
		defer mu.Unlock()

		if time.Now().Before(expiresAt) {
			return cached, nil
		}

		ev, err := check(ctx)
		if err != nil {
			return ev, err
		}

		cached = ev
		expiresAt = time.Now().Add(ttl)
		return ev, nil
	}
}
