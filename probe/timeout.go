package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/healthgraph/graph"
)

type checkResult struct {
	ev  graph.Evaluation
	err error
}

// WithTimeout bounds a check's runtime. The inner check runs in its own
// goroutine against a derived deadline context; when the budget expires the
// wrapper returns ErrTimeout without waiting, which the evaluating graph
// converts to an unhealthy status. A non-positive d defaults to 30 seconds.
//
// The inner check keeps running after expiry until it observes the
// cancelled context; its late result is discarded.
func WithTimeout(check graph.CheckFunc, d time.Duration) graph.CheckFunc {
	if d <= 0 {
		d = 30 * time.Second
	}

	return func(ctx context.Context) (graph.Evaluation, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		done := make(chan checkResult, 1)
		go func() {
			// The evaluator's panic recovery lives on the calling
			// goroutine; a panic here has to be caught locally.
			defer func() {
				if r := recover(); r != nil {
					done <- checkResult{err: fmt.Errorf("check panicked: %v", r)}
				}
			}()
			ev, err := check(ctx)
			done <- checkResult{ev: ev, err: err}
		}()

		select {
		case res := <-done:
			return res.ev, res.err
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return graph.Evaluation{}, fmt.Errorf("%w after %s", ErrTimeout, d)
			}
			return graph.Evaluation{}, ctx.Err()
		}
	}
}
