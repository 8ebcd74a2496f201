package probe

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonwraymond/healthgraph/graph"
)

// RetryConfig configures the retry wrapper.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64

	// Jitter adds randomness to delays to prevent thundering herd.
	// Default: true (via DefaultRetryConfig)
	Jitter bool
}

// DefaultRetryConfig returns the defaults documented on RetryConfig.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// WithRetry re-attempts a failed check with exponential backoff before
// surfacing the last failure. A check fails when it returns a non-nil error
// or an unhealthy evaluation; healthy and degraded results return
// immediately. Waits respect the caller's context.
func WithRetry(check graph.CheckFunc, config RetryConfig) graph.CheckFunc {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}

	return func(ctx context.Context) (graph.Evaluation, error) {
		var lastEv graph.Evaluation
		var lastErr error

		for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
			ev, err := check(ctx)
			if err == nil && ev.Status != graph.StatusUnhealthy {
				return ev, nil
			}
			lastEv, lastErr = ev, err

			if attempt >= config.MaxAttempts {
				break
			}

			select {
			case <-ctx.Done():
				return graph.Evaluation{}, ctx.Err()
			case <-time.After(retryDelay(config, attempt)):
			}
		}

		return lastEv, lastErr
	}
}

func retryDelay(config RetryConfig, attempt int) time.Duration {
	multiplier := math.Pow(config.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(config.InitialDelay) * multiplier)
	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	if config.Jitter && delay > 0 {
		// Add up to 25% jitter
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration(rand.Int64N(int64(delay / 4)))
	}
	return delay
}
