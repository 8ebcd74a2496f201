package probe

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/healthgraph/graph"
)

// CircuitConfig configures the circuit breaker wrapper.
type CircuitConfig struct {
	// FailureThreshold is the number of consecutive failures before the
	// circuit opens.
	// Default: 5
	FailureThreshold int

	// ResetTimeout is how long an open circuit waits before letting a
	// half-open probe through.
	// Default: 30 seconds
	ResetTimeout time.Duration
}

// circuitState is the breaker's lifecycle position.
type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// WithCircuit short-circuits an expensive check after repeated failures.
// While closed, calls pass through and consecutive failures (a non-nil
// error or an unhealthy evaluation) are counted; reaching the threshold
// opens the circuit and calls return ErrCircuitOpen without invoking the
// check. After ResetTimeout a single half-open probe runs: success closes
// the circuit, failure reopens it.
func WithCircuit(check graph.CheckFunc, config CircuitConfig) graph.CheckFunc {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}

	cb := &circuit{config: config, state: circuitClosed}
	return cb.check(check)
}

type circuit struct {
	config CircuitConfig

	mu          sync.Mutex
	state       circuitState
	failures    int
	lastFailure time.Time
	probing     bool
}

func (cb *circuit) check(inner graph.CheckFunc) graph.CheckFunc {
	return func(ctx context.Context) (graph.Evaluation, error) {
		if err := cb.before(); err != nil {
			return graph.Evaluation{}, err
		}

		ev, err := inner(ctx)
		cb.after(err != nil || ev.Status == graph.StatusUnhealthy)
		return ev, err
	}
}

func (cb *circuit) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == circuitOpen && time.Since(cb.lastFailure) >= cb.config.ResetTimeout {
		cb.state = circuitHalfOpen
		cb.probing = false
	}

	switch cb.state {
	case circuitOpen:
		return ErrCircuitOpen
	case circuitHalfOpen:
		if cb.probing {
			return ErrCircuitOpen
		}
		cb.probing = true
	}
	return nil
}

func (cb *circuit) after(failed bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case circuitClosed:
		if !failed {
			cb.failures = 0
			return
		}
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.failures >= cb.config.FailureThreshold {
			cb.state = circuitOpen
		}

	case circuitHalfOpen:
		if failed {
			cb.lastFailure = time.Now()
			cb.state = circuitOpen
			return
		}
		cb.state = circuitClosed
		cb.failures = 0
	}
}
