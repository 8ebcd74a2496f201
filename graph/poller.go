package graph

import (
	"context"
	"time"
)

// PollerConfig configures a Poller.
type PollerConfig struct {
	// Interval between full refresh passes.
	// Default: 30 seconds
	Interval time.Duration
}

// Poller drives a Graph in pull mode: a full refresh pass on a fixed
// interval. Push-driven hosts call Graph.Refresh directly instead.
type Poller struct {
	graph    *Graph
	interval time.Duration
}

// NewPoller creates a poller for the given graph.
func NewPoller(g *Graph, config ...PollerConfig) *Poller {
	interval := 30 * time.Second
	if len(config) > 0 && config[0].Interval > 0 {
		interval = config[0].Interval
	}
	return &Poller{graph: g, interval: interval}
}

// Interval returns the configured refresh interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Start blocks, running a full refresh pass immediately and then once per
// interval, until ctx is cancelled. The context is also the one handed to
// intrinsic checks.
func (p *Poller) Start(ctx context.Context) {
	p.graph.RefreshAll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.graph.RefreshAll(ctx)
		case <-ctx.Done():
			return
		}
	}
}
