package observe

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/healthgraph/graph"
)

// Middleware instruments graph evaluation with tracing, metrics, and
// logging. It never alters what it wraps: evaluations, reports, and errors
// pass through unchanged.
//
// Contract:
//   - Concurrency: WrapCheck returns a thread-safe CheckFunc.
//   - Context: propagates context through tracing spans.
//   - Errors: errors from wrapped checks are recorded and propagated
//     unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability
// components. Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	return NewMiddleware(obs.Tracer(), obs.Metrics(), obs.Logger()), nil
}

// WrapCheck instruments a check with a span, check metrics, and a log line
// per execution. Wrapping a nil check returns nil, so composites stay
// composites.
func (m *Middleware) WrapCheck(name string, check graph.CheckFunc) graph.CheckFunc {
	if check == nil {
		return nil
	}
	return func(ctx context.Context) (graph.Evaluation, error) {
		ctx, span := m.tracer.StartCheck(ctx, name)
		start := time.Now()

		ev, err := check(ctx)

		duration := time.Since(start)
		m.tracer.EndSpan(span, ev.Status, err)
		m.metrics.RecordCheck(ctx, name, ev.Status, err)

		nodeLogger := m.logger.WithNode(name)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			{Key: "status", Value: ev.Status.String()},
		}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			nodeLogger.Error(ctx, "health check failed", fields...)
		} else {
			nodeLogger.Debug(ctx, "health check completed", fields...)
		}

		return ev, err
	}
}

// RefreshAll runs a full evaluation pass under a healthgraph.refresh_all
// span and records pass metrics.
func (m *Middleware) RefreshAll(ctx context.Context, g *graph.Graph) *graph.Report {
	ctx, span := m.tracer.StartPass(ctx, OpRefreshAll)
	start := time.Now()

	report := g.RefreshAll(ctx)

	duration := time.Since(start)
	m.tracer.EndSpan(span, report.OverallStatus, nil)
	m.metrics.RecordPass(ctx, OpRefreshAll, duration, nil)

	m.logger.Info(ctx, "refresh pass completed",
		Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		Field{Key: "overall", Value: report.OverallStatus.String()},
		Field{Key: "nodes", Value: report.Len()},
	)

	return report
}

// Refresh runs a partial evaluation pass for one node under a
// healthgraph.refresh span and records pass metrics.
func (m *Middleware) Refresh(ctx context.Context, g *graph.Graph, name string) (*graph.Report, error) {
	ctx, span := m.tracer.StartPass(ctx, OpRefresh)
	start := time.Now()

	report, err := g.Refresh(ctx, name)

	duration := time.Since(start)
	var overall graph.Status
	if report != nil {
		overall = report.OverallStatus
	}
	m.tracer.EndSpan(span, overall, err)
	m.metrics.RecordPass(ctx, OpRefresh, duration, err)

	nodeLogger := m.logger.WithNode(name)
	if err != nil {
		nodeLogger.Error(ctx, "refresh pass failed",
			Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			Field{Key: "error", Value: err.Error()},
		)
	} else {
		nodeLogger.Info(ctx, "refresh pass completed",
			Field{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			Field{Key: "overall", Value: overall.String()},
		)
	}

	return report, err
}

// ObserveChanges subscribes a recorder to the graph's change feed. Every
// delivered report is diffed against the previous one the recorder saw;
// each transition is counted in graph.status.changes and logged at a level
// matching the new status. Cancel the returned subscription to detach.
func (m *Middleware) ObserveChanges(g *graph.Graph) *graph.Subscription {
	if g == nil {
		return &graph.Subscription{}
	}

	var mu sync.Mutex
	var last *graph.Report

	return g.Subscribe(func(r *graph.Report) {
		mu.Lock()
		prev := last
		last = r
		mu.Unlock()

		ctx := context.Background()
		for _, change := range graph.Diff(prev, r) {
			m.metrics.RecordStatusChange(ctx, change)

			nodeLogger := m.logger.WithNode(change.Name)
			fields := []Field{
				{Key: "previous", Value: change.Previous.String()},
				{Key: "current", Value: change.Current.String()},
			}
			if change.Reason != "" {
				fields = append(fields, Field{Key: "reason", Value: change.Reason})
			}

			switch change.Current {
			case graph.StatusUnhealthy:
				nodeLogger.Error(ctx, "status changed", fields...)
			case graph.StatusDegraded:
				nodeLogger.Warn(ctx, "status changed", fields...)
			default:
				nodeLogger.Info(ctx, "status changed", fields...)
			}
		}
	})
}
