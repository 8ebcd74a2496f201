package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/healthgraph/graph"
)

// Metrics records evaluation metrics for a health graph.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; recording is fire-and-forget.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordPass records one completed evaluation pass. op is one of
	// OpRefreshAll or OpRefresh.
	RecordPass(ctx context.Context, op string, duration time.Duration, err error)

	// RecordCheck records one intrinsic check execution. A check counts as
	// failed when it returned an error or resolved unhealthy.
	RecordCheck(ctx context.Context, node string, status graph.Status, err error)

	// RecordStatusChange records one node's status transition.
	RecordStatusChange(ctx context.Context, change graph.StatusChange)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter         metric.Meter
	passTotal     metric.Int64Counter
	passDuration  metric.Float64Histogram
	checkTotal    metric.Int64Counter
	checkFailures metric.Int64Counter
	statusChanges metric.Int64Counter
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	passTotal, err := meter.Int64Counter(
		"graph.pass.total",
		metric.WithDescription("Total number of evaluation passes"),
		metric.WithUnit("{pass}"),
	)
	if err != nil {
		return nil, err
	}

	passDuration, err := meter.Float64Histogram(
		"graph.pass.duration",
		metric.WithDescription("Evaluation pass duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	checkTotal, err := meter.Int64Counter(
		"graph.check.total",
		metric.WithDescription("Total number of intrinsic check executions"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	checkFailures, err := meter.Int64Counter(
		"graph.check.failures",
		metric.WithDescription("Total number of failed intrinsic checks"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	statusChanges, err := meter.Int64Counter(
		"graph.status.changes",
		metric.WithDescription("Total number of node status transitions"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:         meter,
		passTotal:     passTotal,
		passDuration:  passDuration,
		checkTotal:    checkTotal,
		checkFailures: checkFailures,
		statusChanges: statusChanges,
	}, nil
}

// RecordPass increments the pass counter and records the pass duration.
func (m *metricsImpl) RecordPass(ctx context.Context, op string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("graph.op", op),
	}
	if err != nil {
		attrs = append(attrs, attribute.Bool("graph.error", true))
	}
	opt := metric.WithAttributes(attrs...)

	m.passTotal.Add(ctx, 1, opt)
	m.passDuration.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordCheck increments the check counter, and the failure counter when
// the check errored or resolved unhealthy.
func (m *metricsImpl) RecordCheck(ctx context.Context, node string, status graph.Status, err error) {
	opt := metric.WithAttributes(
		attribute.String("node.name", node),
	)

	m.checkTotal.Add(ctx, 1, opt)

	if err != nil || status == graph.StatusUnhealthy {
		m.checkFailures.Add(ctx, 1, opt)
	}
}

// RecordStatusChange counts one status transition, labeled with the node
// and the status it moved to.
func (m *metricsImpl) RecordStatusChange(ctx context.Context, change graph.StatusChange) {
	m.statusChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("node.name", change.Name),
		attribute.String("node.status", change.Current.String()),
	))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordPass(ctx context.Context, op string, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordCheck(ctx context.Context, node string, status graph.Status, err error) {
}

func (m *noopMetrics) RecordStatusChange(ctx context.Context, change graph.StatusChange) {
}
