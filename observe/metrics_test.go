package observe

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonwraymond/healthgraph/graph"
)

func manualMetrics(t testing.TB) (*sdkmetric.ManualReader, *metricsImpl) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return reader, m
}

func collect(t testing.TB, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

// findMetric searches for a metric by name in ResourceMetrics.
func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumCounter adds up every data point of an int64 counter.
func sumCounter(t testing.TB, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	found := findMetric(rm, name)
	if found == nil {
		return 0
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s: expected Sum[int64], got %T", name, found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestMetrics_PassCounterIncrements verifies graph.pass.total is incremented.
func TestMetrics_PassCounterIncrements(t *testing.T) {
	reader, m := manualMetrics(t)

	m.RecordPass(context.Background(), OpRefreshAll, 100*time.Millisecond, nil)

	rm := collect(t, reader)
	if got := sumCounter(t, rm, "graph.pass.total"); got != 1 {
		t.Errorf("expected pass count 1, got %d", got)
	}

	// The op travels as an attribute.
	found := findMetric(rm, "graph.pass.total")
	sum := found.Data.(metricdata.Sum[int64])
	var foundOp bool
	for iter := sum.DataPoints[0].Attributes.Iter(); iter.Next(); {
		kv := iter.Attribute()
		if string(kv.Key) == "graph.op" {
			foundOp = true
			if kv.Value.AsString() != OpRefreshAll {
				t.Errorf("expected graph.op=%q, got %q", OpRefreshAll, kv.Value.AsString())
			}
		}
	}
	if !foundOp {
		t.Error("graph.op attribute not found")
	}
}

// TestMetrics_PassDurationRecords verifies the pass duration histogram.
func TestMetrics_PassDurationRecords(t *testing.T) {
	reader, m := manualMetrics(t)

	m.RecordPass(context.Background(), OpRefresh, 50*time.Millisecond, nil)

	rm := collect(t, reader)
	found := findMetric(rm, "graph.pass.duration")
	if found == nil {
		t.Fatal("graph.pass.duration metric not found")
	}

	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points")
	}

	dp := hist.DataPoints[0]
	if dp.Sum < 40 || dp.Sum > 60 {
		t.Errorf("expected duration ~50ms, got %f", dp.Sum)
	}
}

// TestMetrics_CheckCounterIncrements verifies graph.check.total carries the
// node name.
func TestMetrics_CheckCounterIncrements(t *testing.T) {
	reader, m := manualMetrics(t)

	m.RecordCheck(context.Background(), "db", graph.StatusHealthy, nil)
	m.RecordCheck(context.Background(), "db", graph.StatusHealthy, nil)

	rm := collect(t, reader)
	if got := sumCounter(t, rm, "graph.check.total"); got != 2 {
		t.Errorf("expected check count 2, got %d", got)
	}

	found := findMetric(rm, "graph.check.total")
	sum := found.Data.(metricdata.Sum[int64])
	var foundNode bool
	for iter := sum.DataPoints[0].Attributes.Iter(); iter.Next(); {
		kv := iter.Attribute()
		if string(kv.Key) == "node.name" {
			foundNode = true
			if kv.Value.AsString() != "db" {
				t.Errorf("expected node.name='db', got %q", kv.Value.AsString())
			}
		}
	}
	if !foundNode {
		t.Error("node.name attribute not found")
	}
}

// TestMetrics_FailuresNotCountedOnSuccess verifies the failure counter stays
// flat for healthy checks.
func TestMetrics_FailuresNotCountedOnSuccess(t *testing.T) {
	reader, m := manualMetrics(t)

	m.RecordCheck(context.Background(), "db", graph.StatusHealthy, nil)
	m.RecordCheck(context.Background(), "db", graph.StatusDegraded, nil)

	rm := collect(t, reader)
	if got := sumCounter(t, rm, "graph.check.failures"); got != 0 {
		t.Errorf("expected failures count 0, got %d", got)
	}
}

// TestMetrics_FailuresCountedOnError verifies an errored check counts as a
// failure.
func TestMetrics_FailuresCountedOnError(t *testing.T) {
	reader, m := manualMetrics(t)

	m.RecordCheck(context.Background(), "db", graph.StatusUnknown, errors.New("connection refused"))

	rm := collect(t, reader)
	if got := sumCounter(t, rm, "graph.check.failures"); got != 1 {
		t.Errorf("expected failures count 1, got %d", got)
	}
}

// TestMetrics_FailuresCountedOnUnhealthy verifies an unhealthy resolution
// counts as a failure even without an error.
func TestMetrics_FailuresCountedOnUnhealthy(t *testing.T) {
	reader, m := manualMetrics(t)

	m.RecordCheck(context.Background(), "db", graph.StatusUnhealthy, nil)

	rm := collect(t, reader)
	if got := sumCounter(t, rm, "graph.check.failures"); got != 1 {
		t.Errorf("expected failures count 1, got %d", got)
	}
}

// TestMetrics_StatusChangesCounted verifies graph.status.changes counts
// transitions with node and status attributes.
func TestMetrics_StatusChangesCounted(t *testing.T) {
	reader, m := manualMetrics(t)

	m.RecordStatusChange(context.Background(), graph.StatusChange{
		Name:     "db",
		Previous: graph.StatusHealthy,
		Current:  graph.StatusUnhealthy,
		Reason:   "connection refused",
	})
	m.RecordStatusChange(context.Background(), graph.StatusChange{
		Name:     "api",
		Previous: graph.StatusHealthy,
		Current:  graph.StatusDegraded,
	})

	rm := collect(t, reader)
	if got := sumCounter(t, rm, "graph.status.changes"); got != 2 {
		t.Errorf("expected 2 status changes, got %d", got)
	}

	found := findMetric(rm, "graph.status.changes")
	sum := found.Data.(metricdata.Sum[int64])
	statuses := make(map[string]string)
	for _, dp := range sum.DataPoints {
		var node, status string
		for iter := dp.Attributes.Iter(); iter.Next(); {
			kv := iter.Attribute()
			switch string(kv.Key) {
			case "node.name":
				node = kv.Value.AsString()
			case "node.status":
				status = kv.Value.AsString()
			}
		}
		statuses[node] = status
	}
	if statuses["db"] != "unhealthy" {
		t.Errorf("expected db change labeled unhealthy, got %q", statuses["db"])
	}
	if statuses["api"] != "degraded" {
		t.Errorf("expected api change labeled degraded, got %q", statuses["api"])
	}
}

// TestMetrics_ConcurrentRecording verifies thread safety.
func TestMetrics_ConcurrentRecording(t *testing.T) {
	reader, m := manualMetrics(t)

	const numGoroutines = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			m.RecordCheck(context.Background(), "db", graph.StatusHealthy, nil)
		}()
	}

	wg.Wait()

	rm := collect(t, reader)
	if got := sumCounter(t, rm, "graph.check.total"); got != numGoroutines {
		t.Errorf("expected check count %d, got %d", numGoroutines, got)
	}
}
