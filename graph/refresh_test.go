package graph

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func staticCheck(ev Evaluation) CheckFunc {
	return func(ctx context.Context) (Evaluation, error) {
		return ev, nil
	}
}

func countCheck(calls *int, ev Evaluation) CheckFunc {
	return func(ctx context.Context) (Evaluation, error) {
		*calls++
		return ev, nil
	}
}

func mustGraph(t *testing.T, roots ...*Node) *Graph {
	t.Helper()
	g, err := New(roots...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestRefreshAll_RunsEveryCheckExactlyOnce(t *testing.T) {
	var dbCalls, cacheCalls, apiCalls int
	db := NewCheck("db", countCheck(&dbCalls, Healthy("ok")))
	cache := NewCheck("cache", countCheck(&cacheCalls, Healthy("ok")))
	api := NewCheck("api", countCheck(&apiCalls, Healthy("ok"))).
		AddDependency(db, Required).
		AddDependency(cache, Important)

	g := mustGraph(t, api)
	report := g.RefreshAll(context.Background())

	for name, calls := range map[string]int{"db": dbCalls, "cache": cacheCalls, "api": apiCalls} {
		if calls != 1 {
			t.Errorf("%s check ran %d times, want 1", name, calls)
		}
	}
	if report.OverallStatus != StatusHealthy {
		t.Errorf("OverallStatus = %v, want %v", report.OverallStatus, StatusHealthy)
	}
	if g.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", g.Generation())
	}
}

func TestRefreshAll_SharedDependencyCheckedOnce(t *testing.T) {
	var sharedCalls int
	shared := NewCheck("shared", countCheck(&sharedCalls, Healthy("ok")))
	left := NewComposite("left").AddDependency(shared, Required)
	right := NewComposite("right").AddDependency(shared, Required)
	root := NewComposite("root").
		AddDependency(left, Required).
		AddDependency(right, Required)

	g := mustGraph(t, root)
	g.RefreshAll(context.Background())

	if sharedCalls != 1 {
		t.Errorf("shared check ran %d times, want 1", sharedCalls)
	}
}

func TestRefreshAll_ReportEntries(t *testing.T) {
	db := NewCheck("db", staticCheck(Unhealthy("connection refused")))
	cache := NewCheck("cache", staticCheck(Healthy("ok")))
	api := NewComposite("api").
		AddDependency(db, Important).
		AddDependency(cache, Required)

	g := mustGraph(t, api)
	report := g.RefreshAll(context.Background())

	if got := report.StatusOf("db"); got != StatusUnhealthy {
		t.Errorf("StatusOf(db) = %v, want %v", got, StatusUnhealthy)
	}
	if got := report.StatusOf("cache"); got != StatusHealthy {
		t.Errorf("StatusOf(cache) = %v, want %v", got, StatusHealthy)
	}
	// db is Important: its failure caps api at degraded.
	if got := report.StatusOf("api"); got != StatusDegraded {
		t.Errorf("StatusOf(api) = %v, want %v", got, StatusDegraded)
	}
	if report.OverallStatus != StatusDegraded {
		t.Errorf("OverallStatus = %v, want %v", report.OverallStatus, StatusDegraded)
	}

	entry, ok := report.Get("api")
	if !ok {
		t.Fatal("Get(api) not found")
	}
	if entry.Reason != `important dependency "db" is unhealthy` {
		t.Errorf("api reason = %q", entry.Reason)
	}
}

func TestRefreshAll_Deterministic(t *testing.T) {
	db := NewCheck("db", staticCheck(Healthy("ok")))
	cache := NewCheck("cache", staticCheck(Degraded("slow")))
	api := NewComposite("api").
		AddDependency(db, Required).
		AddDependency(cache, Required)

	g := mustGraph(t, api)
	first := g.RefreshAll(context.Background())
	second := g.RefreshAll(context.Background())

	if !first.Equal(second) {
		t.Error("two passes over identical statuses disagree")
	}
	for i, e := range first.Entries {
		if second.Entries[i].Name != e.Name {
			t.Errorf("entry %d order changed: %q vs %q", i, e.Name, second.Entries[i].Name)
		}
	}
	names := g.Names()
	for i, e := range first.Entries {
		if names[i] != e.Name {
			t.Errorf("entry %d = %q, want construction order %q", i, e.Name, names[i])
		}
	}
}

func TestRefreshAll_CoalescesConcurrentCallers(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	check := func(ctx context.Context) (Evaluation, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
		}
		return Healthy("ok"), nil
	}

	g := mustGraph(t, NewCheck("solo", check))

	reports := make([]*Report, 5)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		reports[0] = g.RefreshAll(context.Background())
	}()
	<-started

	var entered sync.WaitGroup
	for i := 1; i < 5; i++ {
		wg.Add(1)
		entered.Add(1)
		go func(i int) {
			defer wg.Done()
			entered.Done()
			reports[i] = g.RefreshAll(context.Background())
		}(i)
	}
	entered.Wait()
	time.Sleep(20 * time.Millisecond) // let the joiners reach the flight
	close(release)
	wg.Wait()

	if calls != 1 {
		t.Errorf("check ran %d times across 5 concurrent callers, want 1", calls)
	}
	for i := 1; i < 5; i++ {
		if reports[i] != reports[0] {
			t.Errorf("caller %d received a different report", i)
		}
	}
}

func TestRefresh_RecomputesOnlyTheAffectedCone(t *testing.T) {
	var dbCalls, queueCalls, apiCalls, workerCalls int
	db := NewCheck("db", countCheck(&dbCalls, Healthy("ok")))
	queue := NewCheck("queue", countCheck(&queueCalls, Healthy("ok")))
	api := NewCheck("api", countCheck(&apiCalls, Healthy("ok"))).
		AddDependency(db, Required)
	worker := NewCheck("worker", countCheck(&workerCalls, Healthy("ok"))).
		AddDependency(queue, Required)
	root := NewComposite("root").
		AddDependency(api, Required).
		AddDependency(worker, Required)

	g := mustGraph(t, root)
	g.RefreshAll(context.Background())

	if _, err := g.Refresh(context.Background(), "db"); err != nil {
		t.Fatalf("Refresh(db) error = %v", err)
	}

	// Only db's own check re-runs; ancestors re-fold their cached base.
	if dbCalls != 2 {
		t.Errorf("db check ran %d times, want 2", dbCalls)
	}
	for name, calls := range map[string]int{"api": apiCalls, "worker": workerCalls, "queue": queueCalls} {
		if calls != 1 {
			t.Errorf("%s check ran %d times, want 1", name, calls)
		}
	}

	// Generation restamps cover the target and its ancestors, nothing else.
	if g.Generation() != 2 {
		t.Fatalf("Generation() = %d, want 2", g.Generation())
	}
	for name, want := range map[string]uint64{"db": 2, "api": 2, "root": 2, "queue": 1, "worker": 1} {
		if got := g.state[name].gen; got != want {
			t.Errorf("state[%s].gen = %d, want %d", name, got, want)
		}
	}
}

func TestRefresh_PropagatesStatusChange(t *testing.T) {
	current := Healthy("ok")
	db := NewCheck("db", func(ctx context.Context) (Evaluation, error) {
		return current, nil
	})
	queue := NewCheck("queue", staticCheck(Healthy("ok")))
	api := NewComposite("api").AddDependency(db, Required)
	worker := NewComposite("worker").AddDependency(queue, Required)
	root := NewComposite("root").
		AddDependency(api, Required).
		AddDependency(worker, Required)

	g := mustGraph(t, root)
	g.RefreshAll(context.Background())

	current = Unhealthy("connection refused")
	report, err := g.Refresh(context.Background(), "db")
	if err != nil {
		t.Fatalf("Refresh(db) error = %v", err)
	}

	for name, want := range map[string]Status{
		"db":     StatusUnhealthy,
		"api":    StatusUnhealthy,
		"root":   StatusUnhealthy,
		"worker": StatusHealthy,
		"queue":  StatusHealthy,
	} {
		if got := report.StatusOf(name); got != want {
			t.Errorf("StatusOf(%s) = %v, want %v", name, got, want)
		}
	}
	if report.OverallStatus != StatusUnhealthy {
		t.Errorf("OverallStatus = %v, want %v", report.OverallStatus, StatusUnhealthy)
	}
	if cached := g.Report(); !cached.Equal(report) {
		t.Error("cached report does not match the returned one")
	}
}

func TestRefresh_ColdStartEvaluatesWhatFoldingNeeds(t *testing.T) {
	var aCalls int
	a := NewCheck("a", countCheck(&aCalls, Healthy("ok")))
	b := NewCheck("b", staticCheck(Healthy("ok")))
	root := NewComposite("root").
		AddDependency(a, Required).
		AddDependency(b, Required)

	g := mustGraph(t, root)
	report, err := g.Refresh(context.Background(), "b")
	if err != nil {
		t.Fatalf("Refresh(b) error = %v", err)
	}

	// root's fold pulls in the never-evaluated sibling rather than folding
	// an unknown placeholder.
	if aCalls != 1 {
		t.Errorf("sibling check ran %d times, want 1", aCalls)
	}
	for _, e := range report.Entries {
		if e.Status == StatusUnknown {
			t.Errorf("entry %q still unknown after cold partial refresh", e.Name)
		}
	}
}

func TestRefresh_UnknownName(t *testing.T) {
	g := mustGraph(t, NewCheck("solo", staticCheck(Healthy("ok"))))
	_, err := g.Refresh(context.Background(), "nope")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Refresh(nope) error = %v, want ErrNodeNotFound", err)
	}
}

func TestEvaluate(t *testing.T) {
	var sharedCalls int
	shared := NewCheck("shared", countCheck(&sharedCalls, Healthy("ok")))
	left := NewComposite("left").AddDependency(shared, Required)
	right := NewComposite("right").AddDependency(shared, Required)
	api := NewComposite("api").
		AddDependency(left, Required).
		AddDependency(right, Required)

	g := mustGraph(t, api)
	ev, err := g.Evaluate(context.Background(), "api")
	if err != nil {
		t.Fatalf("Evaluate(api) error = %v", err)
	}

	if ev.Status != StatusHealthy {
		t.Errorf("Status = %v, want %v", ev.Status, StatusHealthy)
	}
	if sharedCalls != 1 {
		t.Errorf("shared check ran %d times, want 1", sharedCalls)
	}

	// Evaluate caches per-node results but never rebuilds the report.
	if got := g.Report().OverallStatus; got != StatusUnknown {
		t.Errorf("cached report overall = %v, want %v", got, StatusUnknown)
	}
	if g.Generation() != 1 {
		t.Errorf("Generation() = %d, want 1", g.Generation())
	}
}

func TestEvaluate_DoesNotNotify(t *testing.T) {
	g := mustGraph(t, NewCheck("solo", staticCheck(Healthy("ok"))))

	var fired int
	g.Subscribe(func(*Report) { fired++ })

	if _, err := g.Evaluate(context.Background(), "solo"); err != nil {
		t.Fatalf("Evaluate(solo) error = %v", err)
	}
	if fired != 0 {
		t.Errorf("subscriber fired %d times during Evaluate, want 0", fired)
	}
}

func TestEvaluate_UnknownName(t *testing.T) {
	g := mustGraph(t, NewCheck("solo", staticCheck(Healthy("ok"))))
	_, err := g.Evaluate(context.Background(), "nope")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Evaluate(nope) error = %v, want ErrNodeNotFound", err)
	}
}

func TestRunCheck_FailureModes(t *testing.T) {
	tests := []struct {
		name       string
		check      CheckFunc
		wantStatus Status
		wantReason string
	}{
		{
			name:       "error becomes unhealthy",
			check:      func(ctx context.Context) (Evaluation, error) { return Evaluation{}, errors.New("connection refused") },
			wantStatus: StatusUnhealthy,
			wantReason: "connection refused",
		},
		{
			name:       "panic becomes unhealthy",
			check:      func(ctx context.Context) (Evaluation, error) { panic("boom") },
			wantStatus: StatusUnhealthy,
			wantReason: "check panicked: boom",
		},
		{
			name:       "unknown result becomes unhealthy",
			check:      func(ctx context.Context) (Evaluation, error) { return Evaluation{}, nil },
			wantStatus: StatusUnhealthy,
			wantReason: "check returned unknown status",
		},
		{
			name:       "reported status passes through",
			check:      staticCheck(Degraded("slow")),
			wantStatus: StatusDegraded,
			wantReason: "slow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(t, NewCheck("solo", tt.check))
			ev, err := g.Evaluate(context.Background(), "solo")
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if ev.Status != tt.wantStatus {
				t.Errorf("Status = %v, want %v", ev.Status, tt.wantStatus)
			}
			if ev.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", ev.Reason, tt.wantReason)
			}
		})
	}
}

func TestRunCheck_CompositeStartsHealthy(t *testing.T) {
	g := mustGraph(t, NewComposite("solo"))
	ev, err := g.Evaluate(context.Background(), "solo")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if ev.Status != StatusHealthy {
		t.Errorf("Status = %v, want %v", ev.Status, StatusHealthy)
	}
}

func TestGeneration_AdvancesPerPass(t *testing.T) {
	db := NewCheck("db", staticCheck(Healthy("ok")))
	api := NewComposite("api").AddDependency(db, Required)
	g := mustGraph(t, api)

	g.RefreshAll(context.Background())
	if got := g.Generation(); got != 1 {
		t.Errorf("after RefreshAll: Generation() = %d, want 1", got)
	}
	if _, err := g.Refresh(context.Background(), "db"); err != nil {
		t.Fatal(err)
	}
	if got := g.Generation(); got != 2 {
		t.Errorf("after Refresh: Generation() = %d, want 2", got)
	}
	if _, err := g.Evaluate(context.Background(), "db"); err != nil {
		t.Fatal(err)
	}
	if got := g.Generation(); got != 3 {
		t.Errorf("after Evaluate: Generation() = %d, want 3", got)
	}
}

func TestRefreshAll_NotifiesOnlyOnChange(t *testing.T) {
	current := Healthy("ok")
	db := NewCheck("db", func(ctx context.Context) (Evaluation, error) {
		return current, nil
	})
	g := mustGraph(t, NewComposite("api").AddDependency(db, Required))

	var delivered []*Report
	g.Subscribe(func(r *Report) { delivered = append(delivered, r) })

	g.RefreshAll(context.Background()) // unknown seed -> healthy: fires
	g.RefreshAll(context.Background()) // unchanged: silent
	current = Unhealthy("connection refused")
	g.RefreshAll(context.Background()) // healthy -> unhealthy: fires

	if len(delivered) != 2 {
		t.Fatalf("subscriber fired %d times, want 2", len(delivered))
	}
	if delivered[0].OverallStatus != StatusHealthy {
		t.Errorf("first delivery overall = %v, want %v", delivered[0].OverallStatus, StatusHealthy)
	}
	if delivered[1].OverallStatus != StatusUnhealthy {
		t.Errorf("second delivery overall = %v, want %v", delivered[1].OverallStatus, StatusUnhealthy)
	}
}

func TestRefresh_SilentWhenNothingChanges(t *testing.T) {
	db := NewCheck("db", staticCheck(Healthy("ok")))
	g := mustGraph(t, NewComposite("api").AddDependency(db, Required))
	g.RefreshAll(context.Background())

	var fired int
	g.Subscribe(func(*Report) { fired++ })

	if _, err := g.Refresh(context.Background(), "db"); err != nil {
		t.Fatal(err)
	}
	if fired != 0 {
		t.Errorf("subscriber fired %d times for an unchanged refresh, want 0", fired)
	}
}
