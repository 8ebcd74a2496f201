package graph

import (
	"context"
	"fmt"
	"time"
)

// Report returns the cached Report produced by the most recent full or
// partial recomputation (or the construction-time all-unknown seed). It
// never recomputes — RefreshAll and Refresh are the recomputation paths.
func (g *Graph) Report() *Report {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.report
}

// Generation returns the number of evaluation passes the graph has run.
// Cache entries written by a pass carry its generation.
func (g *Graph) Generation() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen
}

// RefreshAll runs a full evaluation pass: every node's intrinsic check is
// invoked fresh, every node is recomputed bottom-up exactly once, and the
// cached Report is rebuilt. Subscribers are notified with the new Report
// only if it differs from the previous one under value equality.
//
// Concurrent callers are coalesced into a single pass; latecomers receive
// the shared resulting Report.
func (g *Graph) RefreshAll(ctx context.Context) *Report {
	v, _, _ := g.sf.Do("refresh-all", func() (any, error) {
		return g.refreshAll(ctx), nil
	})
	return v.(*Report)
}

func (g *Graph) refreshAll(ctx context.Context) *Report {
	g.mu.Lock()
	g.gen++
	memo := make(map[string]Evaluation, len(g.order))
	for _, name := range g.order {
		g.evalNode(ctx, name, memo)
	}

	report := g.buildReportLocked(time.Now())
	changed := !report.Equal(g.report)
	g.report = report
	g.mu.Unlock()

	if changed {
		g.notify(report)
	}
	return report
}

// Refresh runs a partial pass rooted at the named node: the node's
// intrinsic check is re-invoked, then every ancestor reachable through the
// reverse-edge index is recomputed in dependency order, re-folding its
// cached base result against the now-current dependency evaluations.
// Unrelated subtrees keep their cached entries untouched. The cached Report
// is rebuilt and subscribers are notified under the same value-equality
// gate as RefreshAll.
func (g *Graph) Refresh(ctx context.Context, name string) (*Report, error) {
	g.mu.Lock()
	if _, ok := g.nodes[name]; !ok {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}

	g.gen++
	memo := make(map[string]Evaluation)
	g.recomputeNode(ctx, name, memo, true)

	affected := g.ancestorsOf(name)
	for _, nm := range g.order {
		if !affected[nm] {
			continue
		}
		g.recomputeNode(ctx, nm, memo, false)
	}

	report := g.buildReportLocked(time.Now())
	changed := !report.Equal(g.report)
	g.report = report
	g.mu.Unlock()

	if changed {
		g.notify(report)
	}
	return report, nil
}

// Evaluate computes the named node's effective status fresh — its intrinsic
// check plus a memoized bottom-up walk of its dependency cone — and caches
// the per-node results. It does not touch ancestors, rebuild the cached
// Report, or notify subscribers.
func (g *Graph) Evaluate(ctx context.Context, name string) (Evaluation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[name]; !ok {
		return Evaluation{}, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}

	g.gen++
	memo := make(map[string]Evaluation)
	return g.evalNode(ctx, name, memo), nil
}

// evalNode evaluates a node and its not-yet-visited dependency cone fresh,
// memoized by name for the duration of one pass so a node shared by many
// parents is evaluated exactly once. Callers hold g.mu.
func (g *Graph) evalNode(ctx context.Context, name string, memo map[string]Evaluation) Evaluation {
	if ev, ok := memo[name]; ok {
		return ev
	}
	n := g.nodes[name]
	base := g.runCheck(ctx, n)

	edges := g.edges[name]
	deps := make([]depEvaluation, 0, len(edges))
	for _, e := range edges {
		deps = append(deps, depEvaluation{edge: e, eval: g.evalNode(ctx, e.Target.name, memo)})
	}

	eff := aggregate(base, deps)
	memo[name] = eff
	g.state[name] = &nodeState{base: base, effective: eff, gen: g.gen}
	return eff
}

// recomputeNode recomputes one node against the current state of its
// dependencies. When fresh is true, or the node has never been evaluated,
// the intrinsic check is re-invoked; otherwise the cached base result is
// reused and only the aggregation is re-folded. Callers hold g.mu.
func (g *Graph) recomputeNode(ctx context.Context, name string, memo map[string]Evaluation, fresh bool) Evaluation {
	n := g.nodes[name]
	st := g.state[name]

	base := st.base
	if fresh || st.gen == 0 {
		base = g.runCheck(ctx, n)
	}

	edges := g.edges[name]
	deps := make([]depEvaluation, 0, len(edges))
	for _, e := range edges {
		deps = append(deps, depEvaluation{edge: e, eval: g.currentEvaluation(ctx, e.Target.name, memo)})
	}

	eff := aggregate(base, deps)
	memo[name] = eff
	g.state[name] = &nodeState{base: base, effective: eff, gen: g.gen}
	return eff
}

// currentEvaluation resolves a dependency's input to a partial pass: the
// pass memo first, then the cached effective value, then — for a node that
// has never been evaluated — a fresh evaluation of its cone.
func (g *Graph) currentEvaluation(ctx context.Context, name string, memo map[string]Evaluation) Evaluation {
	if ev, ok := memo[name]; ok {
		return ev
	}
	if st := g.state[name]; st.gen > 0 {
		return st.effective
	}
	return g.evalNode(ctx, name, memo)
}

// runCheck invokes a node's intrinsic check. Errors, panics, and sentinel
// unknown results all become concrete unhealthy evaluations so a failing
// check can never abort or poison an evaluation pass. Composites without a
// check start healthy.
func (g *Graph) runCheck(ctx context.Context, n *Node) (ev Evaluation) {
	if n.check == nil {
		return Healthy("")
	}

	defer func() {
		if r := recover(); r != nil {
			ev = Unhealthy(fmt.Sprintf("check panicked: %v", r))
		}
	}()

	res, err := n.check(ctx)
	if err != nil {
		return Unhealthy(err.Error())
	}
	if res.Status == StatusUnknown {
		// Unknown never participates in aggregation; a check reporting
		// nothing concrete counts as failed.
		return Unhealthy("check returned unknown status")
	}
	return res
}

// ancestorsOf returns the names transitively depending on name, via the
// reverse-edge index. The named node itself is not included.
func (g *Graph) ancestorsOf(name string) map[string]bool {
	affected := make(map[string]bool)
	queue := []string{name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, parent := range g.dependents[cur] {
			if !affected[parent] {
				affected[parent] = true
				queue = append(queue, parent)
			}
		}
	}
	return affected
}
