// Package graph models the health of interdependent services as a directed
// acyclic graph and derives, for each node, an aggregated health status
// from its own check and the statuses of the nodes it depends on.
//
// This package implements the evaluation and change-propagation engine: the
// node model, importance-weighted status aggregation, graph-wide caching
// and refresh semantics, cycle detection, and report diffing. It makes no
// network calls of its own — intrinsic checks are opaque callables supplied
// by the host.
//
// # Core Concepts
//
// A Node is either a leaf check (intrinsic health from a CheckFunc) or a
// composite (health derived purely from dependencies). Edges declare
// dependencies with an Importance that governs how a dependency's failure
// affects its parent:
//
//   - Required: propagates uncapped — an unhealthy required dependency
//     makes the parent unhealthy.
//   - Important: degrades the parent but never marks it unhealthy alone.
//   - Optional: reported for visibility, never aggregated.
//   - Resilient: same-parent edges form a redundant pool; one healthy
//     member caps the pool's contribution at degraded, a pool with no
//     healthy member propagates unhealthy.
//
// A node's effective status is never better than its own check's result:
// intrinsic failure always wins over healthy dependencies.
//
// # Building a Graph
//
//	db := graph.NewCheck("database", pingDatabase)
//	cache := graph.NewCheck("cache", pingCache)
//	api := graph.NewComposite("api").
//		AddDependency(db, graph.Required).
//		AddDependency(cache, graph.Important)
//
//	g, err := graph.New(api)
//	if err != nil {
//		log.Fatal(err) // duplicate names and cycles fail construction
//	}
//
// Construction walks forward edges from the roots, indexes every reachable
// node by name, and builds the reverse-edge index used for partial
// refreshes. Detect materializes a graph without an explicit root when
// exactly one node has no incoming edges. DetectCycles enumerates all
// elementary cycles as a pre-flight diagnostic.
//
// # Refreshing and Reading
//
// Report returns the cached report with no recomputation; it is the cheap,
// high-frequency read path. RefreshAll re-runs every check and recomputes
// the whole graph bottom-up, evaluating each node exactly once per pass no
// matter how many parents share it. Refresh recomputes one node and only
// its ancestor cone, for push-driven hosts that know which leaf changed:
//
//	report := g.RefreshAll(ctx)
//	fmt.Println(report.OverallStatus)
//
//	// external stimulus: only the database changed
//	report, err = g.Refresh(ctx, "database")
//
// # Change Notifications
//
// Subscribers receive the new report after any refresh pass that actually
// changed it, compared by value:
//
//	sub := g.Subscribe(func(r *graph.Report) {
//		for _, c := range graph.Diff(prev, r) {
//			log.Printf("%s: %s -> %s", c.Name, c.Previous, c.Current)
//		}
//	})
//	defer sub.Cancel()
//
// Subscribers are invoked after the evaluation lock is released, so they
// may call back into the graph.
//
// # Polling
//
// Poller drives RefreshAll on an interval for pull-mode hosts:
//
//	p := graph.NewPoller(g, graph.PollerConfig{Interval: 15 * time.Second})
//	go p.Start(ctx)
//
// # HTTP Endpoints
//
// The handlers serve the cached report without triggering recomputation:
//
//	mux := http.NewServeMux()
//	graph.RegisterHandlers(mux, g)
package graph
