package graph

import "fmt"

// depEvaluation pairs a dependency edge with the evaluated status of its
// target for one evaluation pass.
type depEvaluation struct {
	edge Edge
	eval Evaluation
}

// aggregate folds dependency evaluations into a node's base status.
//
// Contributions are grouped by importance and combined with the base by
// strict worst-of:
//   - Required propagates the dependency's status uncapped.
//   - Important contributes at most Degraded, whatever the dependency's
//     actual status.
//   - Optional contributes nothing.
//   - Resilient edges form one pool: a pool with at least one healthy
//     member contributes at most Degraded; a pool with no healthy member
//     contributes its worst member uncapped.
//
// The result is never better than the base status, so an intrinsic failure
// is never improved by healthy dependencies. The reason names the dominant
// cause; on ties the earlier contribution (base first, then declaration
// order) is kept.
func aggregate(base Evaluation, deps []depEvaluation) Evaluation {
	out := base

	apply := func(status Status, reason string) {
		if status > out.Status {
			out = Evaluation{Status: status, Reason: reason}
		}
	}

	var pool []depEvaluation

	for _, d := range deps {
		name := d.edge.Target.Name()
		switch d.edge.Importance {
		case Required:
			apply(d.eval.Status, fmt.Sprintf("required dependency %q is %s", name, d.eval.Status))
		case Important:
			if d.eval.Status >= StatusDegraded {
				apply(StatusDegraded, fmt.Sprintf("important dependency %q is %s", name, d.eval.Status))
			}
		case Optional:
			// Recorded in reports for visibility, never aggregated.
		case Resilient:
			pool = append(pool, d)
		}
	}

	if len(pool) > 0 {
		anyHealthy := false
		worstDep := pool[0]
		for _, d := range pool {
			if d.eval.Status == StatusHealthy {
				anyHealthy = true
			}
			if d.eval.Status > worstDep.eval.Status {
				worstDep = d
			}
		}

		name := worstDep.edge.Target.Name()
		switch {
		case worstDep.eval.Status <= StatusHealthy:
			// Fully healthy pool contributes nothing.
		case anyHealthy:
			apply(StatusDegraded, fmt.Sprintf("resilient dependency %q is %s", name, worstDep.eval.Status))
		default:
			apply(worstDep.eval.Status, fmt.Sprintf("resilient pool has no healthy member: %q is %s", name, worstDep.eval.Status))
		}
	}

	return out
}
