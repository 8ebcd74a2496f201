// Package probe provides a construction kit for health-check functions.
//
// The combinators wrap a graph.CheckFunc and return another, so they compose
// freely. Each one addresses a failure mode of checks that touch the outside
// world:
//
//   - WithTimeout: Bounds a check's runtime so a hung dependency cannot
//     stall an evaluation pass.
//
//   - WithRetry: Re-attempts failed checks with exponential backoff before
//     surfacing the failure.
//
//   - WithCircuit: Short-circuits an expensive check after repeated
//     failures and probes for recovery after a cooldown.
//
//   - WithCache: Memoizes the evaluation for a TTL, so frequent passes do
//     not hammer a costly check.
//
// Memory is a built-in check reporting process heap pressure.
//
// # Usage
//
//	check := probe.WithCache(
//	    probe.WithTimeout(pingDatabase, 2*time.Second),
//	    15*time.Second,
//	)
//	node := graph.NewCheck("db", check)
package probe
