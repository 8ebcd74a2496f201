package graph

import (
	"context"
	"fmt"
	"strings"
)

// Importance classifies how a dependency's status affects the node that
// depends on it. See the package documentation for the aggregation rules.
type Importance int

const (
	// Required dependencies propagate their status to the parent uncapped:
	// an unhealthy required dependency makes the parent unhealthy.
	Required Importance = iota
	// Important dependencies degrade the parent when they fail but can
	// never mark it unhealthy on their own.
	Important
	// Optional dependencies are reported for visibility and never influence
	// the parent's status.
	Optional
	// Resilient dependencies on the same parent form a redundant pool: as
	// long as one member is healthy the pool only degrades the parent, and
	// only a pool with no healthy member propagates unhealthy.
	Resilient
)

// String returns the string representation of the importance level.
func (i Importance) String() string {
	switch i {
	case Required:
		return "required"
	case Important:
		return "important"
	case Optional:
		return "optional"
	case Resilient:
		return "resilient"
	default:
		return fmt.Sprintf("importance(%d)", int(i))
	}
}

// ParseImportance converts a string form back into an Importance.
// Matching is case-insensitive.
func ParseImportance(s string) (Importance, error) {
	switch strings.ToLower(s) {
	case "required":
		return Required, nil
	case "important":
		return Important, nil
	case "optional":
		return Optional, nil
	case "resilient":
		return Resilient, nil
	default:
		return Required, fmt.Errorf("%w: %q", ErrInvalidImportance, s)
	}
}

// CheckFunc is an intrinsic health check attached to a leaf node. A non-nil
// error (or a panic, which the evaluator recovers) is converted into an
// unhealthy evaluation carrying the error text as reason; it never aborts
// the evaluation pass. The context is the one passed to the triggering
// RefreshAll, Refresh, or Evaluate call — the engine imposes no timeout of
// its own.
type CheckFunc func(ctx context.Context) (Evaluation, error)

// Edge is a dependency declaration owned by the depending node.
type Edge struct {
	// Target is the depended-on node.
	Target *Node

	// Importance classifies how Target's status affects the depending node.
	Importance Importance
}

// Node is the atomic unit of a health graph: either a leaf check (intrinsic
// health from a CheckFunc) or a composite (health derived purely from its
// dependencies). Nodes are created by the host and wired with dependencies
// before being attached to a Graph; the Graph captures the topology at
// construction, so later mutation does not affect a materialized Graph.
type Node struct {
	name  string
	check CheckFunc
	deps  []Edge
}

// NewCheck creates a leaf node whose own health comes from check.
func NewCheck(name string, check CheckFunc) *Node {
	return &Node{name: name, check: check}
}

// NewComposite creates a node with no intrinsic check. Its base status is
// healthy; its effective status comes entirely from its dependencies.
func NewComposite(name string) *Node {
	return &Node{name: name}
}

// Name returns the node's unique name.
func (n *Node) Name() string {
	return n.name
}

// HasCheck reports whether the node carries an intrinsic check.
func (n *Node) HasCheck() bool {
	return n.check != nil
}

// AddDependency declares that n depends on target with the given importance.
// It returns n so declarations can be chained.
func (n *Node) AddDependency(target *Node, importance Importance) *Node {
	n.deps = append(n.deps, Edge{Target: target, Importance: importance})
	return n
}

// Dependencies returns a copy of the node's dependency edges in declaration
// order. Order is significant only for diagnostics, never for aggregation.
func (n *Node) Dependencies() []Edge {
	out := make([]Edge, len(n.deps))
	copy(out, n.deps)
	return out
}
