package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Graph owns the set of nodes reachable from its declared roots. It indexes
// nodes by name, keeps the reverse-edge (dependent) index used for push
// propagation, orchestrates evaluation passes, and holds the cached Report.
//
// Topology is captured at construction and never changes afterwards; the
// per-node evaluation cache and the cached Report are the only mutable
// state, written under a single evaluation lock.
type Graph struct {
	mu sync.Mutex // serializes evaluation passes

	nodes      map[string]*Node
	edges      map[string][]Edge   // forward adjacency, declaration order
	dependents map[string][]string // reverse index: name -> direct parents
	order      []string            // deterministic order, dependencies first
	roots      []string

	gen    uint64
	state  map[string]*nodeState
	report *Report

	sf singleflight.Group

	subMu    sync.Mutex
	subs     map[uuid.UUID]func(*Report)
	subOrder []uuid.UUID
}

// nodeState is the cached evaluation of one node: the intrinsic (base)
// result, the effective result after aggregation, and the generation of the
// pass that wrote them. Generation zero means never evaluated.
type nodeState struct {
	base      Evaluation
	effective Evaluation
	gen       uint64
}

// New materializes a Graph from the given root nodes. It walks forward
// edges from the roots, indexes every reachable node by name, builds the
// reverse-edge index, and validates the topology: nil nodes, duplicate
// names, and dependency cycles fail construction with the offending names.
//
// The new Graph's cached Report holds every reachable node at
// StatusUnknown; no check runs until the first refresh.
func New(roots ...*Node) (*Graph, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("%w: at least one root is required", ErrNoRoot)
	}

	g := &Graph{
		nodes:      make(map[string]*Node),
		edges:      make(map[string][]Edge),
		dependents: make(map[string][]string),
		state:      make(map[string]*nodeState),
		subs:       make(map[uuid.UUID]func(*Report)),
	}

	marks := make(map[string]int)
	var path []string

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if prev, ok := g.nodes[n.name]; ok && prev != n {
			return fmt.Errorf("%w: %q", ErrDuplicateName, n.name)
		}
		switch marks[n.name] {
		case markDone:
			return nil
		case markInProgress:
			return fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycleFrom(path, n.name), " -> "))
		}

		g.nodes[n.name] = n
		marks[n.name] = markInProgress
		path = append(path, n.name)

		// Snapshot the edges: the topology is frozen from here on, later
		// AddDependency calls on the node do not reach this Graph.
		deps := n.Dependencies()
		for _, e := range deps {
			if e.Target == nil {
				return fmt.Errorf("%w: dependency of %q", ErrNilNode, n.name)
			}
			if err := visit(e.Target); err != nil {
				return err
			}
		}

		g.edges[n.name] = deps
		for _, e := range deps {
			g.dependents[e.Target.name] = append(g.dependents[e.Target.name], n.name)
		}

		path = path[:len(path)-1]
		marks[n.name] = markDone
		g.order = append(g.order, n.name)
		return nil
	}

	for _, r := range roots {
		if r == nil {
			return nil, fmt.Errorf("%w: root", ErrNilNode)
		}
		if err := visit(r); err != nil {
			return nil, err
		}
		if !containsName(g.roots, r.name) {
			g.roots = append(g.roots, r.name)
		}
	}

	for _, name := range g.order {
		g.state[name] = &nodeState{}
	}
	g.report = g.buildReportLocked(time.Now())

	return g, nil
}

// Detect materializes a Graph with automatic root detection: the transitive
// closure of the given nodes is scanned for nodes with no incoming edges,
// and exactly one candidate becomes the root. Zero candidates, multiple
// candidates, or closure nodes unreachable from the detected root are
// construction errors naming the nodes involved.
func Detect(nodes ...*Node) (*Graph, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no nodes given", ErrNoRoot)
	}

	universe := make(map[string]*Node)
	indegree := make(map[string]int)
	queue := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			return nil, fmt.Errorf("%w: node list", ErrNilNode)
		}
		queue = append(queue, n)
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if prev, ok := universe[n.name]; ok {
			if prev != n {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateName, n.name)
			}
			continue
		}
		universe[n.name] = n
		for _, e := range n.deps {
			if e.Target == nil {
				return nil, fmt.Errorf("%w: dependency of %q", ErrNilNode, n.name)
			}
			indegree[e.Target.name]++
			queue = append(queue, e.Target)
		}
	}

	var candidates []string
	for name := range universe {
		if indegree[name] == 0 {
			candidates = append(candidates, name)
		}
	}
	sort.Strings(candidates)

	switch len(candidates) {
	case 1:
		// fall through to construction
	case 0:
		return nil, fmt.Errorf("%w: every node has an incoming edge", ErrNoRoot)
	default:
		return nil, fmt.Errorf("%w: candidates %s", ErrAmbiguousRoot, strings.Join(candidates, ", "))
	}

	g, err := New(universe[candidates[0]])
	if err != nil {
		return nil, err
	}

	if g.Len() != len(universe) {
		var missing []string
		for name := range universe {
			if _, ok := g.nodes[name]; !ok {
				missing = append(missing, name)
			}
		}
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", ErrUnreachable, strings.Join(missing, ", "))
	}

	return g, nil
}

// Get returns the reachable node with the given name, or ErrNodeNotFound.
func (g *Graph) Get(name string) (*Node, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	return n, nil
}

// TryGet is the non-failing companion to Get.
func (g *Graph) TryGet(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Len returns the number of reachable nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// Names returns every reachable node name, dependencies first. The order is
// fixed at construction and matches report entry order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Roots returns the names of the graph's roots.
func (g *Graph) Roots() []string {
	out := make([]string, len(g.roots))
	copy(out, g.roots)
	return out
}

// Dependents returns the names of the nodes that directly depend on name.
func (g *Graph) Dependents(name string) ([]string, error) {
	if _, ok := g.nodes[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	parents := g.dependents[name]
	out := make([]string, len(parents))
	copy(out, parents)
	return out, nil
}

// buildReportLocked assembles a Report from the current node states.
// Callers must hold g.mu (or be constructing the Graph).
func (g *Graph) buildReportLocked(ts time.Time) *Report {
	entries := make([]Entry, 0, len(g.order))
	for _, name := range g.order {
		st := g.state[name]
		entries = append(entries, Entry{
			Name:   name,
			Status: st.effective.Status,
			Reason: st.effective.Reason,
		})
	}

	overall := StatusUnknown
	for _, name := range g.roots {
		overall = worst(overall, g.state[name].effective.Status)
	}

	return newReport(entries, overall, ts)
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
