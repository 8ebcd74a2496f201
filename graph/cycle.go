package graph

import "sort"

// Three-color DFS marks used by the construction walk.
const (
	markUnvisited = iota
	markInProgress
	markDone
)

// cycleFrom extracts the cycle path from a DFS stack: the ordered names
// from the back-edge's target to the current node.
func cycleFrom(path []string, target string) []string {
	for i, n := range path {
		if n == target {
			out := make([]string, len(path)-i)
			copy(out, path[i:])
			return out
		}
	}
	return []string{target}
}

// DetectCycles returns every elementary cycle in the dependency relation of
// the transitive closure of the given nodes. Each cycle is the ordered name
// sequence starting at its lexicographically smallest member; an acyclic
// graph yields an empty result. It never fails, which makes it suitable for
// pre-flight validation before construction — New and Detect fail fast on
// the first cycle instead.
//
// The enumeration is Johnson's circuit-finding: vertices are processed in
// sorted order, and circuits through a start vertex are searched only among
// vertices that sort at or after it, so each cycle is reported exactly once.
func DetectCycles(nodes ...*Node) [][]string {
	adj, names := closureAdjacency(nodes)
	if len(names) == 0 {
		return nil
	}

	index := make(map[string]int, len(names))
	for i, n := range names {
		index[n] = i
	}

	var cycles [][]string

	blocked := make(map[string]bool, len(names))
	blockList := make(map[string]map[string]bool, len(names))

	var unblock func(v string)
	unblock = func(v string) {
		blocked[v] = false
		for w := range blockList[v] {
			delete(blockList[v], w)
			if blocked[w] {
				unblock(w)
			}
		}
	}

	for startIdx, start := range names {
		for _, v := range names {
			blocked[v] = false
			blockList[v] = make(map[string]bool)
		}

		var stack []string
		var circuit func(v string) bool
		circuit = func(v string) bool {
			found := false
			stack = append(stack, v)
			blocked[v] = true

			for _, w := range adj[v] {
				if index[w] < startIdx {
					continue
				}
				if w == start {
					cycle := make([]string, len(stack))
					copy(cycle, stack)
					cycles = append(cycles, cycle)
					found = true
				} else if !blocked[w] {
					if circuit(w) {
						found = true
					}
				}
			}

			if found {
				unblock(v)
			} else {
				for _, w := range adj[v] {
					if index[w] < startIdx {
						continue
					}
					blockList[w][v] = true
				}
			}

			stack = stack[:len(stack)-1]
			return found
		}

		circuit(start)
	}

	return cycles
}

// closureAdjacency walks the transitive closure of the given nodes and
// returns the name-keyed adjacency list plus the sorted name set. Nil nodes
// and nil edge targets are skipped (this is a diagnostic, not a validator);
// same-named nodes have their edges merged.
func closureAdjacency(nodes []*Node) (map[string][]string, []string) {
	adj := make(map[string]map[string]bool)
	var queue []*Node
	for _, n := range nodes {
		if n != nil {
			queue = append(queue, n)
		}
	}

	seen := make(map[*Node]bool)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true

		if adj[n.name] == nil {
			adj[n.name] = make(map[string]bool)
		}
		for _, e := range n.deps {
			if e.Target == nil {
				continue
			}
			adj[n.name][e.Target.name] = true
			queue = append(queue, e.Target)
		}
	}

	names := make([]string, 0, len(adj))
	for name := range adj {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string][]string, len(adj))
	for name, targets := range adj {
		list := make([]string, 0, len(targets))
		for t := range targets {
			list = append(list, t)
		}
		sort.Strings(list)
		out[name] = list
	}
	return out, names
}
