package graph

import "errors"

var (
	// ErrNodeNotFound indicates a lookup by name matched no reachable node.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrDuplicateName indicates two distinct nodes share a name.
	ErrDuplicateName = errors.New("graph: duplicate node name")

	// ErrCycle indicates the dependency relation contains a cycle.
	ErrCycle = errors.New("graph: dependency cycle detected")

	// ErrNilNode indicates a nil node was supplied as a root or edge target.
	ErrNilNode = errors.New("graph: nil node")

	// ErrNoRoot indicates no root was supplied and none could be detected.
	ErrNoRoot = errors.New("graph: no root node")

	// ErrAmbiguousRoot indicates root auto-detection found more than one
	// candidate and an explicit root is required.
	ErrAmbiguousRoot = errors.New("graph: ambiguous root")

	// ErrUnreachable indicates a declared node is not reachable from the
	// detected root.
	ErrUnreachable = errors.New("graph: node unreachable from root")

	// ErrInvalidStatus indicates a string does not name a status.
	ErrInvalidStatus = errors.New("graph: invalid status")

	// ErrInvalidImportance indicates a string does not name an importance
	// level.
	ErrInvalidImportance = errors.New("graph: invalid importance")
)
