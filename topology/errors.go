package topology

import "errors"

// Sentinel errors for topology loading and building.
var (
	// ErrNoNodes is returned when a definition declares no nodes.
	ErrNoNodes = errors.New("topology: no nodes defined")

	// ErrUnnamedNode is returned when a node entry has no name.
	ErrUnnamedNode = errors.New("topology: node without a name")

	// ErrDuplicateNode is returned when two entries share a name.
	ErrDuplicateNode = errors.New("topology: duplicate node name")

	// ErrUnknownCheck is returned when a node references an unregistered
	// check kind.
	ErrUnknownCheck = errors.New("topology: unknown check kind")

	// ErrUnknownTarget is returned when a dependency names an undefined node.
	ErrUnknownTarget = errors.New("topology: unknown dependency target")

	// ErrUnknownRoot is returned when roots name an undefined node.
	ErrUnknownRoot = errors.New("topology: unknown root")
)
