package topology

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jonwraymond/healthgraph/graph"
)

// CheckFactory builds a check function from a node's expanded params.
type CheckFactory func(params map[string]string) (graph.CheckFunc, error)

// Registry maps check kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]CheckFactory
}

// NewRegistry creates an empty check registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]CheckFactory)}
}

// Register adds a check factory under a kind name.
func (r *Registry) Register(kind string, factory CheckFactory) error {
	if strings.TrimSpace(kind) == "" || factory == nil {
		return errors.New("invalid check registration")
	}
	kind = strings.TrimSpace(kind)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("check kind %q already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Create instantiates a check by kind.
func (r *Registry) Create(kind string, params map[string]string) (graph.CheckFunc, error) {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return nil, errors.New("check kind is required")
	}

	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCheck, kind)
	}

	return factory(params)
}

// List returns registered kind names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// DefaultRegistry is the global registry used when Build receives nil.
var DefaultRegistry = NewRegistry()
