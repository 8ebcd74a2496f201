package topology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/healthgraph/graph"
)

// Definition is a declarative health graph loaded from YAML.
type Definition struct {
	// Roots names the graph's root nodes. Empty enables automatic root
	// detection over the defined nodes.
	Roots []string `yaml:"roots,omitempty"`

	// Nodes declares every node in the graph.
	Nodes []NodeDef `yaml:"nodes"`
}

// NodeDef declares one node.
type NodeDef struct {
	// Name is the node's unique name.
	Name string `yaml:"name"`

	// Check is a registered check kind; empty declares a pure composite.
	Check string `yaml:"check,omitempty"`

	// Params configures the check factory. Values may reference
	// environment variables (`${VAR}`), expanded at build time.
	Params map[string]string `yaml:"params,omitempty"`

	// DependsOn lists the node's dependency edges.
	DependsOn []DependencyDef `yaml:"depends_on,omitempty"`
}

// DependencyDef declares one dependency edge.
type DependencyDef struct {
	// Target names the depended-on node.
	Target string `yaml:"target"`

	// Importance is the edge's importance level; parsed case-insensitively,
	// "required" when omitted.
	Importance string `yaml:"importance,omitempty"`
}

// Load reads and parses a topology file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML topology document.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return &def, nil
}

// Build materializes the definition into a Graph. Check kinds are resolved
// through reg (DefaultRegistry when nil), params are env-expanded, and
// dependency targets are wired by name. Explicit roots select graph.New;
// without them graph.Detect roots the graph automatically.
func (d *Definition) Build(reg *Registry) (*graph.Graph, error) {
	if reg == nil {
		reg = DefaultRegistry
	}
	if len(d.Nodes) == 0 {
		return nil, ErrNoNodes
	}

	nodes := make(map[string]*graph.Node, len(d.Nodes))
	for _, def := range d.Nodes {
		if def.Name == "" {
			return nil, ErrUnnamedNode
		}
		if _, exists := nodes[def.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNode, def.Name)
		}

		if def.Check == "" {
			nodes[def.Name] = graph.NewComposite(def.Name)
			continue
		}

		params, err := expandParams(def.Name, def.Params)
		if err != nil {
			return nil, err
		}
		check, err := reg.Create(def.Check, params)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", def.Name, err)
		}
		nodes[def.Name] = graph.NewCheck(def.Name, check)
	}

	for _, def := range d.Nodes {
		node := nodes[def.Name]
		for _, dep := range def.DependsOn {
			target, ok := nodes[dep.Target]
			if !ok {
				return nil, fmt.Errorf("%w: %q (node %q)", ErrUnknownTarget, dep.Target, def.Name)
			}

			importance := graph.Required
			if dep.Importance != "" {
				parsed, err := graph.ParseImportance(dep.Importance)
				if err != nil {
					return nil, fmt.Errorf("node %q dependency %q: %w", def.Name, dep.Target, err)
				}
				importance = parsed
			}
			node.AddDependency(target, importance)
		}
	}

	if len(d.Roots) == 0 {
		all := make([]*graph.Node, 0, len(d.Nodes))
		for _, def := range d.Nodes {
			all = append(all, nodes[def.Name])
		}
		return graph.Detect(all...)
	}

	roots := make([]*graph.Node, 0, len(d.Roots))
	for _, name := range d.Roots {
		root, ok := nodes[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownRoot, name)
		}
		roots = append(roots, root)
	}
	return graph.New(roots...)
}
