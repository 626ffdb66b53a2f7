// Package graph holds a static dependency graph of bindings, used for
// diagnostics: cycle detection, ordering and visualization.
package graph

import (
	"fmt"
	"reflect"
	"sync"
)

// NodeKey uniquely identifies a node in the graph.
type NodeKey struct {
	Type reflect.Type
	Key  any // binding identifier, nil when unnamed
}

func (k NodeKey) String() string {
	if k.Key != nil {
		return fmt.Sprintf("%v[%v]", k.Type, k.Key)
	}
	return fmt.Sprintf("%v", k.Type)
}

// Dependency is an edge from a node to something it needs.
type Dependency struct {
	Key      NodeKey
	Optional bool
}

// Node represents a binding (or a referenced but unbound key) in the graph.
type Node struct {
	Key NodeKey

	// Labels describe the providers registered under Key, one per provider.
	Labels []string

	// Bound is false for placeholder nodes that were only referenced.
	Bound bool

	Dependencies []Dependency
	Dependents   []NodeKey

	// Depth is the longest dependency chain below the node; -1 inside cycles.
	Depth int
}

func (n *Node) String() string {
	return fmt.Sprintf("Node{%s, deps=%d, dependents=%d}", n.Key, len(n.Dependencies), len(n.Dependents))
}

// DependencyGraph manages dependency relationships between bindings.
type DependencyGraph struct {
	mu    sync.RWMutex
	nodes map[NodeKey]*Node
	order []NodeKey
}

// New creates an empty graph.
func New() *DependencyGraph {
	return &DependencyGraph{nodes: make(map[NodeKey]*Node)}
}

// AddNode records a provider for key with its dependencies. Adding the same key
// again merges the dependencies, which mirrors several providers bound to one
// contract.
func (g *DependencyGraph) AddNode(key NodeKey, label string, deps []Dependency) {
	g.mu.Lock()
	defer g.mu.Unlock()

	node := g.ensure(key)
	node.Bound = true
	if label != "" {
		node.Labels = append(node.Labels, label)
	}

	for _, dep := range deps {
		node.Dependencies = append(node.Dependencies, dep)
		target := g.ensure(dep.Key)
		target.Dependents = appendUnique(target.Dependents, key)
	}
}

func (g *DependencyGraph) ensure(key NodeKey) *Node {
	node, ok := g.nodes[key]
	if !ok {
		node = &Node{Key: key}
		g.nodes[key] = node
		g.order = append(g.order, key)
	}
	return node
}

func appendUnique(keys []NodeKey, key NodeKey) []NodeKey {
	for _, k := range keys {
		if k == key {
			return keys
		}
	}
	return append(keys, key)
}

// Node returns the node stored under key.
func (g *DependencyGraph) Node(key NodeKey) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	node, ok := g.nodes[key]
	return node, ok
}

// Size returns the number of nodes, placeholders included.
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// Nodes returns every node in insertion order.
func (g *DependencyGraph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*Node, 0, len(g.order))
	for _, key := range g.order {
		nodes = append(nodes, g.nodes[key])
	}
	return nodes
}

// Dependencies returns the direct dependencies of key.
func (g *DependencyGraph) Dependencies(key NodeKey) []NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[key]
	if !ok {
		return nil
	}
	keys := make([]NodeKey, 0, len(node.Dependencies))
	for _, dep := range node.Dependencies {
		keys = appendUnique(keys, dep.Key)
	}
	return keys
}

// Dependents returns the nodes that depend directly on key.
func (g *DependencyGraph) Dependents(key NodeKey) []NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.nodes[key]
	if !ok {
		return nil
	}
	return append([]NodeKey(nil), node.Dependents...)
}

// TransitiveDependencies returns every key reachable from key, breadth first.
func (g *DependencyGraph) TransitiveDependencies(key NodeKey) []NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := map[NodeKey]bool{key: true}
	var result []NodeKey
	queue := []NodeKey{key}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node, ok := g.nodes[current]
		if !ok {
			continue
		}
		for _, dep := range node.Dependencies {
			if seen[dep.Key] {
				continue
			}
			seen[dep.Key] = true
			result = append(result, dep.Key)
			queue = append(queue, dep.Key)
		}
	}
	return result
}

// Missing returns required dependencies that have no bound node.
func (g *DependencyGraph) Missing() []NodeKey {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var missing []NodeKey
	for _, key := range g.order {
		node := g.nodes[key]
		if node.Bound {
			continue
		}
		for _, dependent := range node.Dependents {
			if g.isRequiredEdge(dependent, key) {
				missing = append(missing, key)
				break
			}
		}
	}
	return missing
}

func (g *DependencyGraph) isRequiredEdge(from, to NodeKey) bool {
	for _, dep := range g.nodes[from].Dependencies {
		if dep.Key == to && !dep.Optional {
			return true
		}
	}
	return false
}

// Roots returns nodes nothing depends on.
func (g *DependencyGraph) Roots() []*Node {
	return g.filter(func(n *Node) bool { return len(n.Dependents) == 0 })
}

// Leaves returns nodes without dependencies.
func (g *DependencyGraph) Leaves() []*Node {
	return g.filter(func(n *Node) bool { return len(n.Dependencies) == 0 })
}

func (g *DependencyGraph) filter(keep func(*Node) bool) []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var nodes []*Node
	for _, key := range g.order {
		if node := g.nodes[key]; keep(node) {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

// TopologicalSort returns nodes with dependencies ordered before dependents.
func (g *DependencyGraph) TopologicalSort() ([]*Node, error) {
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	remaining := make(map[NodeKey]int, len(g.nodes))
	for _, key := range g.order {
		var unique []NodeKey
		for _, dep := range g.nodes[key].Dependencies {
			unique = appendUnique(unique, dep.Key)
		}
		remaining[key] = len(unique)
	}

	var queue []NodeKey
	for _, key := range g.order {
		if remaining[key] == 0 {
			queue = append(queue, key)
		}
	}

	result := make([]*Node, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, g.nodes[current])

		for _, dependent := range g.nodes[current].Dependents {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	return result, nil
}

// DetectCycles reports the first cycle found, walking nodes in insertion order.
func (g *DependencyGraph) DetectCycles() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	const (
		white = iota
		grey
		black
	)
	color := make(map[NodeKey]int, len(g.nodes))
	var stack []NodeKey

	var visit func(key NodeKey) *CycleError
	visit = func(key NodeKey) *CycleError {
		color[key] = grey
		stack = append(stack, key)

		for _, dep := range g.nodes[key].Dependencies {
			switch color[dep.Key] {
			case grey:
				start := 0
				for i, k := range stack {
					if k == dep.Key {
						start = i
						break
					}
				}
				return &CycleError{Path: append([]NodeKey(nil), stack[start:]...)}
			case white:
				if err := visit(dep.Key); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[key] = black
		return nil
	}

	for _, key := range g.order {
		if color[key] == white {
			if err := visit(key); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsAcyclic reports whether the graph has no cycles.
func (g *DependencyGraph) IsAcyclic() bool {
	return g.DetectCycles() == nil
}

// CalculateDepths fills Node.Depth for every node.
func (g *DependencyGraph) CalculateDepths() {
	g.mu.Lock()
	defer g.mu.Unlock()

	const visiting = -2
	depth := make(map[NodeKey]int, len(g.nodes))

	var calc func(key NodeKey) int
	calc = func(key NodeKey) int {
		if d, ok := depth[key]; ok {
			if d == visiting {
				return -1
			}
			return d
		}
		depth[key] = visiting

		d := 0
		for _, dep := range g.nodes[key].Dependencies {
			child := calc(dep.Key)
			if child < 0 {
				d = -1
				break
			}
			d = max(d, child+1)
		}

		depth[key] = d
		return d
	}

	for _, key := range g.order {
		g.nodes[key].Depth = calc(key)
	}
}
