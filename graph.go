package zenject

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/aerialflame7125/zenject/internal/graph"
)

// GraphFormat selects the output of WriteDependencyGraph.
type GraphFormat int

const (
	GraphText GraphFormat = iota
	GraphDOT
)

// DependencyGraph builds a static graph of the bindings visible from c.
// Edges follow constructor parameters only; members and methods are injected
// after construction and cannot form construction cycles.
func (c *Container) DependencyGraph() (*graph.DependencyGraph, error) {
	defer c.lock()()

	if err := c.FlushBindings(); err != nil {
		return nil, err
	}

	g := graph.New()
	for _, container := range c.lookups[SourceAny] {
		for _, id := range container.order {
			for _, info := range container.providers[id] {
				ctx := c.rootContext(id.Type, id.Identifier)
				concrete := info.provider.GetInstanceType(ctx)
				g.AddNode(nodeKey(id), describeProvider(info.provider, concrete), c.constructorEdges(concrete))
			}
		}
	}
	g.CalculateDepths()
	return g, nil
}

func nodeKey(id BindingId) graph.NodeKey {
	return graph.NodeKey{Type: id.Type, Key: id.Identifier}
}

func (c *Container) constructorEdges(concrete reflect.Type) []graph.Dependency {
	if concrete == nil {
		return nil
	}
	info, ok := c.types.TypeInfo(concrete)
	if !ok || info.Constructor == nil {
		return nil
	}
	deps := make([]graph.Dependency, 0, len(info.Constructor.Params))
	for _, p := range info.Constructor.Params {
		deps = append(deps, graph.Dependency{
			Key:      graph.NodeKey{Type: p.MemberType, Key: p.Identifier},
			Optional: p.Optional,
		})
	}
	return deps
}

func describeProvider(p Provider, concrete reflect.Type) string {
	name := fmt.Sprintf("%T", p)
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if concrete == nil {
		return name
	}
	return fmt.Sprintf("%s(%s)", name, formatType(concrete))
}

// AnalyzeGraph reports the first construction cycle among the bindings
// visible from c.
func (c *Container) AnalyzeGraph() error {
	g, err := c.DependencyGraph()
	if err != nil {
		return err
	}
	return g.DetectCycles()
}

// WriteDependencyGraph renders the dependency graph to w.
func (c *Container) WriteDependencyGraph(w io.Writer, format GraphFormat) error {
	g, err := c.DependencyGraph()
	if err != nil {
		return err
	}
	v := graph.NewVisualizer(g)
	switch format {
	case GraphDOT:
		return v.WriteDOT(w)
	case GraphText:
		return v.WriteText(w)
	default:
		return fmt.Errorf("unknown graph format %d", format)
	}
}
