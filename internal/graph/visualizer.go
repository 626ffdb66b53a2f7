package graph

import (
	"fmt"
	"io"
	"strings"
)

// Visualizer renders a DependencyGraph.
type Visualizer struct {
	graph *DependencyGraph
}

// NewVisualizer creates a new graph visualizer.
func NewVisualizer(graph *DependencyGraph) *Visualizer {
	return &Visualizer{graph: graph}
}

// WriteDOT writes the graph in Graphviz DOT format.
func (v *Visualizer) WriteDOT(w io.Writer) error {
	nodes := v.graph.Nodes()
	ids := make(map[NodeKey]string, len(nodes))
	for i, node := range nodes {
		ids[node.Key] = fmt.Sprintf("n%d", i)
	}

	var b strings.Builder
	b.WriteString("digraph dependencies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=box];\n")

	for _, node := range nodes {
		fmt.Fprintf(&b, "  %s [label=\"%s\", fillcolor=\"%s\", style=filled];\n",
			ids[node.Key], formatNodeLabel(node), nodeColor(node))
	}

	for _, node := range nodes {
		for _, dep := range node.Dependencies {
			style := ""
			if dep.Optional {
				style = " [style=dashed]"
			}
			fmt.Fprintf(&b, "  %s -> %s%s;\n", ids[node.Key], ids[dep.Key], style)
		}
	}

	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteText writes the graph grouped by depth, followed by statistics.
func (v *Visualizer) WriteText(w io.Writer) error {
	v.graph.CalculateDepths()
	nodes := v.graph.Nodes()

	var b strings.Builder
	b.WriteString("Dependency Graph:\n")
	b.WriteString("=================\n\n")

	byDepth := make(map[int][]*Node)
	maxDepth := 0
	for _, node := range nodes {
		byDepth[node.Depth] = append(byDepth[node.Depth], node)
		maxDepth = max(maxDepth, node.Depth)
	}

	for depth := 0; depth <= maxDepth; depth++ {
		group, ok := byDepth[depth]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "Level %d:\n", depth)
		b.WriteString("--------\n")
		for _, node := range group {
			writeNodeDetails(&b, node, "  ")
		}
		b.WriteString("\n")
	}

	if cyclic, ok := byDepth[-1]; ok {
		b.WriteString("Nodes in Cycles:\n")
		b.WriteString("----------------\n")
		for _, node := range cyclic {
			writeNodeDetails(&b, node, "  ")
		}
		b.WriteString("\n")
	}

	edges := 0
	for _, node := range nodes {
		edges += len(node.Dependencies)
	}

	b.WriteString("Statistics:\n")
	b.WriteString("-----------\n")
	fmt.Fprintf(&b, "  Total nodes: %d\n", len(nodes))
	fmt.Fprintf(&b, "  Total edges: %d\n", edges)
	fmt.Fprintf(&b, "  Unbound dependencies: %d\n", len(v.graph.Missing()))
	if v.graph.IsAcyclic() {
		b.WriteString("  Cycles: None\n")
	} else {
		b.WriteString("  Cycles: DETECTED\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatNodeLabel(node *Node) string {
	label := shortTypeName(fmt.Sprintf("%v", node.Key.Type))
	if node.Key.Key != nil {
		label += fmt.Sprintf("\\n[%v]", node.Key.Key)
	}
	for _, l := range node.Labels {
		label += "\\n" + l
	}
	return label
}

func nodeColor(node *Node) string {
	if !node.Bound {
		return "lightgray"
	}
	if len(node.Labels) > 1 {
		return "lightyellow"
	}
	return "lightblue"
}

func writeNodeDetails(b *strings.Builder, node *Node, indent string) {
	fmt.Fprintf(b, "%s%s\n", indent, node.Key.String())
	for _, l := range node.Labels {
		fmt.Fprintf(b, "%s  Provider: %s\n", indent, l)
	}
	if !node.Bound {
		fmt.Fprintf(b, "%s  (unbound)\n", indent)
	}

	if len(node.Dependencies) > 0 {
		deps := make([]string, len(node.Dependencies))
		for i, dep := range node.Dependencies {
			deps[i] = dep.Key.String()
			if dep.Optional {
				deps[i] += "?"
			}
		}
		fmt.Fprintf(b, "%s  Dependencies: [%s]\n", indent, strings.Join(deps, ", "))
	}
}

// shortTypeName drops the package qualifier: "*pkg.Foo[pkg.Bar]" becomes "*Foo[pkg.Bar]".
func shortTypeName(name string) string {
	rest := strings.TrimLeft(name, "*[]")
	prefix := name[:len(name)-len(rest)]

	head, tail := rest, ""
	if idx := strings.Index(rest, "["); idx >= 0 {
		head, tail = rest[:idx], rest[idx:]
	}
	if idx := strings.LastIndex(head, "."); idx >= 0 {
		head = head[idx+1:]
	}
	return prefix + head + tail
}
