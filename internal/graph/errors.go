package graph

import "strings"

// CycleError describes a dependency cycle. The last entry of Path depends on
// the first.
type CycleError struct {
	Path []NodeKey
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return "circular dependency detected"
	}

	parts := make([]string, 0, len(e.Path)+1)
	for _, node := range e.Path {
		parts = append(parts, node.String())
	}
	parts = append(parts, e.Path[0].String()+" (cycle)")

	var b strings.Builder
	b.WriteString("circular dependency detected: ")
	b.WriteString(strings.Join(parts, " -> "))
	b.WriteString("\nTo resolve this: inject one side through a member or method, or resolve it lazily")
	return b.String()
}
