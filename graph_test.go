package zenject_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject"
	"github.com/aerialflame7125/zenject/internal/graph"
	"github.com/aerialflame7125/zenject/internal/testutil"
)

func TestDependencyGraph(t *testing.T) {
	t.Parallel()

	c := testutil.NewContainer(t)
	zenject.Bind[testutil.Logger](c).To(zenject.TypeOf[*testutil.ConsoleLogger]()).AsSingle()
	zenject.Bind[*testutil.UserService](c).AsTransient()

	g, err := c.DependencyGraph()
	require.NoError(t, err)

	svc, ok := g.Node(graph.NodeKey{Type: zenject.TypeOf[*testutil.UserService]()})
	require.True(t, ok)
	assert.True(t, svc.Bound)
	require.Len(t, svc.Labels, 1)
	assert.True(t, strings.HasPrefix(svc.Labels[0], "TransientProvider("), svc.Labels[0])
	assert.Len(t, svc.Dependencies, 2, "members are not edges")

	logger, ok := g.Node(graph.NodeKey{Type: zenject.TypeOf[testutil.Logger]()})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(logger.Labels[0], "CachedProvider("), logger.Labels[0])

	assert.Equal(t, []graph.NodeKey{{Type: zenject.TypeOf[*testutil.Database]()}}, g.Missing())
	assert.NoError(t, c.AnalyzeGraph())
}

func TestDependencyGraph_Hierarchy(t *testing.T) {
	t.Parallel()

	root := testutil.NewContainer(t)
	zenject.Bind[*testutil.Database](root).AsSingle()
	child := testutil.NewSubContainer(t, root)
	zenject.Bind[*testutil.Cache](child).AsSingle()

	g, err := child.DependencyGraph()
	require.NoError(t, err)
	_, ok := g.Node(graph.NodeKey{Type: zenject.TypeOf[*testutil.Database]()})
	assert.True(t, ok, "ancestor bindings are included")

	g, err = root.DependencyGraph()
	require.NoError(t, err)
	_, ok = g.Node(graph.NodeKey{Type: zenject.TypeOf[*testutil.Cache]()})
	assert.False(t, ok)
}

func TestAnalyzeGraph_Cycle(t *testing.T) {
	t.Parallel()

	c := testutil.NewContainer(t)
	zenject.Bind[*testutil.CycleA](c).AsSingle()
	zenject.Bind[*testutil.CycleB](c).AsSingle()

	err := c.AnalyzeGraph()
	var cycle *graph.CycleError
	require.True(t, errors.As(err, &cycle), "got %v", err)
	assert.GreaterOrEqual(t, len(cycle.Path), 2)
	assert.Contains(t, err.Error(), "circular dependency detected")
}

func TestWriteDependencyGraph(t *testing.T) {
	c := testutil.NewContainer(t)
	zenject.Bind[testutil.Logger](c).To(zenject.TypeOf[*testutil.ConsoleLogger]()).AsSingle()
	zenject.Bind[*testutil.Database](c).WithId("primary").AsSingle()
	zenject.Bind[*testutil.UserService](c).AsSingle()

	tests := []struct {
		name   string
		format zenject.GraphFormat
		prefix string
	}{
		{name: "dot", format: zenject.GraphDOT, prefix: "digraph dependencies {"},
		{name: "text", format: zenject.GraphText, prefix: "Dependency Graph:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, c.WriteDependencyGraph(&buf, tt.format))
			assert.True(t, strings.HasPrefix(buf.String(), tt.prefix))
			assert.Contains(t, buf.String(), "UserService")
			assert.Contains(t, buf.String(), "primary")
		})
	}

	var buf bytes.Buffer
	assert.Error(t, c.WriteDependencyGraph(&buf, zenject.GraphFormat(9)))
}
