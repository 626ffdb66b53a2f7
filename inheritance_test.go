package zenject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject"
	"github.com/aerialflame7125/zenject/internal/testutil"
)

func hasLocal[T any](t *testing.T, c *zenject.Container) bool {
	t.Helper()
	ok, err := c.HasBindingId(zenject.TypeOf[T](), nil, zenject.SourceLocal)
	require.NoError(t, err)
	return ok
}

func TestInheritance_Copy(t *testing.T) {
	t.Run("copied singleton is shared", func(t *testing.T) {
		t.Parallel()

		root := testutil.NewContainer(t)
		zenject.Bind[*testutil.Database](root).AsSingle().CopyIntoAllSubContainers()

		first := testutil.NewSubContainer(t, root)
		second := testutil.NewSubContainer(t, root)

		assert.True(t, hasLocal[*testutil.Database](t, first))
		assert.True(t, hasLocal[*testutil.Database](t, second))

		fromRoot := testutil.AssertResolvable[*testutil.Database](t, root)
		assert.Same(t, fromRoot, testutil.AssertResolvable[*testutil.Database](t, first))
		assert.Same(t, fromRoot, testutil.AssertResolvable[*testutil.Database](t, second))
	})

	t.Run("copied transient is rebuilt in each child", func(t *testing.T) {
		t.Parallel()

		root := testutil.NewContainer(t)
		zenject.Bind[testutil.Logger](root).To(zenject.TypeOf[*testutil.ConsoleLogger]()).AsSingle()
		zenject.Bind[*testutil.Greeter](root).AsTransient().WithArguments("Hi").CopyIntoAllSubContainers()

		child := testutil.NewSubContainer(t, root)
		grandchild := testutil.NewSubContainer(t, child)

		assert.True(t, hasLocal[*testutil.Greeter](t, child))
		assert.True(t, hasLocal[*testutil.Greeter](t, grandchild))

		greeter := testutil.AssertResolvable[*testutil.Greeter](t, grandchild)
		assert.Equal(t, "Hi", greeter.Greeting)
		assert.NotSame(t, greeter, testutil.AssertResolvable[*testutil.Greeter](t, grandchild))
	})

	t.Run("direct only skips grandchildren", func(t *testing.T) {
		t.Parallel()

		root := testutil.NewContainer(t)
		zenject.Bind[*testutil.Cache](root).AsTransient().CopyIntoDirectSubContainers()

		child := testutil.NewSubContainer(t, root)
		grandchild := testutil.NewSubContainer(t, child)

		assert.True(t, hasLocal[*testutil.Cache](t, child))
		assert.False(t, hasLocal[*testutil.Cache](t, grandchild))
		testutil.AssertResolvable[*testutil.Cache](t, grandchild)
	})

	t.Run("copied instance is injected once", func(t *testing.T) {
		t.Parallel()

		for _, childFirst := range []bool{false, true} {
			root := testutil.NewContainer(t)
			logger := testutil.NewConsoleLogger()
			zenject.BindInstanceAs[testutil.Logger](root, logger)
			service := &testutil.UserService{}
			root.BindInstance(service).CopyIntoAllSubContainers()

			first := testutil.NewSubContainer(t, root)
			second := testutil.NewSubContainer(t, root)

			order := []*zenject.Container{root, first, second}
			if childFirst {
				order = []*zenject.Container{second, first, root}
			}
			for _, c := range order {
				assert.Same(t, service, testutil.AssertResolvable[*testutil.UserService](t, c))
			}

			assert.True(t, service.Initialized)
			assert.Equal(t, []string{"user service initialized"}, logger.Messages(), "child first: %v", childFirst)
		}
	})

	t.Run("nearer bindings override copies", func(t *testing.T) {
		t.Parallel()

		root := testutil.NewContainer(t)
		zenject.Bind[testutil.Logger](root).To(zenject.TypeOf[*testutil.ConsoleLogger]()).AsSingle()
		child := testutil.NewSubContainer(t, root)
		zenject.Bind[testutil.Logger](child).To(zenject.TypeOf[*testutil.FileLogger]()).AsSingle().WithArguments("/tmp/child.log")

		assert.IsType(t, &testutil.FileLogger{}, testutil.AssertResolvable[testutil.Logger](t, child))
		assert.IsType(t, &testutil.ConsoleLogger{}, testutil.AssertResolvable[testutil.Logger](t, root))
	})
}

func TestInheritance_Move(t *testing.T) {
	t.Run("moved binding leaves the owner", func(t *testing.T) {
		t.Parallel()

		root := testutil.NewContainer(t)
		zenject.Bind[*testutil.Database](root).AsSingle().MoveIntoAllSubContainers()
		require.NoError(t, root.FlushBindings())
		assert.True(t, hasLocal[*testutil.Database](t, root))

		child := testutil.NewSubContainer(t, root)
		grandchild := testutil.NewSubContainer(t, child)

		testutil.AssertNotFound[*testutil.Database](t, root)
		db := testutil.AssertResolvable[*testutil.Database](t, child)
		assert.Same(t, db, testutil.AssertResolvable[*testutil.Database](t, grandchild))
		assert.True(t, hasLocal[*testutil.Database](t, grandchild))
	})

	t.Run("direct move", func(t *testing.T) {
		t.Parallel()

		root := testutil.NewContainer(t)
		zenject.Bind[*testutil.Cache](root).AsTransient().MoveIntoDirectSubContainers()

		child := testutil.NewSubContainer(t, root)
		grandchild := testutil.NewSubContainer(t, child)

		testutil.AssertNotFound[*testutil.Cache](t, root)
		assert.True(t, hasLocal[*testutil.Cache](t, child))
		assert.False(t, hasLocal[*testutil.Cache](t, grandchild))
	})
}

func TestInheritance_MultipleParents(t *testing.T) {
	t.Parallel()

	left := testutil.NewContainer(t)
	zenject.Bind[*testutil.Database](left).AsSingle()
	right := testutil.NewContainer(t)
	zenject.Bind[*testutil.Cache](right).AsSingle()

	child, err := zenject.NewSubContainer([]*zenject.Container{left, right})
	require.NoError(t, err)

	assert.Same(t, testutil.AssertResolvable[*testutil.Database](t, left), testutil.AssertResolvable[*testutil.Database](t, child))
	assert.Same(t, testutil.AssertResolvable[*testutil.Cache](t, right), testutil.AssertResolvable[*testutil.Cache](t, child))
	assert.Equal(t, []*zenject.Container{left, right}, child.Parents())
}
