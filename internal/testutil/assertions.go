package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject"
)

// AssertResolvable resolves T and fails the test when that is not possible.
func AssertResolvable[T any](t *testing.T, c *zenject.Container) T {
	t.Helper()
	v, err := zenject.Resolve[T](c)
	require.NoError(t, err, "failed to resolve %v", zenject.TypeOf[T]())
	require.NotNil(t, v, "resolved %v is nil", zenject.TypeOf[T]())
	return v
}

// AssertResolvableId resolves T with identifier.
func AssertResolvableId[T any](t *testing.T, c *zenject.Container, identifier any) T {
	t.Helper()
	v, err := zenject.ResolveId[T](c, identifier)
	require.NoError(t, err, "failed to resolve %v with id %v", zenject.TypeOf[T](), identifier)
	require.NotNil(t, v)
	return v
}

// AssertNotFound checks that resolving T fails with a not found error.
func AssertNotFound[T any](t *testing.T, c *zenject.Container) {
	t.Helper()
	_, err := zenject.Resolve[T](c)
	require.Error(t, err)
	assert.True(t, zenject.IsNotFound(err), "expected not found error, got: %v", err)
}

// AssertSame checks that resolving T twice returns the same instance.
func AssertSame[T any](t *testing.T, c *zenject.Container) T {
	t.Helper()
	first := AssertResolvable[T](t, c)
	second := AssertResolvable[T](t, c)
	assert.Same(t, any(first), any(second))
	return first
}

// AssertBindingError checks that flushing c fails with a BindingError
// wrapping target.
func AssertBindingError(t *testing.T, c *zenject.Container, target error) zenject.BindingError {
	t.Helper()
	err := c.FlushBindings()
	require.Error(t, err)

	var bindErr zenject.BindingError
	require.True(t, errors.As(err, &bindErr), "expected BindingError, got %T: %v", err, err)
	if target != nil {
		assert.ErrorIs(t, err, target)
	}
	return bindErr
}
