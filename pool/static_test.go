package pool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject/pool"
)

func TestListPool(t *testing.T) {
	lists := pool.NewListPool[string]()

	l := lists.Spawn()
	*l = append(*l, "a", "b")
	require.NoError(t, lists.Despawn(l))

	again := lists.Spawn()
	assert.Same(t, l, again)
	assert.Empty(t, *again)
	assert.Equal(t, 1, lists.Pool().NumTotal())

	assert.ErrorIs(t, lists.Despawn(&[]string{}), pool.ErrNotSpawned)
}

func TestDictionaryAndHashSetPools(t *testing.T) {
	dicts := pool.NewDictionaryPool[string, int]()
	m := dicts.Spawn()
	m["x"] = 1
	require.NoError(t, dicts.Despawn(m))
	assert.Empty(t, m)
	assert.ErrorIs(t, dicts.Despawn(m), pool.ErrDoubleDespawn)

	sets := pool.NewHashSetPool[int]()
	s := sets.Spawn()
	s[3] = struct{}{}
	require.NoError(t, sets.Despawn(s))
	assert.Empty(t, s)
	assert.Equal(t, 1, sets.Pool().NumInactive())
}

func TestArrayPool(t *testing.T) {
	arrays := pool.NewArrayPool[int]()

	a := arrays.Spawn(3)
	require.Len(t, a, 3)
	a[0], a[1], a[2] = 1, 2, 3
	require.NoError(t, arrays.Despawn(a))

	b := arrays.Spawn(3)
	assert.Equal(t, []int{0, 0, 0}, b)
	assert.Equal(t, 1, arrays.PoolFor(3).NumTotal())

	c := arrays.Spawn(5)
	assert.Len(t, c, 5)
	assert.Equal(t, 1, arrays.PoolFor(5).NumActive())

	assert.Nil(t, arrays.Spawn(0))
	assert.NoError(t, arrays.Despawn(nil))
}
