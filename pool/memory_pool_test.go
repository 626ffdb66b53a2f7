package pool_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerialflame7125/zenject/pool"
)

type widget struct {
	id        int
	spawns    int
	despawns  int
	resetHits int
}

func (w *widget) OnSpawned()   { w.spawns++ }
func (w *widget) OnDespawned() { w.despawns++ }

func newWidgetPool(t *testing.T, settings pool.Settings, opts ...pool.Option[*widget]) (*pool.MemoryPool[*widget], *int) {
	t.Helper()

	allocations := 0
	p, err := pool.New(func() (*widget, error) {
		allocations++
		return &widget{id: allocations}, nil
	}, settings, opts...)
	require.NoError(t, err)
	return p, &allocations
}

func assertCounts(t *testing.T, p pool.Stats, active, inactive int) {
	t.Helper()
	assert.Equal(t, active, p.NumActive(), "active")
	assert.Equal(t, inactive, p.NumInactive(), "inactive")
	assert.Equal(t, p.NumActive()+p.NumInactive(), p.NumTotal(), "total")
}

func TestMemoryPool_InitialSizeAndOneAtATime(t *testing.T) {
	p, allocations := newWidgetPool(t, pool.Settings{
		InitialSize:  2,
		MaxSize:      4,
		ExpandMethod: pool.OneAtATime,
	})
	assert.Equal(t, 2, *allocations)
	assertCounts(t, p, 0, 2)

	for i := 0; i < 3; i++ {
		_, err := p.Spawn()
		require.NoError(t, err)
	}
	assert.Equal(t, 3, *allocations, "exactly one allocation beyond the initial two")
	assertCounts(t, p, 3, 0)

	_, err := p.Spawn()
	require.NoError(t, err)
	assertCounts(t, p, 4, 0)

	_, err = p.Spawn()
	require.Error(t, err)
	assert.ErrorIs(t, err, pool.ErrPoolExceeded)
	assert.Equal(t, 4, *allocations)
	assertCounts(t, p, 4, 0)
}

func TestMemoryPool_SpawnReusesDespawnedItems(t *testing.T) {
	p, allocations := newWidgetPool(t, pool.DefaultSettings())

	first, err := p.Spawn()
	require.NoError(t, err)
	require.NoError(t, p.Despawn(first))

	second, err := p.Spawn()
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, *allocations)
	assert.Equal(t, 2, first.spawns)
	assert.Equal(t, 1, first.despawns)
}

func TestMemoryPool_DoubleExpansion(t *testing.T) {
	tests := []struct {
		name       string
		settings   pool.Settings
		spawns     int
		wantTotals []int
	}{
		{
			name:       "doubles from one",
			settings:   pool.Settings{ExpandMethod: pool.Double},
			spawns:     5,
			wantTotals: []int{1, 2, 4, 4, 8},
		},
		{
			name:       "clamped by max size",
			settings:   pool.Settings{InitialSize: 3, MaxSize: 5, ExpandMethod: pool.Double},
			spawns:     5,
			wantTotals: []int{3, 3, 3, 5, 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newWidgetPool(t, tt.settings)
			for i := 0; i < tt.spawns; i++ {
				_, err := p.Spawn()
				require.NoError(t, err)
				assert.Equal(t, tt.wantTotals[i], p.NumTotal(), "after spawn %d", i+1)
			}
		})
	}
}

func TestMemoryPool_DisabledExpansion(t *testing.T) {
	p, _ := newWidgetPool(t, pool.FixedSize(1))

	item, err := p.Spawn()
	require.NoError(t, err)

	_, err = p.Spawn()
	assert.ErrorIs(t, err, pool.ErrPoolExceeded)

	require.NoError(t, p.Despawn(item))
	_, err = p.Spawn()
	assert.NoError(t, err)
}

func TestMemoryPool_DespawnIntegrity(t *testing.T) {
	t.Run("double despawn", func(t *testing.T) {
		p, _ := newWidgetPool(t, pool.DefaultSettings())
		item, err := p.Spawn()
		require.NoError(t, err)

		require.NoError(t, p.Despawn(item))
		err = p.Despawn(item)
		assert.ErrorIs(t, err, pool.ErrDoubleDespawn)
		assertCounts(t, p, 0, 1)
	})

	t.Run("foreign item", func(t *testing.T) {
		p, _ := newWidgetPool(t, pool.DefaultSettings())
		_, err := p.Spawn()
		require.NoError(t, err)

		err = p.Despawn(&widget{id: 99})
		assert.ErrorIs(t, err, pool.ErrNotSpawned)
		assertCounts(t, p, 1, 0)
	})

	t.Run("nothing leased", func(t *testing.T) {
		p, _ := newWidgetPool(t, pool.Settings{InitialSize: 2})
		err := p.Despawn(&widget{id: 7})
		assert.ErrorIs(t, err, pool.ErrNotSpawned)
		assertCounts(t, p, 0, 2)
	})

	t.Run("error carries operation", func(t *testing.T) {
		p, _ := newWidgetPool(t, pool.DefaultSettings())
		err := p.Despawn(&widget{})

		var poolErr pool.Error
		require.True(t, errors.As(err, &poolErr))
		assert.Equal(t, "despawn", poolErr.Op)
		assert.Contains(t, poolErr.Error(), "widget")
	})
}

func TestMemoryPool_ResizeAndHooks(t *testing.T) {
	var created, destroyed, spawned, despawned int
	p, _ := newWidgetPool(t, pool.DefaultSettings(),
		pool.WithOnCreated(func(*widget) { created++ }),
		pool.WithOnDestroyed(func(*widget) { destroyed++ }),
		pool.WithOnSpawned(func(*widget) { spawned++ }),
		pool.WithOnDespawned(func(*widget) { despawned++ }),
	)

	require.NoError(t, p.Resize(3))
	assertCounts(t, p, 0, 3)
	assert.Equal(t, 3, created)

	require.NoError(t, p.ExpandBy(2))
	assertCounts(t, p, 0, 5)

	require.NoError(t, p.ShrinkBy(4))
	assertCounts(t, p, 0, 1)
	assert.Equal(t, 4, destroyed)

	item, err := p.Spawn()
	require.NoError(t, err)
	require.NoError(t, p.Despawn(item))
	assert.Equal(t, 1, spawned)
	assert.Equal(t, 1, despawned)

	err = p.Resize(-1)
	assert.ErrorIs(t, err, pool.ErrNegativeSize)
	assertCounts(t, p, 0, 1)

	require.NoError(t, p.Clear())
	assertCounts(t, p, 0, 0)
}

func TestMemoryPool_ResizeRespectsMaxSize(t *testing.T) {
	p, _ := newWidgetPool(t, pool.Settings{MaxSize: 3})

	_, err := p.Spawn()
	require.NoError(t, err)

	err = p.Resize(3)
	assert.ErrorIs(t, err, pool.ErrPoolExceeded)
	assertCounts(t, p, 1, 0)

	require.NoError(t, p.Resize(2))
	assertCounts(t, p, 1, 2)
}

func TestMemoryPool_FactoryErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := pool.New(func() (*widget, error) { return nil, boom }, pool.Settings{InitialSize: 1})
	assert.ErrorIs(t, err, boom)

	_, err = pool.New[*widget](nil, pool.DefaultSettings())
	assert.ErrorIs(t, err, pool.ErrNilFactory)
}

func TestMemoryPool_InvariantUnderRandomSequence(t *testing.T) {
	p, _ := newWidgetPool(t, pool.Settings{InitialSize: 1, MaxSize: 6, ExpandMethod: pool.Double})

	var leased []*widget
	ops := []string{"spawn", "spawn", "despawn", "spawn", "resize4", "spawn", "spawn", "despawn", "despawn", "shrink", "spawn"}
	for _, op := range ops {
		switch op {
		case "spawn":
			item, err := p.Spawn()
			if err == nil {
				leased = append(leased, item)
			}
		case "despawn":
			if len(leased) > 0 {
				require.NoError(t, p.Despawn(leased[0]))
				leased = leased[1:]
			}
		case "resize4":
			_ = p.Resize(4)
		case "shrink":
			_ = p.ShrinkBy(1)
		}

		assert.Equal(t, p.NumActive()+p.NumInactive(), p.NumTotal())
		assert.Equal(t, len(leased), p.NumActive())
		assert.LessOrEqual(t, p.NumTotal(), 6)
	}
}

func TestMemoryPool_EqualValues(t *testing.T) {
	p, err := pool.New(func() (int, error) { return 0, nil }, pool.DefaultSettings())
	require.NoError(t, err)

	first, err := p.Spawn()
	require.NoError(t, err)
	second, err := p.Spawn()
	require.NoError(t, err)
	assertCounts(t, p, 2, 0)

	require.NoError(t, p.Despawn(first))
	require.NoError(t, p.Despawn(second), "equal values are counted, not deduplicated")
	assertCounts(t, p, 0, 2)

	assert.ErrorIs(t, p.Despawn(0), pool.ErrDoubleDespawn)
	assertCounts(t, p, 0, 2)

	_, err = p.Spawn()
	require.NoError(t, err)
	require.NoError(t, p.Despawn(0))
	assertCounts(t, p, 0, 2)
}

func TestMemoryPool_PartialGrowthFailure(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	created := 0
	p, err := pool.New(func() (*widget, error) {
		calls++
		if calls == 3 {
			return nil, boom
		}
		return &widget{id: calls}, nil
	}, pool.DefaultSettings(), pool.WithOnCreated(func(*widget) { created++ }))
	require.NoError(t, err)

	err = p.ExpandBy(3)
	assert.ErrorIs(t, err, boom)
	assertCounts(t, p, 0, 0)
	assert.Zero(t, created, "hooks run only for committed items")

	require.NoError(t, p.ExpandBy(2))
	assertCounts(t, p, 0, 2)
	assert.Equal(t, 2, created)
}

func TestMemoryPool_Concurrent(t *testing.T) {
	var allocations atomic.Int64
	p, err := pool.New(func() (*widget, error) {
		return &widget{id: int(allocations.Add(1))}, nil
	}, pool.Settings{InitialSize: 2, MaxSize: 8, ExpandMethod: pool.OneAtATime})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 100 {
				item, err := p.Spawn()
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, p.Despawn(item))
			}
		})
	}
	wg.Wait()

	active, inactive, total := p.Snapshot()
	assert.Zero(t, active)
	assert.Equal(t, inactive, total)
	assert.LessOrEqual(t, total, 8)
	assert.Equal(t, int64(total), allocations.Load())
}
