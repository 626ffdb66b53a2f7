package pool

import "sync"

// ListPool hands out cleared slices. Items are pointers so that a slice keeps
// its identity while it grows.
type ListPool[E any] struct {
	pool *MemoryPool[*[]E]
}

// NewListPool creates an unbounded list pool.
func NewListPool[E any]() *ListPool[E] {
	p, _ := New(func() (*[]E, error) {
		s := make([]E, 0, 4)
		return &s, nil
	}, DefaultSettings(), WithOnDespawned(func(s *[]E) {
		clear(*s)
		*s = (*s)[:0]
	}))
	return &ListPool[E]{pool: p}
}

// Spawn leases an empty list.
func (p *ListPool[E]) Spawn() *[]E {
	s, _ := p.pool.Spawn()
	return s
}

// Despawn clears the list and returns it to the pool.
func (p *ListPool[E]) Despawn(s *[]E) error {
	return p.pool.Despawn(s)
}

// Pool exposes the underlying pool for inspection.
func (p *ListPool[E]) Pool() *MemoryPool[*[]E] { return p.pool }

// DictionaryPool hands out cleared maps.
type DictionaryPool[K comparable, V any] struct {
	pool *MemoryPool[map[K]V]
}

// NewDictionaryPool creates an unbounded map pool.
func NewDictionaryPool[K comparable, V any]() *DictionaryPool[K, V] {
	p, _ := New(func() (map[K]V, error) {
		return make(map[K]V), nil
	}, DefaultSettings(), WithOnDespawned(func(m map[K]V) {
		clear(m)
	}))
	return &DictionaryPool[K, V]{pool: p}
}

func (p *DictionaryPool[K, V]) Spawn() map[K]V {
	m, _ := p.pool.Spawn()
	return m
}

func (p *DictionaryPool[K, V]) Despawn(m map[K]V) error {
	return p.pool.Despawn(m)
}

func (p *DictionaryPool[K, V]) Pool() *MemoryPool[map[K]V] { return p.pool }

// HashSetPool hands out cleared sets.
type HashSetPool[E comparable] struct {
	pool *MemoryPool[map[E]struct{}]
}

// NewHashSetPool creates an unbounded set pool.
func NewHashSetPool[E comparable]() *HashSetPool[E] {
	p, _ := New(func() (map[E]struct{}, error) {
		return make(map[E]struct{}), nil
	}, DefaultSettings(), WithOnDespawned(func(m map[E]struct{}) {
		clear(m)
	}))
	return &HashSetPool[E]{pool: p}
}

func (p *HashSetPool[E]) Spawn() map[E]struct{} {
	m, _ := p.pool.Spawn()
	return m
}

func (p *HashSetPool[E]) Despawn(m map[E]struct{}) error {
	return p.pool.Despawn(m)
}

func (p *HashSetPool[E]) Pool() *MemoryPool[map[E]struct{}] { return p.pool }

// ArrayPool hands out zeroed fixed-length slices, with one pool per length.
type ArrayPool[E any] struct {
	mu    sync.Mutex
	pools map[int]*MemoryPool[[]E]
}

// NewArrayPool creates an empty array pool.
func NewArrayPool[E any]() *ArrayPool[E] {
	return &ArrayPool[E]{pools: make(map[int]*MemoryPool[[]E])}
}

// Spawn leases a slice of exactly length n. Zero-length requests are not pooled.
func (p *ArrayPool[E]) Spawn(n int) []E {
	if n <= 0 {
		return nil
	}
	s, _ := p.poolFor(n).Spawn()
	return s
}

// Despawn zeroes the slice and returns it to the pool for its length.
func (p *ArrayPool[E]) Despawn(s []E) error {
	if len(s) == 0 {
		return nil
	}
	return p.poolFor(len(s)).Despawn(s)
}

// PoolFor exposes the pool serving length n.
func (p *ArrayPool[E]) PoolFor(n int) *MemoryPool[[]E] {
	return p.poolFor(n)
}

func (p *ArrayPool[E]) poolFor(n int) *MemoryPool[[]E] {
	p.mu.Lock()
	defer p.mu.Unlock()

	mp, ok := p.pools[n]
	if !ok {
		mp, _ = New(func() ([]E, error) {
			return make([]E, n), nil
		}, DefaultSettings(), WithOnDespawned(func(s []E) {
			clear(s)
		}))
		p.pools[n] = mp
	}
	return mp
}
