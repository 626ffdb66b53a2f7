package pool

import (
	"fmt"
	"reflect"
	"sync"
)

// Factory creates a new pool item.
type Factory[T any] func() (T, error)

// Poolable is implemented by items that want to observe their own lease cycle.
type Poolable interface {
	OnSpawned()
	OnDespawned()
}

// Stats exposes the counters of a pool.
type Stats interface {
	NumActive() int
	NumInactive() int
	NumTotal() int

	// Snapshot reads the three counters consistently with each other.
	Snapshot() (active, inactive, total int)
}

// Option configures a MemoryPool.
type Option[T any] func(*MemoryPool[T])

// WithOnCreated registers a hook that runs once for every allocated item.
func WithOnCreated[T any](fn func(T)) Option[T] {
	return func(p *MemoryPool[T]) { p.onCreated = fn }
}

// WithOnSpawned registers a hook that runs each time an item is leased.
func WithOnSpawned[T any](fn func(T)) Option[T] {
	return func(p *MemoryPool[T]) { p.onSpawned = fn }
}

// WithOnDespawned registers a hook that runs each time an item is returned.
func WithOnDespawned[T any](fn func(T)) Option[T] {
	return func(p *MemoryPool[T]) { p.onDespawned = fn }
}

// WithOnDestroyed registers a hook that runs when an item is dropped by a shrink.
func WithOnDestroyed[T any](fn func(T)) Option[T] {
	return func(p *MemoryPool[T]) { p.onDestroyed = fn }
}

// MemoryPool is a free stack of reusable items of type T.
//
// A MemoryPool is safe for concurrent use. The factory runs without the pool
// lock held; hooks and Poolable callbacks run with it held and must not call
// back into the pool.
type MemoryPool[T any] struct {
	mu sync.Mutex

	settings Settings
	factory  Factory[T]

	inactive  []T
	leases    leaseSet
	numActive int
	reserved  int

	onCreated   func(T)
	onSpawned   func(T)
	onDespawned func(T)
	onDestroyed func(T)
}

var _ Stats = (*MemoryPool[int])(nil)

// New creates a pool and preallocates settings.InitialSize items.
func New[T any](factory Factory[T], settings Settings, opts ...Option[T]) (*MemoryPool[T], error) {
	if factory == nil {
		return nil, Error{Op: "create", ItemType: reflect.TypeFor[T](), Cause: ErrNilFactory}
	}
	if err := settings.Validate(); err != nil {
		return nil, Error{Op: "create", ItemType: reflect.TypeFor[T](), Cause: err}
	}

	p := &MemoryPool[T]{
		settings: settings,
		factory:  factory,
		leases:   newLeaseSet(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if settings.InitialSize > 0 {
		if err := p.Resize(settings.InitialSize); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Settings returns the settings the pool was created with.
func (p *MemoryPool[T]) Settings() Settings { return p.settings }

// ItemType returns the static item type.
func (p *MemoryPool[T]) ItemType() reflect.Type { return reflect.TypeFor[T]() }

func (p *MemoryPool[T]) NumActive() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numActive
}

func (p *MemoryPool[T]) NumInactive() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inactive)
}

func (p *MemoryPool[T]) NumTotal() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numActive + len(p.inactive)
}

// Snapshot returns the three counters read atomically.
func (p *MemoryPool[T]) Snapshot() (active, inactive, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.numActive, len(p.inactive), p.numActive + len(p.inactive)
}

// Spawn leases an item, allocating according to the expand method when the
// free stack is empty.
func (p *MemoryPool[T]) Spawn() (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.inactive) == 0 {
		n, err := p.expansion()
		if err != nil {
			var zero T
			return zero, err
		}
		if err := p.grow(n); err != nil {
			var zero T
			return zero, err
		}
	}

	item := p.pop()
	p.leases.lease(item)
	p.numActive++

	if p.onSpawned != nil {
		p.onSpawned(item)
	}
	if poolable, ok := any(item).(Poolable); ok {
		poolable.OnSpawned()
	}

	return item, nil
}

// Despawn returns a leased item to the free stack.
func (p *MemoryPool[T]) Despawn(item T) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.leases.checkReturn(item); err != nil {
		return Error{Op: "despawn", ItemType: p.ItemType(), Cause: err}
	}
	if p.numActive == 0 {
		return Error{Op: "despawn", ItemType: p.ItemType(), Cause: ErrNotSpawned}
	}

	p.leases.unlease(item)
	p.numActive--

	if p.onDespawned != nil {
		p.onDespawned(item)
	}
	if poolable, ok := any(item).(Poolable); ok {
		poolable.OnDespawned()
	}

	p.push(item)
	return nil
}

// Resize grows or shrinks the free stack to exactly n inactive items.
func (p *MemoryPool[T]) Resize(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resize(n)
}

// ExpandBy allocates n more inactive items.
func (p *MemoryPool[T]) ExpandBy(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resize(len(p.inactive) + n)
}

// ShrinkBy drops n inactive items.
func (p *MemoryPool[T]) ShrinkBy(n int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resize(len(p.inactive) - n)
}

// Clear drops every inactive item.
func (p *MemoryPool[T]) Clear() error {
	return p.Resize(0)
}

func (p *MemoryPool[T]) resize(n int) error {
	if n < 0 {
		return Error{Op: "resize", ItemType: p.ItemType(), Cause: ErrNegativeSize}
	}

	if n > len(p.inactive) {
		if limit := p.settings.MaxSize; limit > 0 && p.numActive+p.reserved+n > limit {
			return Error{
				Op:       "resize",
				ItemType: p.ItemType(),
				Cause:    fmt.Errorf("%w: %d active + %d inactive > %d", ErrPoolExceeded, p.numActive+p.reserved, n, limit),
			}
		}
		return p.grow(n - len(p.inactive))
	}

	for len(p.inactive) > n {
		item := p.pop()
		if p.onDestroyed != nil {
			p.onDestroyed(item)
		}
	}
	return nil
}

// grow allocates n items and pushes them only once all allocations
// succeeded. It is called with p.mu held and releases it while the factory
// runs; the reservation keeps concurrent expansions within MaxSize.
func (p *MemoryPool[T]) grow(n int) error {
	if n <= 0 {
		return nil
	}

	p.reserved += n
	p.mu.Unlock()
	batch := make([]T, 0, n)
	var err error
	for range n {
		var item T
		item, err = p.factory()
		if err != nil {
			break
		}
		batch = append(batch, item)
	}
	p.mu.Lock()
	p.reserved -= n

	if err != nil {
		return Error{Op: "allocate", ItemType: p.ItemType(), Cause: err}
	}
	for _, item := range batch {
		if p.onCreated != nil {
			p.onCreated(item)
		}
		p.push(item)
	}
	return nil
}

// expansion returns how many items Spawn should allocate for an empty free
// stack.
func (p *MemoryPool[T]) expansion() (int, error) {
	total := p.numActive + len(p.inactive) + p.reserved

	n := 1
	switch p.settings.ExpandMethod {
	case Disabled:
		return 0, Error{
			Op:       "spawn",
			ItemType: p.ItemType(),
			Cause:    fmt.Errorf("%w: pool has fixed size %d", ErrPoolExceeded, total),
		}
	case Double:
		if total > 0 {
			n = total
		}
	}

	if limit := p.settings.MaxSize; limit > 0 {
		room := limit - total
		if room <= 0 {
			return 0, Error{
				Op:       "spawn",
				ItemType: p.ItemType(),
				Cause:    fmt.Errorf("%w: max size %d reached", ErrPoolExceeded, limit),
			}
		}
		n = min(n, room)
	}
	return n, nil
}

func (p *MemoryPool[T]) push(item T) {
	p.inactive = append(p.inactive, item)
	p.leases.store(item)
}

func (p *MemoryPool[T]) pop() T {
	last := len(p.inactive) - 1
	item := p.inactive[last]

	var zero T
	p.inactive[last] = zero
	p.inactive = p.inactive[:last]

	p.leases.take(item)
	return item
}
