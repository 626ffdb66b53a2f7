package zenject

import (
	"errors"
	"reflect"

	"github.com/aerialflame7125/zenject/pool"
)

type poolConfig[T any] struct {
	settings  pool.Settings
	concrete  reflect.Type
	method    func(ctx *InjectContext) (T, error)
	arguments []TypeValuePair
	options   []pool.Option[T]

	collector  *pool.Collector
	metricName string
}

func newPoolConfig[T any](defaults pool.Settings) *poolConfig[T] {
	return &poolConfig[T]{settings: defaults, concrete: reflect.TypeFor[T]()}
}

func (cfg *poolConfig[T]) itemProvider(c *Container) (Provider, error) {
	if cfg.method != nil {
		return NewMethodProvider(c, Method(cfg.method)), nil
	}
	if cfg.concrete.Kind() == reflect.Interface {
		return nil, BindingError{Contracts: []reflect.Type{reflect.TypeFor[T]()}, Concrete: cfg.concrete, Cause: ErrAbstractType}
	}
	return NewTransientProvider(c, cfg.concrete, cfg.arguments, nil, nil), nil
}

// registerMemoryPool registers a singleton *pool.MemoryPool[T] under id whose
// items come from item.
func registerMemoryPool[T any](c *Container, id BindingId, cfg *poolConfig[T], item Provider, condition BindingCondition, nonLazy bool) error {
	if err := cfg.settings.Validate(); err != nil {
		return err
	}

	settings := cfg.settings
	options := append([]pool.Option[T](nil), cfg.options...)
	collector, metricName := cfg.collector, cfg.metricName
	if metricName == "" {
		metricName = formatType(reflect.TypeFor[T]())
	}

	build := func(ctx *InjectContext) (any, error) {
		itemCtx := NewInjectContext(c, reflect.TypeFor[T]())
		itemCtx.ParentContext = ctx
		// The pool calls its factory without holding its own lock, so
		// direct Spawn calls from any goroutine enter the tree here.
		factory := func() (T, error) {
			defer c.lock()()

			v, err := GetInstance(item, itemCtx)
			if err != nil {
				var zero T
				return zero, err
			}
			return cast[T](v)
		}

		mp, err := pool.New(factory, settings, options...)
		if err != nil {
			return nil, err
		}
		if collector != nil {
			collector.Track(metricName, mp)
		}

		c.logger.Debug().
			Str("item", formatType(reflect.TypeFor[T]())).
			Int("initial", settings.InitialSize).
			Int("max", settings.MaxSize).
			Stringer("expand", settings.ExpandMethod).
			Msg("memory pool created")
		return mp, nil
	}

	return c.RegisterProvider(id, condition, NewCachedProvider(NewMethodProvider(c, build)), nonLazy)
}

// MemoryPoolBinder configures a binding of *pool.MemoryPool[T]. The pool is
// a singleton of the container and is built on first use. Sizes default to
// the container's DefaultPool settings.
type MemoryPoolBinder[T any] struct {
	container *Container
	stmt      *BindStatement
	cfg       *poolConfig[T]
	err       error
}

// BindMemoryPool starts a binding of *pool.MemoryPool[T].
func BindMemoryPool[T any](c *Container) *MemoryPoolBinder[T] {
	info := NewBindInfo(reflect.TypeFor[*pool.MemoryPool[T]]())
	info.MarkAsCreationBinding = false
	b := &MemoryPoolBinder[T]{container: c, cfg: newPoolConfig[T](c.settings.DefaultPool)}
	b.stmt = c.startBinding(info)
	b.stmt.finalizer = b
	return b
}

func (b *MemoryPoolBinder[T]) fail(err error) {
	if b.stmt != nil {
		b.stmt.fail(err)
		return
	}
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first error recorded by the chain.
func (b *MemoryPoolBinder[T]) Err() error {
	if b.stmt != nil {
		return b.stmt.err
	}
	return b.err
}

// WithId binds the pool under id.
func (b *MemoryPoolBinder[T]) WithId(id any) *MemoryPoolBinder[T] {
	if err := checkIdentifier(id); err != nil {
		b.fail(err)
		return b
	}
	if b.stmt != nil {
		b.stmt.info.Identifier = id
	}
	return b
}

// WithInitialSize sets how many items are created up front.
func (b *MemoryPoolBinder[T]) WithInitialSize(n int) *MemoryPoolBinder[T] {
	b.cfg.settings.InitialSize = n
	return b
}

// WithMaxSize caps the number of items. Zero means unbounded.
func (b *MemoryPoolBinder[T]) WithMaxSize(n int) *MemoryPoolBinder[T] {
	b.cfg.settings.MaxSize = n
	return b
}

// WithFixedSize creates n items up front and never grows.
func (b *MemoryPoolBinder[T]) WithFixedSize(n int) *MemoryPoolBinder[T] {
	b.cfg.settings = pool.FixedSize(n)
	return b
}

// ExpandByOneAtATime grows the pool one item per empty spawn.
func (b *MemoryPoolBinder[T]) ExpandByOneAtATime() *MemoryPoolBinder[T] {
	b.cfg.settings.ExpandMethod = pool.OneAtATime
	return b
}

// ExpandByDoubling doubles the pool on an empty spawn.
func (b *MemoryPoolBinder[T]) ExpandByDoubling() *MemoryPoolBinder[T] {
	b.cfg.settings.ExpandMethod = pool.Double
	return b
}

// To makes the pool construct concrete, which must implement T.
func (b *MemoryPoolBinder[T]) To(concrete reflect.Type) *MemoryPoolBinder[T] {
	if concrete == nil {
		b.fail(ErrTypeNil)
		return b
	}
	if !concrete.AssignableTo(reflect.TypeFor[T]()) {
		b.fail(BindingError{Contracts: []reflect.Type{reflect.TypeFor[T]()}, Concrete: concrete, Cause: ErrNotDerived})
		return b
	}
	b.cfg.concrete = concrete
	b.cfg.method = nil
	return b
}

// FromNew makes the pool construct T itself.
func (b *MemoryPoolBinder[T]) FromNew() *MemoryPoolBinder[T] {
	b.cfg.concrete = reflect.TypeFor[T]()
	b.cfg.method = nil
	return b
}

// FromMethod makes the pool create items with fn.
func (b *MemoryPoolBinder[T]) FromMethod(fn func(ctx *InjectContext) (T, error)) *MemoryPoolBinder[T] {
	if fn == nil {
		b.fail(ErrMethodNil)
		return b
	}
	b.cfg.method = fn
	return b
}

// WithArguments adds arguments passed to every item construction.
func (b *MemoryPoolBinder[T]) WithArguments(args ...any) *MemoryPoolBinder[T] {
	b.cfg.arguments = ArgsFrom(args...)
	return b
}

func (b *MemoryPoolBinder[T]) OnCreated(fn func(T)) *MemoryPoolBinder[T] {
	b.cfg.options = append(b.cfg.options, pool.WithOnCreated(fn))
	return b
}

func (b *MemoryPoolBinder[T]) OnSpawned(fn func(T)) *MemoryPoolBinder[T] {
	b.cfg.options = append(b.cfg.options, pool.WithOnSpawned(fn))
	return b
}

func (b *MemoryPoolBinder[T]) OnDespawned(fn func(T)) *MemoryPoolBinder[T] {
	b.cfg.options = append(b.cfg.options, pool.WithOnDespawned(fn))
	return b
}

func (b *MemoryPoolBinder[T]) OnDestroyed(fn func(T)) *MemoryPoolBinder[T] {
	b.cfg.options = append(b.cfg.options, pool.WithOnDestroyed(fn))
	return b
}

// TrackWith registers the pool with a Prometheus collector under name once
// it is built. An empty name uses the item type.
func (b *MemoryPoolBinder[T]) TrackWith(collector *pool.Collector, name string) *MemoryPoolBinder[T] {
	if collector == nil {
		b.fail(errors.New("collector cannot be nil"))
		return b
	}
	b.cfg.collector = collector
	b.cfg.metricName = name
	return b
}

// NonLazy builds the pool when roots are resolved.
func (b *MemoryPoolBinder[T]) NonLazy() *MemoryPoolBinder[T] {
	if b.stmt != nil {
		b.stmt.info.NonLazy = true
	}
	return b
}

// CopyIntoAllSubContainers gives every sub-container a pool of its own.
func (b *MemoryPoolBinder[T]) CopyIntoAllSubContainers() *MemoryPoolBinder[T] {
	if b.stmt != nil {
		b.stmt.info.InheritanceMethod = CopyIntoAll
	}
	return b
}

func (b *MemoryPoolBinder[T]) FinalizeBinding(c *Container) error {
	info := b.stmt.info
	return finalizeWith(info, func() error {
		id := BindingId{Type: info.ContractTypes[0], Identifier: info.Identifier}
		if info.OnlyBindIfNotBound && c.hasLocalBinding(id) {
			return nil
		}
		item, err := b.cfg.itemProvider(c)
		if err != nil {
			return err
		}
		return registerMemoryPool(c, id, b.cfg, item, info.Condition, info.NonLazy)
	})
}
