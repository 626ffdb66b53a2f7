package zenject

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/google/uuid"

	"github.com/aerialflame7125/zenject/pool"
)

// Factory creates instances of T on demand, with optional call-site
// arguments that take precedence over resolved dependencies.
type Factory[T any] interface {
	Create() (T, error)
	CreateWith(args ...any) (T, error)
}

var (
	_ Factory[int] = (*PlaceholderFactory[int])(nil)
	_ Factory[int] = (*PooledFactory[int])(nil)
)

// PlaceholderFactory forwards every Create to the provider chosen by its
// factory binding.
type PlaceholderFactory[T any] struct {
	container *Container
	provider  Provider
}

func (f *PlaceholderFactory[T]) Create() (T, error) {
	return f.CreateWith()
}

func (f *PlaceholderFactory[T]) CreateWith(args ...any) (T, error) {
	defer f.container.lock()()

	var zero T
	ctx := NewInjectContext(f.container, reflect.TypeFor[T]())
	instances, err := GetAllInstances(f.provider, ctx, ArgsFrom(args...))
	if err != nil {
		return zero, err
	}
	if len(instances) != 1 {
		return zero, ArityError{Type: ctx.MemberType, Count: len(instances), ObjectGraph: ctx.ObjectGraphString()}
	}
	return cast[T](stripValidationMarker(instances[0]))
}

// PooledFactory creates instances by spawning them from a memory pool.
// Items go back with Despawn.
type PooledFactory[T any] struct {
	provider *PoolableMemoryPoolProvider[T]
}

func (f *PooledFactory[T]) Create() (T, error) {
	return f.CreateWith()
}

func (f *PooledFactory[T]) CreateWith(args ...any) (T, error) {
	defer f.provider.container.lock()()

	var zero T
	ctx := NewInjectContext(f.provider.container, reflect.TypeFor[T]())
	instances, err := GetAllInstances(f.provider, ctx, ArgsFrom(args...))
	if err != nil {
		return zero, err
	}
	return cast[T](stripValidationMarker(instances[0]))
}

// Despawn returns item to the pool.
func (f *PooledFactory[T]) Despawn(item T) error {
	p, err := f.provider.Pool()
	if err != nil {
		return err
	}
	return p.Despawn(item)
}

// Pool returns the backing pool.
func (f *PooledFactory[T]) Pool() (*pool.MemoryPool[T], error) {
	return f.provider.Pool()
}

// FactoryProvider hands out the factory object of a factory binding,
// building it on first request.
type FactoryProvider struct {
	factoryType reflect.Type
	build       func() (any, error)
	factory     any
}

// NewFactoryProvider creates a FactoryProvider.
func NewFactoryProvider(factoryType reflect.Type, build func() (any, error)) *FactoryProvider {
	return &FactoryProvider{factoryType: factoryType, build: build}
}

func (p *FactoryProvider) IsCached() bool { return true }

func (p *FactoryProvider) TypeVariesBasedOnMemberType() bool { return false }

func (p *FactoryProvider) GetInstanceType(ctx *InjectContext) reflect.Type { return p.factoryType }

func (p *FactoryProvider) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	if len(args) > 0 {
		return buffer, nil, ExtraArgumentsError{Type: p.factoryType, Args: args}
	}
	if p.factory == nil {
		factory, err := p.build()
		if err != nil {
			return buffer, nil, err
		}
		p.factory = factory
	}
	return append(buffer, p.factory), nil, nil
}

// PoolableMemoryPoolProvider spawns items from a pool bound under poolId.
type PoolableMemoryPoolProvider[T any] struct {
	container *Container
	poolId    BindingId
	pool      *pool.MemoryPool[T]
}

// NewPoolableMemoryPoolProvider creates a provider spawning from the pool
// bound under poolId in c.
func NewPoolableMemoryPoolProvider[T any](c *Container, poolId BindingId) *PoolableMemoryPoolProvider[T] {
	return &PoolableMemoryPoolProvider[T]{container: c, poolId: poolId}
}

// Pool resolves the backing pool once.
func (p *PoolableMemoryPoolProvider[T]) Pool() (*pool.MemoryPool[T], error) {
	defer p.container.lock()()

	if p.pool != nil {
		return p.pool, nil
	}
	v, err := p.container.ResolveId(p.poolId.Type, p.poolId.Identifier)
	if err != nil {
		return nil, err
	}
	resolved, err := cast[*pool.MemoryPool[T]](v)
	if err != nil {
		return nil, err
	}
	if resolved == nil {
		return nil, NilInstanceError{Type: p.poolId.Type}
	}
	p.pool = resolved
	return resolved, nil
}

func (p *PoolableMemoryPoolProvider[T]) IsCached() bool { return false }

func (p *PoolableMemoryPoolProvider[T]) TypeVariesBasedOnMemberType() bool { return false }

func (p *PoolableMemoryPoolProvider[T]) GetInstanceType(ctx *InjectContext) reflect.Type {
	return reflect.TypeFor[T]()
}

func (p *PoolableMemoryPoolProvider[T]) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	if p.container.IsValidating() {
		return append(buffer, newValidationMarker(reflect.TypeFor[T]())), nil, nil
	}
	if len(args) > 0 {
		return buffer, nil, ExtraArgumentsError{Type: reflect.TypeFor[T](), Args: args}
	}
	mp, err := p.Pool()
	if err != nil {
		return buffer, nil, err
	}
	item, err := mp.Spawn()
	if err != nil {
		return buffer, nil, err
	}
	return append(buffer, item), nil, nil
}

// ========================================
// Factory bindings
// ========================================

type factorySource int

const (
	factoryFromNew factorySource = iota
	factoryFromMethod
	factoryFromResolve
	factoryFromSubContainer
)

// FactoryBinder configures a binding of Factory[T].
type FactoryBinder[T any] struct {
	container *Container
	stmt      *BindStatement

	source    factorySource
	concrete  reflect.Type
	method    func(ctx *InjectContext) (T, error)
	resolveId any
	install   func(sub *Container) error
	arguments []TypeValuePair

	pooled        bool
	configurePool func(*MemoryPoolBinder[T])
}

// BindFactory starts a binding of Factory[T]. By default the factory
// constructs T itself.
func BindFactory[T any](c *Container) *FactoryBinder[T] {
	info := NewBindInfo(reflect.TypeFor[Factory[T]]())
	info.MarkAsCreationBinding = false
	fb := &FactoryBinder[T]{container: c, concrete: reflect.TypeFor[T]()}
	fb.stmt = c.startBinding(info)
	fb.stmt.finalizer = fb
	return fb
}

func (fb *FactoryBinder[T]) info() *BindInfo { return fb.stmt.info }

// Err returns the first error recorded by the chain.
func (fb *FactoryBinder[T]) Err() error { return fb.stmt.err }

// WithId binds the factory under id.
func (fb *FactoryBinder[T]) WithId(id any) *FactoryBinder[T] {
	if err := checkIdentifier(id); err != nil {
		fb.stmt.fail(err)
		return fb
	}
	fb.info().Identifier = id
	return fb
}

// To makes the factory construct concrete, which must implement T.
func (fb *FactoryBinder[T]) To(concrete reflect.Type) *FactoryBinder[T] {
	if concrete == nil {
		fb.stmt.fail(ErrTypeNil)
		return fb
	}
	if !concrete.AssignableTo(reflect.TypeFor[T]()) {
		fb.stmt.fail(BindingError{Contracts: []reflect.Type{reflect.TypeFor[T]()}, Concrete: concrete, Cause: ErrNotDerived})
		return fb
	}
	fb.concrete = concrete
	return fb.FromNew()
}

// FromNew makes the factory construct its concrete type.
func (fb *FactoryBinder[T]) FromNew() *FactoryBinder[T] {
	fb.source = factoryFromNew
	return fb
}

// FromMethod makes the factory call fn.
func (fb *FactoryBinder[T]) FromMethod(fn func(ctx *InjectContext) (T, error)) *FactoryBinder[T] {
	if fn == nil {
		fb.stmt.fail(ErrMethodNil)
		return fb
	}
	fb.source = factoryFromMethod
	fb.method = fn
	return fb
}

// FromResolve makes the factory resolve T on every call.
func (fb *FactoryBinder[T]) FromResolve() *FactoryBinder[T] {
	return fb.FromResolveId(nil)
}

// FromResolveId makes the factory resolve T with id on every call.
func (fb *FactoryBinder[T]) FromResolveId(id any) *FactoryBinder[T] {
	if err := checkIdentifier(id); err != nil {
		fb.stmt.fail(err)
		return fb
	}
	fb.source = factoryFromResolve
	fb.resolveId = id
	return fb
}

// FromSubContainerResolve makes every call build a new sub-container with
// install and resolve T from it. Call-site arguments are bound into the
// sub-container as instances.
func (fb *FactoryBinder[T]) FromSubContainerResolve(install func(sub *Container) error) *FactoryBinder[T] {
	if install == nil {
		fb.stmt.fail(ErrMethodNil)
		return fb
	}
	fb.source = factoryFromSubContainer
	fb.install = install
	return fb
}

// FromPoolableMemoryPool backs the factory with a memory pool. configure
// may adjust the pool; it may be nil.
func (fb *FactoryBinder[T]) FromPoolableMemoryPool(configure func(*MemoryPoolBinder[T])) *FactoryBinder[T] {
	fb.pooled = true
	fb.configurePool = configure
	return fb
}

// WithArguments adds arguments passed to every construction.
func (fb *FactoryBinder[T]) WithArguments(args ...any) *FactoryBinder[T] {
	fb.arguments = ArgsFrom(args...)
	return fb
}

// CopyIntoAllSubContainers makes sub-containers bind their own factory.
func (fb *FactoryBinder[T]) CopyIntoAllSubContainers() *FactoryBinder[T] {
	fb.info().InheritanceMethod = CopyIntoAll
	return fb
}

// itemProvider builds the provider producing T for one container.
func (fb *FactoryBinder[T]) itemProvider(c *Container) (Provider, error) {
	switch fb.source {
	case factoryFromMethod:
		return NewMethodProvider(c, Method(fb.method)), nil
	case factoryFromResolve:
		return NewResolveProvider(c, reflect.TypeFor[T](), fb.resolveId, SourceAny, false, false), nil
	case factoryFromSubContainer:
		creator := &subContainerCreatorByMethod{container: c, install: fb.install}
		return NewSubContainerDependencyProvider(reflect.TypeFor[T](), nil, creator, false), nil
	default:
		if fb.concrete.Kind() == reflect.Interface {
			return nil, fmt.Errorf("%w: %s", ErrAbstractType, formatType(fb.concrete))
		}
		return NewTransientProvider(c, fb.concrete, fb.arguments, nil, nil), nil
	}
}

func (fb *FactoryBinder[T]) FinalizeBinding(c *Container) error {
	info := fb.info()
	return finalizeWith(info, func() error {
		item, err := fb.itemProvider(c)
		if err != nil {
			return err
		}

		contract := info.ContractTypes[0]
		build := func() (any, error) {
			return &PlaceholderFactory[T]{container: c, provider: item}, nil
		}

		if fb.pooled {
			if fb.source == factoryFromSubContainer {
				return errors.New("pooled factories cannot resolve from sub-containers")
			}
			mb := &MemoryPoolBinder[T]{container: c, cfg: newPoolConfig[T](c.settings.DefaultPool)}
			if fb.configurePool != nil {
				fb.configurePool(mb)
			}
			if mb.err != nil {
				return mb.err
			}
			poolId := BindingId{Type: reflect.TypeFor[*pool.MemoryPool[T]](), Identifier: "factory-pool-" + uuid.NewString()}
			if err := registerMemoryPool(c, poolId, mb.cfg, item, nil, false); err != nil {
				return err
			}
			provider := NewPoolableMemoryPoolProvider[T](c, poolId)
			build = func() (any, error) {
				return &PooledFactory[T]{provider: provider}, nil
			}
		}

		return registerProvider(c, info, contract, NewFactoryProvider(contract, build))
	})
}
