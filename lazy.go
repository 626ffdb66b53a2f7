package zenject

import (
	"fmt"
	"reflect"
	"sync"
)

// lazyInjector holds instances queued for injection. They are injected when
// first handed out by a provider, or when roots are resolved.
type lazyInjector struct {
	container *Container
	queue     []any
	queued    map[any]struct{}
}

func newLazyInjector(c *Container) *lazyInjector {
	return &lazyInjector{container: c, queued: make(map[any]struct{})}
}

func (l *lazyInjector) add(instance any) error {
	if !reflect.ValueOf(instance).Comparable() {
		return fmt.Errorf("cannot queue %T for injection: instance must be comparable", instance)
	}
	if _, ok := l.queued[instance]; ok {
		return nil
	}
	l.queued[instance] = struct{}{}
	l.queue = append(l.queue, instance)
	return nil
}

func (l *lazyInjector) take(instance any) bool {
	if !reflect.ValueOf(instance).Comparable() {
		return false
	}
	if _, ok := l.queued[instance]; !ok {
		return false
	}
	delete(l.queued, instance)
	for i, item := range l.queue {
		if item == instance {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			break
		}
	}
	return true
}

func (l *lazyInjector) injectAll() error {
	for len(l.queue) > 0 {
		instance := l.queue[0]
		l.queue = l.queue[1:]
		delete(l.queued, instance)
		if err := l.container.Inject(instance); err != nil {
			return err
		}
	}
	return nil
}

// QueueForInject defers injection of instance until it is first handed out
// or ResolveRoots runs.
func (c *Container) QueueForInject(instance any) error {
	defer c.lock()()
	if instance == nil {
		return ErrInstanceNil
	}
	return c.injector.add(instance)
}

// LazyInject injects instance now if it is still queued.
func (c *Container) LazyInject(instance any) error {
	defer c.lock()()
	if instance == nil || !c.injector.take(instance) {
		return nil
	}
	return c.Inject(instance)
}

// Lazy defers a resolution until Value is first called. The result, error
// included, is remembered. It is safe for concurrent use.
type Lazy[T any] struct {
	mu      sync.Mutex
	resolve func() (T, error)
	value   T
	err     error
	done    bool
}

// NewLazy wraps resolve.
func NewLazy[T any](resolve func() (T, error)) *Lazy[T] {
	return &Lazy[T]{resolve: resolve}
}

// Value resolves on first use and returns the remembered result afterwards.
func (l *Lazy[T]) Value() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.done {
		l.value, l.err = l.resolve()
		l.done = true
		l.resolve = nil
	}
	return l.value, l.err
}

// IsResolved reports whether Value has run.
func (l *Lazy[T]) IsResolved() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.done
}

// ResolveLazy returns a Lazy resolving the unnamed binding of T from c.
func ResolveLazy[T any](c *Container) *Lazy[T] {
	return NewLazy(func() (T, error) { return Resolve[T](c) })
}

// ResolveIdLazy returns a Lazy resolving the binding of T with identifier.
func ResolveIdLazy[T any](c *Container, identifier any) *Lazy[T] {
	return NewLazy(func() (T, error) { return ResolveId[T](c, identifier) })
}

// InstantiateLazy returns a Lazy instantiating T with args.
func InstantiateLazy[T any](c *Container, args ...any) *Lazy[T] {
	return NewLazy(func() (T, error) { return Instantiate[T](c, args...) })
}
