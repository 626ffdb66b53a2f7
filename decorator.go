package zenject

import (
	"fmt"
	"reflect"

	"github.com/aerialflame7125/zenject/internal/reflection"
)

// DecoratorFunc wraps an instance produced for a decorated contract.
type DecoratorFunc func(ctx *InjectContext, inner any) (any, error)

type decoratorSet struct {
	contract   reflect.Type
	decorators []DecoratorFunc

	// cache keeps decorated results of cached providers so the same inner
	// instance is decorated once.
	cache map[Provider][]any
}

// Decorate registers fn for contract in c. Decorators run in registration
// order, the first registered wrapping innermost. A lookup uses the
// decorators of the nearest container that has any for the contract.
func (c *Container) Decorate(contract reflect.Type, fn DecoratorFunc) error {
	if contract == nil {
		return ErrTypeNil
	}
	if fn == nil {
		return ErrMethodNil
	}
	defer c.lock()()

	set, ok := c.decorators[contract]
	if !ok {
		set = &decoratorSet{contract: contract, cache: make(map[Provider][]any)}
		c.decorators[contract] = set
	}
	set.decorators = append(set.decorators, fn)
	clear(set.cache)

	c.logger.Debug().Str("contract", formatType(contract)).Int("count", len(set.decorators)).Msg("decorator registered")
	return nil
}

// DecorateFunc registers a Go function as decorator. Its first parameter
// receives the inner instance; further parameters are resolved from the
// container. Accepted shapes are func(T, deps...) T and func(T, deps...) (T, error).
func (c *Container) DecorateFunc(contract reflect.Type, fn any) error {
	info, err := analyzer.Analyze(fn)
	if err != nil {
		return DescriptorError{Type: contract, Cause: err}
	}
	if len(info.Parameters) == 0 || !contract.AssignableTo(info.Parameters[0].Type) {
		return DescriptorError{Type: contract, Cause: fmt.Errorf("decorator must take %s as first parameter", formatType(contract))}
	}
	if !info.Result.AssignableTo(contract) {
		return TypeMismatchError{Expected: contract, Actual: info.Result, Context: "decorator result"}
	}

	fv := reflect.ValueOf(fn)
	return c.Decorate(contract, func(ctx *InjectContext, inner any) (any, error) {
		args := make([]any, len(info.Parameters))
		args[0] = inner
		for i := 1; i < len(info.Parameters); i++ {
			sub := ctx.CreateSubContext(info.Parameters[i].Type, nil)
			sub.Container = c
			dep, err := c.resolveRequired(sub)
			if err != nil {
				return nil, err
			}
			args[i] = stripValidationMarker(dep)
		}
		return reflection.Invoke(fv, info, args)
	})
}

// DecorateWith registers decorator, a described concrete type implementing
// contract, which receives the inner instance as an argument typed contract.
func (c *Container) DecorateWith(contract, decorator reflect.Type) error {
	if contract == nil || decorator == nil {
		return ErrTypeNil
	}
	if !decorator.AssignableTo(contract) {
		return BindingError{Contracts: []reflect.Type{contract}, Concrete: decorator, Cause: ErrNotDerived}
	}
	return c.Decorate(contract, func(ctx *InjectContext, inner any) (any, error) {
		args := []TypeValuePair{{Type: contract, Value: inner}}
		return c.instantiate(decorator, true, &args, ctx, nil)
	})
}

func (c *Container) decoratorsFor(contract reflect.Type) *decoratorSet {
	for _, container := range c.lookups[SourceAny] {
		if set, ok := container.decorators[contract]; ok && len(set.decorators) > 0 {
			return set
		}
	}
	return nil
}

// decorate applies the decorators visible from c to instances.
func (c *Container) decorate(provider Provider, ctx *InjectContext, instances []any) ([]any, error) {
	set := c.decoratorsFor(ctx.MemberType)
	if set == nil || len(instances) == 0 {
		return instances, nil
	}

	if provider.IsCached() {
		if cached, ok := set.cache[provider]; ok {
			return cached, nil
		}
	}

	decorated := make([]any, len(instances))
	for i, instance := range instances {
		current := instance
		if !isValidationMarker(current) {
			for n, fn := range set.decorators {
				next, err := fn(ctx, current)
				if err != nil {
					return nil, fmt.Errorf("decorator %d failed for %s: %w", n, formatType(set.contract), err)
				}
				if err := checkProduced(ctx, next, "decorator result"); err != nil {
					return nil, err
				}
				current = next
			}
		}
		decorated[i] = current
	}

	if provider.IsCached() {
		set.cache[provider] = decorated
	}
	return decorated, nil
}

// Decorate registers a typed decorator for T in c.
func Decorate[T any](c *Container, fn func(inner T) (T, error)) error {
	return c.Decorate(reflect.TypeFor[T](), func(ctx *InjectContext, inner any) (any, error) {
		typed, ok := inner.(T)
		if !ok {
			return nil, TypeMismatchError{Expected: reflect.TypeFor[T](), Actual: reflect.TypeOf(inner), Context: "decorator input"}
		}
		return fn(typed)
	})
}

// DecorateWith registers decorator, a described concrete type implementing T,
// as a wrapper for T in c.
func DecorateWith[T any](c *Container, decorator reflect.Type) error {
	return c.DecorateWith(reflect.TypeFor[T](), decorator)
}
