package zenject

import (
	"errors"
	"reflect"
)

// BindingFinalizer turns a completed binding statement into registered
// providers.
type BindingFinalizer interface {
	FinalizeBinding(c *Container) error
}

// providerFactory builds the provider for one concrete type. A nil concrete
// type is passed for open type families.
type providerFactory func(c *Container, concrete reflect.Type) (Provider, error)

// finalizeWith skips bindings without contracts and wraps failures with the
// binding's identity.
func finalizeWith(info *BindInfo, fn func() error) error {
	if len(info.ContractTypes) == 0 && info.OpenContract == nil {
		return nil
	}
	if err := fn(); err != nil {
		return BindingError{Contracts: info.ContractTypes, Identifier: info.Identifier, Cause: err}
	}
	return nil
}

func scopeOf(info *BindInfo) (ScopeType, error) {
	if info.Scope != ScopeUnset {
		return info.Scope, nil
	}
	if info.RequireExplicitScope {
		return ScopeUnset, ErrScopeRequired
	}
	return ScopeTransient, nil
}

func registerProvider(c *Container, info *BindInfo, contract reflect.Type, provider Provider) error {
	id := BindingId{Type: contract, Identifier: info.Identifier}
	if info.OnlyBindIfNotBound && c.hasLocalBinding(id) {
		return nil
	}
	return c.RegisterProvider(id, info.Condition, provider, info.NonLazy)
}

// registerProviderPerContract registers one provider per contract type, each
// built for the contract itself.
func registerProviderPerContract(c *Container, info *BindInfo, build func(contract reflect.Type) (Provider, error)) error {
	for _, contract := range info.ContractTypes {
		if err := c.marks.markFor(info, contract); err != nil {
			return err
		}
		provider, err := build(contract)
		if err != nil {
			return err
		}
		if err := registerProvider(c, info, contract, provider); err != nil {
			return err
		}
	}
	return nil
}

// registerProvidersForAllContractsPerConcreteType creates one provider per
// concrete type and registers it under every contract that concrete type
// derives from.
func registerProvidersForAllContractsPerConcreteType(c *Container, info *BindInfo, concretes []reflect.Type, build func(concrete reflect.Type) (Provider, error)) error {
	providers := make(map[reflect.Type]Provider, len(concretes))

	for _, concrete := range concretes {
		for _, contract := range info.ContractTypes {
			ok, err := validateBindTypes(info, concrete, contract)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}

			provider, built := providers[concrete]
			if !built {
				if err := c.marks.markFor(info, concrete); err != nil {
					return err
				}
				provider, err = build(concrete)
				if err != nil {
					return err
				}
				providers[concrete] = provider
			}

			if err := registerProvider(c, info, contract, provider); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateBindTypes(info *BindInfo, concrete, contract reflect.Type) (bool, error) {
	if concrete.AssignableTo(contract) {
		return true, nil
	}
	if info.InvalidBindResponse == BindSkip {
		return false, nil
	}
	return false, BindingError{Contracts: []reflect.Type{contract}, Identifier: info.Identifier, Concrete: concrete, Cause: ErrNotDerived}
}

// scopableFinalizer registers providers made by a factory, wrapping them in a
// cache when the binding is singleton scoped.
type scopableFinalizer struct {
	info    *BindInfo
	factory providerFactory
}

func (f *scopableFinalizer) FinalizeBinding(c *Container) error {
	return finalizeWith(f.info, func() error {
		scope, err := scopeOf(f.info)
		if err != nil {
			return err
		}

		build := func(concrete reflect.Type) (Provider, error) {
			provider, err := f.factory(c, concrete)
			if err != nil {
				return nil, err
			}
			if scope == ScopeSingleton {
				return newCachedProviderFor(provider), nil
			}
			return provider, nil
		}

		if f.info.OpenContract != nil {
			provider, err := build(nil)
			if err != nil {
				return err
			}
			c.registerOpenProvider(f.info.OpenContract, f.info.Identifier, f.info.Condition, provider, f.info.NonLazy)
			return nil
		}

		if f.info.ToChoice == ToSelf {
			return registerProviderPerContract(c, f.info, build)
		}
		return registerProvidersForAllContractsPerConcreteType(c, f.info, f.info.ToTypes, build)
	})
}

// subContainerFinalizer registers providers resolving from a sub-container.
// Singleton bindings share one cached sub-container; transient bindings build
// a new one per request.
type subContainerFinalizer struct {
	info          *BindInfo
	subIdentifier any
	resolveAll    bool
	newCreator    func(c *Container) SubContainerCreator
}

func (f *subContainerFinalizer) FinalizeBinding(c *Container) error {
	return finalizeWith(f.info, func() error {
		if f.info.OpenContract != nil {
			return errors.New("sub-container bindings cannot use open type families")
		}
		scope, err := scopeOf(f.info)
		if err != nil {
			return err
		}

		var shared SubContainerCreator
		creator := func() SubContainerCreator {
			if scope != ScopeSingleton {
				return f.newCreator(c)
			}
			if shared == nil {
				shared = &subContainerCreatorCached{creator: f.newCreator(c)}
			}
			return shared
		}

		build := func(dependency reflect.Type) (Provider, error) {
			provider := Provider(NewSubContainerDependencyProvider(dependency, f.subIdentifier, creator(), f.resolveAll))
			if scope == ScopeSingleton {
				provider = NewCachedProvider(provider)
			}
			return provider, nil
		}

		if f.info.ToChoice == ToSelf {
			return registerProviderPerContract(c, f.info, build)
		}
		return registerProvidersForAllContractsPerConcreteType(c, f.info, f.info.ToTypes, build)
	})
}

// ========================================
// Provider factories used by the binders
// ========================================

func transientFactory(info *BindInfo) providerFactory {
	return func(c *Container, concrete reflect.Type) (Provider, error) {
		if concrete == nil {
			family := info.OpenContract
			return newOpenTransientProvider(c, family.concreteFor, info.Arguments, info.ConcreteIdentifier, info.InstantiatedCallback), nil
		}
		if concrete.Kind() == reflect.Interface {
			return nil, BindingError{Contracts: info.ContractTypes, Identifier: info.Identifier, Concrete: concrete, Cause: ErrAbstractType}
		}
		return NewTransientProvider(c, concrete, info.Arguments, info.ConcreteIdentifier, info.InstantiatedCallback), nil
	}
}

// instanceFactory queues the instance in the container that finalizes the
// binding first, its owner. Copies finalized in sub-containers inject through
// the owner, so the instance is injected once.
func instanceFactory(info *BindInfo, instance any) providerFactory {
	var owner *Container
	return func(c *Container, concrete reflect.Type) (Provider, error) {
		if owner == nil {
			owner = c
			if _, described := c.types.TypeInfo(reflect.TypeOf(instance)); described && reflect.ValueOf(instance).Comparable() {
				if err := c.QueueForInject(instance); err != nil {
					return nil, err
				}
			}
		}
		return NewInstanceProvider(owner, reflect.TypeOf(instance), instance, info.InstantiatedCallback), nil
	}
}

func methodFactory(method MethodFunc) providerFactory {
	return func(c *Container, concrete reflect.Type) (Provider, error) {
		return NewMethodProvider(c, method), nil
	}
}

func methodMultipleFactory(method MethodMultipleFunc) providerFactory {
	return func(c *Container, concrete reflect.Type) (Provider, error) {
		return NewMethodProviderMultiple(c, method), nil
	}
}

func resolveFactory(identifier any, source InjectSources, matchAll bool) providerFactory {
	return func(c *Container, concrete reflect.Type) (Provider, error) {
		if concrete == nil {
			return nil, errors.New("resolve bindings cannot use open type families")
		}
		return NewResolveProvider(c, concrete, identifier, source, matchAll, false), nil
	}
}

func getterFactory(objectType reflect.Type, identifier any, getter GetterFunc, source InjectSources, matchAll bool) providerFactory {
	return func(c *Container, concrete reflect.Type) (Provider, error) {
		return NewGetterProvider(c, objectType, identifier, concrete, getter, source, matchAll), nil
	}
}
