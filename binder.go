package zenject

import (
	"errors"
	"reflect"

	"go.uber.org/dig"
)

// The binder views below narrow the fluent binding chain step by step, so
// options are given in a fixed order:
//
//	Bind -> WithId -> To -> From -> Scope -> WithConcreteId -> WithArguments
//	     -> OnInstantiated -> When -> Copy/Move -> NonLazy -> IfNotBound
//
// Every view can report the first error recorded by the chain through Err.
// Errors are also returned by the next FlushBindings or lookup.

// BindingStatement is the end of a binding chain.
type BindingStatement interface {
	Err() error
}

type IfNotBoundBinder interface {
	BindingStatement
	// IfNotBound skips registration when the container already binds the
	// contract locally.
	IfNotBound() BindingStatement
}

type NonLazyBinder interface {
	IfNotBoundBinder
	NonLazy() IfNotBoundBinder
	Lazy() IfNotBoundBinder
}

type CopyNonLazyBinder interface {
	NonLazyBinder
	CopyIntoAllSubContainers() NonLazyBinder
	CopyIntoDirectSubContainers() NonLazyBinder
	MoveIntoAllSubContainers() NonLazyBinder
	MoveIntoDirectSubContainers() NonLazyBinder
}

type ConditionBinder interface {
	CopyNonLazyBinder
	When(condition BindingCondition) CopyNonLazyBinder
	WhenInjectedInto(targets ...reflect.Type) CopyNonLazyBinder
	WhenNotInjectedInto(targets ...reflect.Type) CopyNonLazyBinder
}

type CallbackBinder interface {
	ConditionBinder
	OnInstantiated(callback InstantiatedCallback) ConditionBinder
}

type ArgBinder interface {
	CallbackBinder
	WithArguments(args ...any) CallbackBinder
	WithArgumentsExplicit(args ...TypeValuePair) CallbackBinder
}

type ConcreteIdArgBinder interface {
	ArgBinder
	WithConcreteId(id any) ArgBinder
}

type ScopeBinder interface {
	ConcreteIdArgBinder
	AsSingle() ConcreteIdArgBinder
	AsCached() ConcreteIdArgBinder
	AsTransient() ConcreteIdArgBinder
}

// IdScopeBinder is returned by BindInstance.
type IdScopeBinder interface {
	ScopeBinder
	WithId(id any) ScopeBinder
}

type FromBinder interface {
	ScopeBinder
	FromNew() ScopeBinder
	FromInstance(instance any) ScopeBinder
	FromMethod(method MethodFunc) ScopeBinder
	FromMethodMultiple(method MethodMultipleFunc) ScopeBinder
	FromResolve() ScopeBinder
	FromResolveId(id any) ScopeBinder
	FromResolveAll() ScopeBinder
	FromResolveAllId(id any) ScopeBinder
	FromResolveGetter(objectType reflect.Type, getter GetterFunc) ScopeBinder
	FromResolveGetterId(id any, objectType reflect.Type, getter GetterFunc) ScopeBinder
	FromResolveAllGetter(objectType reflect.Type, getter GetterFunc) ScopeBinder
	FromSubContainerResolve() SubContainerBinder
	FromSubContainerResolveId(id any) SubContainerBinder
	FromSubContainerResolveAll() SubContainerBinder
	FromDig(dc *dig.Container) ScopeBinder
}

type ConcreteBinder interface {
	FromBinder
	ToSelf() FromBinder
	To(concretes ...reflect.Type) FromBinder
	ToConvention(selector *ConventionSelector) FromBinder
}

type ConcreteIdBinder interface {
	ConcreteBinder
	WithId(id any) ConcreteBinder
}

type SubContainerBinder interface {
	ByMethod(install func(sub *Container) error) ScopeBinder
	ByInstaller(installers ...Installer) ScopeBinder
	ByInstance(sub *Container) ScopeBinder
}

var (
	_ ConcreteIdBinder   = (*binder)(nil)
	_ IdScopeBinder      = instanceBinder{}
	_ SubContainerBinder = (*subContainerBinder)(nil)
)

// binder implements every view over a single statement.
type binder struct {
	container *Container
	stmt      *BindStatement
}

func newBinder(c *Container, info *BindInfo) *binder {
	b := &binder{container: c, stmt: c.startBinding(info)}
	b.stmt.finalizer = &scopableFinalizer{info: info, factory: transientFactory(info)}
	return b
}

func (b *binder) info() *BindInfo { return b.stmt.info }

func (b *binder) fail(err error) { b.stmt.fail(err) }

func (b *binder) Err() error { return b.stmt.err }

// ========================================
// Container entry points
// ========================================

// Bind starts a binding for one or more contract types.
func (c *Container) Bind(contracts ...reflect.Type) ConcreteIdBinder {
	b := newBinder(c, NewBindInfo(contracts...))
	if len(contracts) == 0 {
		b.fail(ErrNoContractTypes)
	}
	for _, t := range contracts {
		if t == nil {
			b.fail(ErrTypeNil)
		}
	}
	return b
}

// Rebind removes existing unnamed bindings of the contracts in c, then
// starts a new binding for them.
func (c *Container) Rebind(contracts ...reflect.Type) ConcreteIdBinder {
	var errs []error
	for _, t := range contracts {
		if t == nil {
			continue
		}
		if _, err := c.Unbind(t); err != nil {
			errs = append(errs, err)
		}
	}
	b := c.Bind(contracts...).(*binder)
	if err := errors.Join(errs...); err != nil {
		b.fail(err)
	}
	return b
}

// BindInstance binds instance under its dynamic type.
func (c *Container) BindInstance(instance any) IdScopeBinder {
	t := reflect.TypeOf(instance)
	b := newBinder(c, NewBindInfo(t))
	if instance == nil {
		b.fail(ErrInstanceNil)
		return instanceBinder{b}
	}
	b.FromInstance(instance)
	return instanceBinder{b}
}

// BindInstances binds every instance under its own dynamic type. Errors,
// such as a nil instance, surface from FlushBindings.
func (c *Container) BindInstances(instances ...any) {
	for _, instance := range instances {
		c.BindInstance(instance)
	}
}

// BindInterfacesTo binds every interface declared by the descriptor of
// concrete to concrete. A scope must be chosen explicitly.
func (c *Container) BindInterfacesTo(concrete reflect.Type) FromBinder {
	return c.bindInterfaces(concrete, false)
}

// BindInterfacesAndSelfTo is BindInterfacesTo that also binds concrete itself.
func (c *Container) BindInterfacesAndSelfTo(concrete reflect.Type) FromBinder {
	return c.bindInterfaces(concrete, true)
}

func (c *Container) bindInterfaces(concrete reflect.Type, self bool) FromBinder {
	var contracts []reflect.Type
	if concrete != nil {
		if info, ok := c.types.TypeInfo(concrete); ok {
			contracts = append(contracts, info.Interfaces...)
		}
		if len(contracts) == 0 {
			c.logger.Warn().Str("type", formatType(concrete)).Msg("BindInterfacesTo found no interfaces")
		}
		if self {
			contracts = append(contracts, concrete)
		}
	}

	b := newBinder(c, NewBindInfo(contracts...))
	b.info().RequireExplicitScope = true
	if concrete == nil {
		b.fail(ErrTypeNil)
		return b
	}
	return b.To(concrete)
}

// BindConvention binds every type chosen by selector as a contract.
// Concrete types that do not derive from a contract are skipped.
func (c *Container) BindConvention(selector *ConventionSelector) ConcreteIdBinder {
	contracts := selector.Types()
	if len(contracts) == 0 {
		c.logger.Warn().Msg("convention binding selected no types")
	}
	b := newBinder(c, NewBindInfo(contracts...))
	b.info().InvalidBindResponse = BindSkip
	return b
}

// BindOpen binds an open type family. Every member of the family resolves
// through the binding; FromNew builds the type mapped by family.Concrete.
func (c *Container) BindOpen(family *OpenType) ConcreteIdBinder {
	info := NewBindInfo()
	info.OpenContract = family
	b := newBinder(c, info)
	if family == nil || family.Match == nil {
		b.fail(errors.New("open type family needs a match function"))
	}
	return b
}

// ========================================
// ConcreteIdBinder / ConcreteBinder
// ========================================

func (b *binder) WithId(id any) ConcreteBinder {
	if err := checkIdentifier(id); err != nil {
		b.fail(err)
		return b
	}
	b.info().Identifier = id
	return b
}

func (b *binder) ToSelf() FromBinder {
	b.info().ToChoice = ToSelf
	return b
}

func (b *binder) To(concretes ...reflect.Type) FromBinder {
	info := b.info()
	if info.OpenContract != nil {
		b.fail(errors.New("open type families map concrete types through the family"))
		return b
	}
	info.ToChoice = ToConcrete
	info.ToTypes = concretes
	if len(concretes) == 0 && info.InvalidBindResponse == BindAssert {
		b.fail(errors.New("no concrete types given"))
	}
	for _, concrete := range concretes {
		if concrete == nil {
			b.fail(ErrTypeNil)
			return b
		}
		for _, contract := range info.ContractTypes {
			if contract == nil {
				continue
			}
			if _, err := validateBindTypes(info, concrete, contract); err != nil {
				b.fail(err)
				return b
			}
		}
	}
	return b
}

func (b *binder) ToConvention(selector *ConventionSelector) FromBinder {
	b.info().InvalidBindResponse = BindSkip
	return b.To(selector.NonAbstract().Types()...)
}

// ========================================
// FromBinder
// ========================================

func (b *binder) setFactory(factory providerFactory) {
	b.stmt.finalizer = &scopableFinalizer{info: b.info(), factory: factory}
}

func (b *binder) FromNew() ScopeBinder {
	info := b.info()
	concretes := info.ContractTypes
	if info.ToChoice == ToConcrete {
		concretes = info.ToTypes
	}
	for _, t := range concretes {
		if t != nil && t.Kind() == reflect.Interface {
			b.fail(BindingError{Contracts: info.ContractTypes, Concrete: t, Cause: ErrAbstractType})
		}
	}
	b.setFactory(transientFactory(info))
	return b
}

func (b *binder) FromInstance(instance any) ScopeBinder {
	info := b.info()
	if instance == nil {
		b.fail(ErrInstanceNil)
		return b
	}
	if info.OpenContract != nil {
		b.fail(errors.New("open type families cannot bind an instance"))
		return b
	}
	t := reflect.TypeOf(instance)
	for _, contract := range info.ContractTypes {
		if contract != nil && !t.AssignableTo(contract) {
			b.fail(BindingError{Contracts: []reflect.Type{contract}, Identifier: info.Identifier, Concrete: t, Cause: ErrNotDerived})
			return b
		}
	}
	info.MarkAsCreationBinding = false
	b.setFactory(instanceFactory(info, instance))
	return b
}

func (b *binder) FromMethod(method MethodFunc) ScopeBinder {
	if method == nil {
		b.fail(ErrMethodNil)
		return b
	}
	b.setFactory(methodFactory(method))
	return b
}

func (b *binder) FromMethodMultiple(method MethodMultipleFunc) ScopeBinder {
	if method == nil {
		b.fail(ErrMethodNil)
		return b
	}
	b.setFactory(methodMultipleFactory(method))
	return b
}

func (b *binder) fromResolve(id any, matchAll bool) ScopeBinder {
	if err := checkIdentifier(id); err != nil {
		b.fail(err)
		return b
	}
	b.info().MarkAsCreationBinding = false
	b.setFactory(resolveFactory(id, SourceAny, matchAll))
	return b
}

func (b *binder) FromResolve() ScopeBinder { return b.fromResolve(nil, false) }

func (b *binder) FromResolveId(id any) ScopeBinder { return b.fromResolve(id, false) }

func (b *binder) FromResolveAll() ScopeBinder { return b.fromResolve(nil, true) }

func (b *binder) FromResolveAllId(id any) ScopeBinder { return b.fromResolve(id, true) }

func (b *binder) fromGetter(id any, objectType reflect.Type, getter GetterFunc, matchAll bool) ScopeBinder {
	switch {
	case objectType == nil:
		b.fail(ErrTypeNil)
	case getter == nil:
		b.fail(ErrMethodNil)
	default:
		if err := checkIdentifier(id); err != nil {
			b.fail(err)
			return b
		}
		b.info().MarkAsCreationBinding = false
		b.setFactory(getterFactory(objectType, id, getter, SourceAny, matchAll))
	}
	return b
}

func (b *binder) FromResolveGetter(objectType reflect.Type, getter GetterFunc) ScopeBinder {
	return b.fromGetter(nil, objectType, getter, false)
}

func (b *binder) FromResolveGetterId(id any, objectType reflect.Type, getter GetterFunc) ScopeBinder {
	return b.fromGetter(id, objectType, getter, false)
}

func (b *binder) FromResolveAllGetter(objectType reflect.Type, getter GetterFunc) ScopeBinder {
	return b.fromGetter(nil, objectType, getter, true)
}

func (b *binder) FromSubContainerResolve() SubContainerBinder {
	return &subContainerBinder{binder: b}
}

func (b *binder) FromSubContainerResolveId(id any) SubContainerBinder {
	if err := checkIdentifier(id); err != nil {
		b.fail(err)
	}
	return &subContainerBinder{binder: b, subIdentifier: id}
}

func (b *binder) FromSubContainerResolveAll() SubContainerBinder {
	return &subContainerBinder{binder: b, resolveAll: true}
}

func (b *binder) FromDig(dc *dig.Container) ScopeBinder {
	if dc == nil {
		b.fail(errors.New("dig container cannot be nil"))
		return b
	}
	b.setFactory(func(c *Container, concrete reflect.Type) (Provider, error) {
		if concrete == nil {
			return nil, errors.New("dig bindings cannot use open type families")
		}
		return NewDigProvider(c, dc, concrete), nil
	})
	return b
}

// ========================================
// ScopeBinder and below
// ========================================

func (b *binder) AsSingle() ConcreteIdArgBinder {
	b.info().Scope = ScopeSingleton
	b.info().MarkAsUniqueSingleton = true
	return b
}

func (b *binder) AsCached() ConcreteIdArgBinder {
	b.info().Scope = ScopeSingleton
	return b
}

func (b *binder) AsTransient() ConcreteIdArgBinder {
	b.info().Scope = ScopeTransient
	return b
}

func (b *binder) WithConcreteId(id any) ArgBinder {
	if err := checkIdentifier(id); err != nil {
		b.fail(err)
		return b
	}
	b.info().ConcreteIdentifier = id
	return b
}

func (b *binder) WithArguments(args ...any) CallbackBinder {
	for _, arg := range args {
		if arg == nil {
			b.fail(errors.New("arguments cannot be nil; use WithArgumentsExplicit"))
			return b
		}
	}
	b.info().Arguments = ArgsFrom(args...)
	return b
}

func (b *binder) WithArgumentsExplicit(args ...TypeValuePair) CallbackBinder {
	b.info().Arguments = append([]TypeValuePair(nil), args...)
	return b
}

func (b *binder) OnInstantiated(callback InstantiatedCallback) ConditionBinder {
	b.info().InstantiatedCallback = callback
	return b
}

func (b *binder) When(condition BindingCondition) CopyNonLazyBinder {
	if condition == nil {
		b.fail(errors.New("condition cannot be nil"))
		return b
	}
	b.info().Condition = condition
	return b
}

func (b *binder) WhenInjectedInto(targets ...reflect.Type) CopyNonLazyBinder {
	return b.When(func(ctx *InjectContext) bool {
		return ctx.ObjectType != nil && derivesFromAny(ctx.ObjectType, targets)
	})
}

func (b *binder) WhenNotInjectedInto(targets ...reflect.Type) CopyNonLazyBinder {
	return b.When(func(ctx *InjectContext) bool {
		return ctx.ObjectType == nil || !derivesFromAny(ctx.ObjectType, targets)
	})
}

func derivesFromAny(t reflect.Type, targets []reflect.Type) bool {
	for _, target := range targets {
		if target != nil && t.AssignableTo(target) {
			return true
		}
	}
	return false
}

func (b *binder) inherit(method InheritanceMethod) NonLazyBinder {
	b.info().InheritanceMethod = method
	return b
}

func (b *binder) CopyIntoAllSubContainers() NonLazyBinder { return b.inherit(CopyIntoAll) }

func (b *binder) CopyIntoDirectSubContainers() NonLazyBinder { return b.inherit(CopyDirectOnly) }

func (b *binder) MoveIntoAllSubContainers() NonLazyBinder { return b.inherit(MoveIntoAll) }

func (b *binder) MoveIntoDirectSubContainers() NonLazyBinder { return b.inherit(MoveDirectOnly) }

func (b *binder) NonLazy() IfNotBoundBinder {
	b.info().NonLazy = true
	return b
}

func (b *binder) Lazy() IfNotBoundBinder {
	b.info().NonLazy = false
	return b
}

func (b *binder) IfNotBound() BindingStatement {
	b.info().OnlyBindIfNotBound = true
	return b
}

// instanceBinder lets BindInstance set an identifier after the instance.
type instanceBinder struct {
	*binder
}

func (b instanceBinder) WithId(id any) ScopeBinder {
	b.binder.WithId(id)
	return b.binder
}

// ========================================
// Sub-container bindings
// ========================================

type subContainerBinder struct {
	binder        *binder
	subIdentifier any
	resolveAll    bool
}

func (s *subContainerBinder) use(newCreator func(c *Container) SubContainerCreator) ScopeBinder {
	info := s.binder.info()
	info.MarkAsCreationBinding = false
	s.binder.stmt.finalizer = &subContainerFinalizer{
		info:          info,
		subIdentifier: s.subIdentifier,
		resolveAll:    s.resolveAll,
		newCreator:    newCreator,
	}
	return s.binder
}

func (s *subContainerBinder) ByMethod(install func(sub *Container) error) ScopeBinder {
	if install == nil {
		s.binder.fail(ErrMethodNil)
		return s.binder
	}
	return s.use(func(c *Container) SubContainerCreator {
		return &subContainerCreatorByMethod{container: c, install: install}
	})
}

func (s *subContainerBinder) ByInstaller(installers ...Installer) ScopeBinder {
	for _, installer := range installers {
		if installer == nil {
			s.binder.fail(ErrInstallerNil)
			return s.binder
		}
	}
	return s.ByMethod(func(sub *Container) error {
		return sub.Install(installers...)
	})
}

func (s *subContainerBinder) ByInstance(sub *Container) ScopeBinder {
	if sub == nil {
		s.binder.fail(errors.New("sub-container cannot be nil"))
		return s.binder
	}
	return s.use(func(c *Container) SubContainerCreator {
		return &subContainerCreatorByInstance{sub: sub}
	})
}
