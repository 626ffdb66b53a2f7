package zenject

import (
	"errors"
	"math"
	"reflect"

	"github.com/aerialflame7125/zenject/config"
)

// ========================================
// Lookup
// ========================================

func (c *Container) prepareLookup(ctx *InjectContext) error {
	if ctx == nil || ctx.MemberType == nil {
		return ErrTypeNil
	}
	if !ctx.SourceType.IsValid() {
		return EnumError{Enum: "inject source", Value: ctx.SourceType.String()}
	}
	if err := checkIdentifier(ctx.Identifier); err != nil {
		return err
	}
	if err := c.FlushBindings(); err != nil {
		return err
	}
	if c.installing && c.settings.DisplayWarningWhenResolvingDuringInstall {
		c.logger.Warn().
			Str("type", formatType(ctx.MemberType)).
			Msg("resolving while installers are still running; later bindings will not be visible")
	}
	return nil
}

// uniqueProvider selects the single provider serving ctx. Nearer containers
// win; within a container a satisfied condition beats an unconditional binding.
func (c *Container) uniqueProvider(ctx *InjectContext) (*providerInfo, error) {
	id := ctx.BindingId()

	var selected *providerInfo
	selectedDistance := math.MaxInt
	selectedHasCondition := false
	ambiguous := false

	for _, container := range c.lookups[ctx.SourceType] {
		distance := c.distances[container]
		if distance > selectedDistance {
			continue
		}

		for _, info := range container.localProviders(id) {
			hasCondition := info.condition != nil
			if hasCondition && !info.condition(ctx) {
				continue
			}

			if hasCondition {
				if selectedHasCondition {
					ambiguous = true
				} else {
					ambiguous = false
				}
			} else {
				if selectedHasCondition {
					continue
				}
				if selected != nil {
					ambiguous = true
				}
			}

			if ambiguous {
				continue
			}

			selectedDistance = distance
			selectedHasCondition = hasCondition
			selected = info
		}
	}

	if ambiguous {
		return nil, AmbiguousBindingError{Id: id, ObjectGraph: ctx.ObjectGraphString()}
	}
	return selected, nil
}

// appendMatches appends every provider visible to ctx whose condition holds.
func (c *Container) appendMatches(ctx *InjectContext, infos []*providerInfo) []*providerInfo {
	id := ctx.BindingId()
	for _, container := range c.lookups[ctx.SourceType] {
		for _, info := range container.localProviders(id) {
			if info.condition == nil || info.condition(ctx) {
				infos = append(infos, info)
			}
		}
	}
	return infos
}

// resolveContext resolves one instance. found is false when nothing matched.
// Validation markers are passed through.
func (c *Container) resolveContext(ctx *InjectContext) (any, bool, error) {
	if err := c.prepareLookup(ctx); err != nil {
		return nil, false, err
	}

	info, err := c.uniqueProvider(ctx)
	if err != nil {
		return nil, false, err
	}

	if info == nil {
		if ctx.MemberType.Kind() == reflect.Slice {
			elemCtx := ctx.Clone()
			elemCtx.MemberType = ctx.MemberType.Elem()
			elemCtx.Optional = true
			items, err := c.resolveAllRaw(elemCtx)
			if err != nil {
				return nil, false, err
			}
			return makeTypedSlice(ctx.MemberType, items), true, nil
		}
		return nil, false, nil
	}

	instances, err := c.safeGetInstances(info, ctx)
	if err != nil {
		return nil, false, err
	}
	if len(instances) != 1 {
		if len(instances) == 0 && ctx.Optional {
			return nil, false, nil
		}
		return nil, false, ArityError{Type: ctx.MemberType, Count: len(instances), ObjectGraph: ctx.ObjectGraphString()}
	}
	return instances[0], true, nil
}

// resolveRequired resolves one instance, applying the optional fallback.
func (c *Container) resolveRequired(ctx *InjectContext) (any, error) {
	value, found, err := c.resolveContext(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		if ctx.Optional {
			return ctx.FallBackValue, nil
		}
		return nil, NotFoundError{Id: ctx.BindingId(), ObjectGraph: ctx.ObjectGraphString(), Available: c.boundTypes()}
	}
	return value, nil
}

// resolveAllRaw resolves every matching instance in lookup order.
func (c *Container) resolveAllRaw(ctx *InjectContext) ([]any, error) {
	if err := c.prepareLookup(ctx); err != nil {
		return nil, err
	}

	list := c.infoLists.Spawn()
	defer func() { _ = c.infoLists.Despawn(list) }()
	*list = c.appendMatches(ctx, *list)

	if len(*list) == 0 {
		if !ctx.Optional {
			return nil, NotFoundError{Id: ctx.BindingId(), ObjectGraph: ctx.ObjectGraphString(), Available: c.boundTypes()}
		}
		return nil, nil
	}

	var all []any
	for _, info := range *list {
		instances, err := c.safeGetInstances(info, ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, instances...)
	}

	if len(all) == 0 && !ctx.Optional {
		return nil, ArityError{Type: ctx.MemberType, Count: 0, ObjectGraph: ctx.ObjectGraphString()}
	}
	return all, nil
}

// safeGetInstances runs a provider with re-entrancy tracking. A lookup may be
// re-entered once, which lets members and methods refer back to an object
// under construction. The third entry is a cycle.
func (c *Container) safeGetInstances(info *providerInfo, ctx *InjectContext) ([]any, error) {
	key := lookupId{provider: info.provider, id: ctx.BindingId()}
	owner := info.container

	if _, ok := owner.resolvesTwiceInProgress[key]; ok {
		return nil, CircularDependencyError{Type: ctx.MemberType, ObjectGraph: ctx.ObjectGraphString()}
	}

	twice := false
	if _, ok := owner.resolvesInProgress[key]; ok {
		owner.resolvesTwiceInProgress[key] = struct{}{}
		twice = true
	} else {
		owner.resolvesInProgress[key] = struct{}{}
	}
	defer func() {
		if twice {
			delete(owner.resolvesTwiceInProgress, key)
		} else {
			delete(owner.resolvesInProgress, key)
		}
	}()

	instances, err := GetAllInstances(info.provider, ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, instance := range instances {
		if err := checkProduced(ctx, instance, "provider result"); err != nil {
			return nil, err
		}
	}
	return c.decorate(info.provider, ctx, instances)
}

func makeTypedSlice(t reflect.Type, items []any) any {
	s := reflect.MakeSlice(t, len(items), len(items))
	for i, item := range items {
		if item == nil || isValidationMarker(item) {
			continue
		}
		s.Index(i).Set(reflect.ValueOf(item))
	}
	return s.Interface()
}

// ========================================
// Public resolution API
// ========================================

func (c *Container) rootContext(t reflect.Type, identifier any) *InjectContext {
	ctx := NewInjectContext(c, t)
	ctx.Identifier = identifier
	return ctx
}

// Resolve returns the single unnamed binding of t.
func (c *Container) Resolve(t reflect.Type) (any, error) {
	return c.ResolveContext(c.rootContext(t, nil))
}

// ResolveId returns the single binding of t with identifier.
func (c *Container) ResolveId(t reflect.Type, identifier any) (any, error) {
	return c.ResolveContext(c.rootContext(t, identifier))
}

// ResolveContext resolves the lookup described by ctx.
func (c *Container) ResolveContext(ctx *InjectContext) (any, error) {
	defer c.lock()()
	value, err := c.resolveRequired(ctx)
	return stripValidationMarker(value), err
}

// TryResolve returns the unnamed binding of t, reporting whether it exists.
// Ambiguity is still an error.
func (c *Container) TryResolve(t reflect.Type) (any, bool, error) {
	return c.TryResolveContext(c.rootContext(t, nil))
}

// TryResolveId is TryResolve with an identifier.
func (c *Container) TryResolveId(t reflect.Type, identifier any) (any, bool, error) {
	return c.TryResolveContext(c.rootContext(t, identifier))
}

// TryResolveContext is the context form of TryResolve.
func (c *Container) TryResolveContext(ctx *InjectContext) (any, bool, error) {
	defer c.lock()()
	value, found, err := c.resolveContext(ctx)
	if err != nil || !found {
		return nil, false, err
	}
	return stripValidationMarker(value), true, nil
}

// ResolveAll returns every unnamed binding of t. Nothing bound yields an
// empty result.
func (c *Container) ResolveAll(t reflect.Type) ([]any, error) {
	return c.ResolveIdAll(t, nil)
}

// ResolveIdAll returns every binding of t with identifier.
func (c *Container) ResolveIdAll(t reflect.Type, identifier any) ([]any, error) {
	ctx := c.rootContext(t, identifier)
	ctx.Optional = true
	return c.ResolveAllContext(ctx)
}

// ResolveAllContext resolves every match of ctx. A non-optional context
// fails when nothing matches.
func (c *Container) ResolveAllContext(ctx *InjectContext) ([]any, error) {
	defer c.lock()()
	all, err := c.resolveAllRaw(ctx)
	if err != nil {
		return nil, err
	}
	for i, v := range all {
		all[i] = stripValidationMarker(v)
	}
	return all, nil
}

// ResolveType returns the concrete type the unnamed binding of t produces.
func (c *Container) ResolveType(t reflect.Type) (reflect.Type, error) {
	defer c.lock()()
	ctx := c.rootContext(t, nil)
	if err := c.prepareLookup(ctx); err != nil {
		return nil, err
	}
	info, err := c.uniqueProvider(ctx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, NotFoundError{Id: ctx.BindingId(), ObjectGraph: ctx.ObjectGraphString(), Available: c.boundTypes()}
	}
	return info.provider.GetInstanceType(ctx), nil
}

// ResolveTypeAll returns the concrete types of every unnamed binding of t.
func (c *Container) ResolveTypeAll(t reflect.Type) ([]reflect.Type, error) {
	defer c.lock()()
	ctx := c.rootContext(t, nil)
	if err := c.prepareLookup(ctx); err != nil {
		return nil, err
	}
	var types []reflect.Type
	for _, info := range c.appendMatches(ctx, nil) {
		if concrete := info.provider.GetInstanceType(ctx); concrete != nil {
			types = append(types, concrete)
		}
	}
	return types, nil
}

// ========================================
// Instantiation and injection
// ========================================

// Instantiate builds t through its descriptor, using args before resolving.
func (c *Container) Instantiate(t reflect.Type, args ...any) (any, error) {
	return c.InstantiateExplicit(t, true, ArgsFrom(args...), nil, nil)
}

// InstantiateExplicit is Instantiate with typed arguments. Members and
// methods are injected only when autoInject is set. ctx, when not nil, is the
// context of the new object, so its lookups report ctx's object graph;
// concreteId is visible to their conditions.
func (c *Container) InstantiateExplicit(t reflect.Type, autoInject bool, args []TypeValuePair, ctx *InjectContext, concreteId any) (any, error) {
	defer c.lock()()

	if err := c.FlushBindings(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = NewInjectContext(c, t)
	}
	list := append([]TypeValuePair(nil), args...)
	instance, err := c.instantiate(t, autoInject, &list, ctx, concreteId)
	if err != nil {
		return nil, err
	}
	if !autoInject && len(list) > 0 {
		return nil, ExtraArgumentsError{Type: t, Args: list}
	}
	return stripValidationMarker(instance), nil
}

// Inject fills the members and calls the injection methods of an existing
// instance.
func (c *Container) Inject(instance any, args ...any) error {
	return c.InjectExplicit(instance, ArgsFrom(args...))
}

// InjectExplicit is Inject with typed arguments.
func (c *Container) InjectExplicit(instance any, args []TypeValuePair) error {
	defer c.lock()()
	if instance == nil {
		return ErrInstanceNil
	}
	if err := c.FlushBindings(); err != nil {
		return err
	}
	t := reflect.TypeOf(instance)
	list := append([]TypeValuePair(nil), args...)
	return c.injectExplicit(instance, t, &list, NewInjectContext(c, t), nil)
}

func (c *Container) instantiate(t reflect.Type, autoInject bool, args *[]TypeValuePair, ctx *InjectContext, concreteId any) (any, error) {
	instance, err := c.instantiateInternal(t, autoInject, args, ctx, concreteId)
	if err != nil && c.validating && c.settings.ValidationErrorResponse == config.Log {
		c.validationErrors = append(c.validationErrors, err)
		c.logger.Error().Err(err).Str("type", formatType(t)).Msg("validation error")
		return &ValidationMarker{Type: t, InstantiateFailed: true}, nil
	}
	return instance, err
}

func (c *Container) instantiateInternal(t reflect.Type, autoInject bool, args *[]TypeValuePair, ctx *InjectContext, concreteId any) (any, error) {
	if t == nil {
		return nil, ErrTypeNil
	}
	if t.Kind() == reflect.Interface {
		return nil, InstantiationError{Type: t, Cause: ErrAbstractType}
	}
	info, ok := c.types.TypeInfo(t)
	if !ok {
		return nil, DescriptorError{Type: t, Cause: ErrNoDescriptor}
	}
	if info.Constructor == nil {
		return nil, DescriptorError{Type: t, Cause: ErrNoConstructor}
	}

	values, err := c.resolveParams(info.Constructor.Params, t, nil, args, ctx, concreteId)
	if err != nil {
		return nil, err
	}

	var instance any
	if c.validating && !info.AllowDuringValidation {
		instance = newValidationMarker(t)
	} else {
		result, err := info.Constructor.Factory(values)
		if err != nil {
			return nil, InstantiationError{Type: t, Cause: err}
		}
		if result == nil {
			return nil, NilInstanceError{Type: t, ObjectGraph: ctx.ObjectGraphString()}
		}
		if actual := reflect.TypeOf(result); !actual.AssignableTo(t) {
			return nil, TypeMismatchError{Expected: t, Actual: actual, Context: "constructor result"}
		}
		instance = result
	}

	if autoInject {
		if err := c.injectExplicit(instance, t, args, ctx, concreteId); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// resolveParams fills params from args first, then from the container.
// Validation markers become nil so constructors see zero values.
func (c *Container) resolveParams(params []InjectableInfo, owner reflect.Type, instance any, args *[]TypeValuePair, ctx *InjectContext, concreteId any) ([]any, error) {
	values := make([]any, len(params))
	for i, p := range params {
		if v, ok := popArgument(args, p.MemberType); ok {
			values[i] = v
			continue
		}
		v, err := c.resolveRequired(contextForInjectable(c, p, owner, instance, ctx, concreteId))
		if err != nil {
			return nil, err
		}
		values[i] = stripValidationMarker(v)
	}
	return values, nil
}

func (c *Container) injectExplicit(instance any, t reflect.Type, args *[]TypeValuePair, ctx *InjectContext, concreteId any) error {
	if marker, ok := instance.(*ValidationMarker); ok && marker.InstantiateFailed {
		return nil
	}
	isMarker := isValidationMarker(instance)

	if info, ok := c.types.TypeInfo(t); ok {
		chain := info.chain()

		for _, ti := range chain {
			for _, m := range ti.Members {
				v, found := popArgument(args, m.Info.MemberType)
				if !found {
					var err error
					v, err = c.resolveRequired(contextForInjectable(c, m.Info, t, instance, ctx, concreteId))
					if err != nil {
						return err
					}
				}
				if isMarker || isValidationMarker(v) {
					continue
				}
				if v == nil && m.Info.Optional {
					continue
				}
				if err := m.Setter(instance, v); err != nil {
					return InstantiationError{Type: t, Cause: err}
				}
			}
		}

		for _, ti := range chain {
			for _, m := range ti.Methods {
				values, err := c.resolveParams(m.Params, t, instance, args, ctx, concreteId)
				if err != nil {
					return err
				}
				if isMarker {
					continue
				}
				if err := m.Action(instance, values); err != nil {
					return InstantiationError{Type: t, Cause: err}
				}
			}
		}
	}

	if args != nil && len(*args) > 0 {
		return ExtraArgumentsError{Type: t, Args: append([]TypeValuePair(nil), *args...)}
	}
	return nil
}

// ========================================
// Roots
// ========================================

// ResolveRoots finalizes pending bindings, resolves every NonLazy binding
// registered in c and drains the lazy injection queue. A validating container
// configured with the All root method resolves every binding instead.
func (c *Container) ResolveRoots() error {
	defer c.lock()()
	if err := c.FlushBindings(); err != nil {
		return err
	}

	resolveAll := c.validating && c.settings.ValidationRootResolveMethod == config.All
	for _, id := range c.order {
		for _, info := range append([]*providerInfo(nil), c.providers[id]...) {
			if !info.nonLazy && !resolveAll {
				continue
			}
			ctx := c.rootContext(id.Type, id.Identifier)
			ctx.SourceType = SourceLocal
			ctx.Optional = true
			if _, err := c.safeGetInstances(info, ctx); err != nil {
				return err
			}
		}
	}

	if err := c.injector.injectAll(); err != nil {
		return err
	}

	c.logger.Debug().Int("bindings", len(c.order)).Msg("resolved roots")
	return nil
}

// ValidateFullResolve resolves every binding of a validating container and
// returns all failures joined.
func (c *Container) ValidateFullResolve() error {
	defer c.lock()()
	if !c.validating {
		return ErrNotValidating
	}
	if err := c.FlushBindings(); err != nil {
		return err
	}

	var errs []error
	for _, id := range c.order {
		for _, info := range append([]*providerInfo(nil), c.providers[id]...) {
			ctx := c.rootContext(id.Type, id.Identifier)
			ctx.SourceType = SourceLocal
			ctx.Optional = true
			if _, err := c.safeGetInstances(info, ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	errs = append(errs, c.validationErrors...)

	if err := errors.Join(errs...); err != nil {
		c.logger.Error().Int("errors", len(errs)).Msg("validation failed")
		return err
	}
	c.logger.Debug().Int("bindings", len(c.order)).Msg("validation passed")
	return nil
}
