package zenject

import "reflect"

// GetterFunc projects a resolved object to the bound value.
type GetterFunc func(obj any) (any, error)

// Getter adapts a typed projection to the arguments of FromResolveGetter.
func Getter[O, R any](fn func(O) R) (reflect.Type, GetterFunc) {
	return reflect.TypeFor[O](), func(obj any) (any, error) {
		o, ok := obj.(O)
		if !ok {
			return nil, TypeMismatchError{Expected: reflect.TypeFor[O](), Actual: reflect.TypeOf(obj), Context: "getter input"}
		}
		return fn(o), nil
	}
}

// ResolveProvider forwards to another lookup in the same container.
type ResolveProvider struct {
	container    *Container
	contractType reflect.Type
	identifier   any
	source       InjectSources
	matchAll     bool
	optional     bool
}

// NewResolveProvider creates a ResolveProvider.
func NewResolveProvider(c *Container, contract reflect.Type, identifier any, source InjectSources, matchAll, optional bool) *ResolveProvider {
	return &ResolveProvider{
		container:    c,
		contractType: contract,
		identifier:   identifier,
		source:       source,
		matchAll:     matchAll,
		optional:     optional,
	}
}

func (p *ResolveProvider) IsCached() bool { return false }

func (p *ResolveProvider) TypeVariesBasedOnMemberType() bool { return false }

func (p *ResolveProvider) GetInstanceType(ctx *InjectContext) reflect.Type { return p.contractType }

func (p *ResolveProvider) subContext(ctx *InjectContext) *InjectContext {
	sub := ctx.CreateSubContext(p.contractType, p.identifier)
	sub.Container = p.container
	sub.SourceType = p.source
	sub.Optional = p.optional
	return sub
}

func (p *ResolveProvider) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	sub := p.subContext(ctx)
	if p.matchAll {
		all, err := p.container.resolveAllRaw(sub)
		if err != nil {
			return buffer, nil, err
		}
		return append(buffer, all...), nil, nil
	}

	value, err := p.container.resolveRequired(sub)
	if err != nil {
		return buffer, nil, err
	}
	if value == nil {
		return buffer, nil, nil
	}
	return append(buffer, value), nil, nil
}

// GetterProvider resolves an object and returns a projection of it.
type GetterProvider struct {
	container  *Container
	objectType reflect.Type
	identifier any
	resultType reflect.Type
	getter     GetterFunc
	source     InjectSources
	matchAll   bool
}

// NewGetterProvider creates a GetterProvider.
func NewGetterProvider(c *Container, objectType reflect.Type, identifier any, resultType reflect.Type, getter GetterFunc, source InjectSources, matchAll bool) *GetterProvider {
	return &GetterProvider{
		container:  c,
		objectType: objectType,
		identifier: identifier,
		resultType: resultType,
		getter:     getter,
		source:     source,
		matchAll:   matchAll,
	}
}

func (p *GetterProvider) IsCached() bool { return false }

func (p *GetterProvider) TypeVariesBasedOnMemberType() bool { return false }

func (p *GetterProvider) GetInstanceType(ctx *InjectContext) reflect.Type { return p.resultType }

func (p *GetterProvider) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	sub := ctx.CreateSubContext(p.objectType, p.identifier)
	sub.Container = p.container
	sub.Optional = false
	sub.SourceType = p.source

	var objects []any
	if p.matchAll {
		all, err := p.container.resolveAllRaw(sub)
		if err != nil {
			return buffer, nil, err
		}
		objects = all
	} else {
		obj, err := p.container.resolveRequired(sub)
		if err != nil {
			return buffer, nil, err
		}
		objects = []any{obj}
	}

	if p.container.IsValidating() {
		return append(buffer, newValidationMarker(p.resultType)), nil, nil
	}

	for _, obj := range objects {
		result, err := p.getter(obj)
		if err != nil {
			return buffer, nil, InstantiationError{Type: p.resultType, Cause: err}
		}
		if err := checkProduced(ctx, result, "getter result"); err != nil {
			return buffer, nil, err
		}
		buffer = append(buffer, result)
	}
	return buffer, nil, nil
}
