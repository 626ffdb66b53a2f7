package zenject

import "reflect"

// TransientProvider constructs a new instance on every request.
type TransientProvider struct {
	container          *Container
	concreteType       reflect.Type
	concreteFor        func(memberType reflect.Type) reflect.Type
	arguments          []TypeValuePair
	concreteIdentifier any
	onInstantiated     InstantiatedCallback
}

// NewTransientProvider creates a provider building concrete through c.
func NewTransientProvider(c *Container, concrete reflect.Type, args []TypeValuePair, concreteId any, onInstantiated InstantiatedCallback) *TransientProvider {
	return &TransientProvider{
		container:          c,
		concreteType:       concrete,
		arguments:          args,
		concreteIdentifier: concreteId,
		onInstantiated:     onInstantiated,
	}
}

// newOpenTransientProvider creates a provider whose concrete type is derived
// from the requested member type.
func newOpenTransientProvider(c *Container, concreteFor func(reflect.Type) reflect.Type, args []TypeValuePair, concreteId any, onInstantiated InstantiatedCallback) *TransientProvider {
	return &TransientProvider{
		container:          c,
		concreteFor:        concreteFor,
		arguments:          args,
		concreteIdentifier: concreteId,
		onInstantiated:     onInstantiated,
	}
}

func (p *TransientProvider) IsCached() bool { return false }

func (p *TransientProvider) TypeVariesBasedOnMemberType() bool { return p.concreteFor != nil }

func (p *TransientProvider) GetInstanceType(ctx *InjectContext) reflect.Type {
	concrete := p.concreteType
	if p.concreteFor != nil {
		concrete = p.concreteFor(ctx.MemberType)
	}
	if concrete == nil || (ctx.MemberType != nil && !concrete.AssignableTo(ctx.MemberType)) {
		return nil
	}
	return concrete
}

func (p *TransientProvider) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	concrete := p.GetInstanceType(ctx)
	if concrete == nil {
		actual := p.concreteType
		if p.concreteFor != nil {
			actual = p.concreteFor(ctx.MemberType)
		}
		return buffer, nil, TypeMismatchError{Expected: ctx.MemberType, Actual: actual, Context: "transient provider"}
	}

	extra := make([]TypeValuePair, 0, len(args)+len(p.arguments))
	extra = append(extra, args...)
	extra = append(extra, p.arguments...)

	instance, err := p.container.instantiate(concrete, false, &extra, ctx, p.concreteIdentifier)
	if err != nil {
		return buffer, nil, err
	}

	inject := func() error {
		if err := p.container.injectExplicit(instance, concrete, &extra, ctx, p.concreteIdentifier); err != nil {
			return err
		}
		if p.onInstantiated != nil && !isValidationMarker(instance) {
			p.onInstantiated(ctx, instance)
		}
		return nil
	}
	return append(buffer, instance), inject, nil
}
