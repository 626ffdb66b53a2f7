package zenject

import "reflect"

// InjectAction completes injection of instances returned by a provider.
// It runs after the instances are visible to callers so members and methods
// may refer back to them.
type InjectAction func() error

// Provider produces the instances of a binding.
type Provider interface {
	// IsCached reports whether repeated calls return the same instances.
	IsCached() bool

	// TypeVariesBasedOnMemberType reports whether the produced type depends
	// on the requested member type.
	TypeVariesBasedOnMemberType() bool

	// GetInstanceType returns the type produced for ctx, or nil when the
	// provider cannot serve it.
	GetInstanceType(ctx *InjectContext) reflect.Type

	// GetAllInstancesWithInjectSplit appends instances to buffer and returns
	// the deferred injection step, which may be nil.
	GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error)
}

// GetAllInstances runs p and its injection step.
func GetAllInstances(p Provider, ctx *InjectContext, args []TypeValuePair) ([]any, error) {
	instances, inject, err := p.GetAllInstancesWithInjectSplit(ctx, args, nil)
	if err != nil {
		return nil, err
	}
	if inject != nil {
		if err := inject(); err != nil {
			return nil, err
		}
	}
	return instances, nil
}

// GetInstance runs p and requires exactly one instance.
func GetInstance(p Provider, ctx *InjectContext) (any, error) {
	instances, err := GetAllInstances(p, ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(instances) != 1 {
		return nil, ArityError{Type: ctx.MemberType, Count: len(instances), ObjectGraph: ctx.ObjectGraphString()}
	}
	return instances[0], nil
}

// TryGetInstance runs p and accepts zero or one instance.
func TryGetInstance(p Provider, ctx *InjectContext) (any, bool, error) {
	instances, err := GetAllInstances(p, ctx, nil)
	if err != nil {
		return nil, false, err
	}
	switch len(instances) {
	case 0:
		return nil, false, nil
	case 1:
		return instances[0], true, nil
	default:
		return nil, false, ArityError{Type: ctx.MemberType, Count: len(instances), ObjectGraph: ctx.ObjectGraphString()}
	}
}

// providerInfo is a registered provider together with its binding options.
type providerInfo struct {
	provider  Provider
	condition BindingCondition
	nonLazy   bool
	container *Container
}
