package zenject

import "reflect"

// MethodFunc builds an instance for a lookup.
type MethodFunc func(ctx *InjectContext) (any, error)

// MethodMultipleFunc builds any number of instances for a lookup.
type MethodMultipleFunc func(ctx *InjectContext) ([]any, error)

// Method adapts a typed builder to a MethodFunc.
func Method[T any](fn func(ctx *InjectContext) (T, error)) MethodFunc {
	return func(ctx *InjectContext) (any, error) {
		return fn(ctx)
	}
}

// MethodProvider calls a user function on every request. While validating it
// returns a ValidationMarker instead of calling the function.
type MethodProvider struct {
	container *Container
	method    MethodFunc
}

// NewMethodProvider creates a MethodProvider.
func NewMethodProvider(c *Container, method MethodFunc) *MethodProvider {
	return &MethodProvider{container: c, method: method}
}

func (p *MethodProvider) IsCached() bool { return false }

func (p *MethodProvider) TypeVariesBasedOnMemberType() bool { return false }

func (p *MethodProvider) GetInstanceType(ctx *InjectContext) reflect.Type { return ctx.MemberType }

func (p *MethodProvider) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	if p.container.IsValidating() {
		return append(buffer, newValidationMarker(ctx.MemberType)), nil, nil
	}

	result, err := p.method(ctx)
	if err != nil {
		return buffer, nil, InstantiationError{Type: ctx.MemberType, Cause: err}
	}
	if err := checkProduced(ctx, result, "method result"); err != nil {
		return buffer, nil, err
	}
	return append(buffer, result), nil, nil
}

// MethodProviderMultiple calls a user function returning several instances.
type MethodProviderMultiple struct {
	container *Container
	method    MethodMultipleFunc
}

// NewMethodProviderMultiple creates a MethodProviderMultiple.
func NewMethodProviderMultiple(c *Container, method MethodMultipleFunc) *MethodProviderMultiple {
	return &MethodProviderMultiple{container: c, method: method}
}

func (p *MethodProviderMultiple) IsCached() bool { return false }

func (p *MethodProviderMultiple) TypeVariesBasedOnMemberType() bool { return false }

func (p *MethodProviderMultiple) GetInstanceType(ctx *InjectContext) reflect.Type { return ctx.MemberType }

func (p *MethodProviderMultiple) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	if p.container.IsValidating() {
		return append(buffer, newValidationMarker(ctx.MemberType)), nil, nil
	}

	results, err := p.method(ctx)
	if err != nil {
		return buffer, nil, InstantiationError{Type: ctx.MemberType, Cause: err}
	}
	for _, result := range results {
		if err := checkProduced(ctx, result, "method result"); err != nil {
			return buffer, nil, err
		}
	}
	return append(buffer, results...), nil, nil
}

// checkProduced verifies a produced value is non-nil and fits the lookup.
func checkProduced(ctx *InjectContext, value any, what string) error {
	if value == nil {
		return NilInstanceError{Type: ctx.MemberType, ObjectGraph: ctx.ObjectGraphString()}
	}
	if isValidationMarker(value) || ctx.MemberType == nil {
		return nil
	}
	if actual := reflect.TypeOf(value); !actual.AssignableTo(ctx.MemberType) {
		return TypeMismatchError{Expected: ctx.MemberType, Actual: actual, Context: what}
	}
	return nil
}
