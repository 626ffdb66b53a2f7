package zenject

import (
	"reflect"

	"go.uber.org/dig"
)

// DigProvider obtains instances from a go.uber.org/dig container, which lets
// existing dig graphs feed bindings.
type DigProvider struct {
	container  *Container
	dig        *dig.Container
	resultType reflect.Type
}

// NewDigProvider creates a DigProvider for resultType.
func NewDigProvider(c *Container, dc *dig.Container, resultType reflect.Type) *DigProvider {
	return &DigProvider{container: c, dig: dc, resultType: resultType}
}

func (p *DigProvider) IsCached() bool { return false }

func (p *DigProvider) TypeVariesBasedOnMemberType() bool { return false }

func (p *DigProvider) GetInstanceType(ctx *InjectContext) reflect.Type { return p.resultType }

func (p *DigProvider) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	if p.container.IsValidating() {
		return append(buffer, newValidationMarker(p.resultType)), nil, nil
	}
	if len(args) > 0 {
		return buffer, nil, ExtraArgumentsError{Type: p.resultType, Args: args}
	}

	var result any
	fnType := reflect.FuncOf([]reflect.Type{p.resultType}, nil, false)
	fn := reflect.MakeFunc(fnType, func(in []reflect.Value) []reflect.Value {
		result = in[0].Interface()
		return nil
	})

	if err := p.dig.Invoke(fn.Interface()); err != nil {
		return buffer, nil, InstantiationError{Type: p.resultType, Cause: err}
	}
	if err := checkProduced(ctx, result, "dig result"); err != nil {
		return buffer, nil, err
	}
	return append(buffer, result), nil, nil
}
