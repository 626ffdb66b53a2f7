package zenject

import "reflect"

// InstanceProvider always returns one pre-made instance. The instance is
// injected lazily, the first time it is handed out.
type InstanceProvider struct {
	container      *Container
	instanceType   reflect.Type
	instance       any
	onInstantiated InstantiatedCallback
}

// NewInstanceProvider creates an InstanceProvider.
func NewInstanceProvider(c *Container, instanceType reflect.Type, instance any, onInstantiated InstantiatedCallback) *InstanceProvider {
	return &InstanceProvider{
		container:      c,
		instanceType:   instanceType,
		instance:       instance,
		onInstantiated: onInstantiated,
	}
}

func (p *InstanceProvider) IsCached() bool { return true }

func (p *InstanceProvider) TypeVariesBasedOnMemberType() bool { return false }

func (p *InstanceProvider) GetInstanceType(ctx *InjectContext) reflect.Type { return p.instanceType }

func (p *InstanceProvider) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	inject := func() error {
		if err := p.container.LazyInject(p.instance); err != nil {
			return err
		}
		if p.onInstantiated != nil {
			p.onInstantiated(ctx, p.instance)
		}
		return nil
	}
	return append(buffer, p.instance), inject, nil
}
