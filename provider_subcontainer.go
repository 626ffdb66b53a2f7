package zenject

import (
	"errors"
	"reflect"
)

// SubContainerCreator produces the container a SubContainerDependencyProvider
// resolves from.
type SubContainerCreator interface {
	CreateSubContainer(args []TypeValuePair, ctx *InjectContext) (*Container, error)
}

// subContainerCreatorByMethod builds a fresh child container, binds the call
// arguments into it as instances and runs install.
type subContainerCreatorByMethod struct {
	container *Container
	install   func(sub *Container) error
}

func (s *subContainerCreatorByMethod) CreateSubContainer(args []TypeValuePair, ctx *InjectContext) (*Container, error) {
	sub, err := s.container.CreateSubContainer()
	if err != nil {
		return nil, err
	}

	for _, arg := range args {
		if arg.Type == nil || arg.Value == nil {
			return nil, ErrInstanceNil
		}
		sub.Bind(arg.Type).FromInstance(arg.Value)
	}

	if err := s.install(sub); err != nil {
		return nil, err
	}
	if err := sub.ResolveRoots(); err != nil {
		return nil, err
	}
	return sub, nil
}

// subContainerCreatorByInstance always returns a prebuilt container.
type subContainerCreatorByInstance struct {
	sub *Container
}

func (s *subContainerCreatorByInstance) CreateSubContainer(args []TypeValuePair, ctx *InjectContext) (*Container, error) {
	if len(args) > 0 {
		return nil, ExtraArgumentsError{Type: reflect.TypeFor[*Container](), Args: args}
	}
	return s.sub, nil
}

var errCachedSubContainerArgs = errors.New("cached sub-container cannot take arguments")

// subContainerCreatorCached creates its sub-container once.
type subContainerCreatorCached struct {
	creator  SubContainerCreator
	sub      *Container
	creating bool
}

func (s *subContainerCreatorCached) CreateSubContainer(args []TypeValuePair, ctx *InjectContext) (*Container, error) {
	if len(args) > 0 {
		return nil, errCachedSubContainerArgs
	}
	if s.sub != nil {
		return s.sub, nil
	}
	if s.creating {
		return nil, CircularDependencyError{Type: ctx.MemberType, ObjectGraph: ctx.ObjectGraphString()}
	}

	s.creating = true
	sub, err := s.creator.CreateSubContainer(nil, ctx)
	s.creating = false
	if err != nil {
		return nil, err
	}
	s.sub = sub
	return sub, nil
}

// SubContainerDependencyProvider resolves a dependency from a sub-container.
type SubContainerDependencyProvider struct {
	dependencyType reflect.Type
	identifier     any
	creator        SubContainerCreator
	resolveAll     bool
}

// NewSubContainerDependencyProvider creates a SubContainerDependencyProvider.
func NewSubContainerDependencyProvider(dependency reflect.Type, identifier any, creator SubContainerCreator, resolveAll bool) *SubContainerDependencyProvider {
	return &SubContainerDependencyProvider{
		dependencyType: dependency,
		identifier:     identifier,
		creator:        creator,
		resolveAll:     resolveAll,
	}
}

func (p *SubContainerDependencyProvider) IsCached() bool { return false }

func (p *SubContainerDependencyProvider) TypeVariesBasedOnMemberType() bool { return false }

func (p *SubContainerDependencyProvider) GetInstanceType(ctx *InjectContext) reflect.Type {
	return p.dependencyType
}

func (p *SubContainerDependencyProvider) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	sub, err := p.creator.CreateSubContainer(args, ctx)
	if err != nil {
		return buffer, nil, err
	}

	subCtx := ctx.CreateSubContext(p.dependencyType, p.identifier)
	subCtx.Container = sub
	subCtx.SourceType = SourceLocal

	if p.resolveAll {
		all, err := sub.resolveAllRaw(subCtx)
		if err != nil {
			return buffer, nil, err
		}
		return append(buffer, all...), nil, nil
	}

	value, err := sub.resolveRequired(subCtx)
	if err != nil {
		return buffer, nil, err
	}
	return append(buffer, value), nil, nil
}
