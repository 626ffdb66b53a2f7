package zenject

import "reflect"

// CachedProvider runs its creator once and replays the instances afterwards.
type CachedProvider struct {
	creator   Provider
	instances []any
	cached    bool
	creating  bool
}

// NewCachedProvider wraps creator.
func NewCachedProvider(creator Provider) *CachedProvider {
	return &CachedProvider{creator: creator}
}

func (p *CachedProvider) IsCached() bool { return true }

func (p *CachedProvider) TypeVariesBasedOnMemberType() bool {
	return p.creator.TypeVariesBasedOnMemberType()
}

func (p *CachedProvider) GetInstanceType(ctx *InjectContext) reflect.Type {
	return p.creator.GetInstanceType(ctx)
}

// NumInstances returns the number of cached instances.
func (p *CachedProvider) NumInstances() int { return len(p.instances) }

// ClearCache forgets the cached instances.
func (p *CachedProvider) ClearCache() {
	p.instances = nil
	p.cached = false
}

func (p *CachedProvider) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	if p.cached {
		return append(buffer, p.instances...), nil, nil
	}

	if p.creating {
		return buffer, nil, CircularDependencyError{Type: ctx.MemberType, ObjectGraph: ctx.ObjectGraphString()}
	}

	p.creating = true
	instances, inject, err := p.creator.GetAllInstancesWithInjectSplit(ctx, args, nil)
	p.creating = false
	if err != nil {
		return buffer, nil, err
	}

	p.instances = instances
	p.cached = true
	return append(buffer, instances...), inject, nil
}

// CachedOpenTypeProvider caches per requested member type, for providers
// whose output type varies with it.
type CachedOpenTypeProvider struct {
	creator   Provider
	instances map[reflect.Type][]any
	creating  map[reflect.Type]bool
}

// NewCachedOpenTypeProvider wraps creator.
func NewCachedOpenTypeProvider(creator Provider) *CachedOpenTypeProvider {
	return &CachedOpenTypeProvider{
		creator:   creator,
		instances: make(map[reflect.Type][]any),
		creating:  make(map[reflect.Type]bool),
	}
}

func (p *CachedOpenTypeProvider) IsCached() bool { return true }

func (p *CachedOpenTypeProvider) TypeVariesBasedOnMemberType() bool { return true }

func (p *CachedOpenTypeProvider) GetInstanceType(ctx *InjectContext) reflect.Type {
	return p.creator.GetInstanceType(ctx)
}

// NumInstances returns the number of cached instances over all member types.
func (p *CachedOpenTypeProvider) NumInstances() int {
	n := 0
	for _, list := range p.instances {
		n += len(list)
	}
	return n
}

func (p *CachedOpenTypeProvider) GetAllInstancesWithInjectSplit(ctx *InjectContext, args []TypeValuePair, buffer []any) ([]any, InjectAction, error) {
	key := ctx.MemberType
	if instances, ok := p.instances[key]; ok {
		return append(buffer, instances...), nil, nil
	}

	if p.creating[key] {
		return buffer, nil, CircularDependencyError{Type: key, ObjectGraph: ctx.ObjectGraphString()}
	}

	p.creating[key] = true
	instances, inject, err := p.creator.GetAllInstancesWithInjectSplit(ctx, args, nil)
	delete(p.creating, key)
	if err != nil {
		return buffer, nil, err
	}

	p.instances[key] = instances
	return append(buffer, instances...), inject, nil
}

// newCachedProviderFor picks the cache flavour matching creator.
func newCachedProviderFor(creator Provider) Provider {
	if creator.TypeVariesBasedOnMemberType() {
		return NewCachedOpenTypeProvider(creator)
	}
	return NewCachedProvider(creator)
}
