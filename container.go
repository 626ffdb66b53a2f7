package zenject

import (
	"errors"
	"reflect"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aerialflame7125/zenject/config"
	"github.com/aerialflame7125/zenject/pool"
)

// Container holds bindings and resolves object graphs from them. Containers
// form a hierarchy: a lookup may consult ancestors according to its
// InjectSources.
//
// A Container may be used from several goroutines. Every public operation
// holds the lock of its container tree for its whole duration, so lookups
// are serialized across a tree. The goroutine holding the lock may re-enter,
// which lets providers and user callbacks call back into the container.
type Container struct {
	id    string
	locks []*treeLock

	parents   []*Container
	ancestors []*Container
	distances map[*Container]int
	lookups   [4][]*Container

	providers  map[BindingId][]*providerInfo
	order      []BindingId
	open       []openRegistration
	decorators map[reflect.Type]*decoratorSet

	queue           []*BindStatement
	childStatements []*BindStatement
	finalizing      *BindStatement
	isFinalizing    bool

	resolvesInProgress      map[lookupId]struct{}
	resolvesTwiceInProgress map[lookupId]struct{}

	marks    *singletonMarkRegistry
	injector *lazyInjector

	types            TypeInfoProvider
	settings         config.Settings
	logger           zerolog.Logger
	validating       bool
	installing       bool
	validationErrors []error

	infoLists *pool.ListPool[*providerInfo]
}

type lookupId struct {
	provider Provider
	id       BindingId
}

// New creates a root container.
func New(opts ...Option) *Container {
	// A root container has nothing to inherit, so construction cannot fail.
	c, _ := newContainer(nil, opts)
	return c
}

// NewSubContainer creates a container with several parents. Pending bindings
// of every parent are flushed first.
func NewSubContainer(parents []*Container, opts ...Option) (*Container, error) {
	for _, p := range parents {
		if p == nil {
			return nil, errors.New("parent container cannot be nil")
		}
	}
	defer acquireAll(mergeLocks(parents))()

	for _, p := range parents {
		if err := p.FlushBindings(); err != nil {
			return nil, err
		}
	}
	return newContainer(parents, opts)
}

// CreateSubContainer creates a child of c.
func (c *Container) CreateSubContainer(opts ...Option) (*Container, error) {
	return NewSubContainer([]*Container{c}, opts...)
}

func newContainer(parents []*Container, opts []Option) (*Container, error) {
	o := &containerOptions{}
	for _, opt := range opts {
		opt.apply(o)
	}

	c := &Container{
		id:                      uuid.NewString(),
		parents:                 append([]*Container(nil), parents...),
		providers:               make(map[BindingId][]*providerInfo),
		decorators:              make(map[reflect.Type]*decoratorSet),
		resolvesInProgress:      make(map[lookupId]struct{}),
		resolvesTwiceInProgress: make(map[lookupId]struct{}),
		marks:                   newSingletonMarkRegistry(),
		infoLists:               pool.NewListPool[*providerInfo](),
		settings:                config.Default(),
		logger:                  zerolog.Nop(),
		validating:              o.validating,
	}
	c.injector = newLazyInjector(c)

	c.locks = mergeLocks(parents)
	if len(c.locks) == 0 {
		c.locks = []*treeLock{newTreeLock()}
	}

	if len(parents) > 0 {
		first := parents[0]
		c.settings = first.settings
		c.logger = first.logger
		c.types = first.types
		for _, p := range parents {
			c.validating = c.validating || p.validating
		}
	}
	if o.settings != nil {
		c.settings = *o.settings
	}
	if o.logger != nil {
		c.logger = *o.logger
	}
	if o.types != nil {
		c.types = o.types
	}
	if c.types == nil {
		c.types = NewTypeRegistry()
	}
	c.logger = c.logger.With().Str("container", c.id).Logger()

	c.buildLookups()

	self := reflect.TypeFor[*Container]()
	c.addProvider(BindingId{Type: self}, &providerInfo{
		provider:  NewInstanceProvider(c, self, c, nil),
		container: c,
	})

	if err := c.inheritBindings(); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("parents", len(c.parents)).
		Bool("validating", c.validating).
		Msg("container created")

	return c, nil
}

// buildLookups flattens the ancestor graph breadth first and precomputes the
// container list of every InjectSources value.
func (c *Container) buildLookups() {
	c.distances = map[*Container]int{c: 0}
	queue := []*Container{c}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, p := range current.parents {
			if _, seen := c.distances[p]; seen {
				continue
			}
			c.distances[p] = c.distances[current] + 1
			c.ancestors = append(c.ancestors, p)
			queue = append(queue, p)
		}
	}

	var direct []*Container
	for _, p := range c.parents {
		if !containsContainer(direct, p) {
			direct = append(direct, p)
		}
	}

	c.lookups[SourceLocal] = []*Container{c}
	c.lookups[SourceParent] = direct
	c.lookups[SourceAnyParent] = c.ancestors
	c.lookups[SourceAny] = append([]*Container{c}, c.ancestors...)
}

func containsContainer(list []*Container, c *Container) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}

// ID returns the unique id of the container.
func (c *Container) ID() string { return c.id }

// Parents returns the direct parents.
func (c *Container) Parents() []*Container { return append([]*Container(nil), c.parents...) }

// Ancestors returns every ancestor, nearest first.
func (c *Container) Ancestors() []*Container { return append([]*Container(nil), c.ancestors...) }

// IsValidating reports whether the container is in validation mode.
func (c *Container) IsValidating() bool { return c.validating }

// IsInstalling reports whether an installer is currently running.
func (c *Container) IsInstalling() bool {
	defer c.lock()()
	return c.installing
}

// Settings returns the container settings.
func (c *Container) Settings() config.Settings { return c.settings }

// Logger returns the container logger.
func (c *Container) Logger() zerolog.Logger { return c.logger }

// Types returns the descriptor source.
func (c *Container) Types() TypeInfoProvider { return c.types }

// ValidationErrors returns the errors logged while validating with the Log
// response.
func (c *Container) ValidationErrors() []error {
	defer c.lock()()
	return append([]error(nil), c.validationErrors...)
}

// ========================================
// Provider registry
// ========================================

// RegisterProvider adds a provider under id. Most code registers providers
// through the fluent Bind API instead.
func (c *Container) RegisterProvider(id BindingId, condition BindingCondition, provider Provider, nonLazy bool) error {
	if id.Type == nil {
		return ErrTypeNil
	}
	if err := checkIdentifier(id.Identifier); err != nil {
		return err
	}
	if provider == nil {
		return errors.New("provider cannot be nil")
	}
	defer c.lock()()

	info := &providerInfo{provider: provider, condition: condition, nonLazy: nonLazy, container: c}
	c.addProvider(id, info)
	if c.finalizing != nil {
		c.finalizing.registrations = append(c.finalizing.registrations, registration{id: id, info: info})
	}
	return nil
}

func (c *Container) addProvider(id BindingId, info *providerInfo) {
	if _, ok := c.providers[id]; !ok {
		c.order = append(c.order, id)
	}
	c.providers[id] = append(c.providers[id], info)
}

// localProviders returns the providers registered directly in c for id.
// Exact registrations win over open type families.
func (c *Container) localProviders(id BindingId) []*providerInfo {
	if infos := c.providers[id]; len(infos) > 0 {
		return infos
	}
	var matches []*providerInfo
	for _, reg := range c.open {
		if reg.identifier == id.Identifier && reg.family.Matches(id.Type) {
			matches = append(matches, reg.info)
		}
	}
	return matches
}

func (c *Container) hasLocalBinding(id BindingId) bool {
	return len(c.localProviders(id)) > 0
}

func removeInfo(infos []*providerInfo, target *providerInfo) []*providerInfo {
	kept := infos[:0:0]
	for _, info := range infos {
		if info != target {
			kept = append(kept, info)
		}
	}
	return kept
}

// boundTypes lists every contract type with providers, for suggestions.
func (c *Container) boundTypes() []reflect.Type {
	var types []reflect.Type
	seen := make(map[reflect.Type]bool)
	for _, container := range c.lookups[SourceAny] {
		for _, id := range container.order {
			if len(container.providers[id]) > 0 && !seen[id.Type] {
				seen[id.Type] = true
				types = append(types, id.Type)
			}
		}
	}
	return types
}

// ========================================
// Binding queue
// ========================================

func (c *Container) startBinding(info *BindInfo) *BindStatement {
	defer c.lock()()
	stmt := &BindStatement{info: info, owner: c}
	if c.isFinalizing {
		stmt.fail(ErrBindingInProgress)
	}
	c.queue = append(c.queue, stmt)
	return stmt
}

// FlushBindings finalizes every queued binding. It runs automatically before
// any lookup, so calling it is only needed to surface binding errors early.
func (c *Container) FlushBindings() error {
	defer c.lock()()
	for len(c.queue) > 0 {
		stmt := c.queue[0]
		c.queue = c.queue[1:]
		if err := c.finalizeOwned(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) finalizeOwned(stmt *BindStatement) error {
	if stmt.err != nil {
		return stmt.err
	}
	if stmt.info.InheritanceMethod != InheritNone {
		c.childStatements = append(c.childStatements, stmt)
	}
	return c.finalizeStatement(stmt, true)
}

func (c *Container) finalizeStatement(stmt *BindStatement, record bool) error {
	if stmt.finalizer == nil {
		return BindingError{Contracts: stmt.info.ContractTypes, Identifier: stmt.info.Identifier, Cause: errors.New("binding has no finalizer")}
	}

	prevFinalizing := c.isFinalizing
	prevStatement := c.finalizing
	c.isFinalizing = true
	if record {
		c.finalizing = stmt
	} else {
		c.finalizing = nil
	}
	defer func() {
		c.isFinalizing = prevFinalizing
		c.finalizing = prevStatement
	}()

	if err := stmt.finalizer.FinalizeBinding(c); err != nil {
		var bindErr BindingError
		if errors.As(err, &bindErr) {
			return err
		}
		return BindingError{Contracts: stmt.info.ContractTypes, Identifier: stmt.info.Identifier, Cause: err}
	}
	return nil
}

// inheritBindings applies the copy and move statements of every ancestor.
func (c *Container) inheritBindings() error {
	for _, ancestor := range c.ancestors {
		for _, stmt := range ancestor.childStatements {
			if stmt.info.InheritanceMethod.directOnly() && !containsContainer(c.parents, ancestor) {
				continue
			}
			if err := c.inherit(stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Container) inherit(stmt *BindStatement) error {
	if stmt.sharesProviders() {
		for _, reg := range stmt.registrations {
			shared := &providerInfo{
				provider:  reg.info.provider,
				condition: reg.info.condition,
				nonLazy:   reg.info.nonLazy,
				container: c,
			}
			if reg.open != nil {
				c.open = append(c.open, openRegistration{family: reg.open, identifier: reg.id.Identifier, info: shared})
			} else {
				c.addProvider(reg.id, shared)
			}
		}
	} else if err := c.finalizeStatement(stmt, false); err != nil {
		return err
	}

	if stmt.info.InheritanceMethod.isMove() && !stmt.removedFromOwner {
		stmt.owner.removeRegistrations(stmt)
		stmt.removedFromOwner = true
	}

	c.logger.Debug().
		Str("contracts", formatTypes(stmt.info.ContractTypes)).
		Stringer("method", stmt.info.InheritanceMethod).
		Msg("inherited binding")
	return nil
}

func (c *Container) removeRegistrations(stmt *BindStatement) {
	for _, reg := range stmt.registrations {
		if reg.open != nil {
			kept := c.open[:0:0]
			for _, o := range c.open {
				if o.info != reg.info {
					kept = append(kept, o)
				}
			}
			c.open = kept
			continue
		}
		c.providers[reg.id] = removeInfo(c.providers[reg.id], reg.info)
	}
}

// ========================================
// Unbinding and queries
// ========================================

// Unbind removes every unnamed binding of contract in c.
func (c *Container) Unbind(contract reflect.Type) (bool, error) {
	return c.UnbindId(contract, nil)
}

// UnbindId removes every binding of contract with identifier in c.
func (c *Container) UnbindId(contract reflect.Type, identifier any) (bool, error) {
	defer c.lock()()
	if err := c.FlushBindings(); err != nil {
		return false, err
	}
	id := BindingId{Type: contract, Identifier: identifier}
	if err := checkIdentifier(identifier); err != nil {
		return false, err
	}
	infos, ok := c.providers[id]
	if !ok || len(infos) == 0 {
		return false, nil
	}
	ctx := NewInjectContext(c, contract)
	ctx.Identifier = identifier
	for _, info := range infos {
		if concrete := info.provider.GetInstanceType(ctx); concrete != nil {
			delete(c.marks.marks, concrete)
		}
	}
	c.providers[id] = nil
	delete(c.marks.marks, contract)
	return true, nil
}

// UnbindConcrete removes unnamed bindings of contract producing concrete.
func (c *Container) UnbindConcrete(contract, concrete reflect.Type) (bool, error) {
	defer c.lock()()
	if err := c.FlushBindings(); err != nil {
		return false, err
	}
	return c.unbindConcrete(BindingId{Type: contract}, concrete), nil
}

func (c *Container) unbindConcrete(id BindingId, concrete reflect.Type) bool {
	ctx := NewInjectContext(c, id.Type)
	ctx.Identifier = id.Identifier

	removed := false
	infos := c.providers[id]
	kept := infos[:0:0]
	for _, info := range infos {
		if info.provider.GetInstanceType(ctx) == concrete {
			removed = true
			continue
		}
		kept = append(kept, info)
	}
	if removed {
		c.providers[id] = kept
	}
	return removed
}

// UnbindInterfacesTo removes interface bindings in c producing concrete.
func (c *Container) UnbindInterfacesTo(concrete reflect.Type) (bool, error) {
	defer c.lock()()
	if err := c.FlushBindings(); err != nil {
		return false, err
	}
	removed := false
	for _, id := range c.order {
		if id.Type.Kind() != reflect.Interface || !concrete.Implements(id.Type) {
			continue
		}
		if c.unbindConcrete(id, concrete) {
			removed = true
		}
	}
	return removed, nil
}

// UnbindAll removes every binding in c, including open families.
func (c *Container) UnbindAll() error {
	defer c.lock()()
	if err := c.FlushBindings(); err != nil {
		return err
	}
	for id := range c.providers {
		c.providers[id] = nil
	}
	c.open = nil
	c.marks = newSingletonMarkRegistry()
	return nil
}

// HasBinding reports whether an unnamed binding of contract is visible from c.
func (c *Container) HasBinding(contract reflect.Type) (bool, error) {
	return c.HasBindingId(contract, nil, SourceAny)
}

// HasBindingId reports whether a binding matching the lookup exists.
// Conditions are evaluated against a root context.
func (c *Container) HasBindingId(contract reflect.Type, identifier any, source InjectSources) (bool, error) {
	defer c.lock()()
	if err := c.FlushBindings(); err != nil {
		return false, err
	}
	ctx := NewInjectContext(c, contract)
	ctx.Identifier = identifier
	ctx.SourceType = source
	for _, container := range c.lookups[source] {
		for _, info := range container.localProviders(ctx.BindingId()) {
			if info.condition == nil || info.condition(ctx) {
				return true, nil
			}
		}
	}
	return false, nil
}
