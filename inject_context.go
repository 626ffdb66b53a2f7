package zenject

import (
	"reflect"
	"strings"
)

// InjectContext describes a single lookup: what is requested, by whom, and
// under which restrictions. Contexts chain through ParentContext so a failing
// lookup can print the full object graph.
type InjectContext struct {
	Container *Container

	// ObjectType is the type being injected into, nil for root lookups.
	ObjectType reflect.Type

	// ObjectInstance is the object being injected into, when it already exists.
	ObjectInstance any

	ParentContext *InjectContext

	Identifier         any
	ConcreteIdentifier any

	MemberName string
	MemberType reflect.Type

	Optional      bool
	SourceType    InjectSources
	FallBackValue any
}

// NewInjectContext creates a root context asking c for memberType.
func NewInjectContext(c *Container, memberType reflect.Type) *InjectContext {
	return &InjectContext{Container: c, MemberType: memberType}
}

// BindingId returns the id this context looks up.
func (ctx *InjectContext) BindingId() BindingId {
	return BindingId{Type: ctx.MemberType, Identifier: ctx.Identifier}
}

// CreateSubContext returns a child context requesting memberType, with this
// context's object as the requester.
func (ctx *InjectContext) CreateSubContext(memberType reflect.Type, identifier any) *InjectContext {
	return &InjectContext{
		Container:          ctx.Container,
		ObjectType:         ctx.MemberType,
		ParentContext:      ctx,
		Identifier:         identifier,
		ConcreteIdentifier: ctx.ConcreteIdentifier,
		MemberType:         memberType,
	}
}

// Clone returns a shallow copy.
func (ctx *InjectContext) Clone() *InjectContext {
	clone := *ctx
	return &clone
}

// ParentContexts returns the chain of ancestors, nearest first.
func (ctx *InjectContext) ParentContexts() []*InjectContext {
	var parents []*InjectContext
	for p := ctx.ParentContext; p != nil; p = p.ParentContext {
		parents = append(parents, p)
	}
	return parents
}

// ObjectGraphString renders the chain from the root lookup down to this one,
// one entry per line.
func (ctx *InjectContext) ObjectGraphString() string {
	chain := append([]*InjectContext{ctx}, ctx.ParentContexts()...)

	var b strings.Builder
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		if c.MemberName != "" {
			b.WriteString(c.MemberName)
			b.WriteString(" (")
			b.WriteString(formatType(c.MemberType))
			b.WriteString(")")
		} else {
			b.WriteString(formatType(c.MemberType))
		}
		if i > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// contextForInjectable builds the lookup for one declared dependency of objectType.
func contextForInjectable(c *Container, info InjectableInfo, objectType reflect.Type, instance any, parent *InjectContext, concreteId any) *InjectContext {
	return &InjectContext{
		Container:          c,
		ObjectType:         objectType,
		ObjectInstance:     instance,
		ParentContext:      parent,
		Identifier:         info.Identifier,
		ConcreteIdentifier: concreteId,
		MemberName:         info.MemberName,
		MemberType:         info.MemberType,
		Optional:           info.Optional,
		SourceType:         info.Source,
		FallBackValue:      info.DefaultValue,
	}
}
