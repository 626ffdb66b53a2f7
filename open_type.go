package zenject

import "reflect"

// OpenType names a family of closed types, the counterpart of an open
// generic type. Go generics are instantiated at compile time, so a family is
// described by a predicate over candidate types.
type OpenType struct {
	Name string

	// Match reports whether t belongs to the family.
	Match func(t reflect.Type) bool

	// Concrete maps a requested member of the family to the type to build.
	// Nil means the requested type is built as is.
	Concrete func(t reflect.Type) reflect.Type
}

// Matches reports whether t belongs to the family.
func (o *OpenType) Matches(t reflect.Type) bool {
	return o != nil && o.Match != nil && t != nil && o.Match(t)
}

func (o *OpenType) concreteFor(t reflect.Type) reflect.Type {
	if !o.Matches(t) {
		return nil
	}
	if o.Concrete == nil {
		return t
	}
	return o.Concrete(t)
}

func (o *OpenType) String() string {
	if o == nil {
		return "<nil>"
	}
	return o.Name
}

type openRegistration struct {
	family     *OpenType
	identifier any
	info       *providerInfo
}

func (c *Container) registerOpenProvider(family *OpenType, identifier any, condition BindingCondition, provider Provider, nonLazy bool) {
	info := &providerInfo{provider: provider, condition: condition, nonLazy: nonLazy, container: c}
	c.open = append(c.open, openRegistration{family: family, identifier: identifier, info: info})
	if c.finalizing != nil {
		c.finalizing.registrations = append(c.finalizing.registrations, registration{
			id:   BindingId{Identifier: identifier},
			open: family,
			info: info,
		})
	}
}
