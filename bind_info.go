package zenject

import "reflect"

// BindingCondition decides whether a conditional binding applies to a lookup.
type BindingCondition func(ctx *InjectContext) bool

// InstantiatedCallback runs after an instance produced by a binding has been
// fully injected.
type InstantiatedCallback func(ctx *InjectContext, instance any)

// BindInfo is the mutable description a fluent binding chain fills in.
type BindInfo struct {
	ContextInfo string

	ContractTypes []reflect.Type
	OpenContract  *OpenType

	ToChoice ToChoice
	ToTypes  []reflect.Type

	Scope              ScopeType
	Identifier         any
	ConcreteIdentifier any

	Condition            BindingCondition
	NonLazy              bool
	OnlyBindIfNotBound   bool
	Arguments            []TypeValuePair
	InstantiatedCallback InstantiatedCallback

	InheritanceMethod   InheritanceMethod
	InvalidBindResponse InvalidBindResponse

	RequireExplicitScope  bool
	MarkAsCreationBinding bool
	MarkAsUniqueSingleton bool
}

// NewBindInfo returns a BindInfo with defaults applied.
func NewBindInfo(contracts ...reflect.Type) *BindInfo {
	return &BindInfo{
		ContractTypes:         contracts,
		MarkAsCreationBinding: true,
	}
}

// BindStatement is one queued binding: its info, the finalizer chosen by the
// chain, and any error the chain recorded.
type BindStatement struct {
	info      *BindInfo
	finalizer BindingFinalizer
	err       error

	owner            *Container
	registrations    []registration
	removedFromOwner bool
}

type registration struct {
	id   BindingId
	open *OpenType
	info *providerInfo
}

// Info returns the statement's binding description.
func (s *BindStatement) Info() *BindInfo { return s.info }

// Err returns the first error recorded by the chain.
func (s *BindStatement) Err() error { return s.err }

func (s *BindStatement) fail(err error) {
	if s.err != nil {
		return
	}
	if bindErr, ok := err.(BindingError); ok {
		s.err = bindErr
		return
	}
	s.err = BindingError{Contracts: s.info.ContractTypes, Identifier: s.info.Identifier, Cause: err}
}

// sharesProviders reports whether containers inheriting the statement reuse
// the providers created for the owner instead of finalizing again.
func (s *BindStatement) sharesProviders() bool {
	return s.info.Scope == ScopeSingleton && len(s.registrations) > 0
}
