package zenject

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/aerialflame7125/zenject/internal/reflection"
)

// InjectableInfo describes one dependency of a type: a constructor
// parameter, a member or a method parameter.
type InjectableInfo struct {
	MemberName   string
	MemberType   reflect.Type
	Identifier   any
	Optional     bool
	Source       InjectSources
	DefaultValue any
}

// ConstructorInfo describes how to build an instance from resolved parameters.
type ConstructorInfo struct {
	Params  []InjectableInfo
	Factory func(args []any) (any, error)
}

// MemberInfo describes a field or property filled after construction.
type MemberInfo struct {
	Info   InjectableInfo
	Setter func(instance, value any) error
}

// MethodInfo describes an injection method called after members are set.
type MethodInfo struct {
	Name   string
	Params []InjectableInfo
	Action func(instance any, args []any) error
}

// TypeInfo is the injection descriptor of a concrete type.
type TypeInfo struct {
	Type reflect.Type

	// Base holds the descriptor of an embedded base whose members and
	// methods are injected before this type's own.
	Base *TypeInfo

	// Interfaces lists the contracts used by BindInterfacesTo.
	Interfaces []reflect.Type

	// Constructor is nil for types that can only be bound as instances.
	Constructor *ConstructorInfo

	Members []MemberInfo
	Methods []MethodInfo

	// AllowDuringValidation lets the constructor run while validating.
	AllowDuringValidation bool
}

// Injectables returns every declared dependency in injection order.
func (i *TypeInfo) Injectables() []InjectableInfo {
	var all []InjectableInfo
	if i.Constructor != nil {
		all = append(all, i.Constructor.Params...)
	}
	for _, t := range i.chain() {
		for _, m := range t.Members {
			all = append(all, m.Info)
		}
		for _, m := range t.Methods {
			all = append(all, m.Params...)
		}
	}
	return all
}

// chain returns the descriptor and its bases, outermost base first.
func (i *TypeInfo) chain() []*TypeInfo {
	var chain []*TypeInfo
	for t := i; t != nil; t = t.Base {
		chain = append([]*TypeInfo{t}, chain...)
	}
	return chain
}

func (i *TypeInfo) validate() error {
	if i.Type == nil {
		return ErrTypeNil
	}
	check := func(what string, infos []InjectableInfo) error {
		for idx, p := range infos {
			if p.MemberType == nil {
				return fmt.Errorf("%s %d has no type", what, idx)
			}
			if err := checkIdentifier(p.Identifier); err != nil {
				return err
			}
		}
		return nil
	}
	if i.Constructor != nil {
		if i.Constructor.Factory == nil {
			return fmt.Errorf("constructor has no factory")
		}
		if err := check("constructor parameter", i.Constructor.Params); err != nil {
			return err
		}
	}
	for _, m := range i.Members {
		if m.Setter == nil {
			return fmt.Errorf("member %q has no setter", m.Info.MemberName)
		}
		if err := check("member", []InjectableInfo{m.Info}); err != nil {
			return err
		}
	}
	for _, m := range i.Methods {
		if m.Action == nil {
			return fmt.Errorf("method %q has no action", m.Name)
		}
		if err := check("method "+m.Name+" parameter", m.Params); err != nil {
			return err
		}
	}
	for _, iface := range i.Interfaces {
		if iface == nil || iface.Kind() != reflect.Interface {
			return fmt.Errorf("%s is not an interface", formatType(iface))
		}
		if !i.Type.Implements(iface) {
			return fmt.Errorf("%w: %s does not implement %s", ErrNotDerived, formatType(i.Type), formatType(iface))
		}
	}
	return nil
}

// TypeInfoProvider supplies descriptors to a container.
type TypeInfoProvider interface {
	TypeInfo(t reflect.Type) (*TypeInfo, bool)
}

// TypeRegistry is the default TypeInfoProvider. It is safe for concurrent use.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[reflect.Type]*TypeInfo
	order []reflect.Type
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[reflect.Type]*TypeInfo)}
}

// Register validates and stores descriptors, replacing earlier ones for the
// same type.
func (r *TypeRegistry) Register(infos ...*TypeInfo) error {
	for _, info := range infos {
		if info == nil {
			return DescriptorError{Cause: ErrTypeNil}
		}
		if err := info.validate(); err != nil {
			return DescriptorError{Type: info.Type, Cause: err}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, info := range infos {
		if _, ok := r.types[info.Type]; !ok {
			r.order = append(r.order, info.Type)
		}
		r.types[info.Type] = info
	}
	return nil
}

// TypeInfo returns the descriptor of t.
func (r *TypeRegistry) TypeInfo(t reflect.Type) (*TypeInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.types[t]
	return info, ok
}

// Types returns every described type in registration order.
func (r *TypeRegistry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]reflect.Type(nil), r.order...)
}

// Len returns the number of described types.
func (r *TypeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

var analyzer = reflection.New()

// InjectOption adjusts an InjectableInfo.
type InjectOption func(*InjectableInfo)

// InjectId sets the identifier the dependency is looked up with.
func InjectId(id any) InjectOption {
	return func(i *InjectableInfo) { i.Identifier = id }
}

// InjectOptional marks the dependency optional.
func InjectOptional() InjectOption {
	return func(i *InjectableInfo) { i.Optional = true }
}

// InjectFrom restricts the containers consulted for the dependency.
func InjectFrom(source InjectSources) InjectOption {
	return func(i *InjectableInfo) { i.Source = source }
}

// InjectNamed sets the member name shown in object graphs.
func InjectNamed(name string) InjectOption {
	return func(i *InjectableInfo) { i.MemberName = name }
}

// InjectDefault sets the value used when an optional dependency is missing.
func InjectDefault(value any) InjectOption {
	return func(i *InjectableInfo) { i.DefaultValue = value }
}

// Param describes a dependency of type T.
func Param[T any](opts ...InjectOption) InjectableInfo {
	info := InjectableInfo{MemberType: reflect.TypeFor[T]()}
	for _, opt := range opts {
		opt(&info)
	}
	return info
}

// InjectField describes a member of O holding a V, assigned through set.
func InjectField[O, V any](name string, set func(O, V), opts ...InjectOption) MemberInfo {
	info := Param[V](opts...)
	info.MemberName = name
	return MemberInfo{
		Info: info,
		Setter: func(instance, value any) error {
			obj, ok := instance.(O)
			if !ok {
				return TypeMismatchError{Expected: reflect.TypeFor[O](), Actual: reflect.TypeOf(instance), Context: "member owner"}
			}
			if value == nil {
				var zero V
				set(obj, zero)
				return nil
			}
			v, ok := value.(V)
			if !ok {
				return TypeMismatchError{Expected: reflect.TypeFor[V](), Actual: reflect.TypeOf(value), Context: "member " + name}
			}
			set(obj, v)
			return nil
		},
	}
}

// InjectMethod describes an injection method of O.
func InjectMethod[O any](name string, params []InjectableInfo, call func(O, []any) error) MethodInfo {
	return MethodInfo{
		Name:   name,
		Params: params,
		Action: func(instance any, args []any) error {
			obj, ok := instance.(O)
			if !ok {
				return TypeMismatchError{Expected: reflect.TypeFor[O](), Actual: reflect.TypeOf(instance), Context: "method owner"}
			}
			return call(obj, args)
		},
	}
}

// TypeBuilder assembles a TypeInfo. Errors are collected and reported by
// Build or Register.
type TypeBuilder struct {
	info *TypeInfo
	err  error
}

// Describe starts a descriptor for T.
func Describe[T any]() *TypeBuilder {
	return DescribeType(reflect.TypeFor[T]())
}

// DescribeType starts a descriptor for t.
func DescribeType(t reflect.Type) *TypeBuilder {
	b := &TypeBuilder{info: &TypeInfo{Type: t}}
	if t == nil {
		b.err = ErrTypeNil
	}
	return b
}

func (b *TypeBuilder) fail(err error) *TypeBuilder {
	if b.err == nil {
		b.err = err
	}
	return b
}

// Constructor derives the constructor from a Go function of the form
// func(deps...) T or func(deps...) (T, error). T must be assignable to the
// described type.
func (b *TypeBuilder) Constructor(fn any) *TypeBuilder {
	info, err := analyzer.Analyze(fn)
	if err != nil {
		return b.fail(err)
	}
	if b.info.Type != nil && !info.Result.AssignableTo(b.info.Type) {
		return b.fail(TypeMismatchError{Expected: b.info.Type, Actual: info.Result, Context: "constructor result"})
	}

	params := make([]InjectableInfo, len(info.Parameters))
	for i, p := range info.Parameters {
		params[i] = InjectableInfo{MemberType: p.Type}
	}

	fv := reflect.ValueOf(fn)
	b.info.Constructor = &ConstructorInfo{
		Params: params,
		Factory: func(args []any) (any, error) {
			return reflection.Invoke(fv, info, args)
		},
	}
	return b
}

// ConstructorFunc sets an explicit constructor.
func (b *TypeBuilder) ConstructorFunc(params []InjectableInfo, factory func(args []any) (any, error)) *TypeBuilder {
	b.info.Constructor = &ConstructorInfo{Params: params, Factory: factory}
	return b
}

func (b *TypeBuilder) param(i int, apply InjectOption) *TypeBuilder {
	if b.info.Constructor == nil || i < 0 || i >= len(b.info.Constructor.Params) {
		return b.fail(fmt.Errorf("constructor parameter %d does not exist", i))
	}
	apply(&b.info.Constructor.Params[i])
	return b
}

// ParamId sets the identifier of constructor parameter i.
func (b *TypeBuilder) ParamId(i int, id any) *TypeBuilder {
	return b.param(i, InjectId(id))
}

// ParamOptional marks constructor parameter i optional.
func (b *TypeBuilder) ParamOptional(i int) *TypeBuilder {
	return b.param(i, InjectOptional())
}

// ParamSource restricts where constructor parameter i is looked up.
func (b *TypeBuilder) ParamSource(i int, source InjectSources) *TypeBuilder {
	return b.param(i, InjectFrom(source))
}

// ParamName names constructor parameter i in object graphs.
func (b *TypeBuilder) ParamName(i int, name string) *TypeBuilder {
	return b.param(i, InjectNamed(name))
}

// Member adds an injected member.
func (b *TypeBuilder) Member(m MemberInfo) *TypeBuilder {
	b.info.Members = append(b.info.Members, m)
	return b
}

// Method adds an injection method.
func (b *TypeBuilder) Method(m MethodInfo) *TypeBuilder {
	b.info.Methods = append(b.info.Methods, m)
	return b
}

// Implements declares the interfaces the type is bound to by BindInterfacesTo.
func (b *TypeBuilder) Implements(ifaces ...reflect.Type) *TypeBuilder {
	b.info.Interfaces = append(b.info.Interfaces, ifaces...)
	return b
}

// Base sets the descriptor whose members are injected first.
func (b *TypeBuilder) Base(base *TypeInfo) *TypeBuilder {
	b.info.Base = base
	return b
}

// AllowDuringValidation lets the constructor run in validation mode.
func (b *TypeBuilder) AllowDuringValidation() *TypeBuilder {
	b.info.AllowDuringValidation = true
	return b
}

// Build returns the descriptor.
func (b *TypeBuilder) Build() (*TypeInfo, error) {
	if b.err != nil {
		return nil, DescriptorError{Type: b.info.Type, Cause: b.err}
	}
	if err := b.info.validate(); err != nil {
		return nil, DescriptorError{Type: b.info.Type, Cause: err}
	}
	return b.info, nil
}

// Register builds the descriptor and stores it in r.
func (b *TypeBuilder) Register(r *TypeRegistry) error {
	info, err := b.Build()
	if err != nil {
		return err
	}
	return r.Register(info)
}

// MustRegister is like Register but panics on error.
func (b *TypeBuilder) MustRegister(r *TypeRegistry) {
	if err := b.Register(r); err != nil {
		panic(err)
	}
}
