package zenject

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ========================================
// Core Error Values (Sentinel Errors)
// ========================================
// These are base errors wrapped by the typed errors below. Match them with
// errors.Is.

var (
	// Binding errors.
	ErrTypeNil                 = errors.New("type cannot be nil")
	ErrNoContractTypes         = errors.New("binding has no contract types")
	ErrIdentifierNotComparable = errors.New("binding identifier must be comparable")
	ErrNotDerived              = errors.New("concrete type does not derive from contract")
	ErrAbstractType            = errors.New("abstract type cannot be instantiated")
	ErrScopeRequired           = errors.New("scope must be set for the binding")
	ErrBindingInProgress       = errors.New("cannot start a new binding while finalizing another")
	ErrSingletonConflict       = errors.New("conflicting AsSingle binding")
	ErrInstanceNil             = errors.New("instance cannot be nil")
	ErrMethodNil               = errors.New("method cannot be nil")
	ErrInstallerNil            = errors.New("installer cannot be nil")

	// Resolution errors.
	ErrNotFound           = errors.New("binding not found")
	ErrAmbiguous          = errors.New("multiple matching bindings")
	ErrCircularDependency = errors.New("circular dependency detected")
	ErrNilInstance        = errors.New("provider returned a nil instance")
	ErrExtraArguments     = errors.New("unused arguments")
	ErrNotValidating      = errors.New("container is not in validation mode")
	ErrNoContainer        = errors.New("no container in context")

	// Descriptor errors.
	ErrNoDescriptor  = errors.New("no type descriptor registered")
	ErrNoConstructor = errors.New("type descriptor has no constructor")
)

var (
	_ error = BindingError{}
	_ error = NotFoundError{}
	_ error = AmbiguousBindingError{}
	_ error = CircularDependencyError{}
	_ error = ArityError{}
	_ error = TypeMismatchError{}
	_ error = NilInstanceError{}
	_ error = ExtraArgumentsError{}
	_ error = InstantiationError{}
	_ error = DescriptorError{}
	_ error = ModuleError{}
	_ error = EnumError{}
)

// ========================================
// Typed Errors for Rich Context
// ========================================

// BindingError reports a configuration problem found while building or
// finalizing a binding.
type BindingError struct {
	Contracts  []reflect.Type
	Identifier any
	Concrete   reflect.Type
	Cause      error
}

func (e BindingError) Error() string {
	var b strings.Builder
	b.WriteString("error while finalizing binding")
	if len(e.Contracts) > 0 {
		b.WriteString(fmt.Sprintf(" for contract %s", formatTypes(e.Contracts)))
	}
	if e.Identifier != nil {
		b.WriteString(fmt.Sprintf(" (id: %v)", e.Identifier))
	}
	if e.Concrete != nil {
		b.WriteString(fmt.Sprintf(" to %s", formatType(e.Concrete)))
	}
	b.WriteString(fmt.Sprintf(": %v", e.Cause))
	return b.String()
}

func (e BindingError) Unwrap() error {
	return e.Cause
}

// NotFoundError indicates no binding matched a required lookup.
type NotFoundError struct {
	Id          BindingId
	ObjectGraph string
	Available   []reflect.Type // Types that ARE bound, for suggestions
}

func (e NotFoundError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("unable to resolve %s", e.Id))
	if e.ObjectGraph != "" {
		b.WriteString("\nObject graph:\n")
		b.WriteString(e.ObjectGraph)
	}

	if similar := findSimilarTypes(e.Id.Type, e.Available); len(similar) > 0 {
		b.WriteString("\n\nDid you mean one of these?\n")
		for _, t := range similar {
			b.WriteString(fmt.Sprintf("  • %s\n", formatType(t)))
		}
	}
	return b.String()
}

func (e NotFoundError) Unwrap() error {
	return ErrNotFound
}

// AmbiguousBindingError indicates several bindings matched where one was expected.
type AmbiguousBindingError struct {
	Id          BindingId
	ObjectGraph string
}

func (e AmbiguousBindingError) Error() string {
	return fmt.Sprintf("found multiple matches when only one was expected for %s\nObject graph:\n%s", e.Id, e.ObjectGraph)
}

func (e AmbiguousBindingError) Unwrap() error {
	return ErrAmbiguous
}

// CircularDependencyError indicates an object graph refers back to a type
// that is still being created.
type CircularDependencyError struct {
	Type        reflect.Type
	ObjectGraph string
}

func (e CircularDependencyError) Error() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found circular dependency when creating %s\nObject graph:\n%s", formatType(e.Type), e.ObjectGraph))
	b.WriteString("\n\nTo resolve this:\n")
	b.WriteString("  • Move one of the dependencies from the constructor to a field or method\n")
	b.WriteString("  • Resolve one side lazily with Lazy\n")
	return b.String()
}

func (e CircularDependencyError) Unwrap() error {
	return ErrCircularDependency
}

// ArityError indicates a provider produced a number of instances other than
// the one the lookup expected.
type ArityError struct {
	Type        reflect.Type
	Count       int
	ObjectGraph string
}

func (e ArityError) Error() string {
	return fmt.Sprintf("provider returned %d instances of %s when exactly one was expected\nObject graph:\n%s",
		e.Count, formatType(e.Type), e.ObjectGraph)
}

// TypeMismatchError indicates a produced value is not assignable to the
// requested type.
type TypeMismatchError struct {
	Expected reflect.Type
	Actual   reflect.Type
	Context  string // "method result", "argument", "type assertion", etc.
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %s, got %s", e.Context, formatType(e.Expected), formatType(e.Actual))
}

// NilInstanceError indicates a provider produced nil.
type NilInstanceError struct {
	Type        reflect.Type
	ObjectGraph string
}

func (e NilInstanceError) Error() string {
	return fmt.Sprintf("provider for %s returned nil\nObject graph:\n%s", formatType(e.Type), e.ObjectGraph)
}

func (e NilInstanceError) Unwrap() error {
	return ErrNilInstance
}

// ExtraArgumentsError indicates arguments supplied to an instantiation that
// nothing consumed.
type ExtraArgumentsError struct {
	Type reflect.Type
	Args []TypeValuePair
}

func (e ExtraArgumentsError) Error() string {
	types := make([]reflect.Type, len(e.Args))
	for i, arg := range e.Args {
		types[i] = arg.Type
	}
	return fmt.Sprintf("passed unnecessary parameters when injecting into %s: %s", formatType(e.Type), formatTypes(types))
}

func (e ExtraArgumentsError) Unwrap() error {
	return ErrExtraArguments
}

// InstantiationError wraps a failure raised by a constructor, method or
// external factory.
type InstantiationError struct {
	Type  reflect.Type
	Cause error
}

func (e InstantiationError) Error() string {
	return fmt.Sprintf("failed to instantiate %s: %v", formatType(e.Type), e.Cause)
}

func (e InstantiationError) Unwrap() error {
	return e.Cause
}

// DescriptorError indicates a missing or malformed type descriptor.
type DescriptorError struct {
	Type  reflect.Type
	Cause error
}

func (e DescriptorError) Error() string {
	return fmt.Sprintf("type descriptor for %s: %v", formatType(e.Type), e.Cause)
}

func (e DescriptorError) Unwrap() error {
	return e.Cause
}

// ModuleError wraps errors from installing a module.
type ModuleError struct {
	Module string
	Cause  error
}

func (e ModuleError) Error() string {
	return fmt.Sprintf("module %q: %v", e.Module, e.Cause)
}

func (e ModuleError) Unwrap() error {
	return e.Cause
}

// EnumError indicates an unknown textual enum value.
type EnumError struct {
	Enum  string
	Value string
}

func (e EnumError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Enum, e.Value)
}

// IsNotFound reports whether err means a required binding was missing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAmbiguous reports whether err means a lookup matched several bindings.
func IsAmbiguous(err error) bool {
	return errors.Is(err, ErrAmbiguous)
}

// IsCircularDependency reports whether err is a circular dependency error.
func IsCircularDependency(err error) bool {
	return errors.Is(err, ErrCircularDependency)
}

// findSimilarTypes finds types with similar names using a simple substring/prefix match
func findSimilarTypes(target reflect.Type, available []reflect.Type) []reflect.Type {
	if target == nil || len(available) == 0 {
		return nil
	}

	targetName := target.String()
	targetShortName := shortName(target)

	var similar []reflect.Type
	for _, t := range available {
		if t == nil || t == target {
			continue
		}

		typeName := t.String()
		typeShortName := shortName(t)

		// Same short name in another package, or one name contains the other.
		if targetShortName == typeShortName ||
			strings.Contains(strings.ToLower(typeName), strings.ToLower(targetShortName)) ||
			strings.Contains(strings.ToLower(targetName), strings.ToLower(typeShortName)) {
			similar = append(similar, t)
		}

		if len(similar) >= 5 {
			break
		}
	}

	return similar
}

func shortName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func formatTypes(types []reflect.Type) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = formatType(t)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// formatType formats a reflect.Type for error messages.
func formatType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "*" + elem.Name()
		}
		return t.String()
	case reflect.Slice:
		elem := t.Elem()
		if elem.PkgPath() != "" && elem.Name() != "" {
			return "[]" + elem.Name()
		}
		return t.String()
	case reflect.Map:
		key := t.Key()
		elem := t.Elem()
		keyStr := key.Name()
		if keyStr == "" {
			keyStr = key.String()
		}
		elemStr := elem.Name()
		if elemStr == "" {
			elemStr = elem.String()
		}
		return "map[" + keyStr + "]" + elemStr
	case reflect.Func:
		return t.String()
	default:
		if t.Name() != "" {
			return t.Name()
		}
		return t.String()
	}
}
