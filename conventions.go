package zenject

import (
	"reflect"
	"strings"
)

// ConventionSelector picks concrete types from a TypeRegistry by rule.
// Filters combine with AND.
type ConventionSelector struct {
	registry *TypeRegistry
	filters  []func(reflect.Type) bool
}

// Conventions starts a selection over every type described in r.
func Conventions(r *TypeRegistry) *ConventionSelector {
	return &ConventionSelector{registry: r}
}

// Where keeps types matching predicate.
func (s *ConventionSelector) Where(predicate func(reflect.Type) bool) *ConventionSelector {
	s.filters = append(s.filters, predicate)
	return s
}

// DerivingFrom keeps types assignable to t, excluding t itself.
func (s *ConventionSelector) DerivingFrom(t reflect.Type) *ConventionSelector {
	return s.Where(func(candidate reflect.Type) bool {
		return candidate != t && candidate.AssignableTo(t)
	})
}

// DerivingFromOrEqual keeps types assignable to t.
func (s *ConventionSelector) DerivingFromOrEqual(t reflect.Type) *ConventionSelector {
	return s.Where(func(candidate reflect.Type) bool {
		return candidate.AssignableTo(t)
	})
}

// WithPrefix keeps types whose short name starts with prefix.
func (s *ConventionSelector) WithPrefix(prefix string) *ConventionSelector {
	return s.Where(func(candidate reflect.Type) bool {
		return strings.HasPrefix(shortName(candidate), prefix)
	})
}

// WithSuffix keeps types whose short name ends with suffix.
func (s *ConventionSelector) WithSuffix(suffix string) *ConventionSelector {
	return s.Where(func(candidate reflect.Type) bool {
		return strings.HasSuffix(shortName(candidate), suffix)
	})
}

// InPackage keeps types declared in pkgPath.
func (s *ConventionSelector) InPackage(pkgPath string) *ConventionSelector {
	return s.Where(func(candidate reflect.Type) bool {
		return namedType(candidate).PkgPath() == pkgPath
	})
}

// NonAbstract drops interface types.
func (s *ConventionSelector) NonAbstract() *ConventionSelector {
	return s.Where(func(candidate reflect.Type) bool {
		return candidate.Kind() != reflect.Interface
	})
}

// Types evaluates the selection in registration order.
func (s *ConventionSelector) Types() []reflect.Type {
	var selected []reflect.Type
	for _, t := range s.registry.Types() {
		if s.matches(t) {
			selected = append(selected, t)
		}
	}
	return selected
}

func (s *ConventionSelector) matches(t reflect.Type) bool {
	for _, f := range s.filters {
		if !f(t) {
			return false
		}
	}
	return true
}

func namedType(t reflect.Type) reflect.Type {
	for t.Name() == "" && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice) {
		t = t.Elem()
	}
	return t
}
