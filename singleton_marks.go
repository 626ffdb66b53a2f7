package zenject

import (
	"fmt"
	"reflect"
)

type singletonMark int

const (
	markNone singletonMark = iota
	markSingleton
	markNotSingleton
)

// singletonMarkRegistry tracks which concrete types a container creates, so
// a type marked AsSingle is created by exactly one binding.
type singletonMarkRegistry struct {
	marks map[reflect.Type]singletonMark
}

func newSingletonMarkRegistry() *singletonMarkRegistry {
	return &singletonMarkRegistry{marks: make(map[reflect.Type]singletonMark)}
}

func (r *singletonMarkRegistry) mark(t reflect.Type, unique bool) error {
	current := r.marks[t]
	if unique {
		switch current {
		case markSingleton:
			return fmt.Errorf("%w: attempted to use AsSingle multiple times for type %s", ErrSingletonConflict, formatType(t))
		case markNotSingleton:
			return fmt.Errorf("%w: found multiple creation bindings for type %s in addition to AsSingle", ErrSingletonConflict, formatType(t))
		}
		r.marks[t] = markSingleton
		return nil
	}

	if current == markSingleton {
		return fmt.Errorf("%w: found multiple creation bindings for type %s in addition to AsSingle", ErrSingletonConflict, formatType(t))
	}
	r.marks[t] = markNotSingleton
	return nil
}

// markFor applies the marking rules of info to concrete type t.
func (r *singletonMarkRegistry) markFor(info *BindInfo, t reflect.Type) error {
	if !info.MarkAsCreationBinding || t == nil {
		return nil
	}
	return r.mark(t, info.MarkAsUniqueSingleton)
}
