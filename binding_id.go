package zenject

import (
	"fmt"
	"reflect"
)

// BindingId identifies a binding by contract type and optional identifier.
// It is comparable and used directly as a registry key.
type BindingId struct {
	Type       reflect.Type
	Identifier any
}

// NewBindingId creates a BindingId.
func NewBindingId(t reflect.Type, identifier any) BindingId {
	return BindingId{Type: t, Identifier: identifier}
}

func (b BindingId) String() string {
	if b.Identifier == nil {
		return formatType(b.Type)
	}
	return fmt.Sprintf("%s (id: %v)", formatType(b.Type), b.Identifier)
}

// checkIdentifier rejects identifiers that cannot be used as map keys.
func checkIdentifier(id any) error {
	if id == nil {
		return nil
	}
	if !reflect.ValueOf(id).Comparable() {
		return fmt.Errorf("%w: %T", ErrIdentifierNotComparable, id)
	}
	return nil
}
