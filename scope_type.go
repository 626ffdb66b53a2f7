package zenject

import (
	"encoding/json"
	"fmt"
)

// ScopeType specifies how long instances produced by a binding live.
type ScopeType int

const (
	// ScopeUnset means no scope was chosen. Finalizing such a binding falls back
	// to ScopeTransient unless the binding requires an explicit scope.
	ScopeUnset ScopeType = iota

	// ScopeTransient creates a new instance on every resolution.
	ScopeTransient

	// ScopeSingleton caches the instance for the lifetime of the owning container.
	ScopeSingleton
)

// String returns the string representation of the ScopeType.
func (s ScopeType) String() string {
	switch s {
	case ScopeUnset:
		return "Unset"
	case ScopeTransient:
		return "Transient"
	case ScopeSingleton:
		return "Singleton"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// IsValid checks if the scope is one of the known values.
func (s ScopeType) IsValid() bool {
	return s >= ScopeUnset && s <= ScopeSingleton
}

// MarshalText implements encoding.TextMarshaler.
func (s ScopeType) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ScopeType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Unset", "unset", "":
		*s = ScopeUnset
	case "Transient", "transient":
		*s = ScopeTransient
	case "Singleton", "singleton":
		*s = ScopeSingleton
	default:
		return EnumError{Enum: "scope", Value: string(text)}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s ScopeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *ScopeType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return s.UnmarshalText([]byte(str))
}

// InjectSources restricts which containers a lookup may consult.
type InjectSources int

const (
	// SourceAny searches the container itself, then every ancestor.
	SourceAny InjectSources = iota

	// SourceLocal searches only the container itself.
	SourceLocal

	// SourceParent searches only the direct parents.
	SourceParent

	// SourceAnyParent searches every ancestor but not the container itself.
	SourceAnyParent
)

func (s InjectSources) String() string {
	switch s {
	case SourceAny:
		return "Any"
	case SourceLocal:
		return "Local"
	case SourceParent:
		return "Parent"
	case SourceAnyParent:
		return "AnyParent"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

func (s InjectSources) IsValid() bool {
	return s >= SourceAny && s <= SourceAnyParent
}

// InheritanceMethod controls how a binding propagates into sub-containers.
type InheritanceMethod int

const (
	InheritNone InheritanceMethod = iota
	CopyDirectOnly
	CopyIntoAll
	MoveDirectOnly
	MoveIntoAll
)

func (m InheritanceMethod) String() string {
	switch m {
	case InheritNone:
		return "None"
	case CopyDirectOnly:
		return "CopyDirectOnly"
	case CopyIntoAll:
		return "CopyIntoAll"
	case MoveDirectOnly:
		return "MoveDirectOnly"
	case MoveIntoAll:
		return "MoveIntoAll"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

func (m InheritanceMethod) isMove() bool {
	return m == MoveDirectOnly || m == MoveIntoAll
}

func (m InheritanceMethod) directOnly() bool {
	return m == CopyDirectOnly || m == MoveDirectOnly
}

// ToChoice records whether a binding constructs its contract types or
// explicit concrete types.
type ToChoice int

const (
	ToSelf ToChoice = iota
	ToConcrete
)

// InvalidBindResponse decides what happens when a concrete type does not
// derive from one of the binding's contracts.
type InvalidBindResponse int

const (
	// BindAssert reports a BindingError.
	BindAssert InvalidBindResponse = iota

	// BindSkip silently skips the pair. Used by convention bindings.
	BindSkip
)
