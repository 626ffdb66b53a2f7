package zenject

import "reflect"

// ValidationMarker stands in for an instance while a container validates.
// Constructors are not called in validation mode; the marker records which
// type would have been built.
type ValidationMarker struct {
	Type reflect.Type

	// InstantiateFailed is set when validation logged an error for Type.
	InstantiateFailed bool
}

func newValidationMarker(t reflect.Type) *ValidationMarker {
	return &ValidationMarker{Type: t}
}

func isValidationMarker(v any) bool {
	_, ok := v.(*ValidationMarker)
	return ok
}

func stripValidationMarker(v any) any {
	if isValidationMarker(v) {
		return nil
	}
	return v
}

// Validate builds a validating sub-container of c, runs install against it
// and resolves every binding, returning all problems found. Constructors are
// not called, except for types described with AllowDuringValidation.
func Validate(c *Container, install func(sub *Container) error) error {
	sub, err := c.CreateSubContainer(WithValidation())
	if err != nil {
		return err
	}
	if install != nil {
		if err := install(sub); err != nil {
			return err
		}
	}
	if err := sub.ResolveRoots(); err != nil {
		return err
	}
	return sub.ValidateFullResolve()
}
