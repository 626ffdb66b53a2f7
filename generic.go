package zenject

import "reflect"

// TypeOf returns the reflect.Type of T, including interface types.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// Bind starts a binding for contract T.
func Bind[T any](c *Container) ConcreteIdBinder {
	return c.Bind(reflect.TypeFor[T]())
}

// BindInstanceAs binds instance under contract T rather than its dynamic type.
func BindInstanceAs[T any](c *Container, instance T) ScopeBinder {
	return c.Bind(reflect.TypeFor[T]()).FromInstance(instance)
}

// Resolve returns the single unnamed binding of T.
func Resolve[T any](c *Container) (T, error) {
	return ResolveId[T](c, nil)
}

// ResolveId returns the single binding of T with identifier.
func ResolveId[T any](c *Container, identifier any) (T, error) {
	v, err := c.ResolveId(reflect.TypeFor[T](), identifier)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v)
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container) T {
	v, err := Resolve[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

// TryResolve returns the unnamed binding of T and whether it exists.
func TryResolve[T any](c *Container) (T, bool, error) {
	var zero T
	v, found, err := c.TryResolve(reflect.TypeFor[T]())
	if err != nil || !found {
		return zero, false, err
	}
	typed, err := cast[T](v)
	if err != nil {
		return zero, false, err
	}
	return typed, true, nil
}

// ResolveAll returns every unnamed binding of T.
func ResolveAll[T any](c *Container) ([]T, error) {
	return ResolveIdAll[T](c, nil)
}

// ResolveIdAll returns every binding of T with identifier.
func ResolveIdAll[T any](c *Container, identifier any) ([]T, error) {
	all, err := c.ResolveIdAll(reflect.TypeFor[T](), identifier)
	if err != nil {
		return nil, err
	}
	result := make([]T, len(all))
	for i, v := range all {
		typed, err := cast[T](v)
		if err != nil {
			return nil, err
		}
		result[i] = typed
	}
	return result, nil
}

// Instantiate builds T through its descriptor.
func Instantiate[T any](c *Container, args ...any) (T, error) {
	v, err := c.Instantiate(reflect.TypeFor[T](), args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return cast[T](v)
}

func cast[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{Expected: reflect.TypeFor[T](), Actual: reflect.TypeOf(v), Context: "type assertion"}
	}
	return typed, nil
}
