package zenject

import "reflect"

// TypeValuePair is an explicit argument handed to an instantiation. Type is
// the declared type the value is offered as.
type TypeValuePair struct {
	Type  reflect.Type
	Value any
}

// Arg creates a TypeValuePair typed as T.
func Arg[T any](value T) TypeValuePair {
	return TypeValuePair{Type: reflect.TypeFor[T](), Value: value}
}

// ArgsFrom converts values into pairs using each value's dynamic type.
// A nil value produces a pair with a nil Type, which never matches.
func ArgsFrom(values ...any) []TypeValuePair {
	if len(values) == 0 {
		return nil
	}
	args := make([]TypeValuePair, len(values))
	for i, v := range values {
		args[i] = TypeValuePair{Type: reflect.TypeOf(v), Value: v}
	}
	return args
}

// popArgument removes and returns the first argument usable as t. An exact
// type match wins over an assignable one.
func popArgument(args *[]TypeValuePair, t reflect.Type) (any, bool) {
	if args == nil || len(*args) == 0 {
		return nil, false
	}

	index := -1
	for i, arg := range *args {
		if arg.Type == t {
			index = i
			break
		}
	}
	if index < 0 {
		for i, arg := range *args {
			if arg.Type != nil && arg.Type.AssignableTo(t) {
				index = i
				break
			}
		}
	}
	if index < 0 {
		return nil, false
	}

	value := (*args)[index].Value
	*args = append((*args)[:index:index], (*args)[index+1:]...)
	return value, true
}
