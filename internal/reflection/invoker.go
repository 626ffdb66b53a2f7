package reflection

import (
	"fmt"
	"reflect"
	"runtime/debug"
)

// PanicError reports a constructor that panicked.
type PanicError struct {
	Constructor reflect.Type
	Panic       any
	Stack       []byte
}

func (e PanicError) Error() string {
	return fmt.Sprintf("constructor %v panicked: %v", e.Constructor, e.Panic)
}

// Invoke calls constructor with args. Nil arguments become zero values of the
// parameter type. A panic inside the constructor is returned as PanicError.
func Invoke(constructor reflect.Value, info *ConstructorInfo, args []any) (result any, err error) {
	if len(args) != len(info.Parameters) {
		return nil, fmt.Errorf("%w: %v expects %d, got %d", ErrArgumentCount, info.Type, len(info.Parameters), len(args))
	}

	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		paramType := info.Parameters[i].Type
		if arg == nil {
			in[i] = reflect.Zero(paramType)
			continue
		}

		v := reflect.ValueOf(arg)
		if !v.Type().AssignableTo(paramType) {
			return nil, fmt.Errorf("argument %d of %v: %v is not assignable to %v", i, info.Type, v.Type(), paramType)
		}
		in[i] = v
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = PanicError{Constructor: info.Type, Panic: r, Stack: debug.Stack()}
		}
	}()

	out := constructor.Call(in)
	if info.HasErrorReturn && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}

	return valueInterface(out[0]), nil
}

// valueInterface unwraps v, mapping nil reference values to an untyped nil.
func valueInterface(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}
