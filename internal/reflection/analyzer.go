// Package reflection analyzes Go constructor functions so they can be turned
// into injection descriptors. It only inspects function signatures; it never
// walks struct fields or methods.
package reflection

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

var (
	ErrNilConstructor      = errors.New("constructor cannot be nil")
	ErrNotFunction         = errors.New("constructor must be a function")
	ErrNoReturn            = errors.New("constructor must return a value")
	ErrTooManyReturns      = errors.New("constructor must return at most 2 values")
	ErrInvalidSecondReturn = errors.New("constructor's second return value must be error")
	ErrVariadic            = errors.New("constructor cannot be variadic")
	ErrArgumentCount       = errors.New("wrong number of constructor arguments")
)

// Analyzer inspects constructor signatures. Results are cached per function type.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[reflect.Type]*ConstructorInfo
}

// ConstructorInfo describes the signature of a constructor function.
type ConstructorInfo struct {
	Type           reflect.Type
	Parameters     []ParameterInfo
	Result         reflect.Type
	HasErrorReturn bool
}

// ParameterInfo describes one constructor parameter.
type ParameterInfo struct {
	Type  reflect.Type
	Index int
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{
		cache: make(map[reflect.Type]*ConstructorInfo),
	}
}

// Analyze validates the signature of constructor and describes it.
// Accepted shapes are func(...) T and func(...) (T, error).
func (a *Analyzer) Analyze(constructor any) (*ConstructorInfo, error) {
	if constructor == nil {
		return nil, ErrNilConstructor
	}

	val := reflect.ValueOf(constructor)
	if val.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w, got %v", ErrNotFunction, val.Type())
	}
	if val.IsNil() {
		return nil, ErrNilConstructor
	}

	typ := val.Type()

	a.mu.RLock()
	if cached, ok := a.cache[typ]; ok {
		a.mu.RUnlock()
		return cached, nil
	}
	a.mu.RUnlock()

	if typ.IsVariadic() {
		return nil, fmt.Errorf("%w: %v", ErrVariadic, typ)
	}

	info := &ConstructorInfo{Type: typ}

	switch typ.NumOut() {
	case 0:
		return nil, fmt.Errorf("%w: %v", ErrNoReturn, typ)
	case 1:
		info.Result = typ.Out(0)
	case 2:
		if typ.Out(1) != errType {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSecondReturn, typ)
		}
		info.Result = typ.Out(0)
		info.HasErrorReturn = true
	default:
		return nil, fmt.Errorf("%w: %v", ErrTooManyReturns, typ)
	}

	info.Parameters = make([]ParameterInfo, typ.NumIn())
	for i := 0; i < typ.NumIn(); i++ {
		info.Parameters[i] = ParameterInfo{Type: typ.In(i), Index: i}
	}

	a.mu.Lock()
	a.cache[typ] = info
	a.mu.Unlock()

	return info, nil
}

// CacheSize returns the number of cached signatures.
func (a *Analyzer) CacheSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

// Clear drops all cached signatures.
func (a *Analyzer) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[reflect.Type]*ConstructorInfo)
}
