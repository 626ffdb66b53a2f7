package pool

import "reflect"

type refKey struct {
	t reflect.Type
	p uintptr
}

type sliceKey struct {
	t   reflect.Type
	p   uintptr
	cap int
}

// identityKey returns a value that identifies item. Reference kinds are keyed
// by address, other comparable values by themselves. A nil result means the
// item cannot be tracked individually.
func identityKey(item any) any {
	if item == nil {
		return nil
	}

	v := reflect.ValueOf(item)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		if v.IsNil() {
			return nil
		}
		return refKey{t: v.Type(), p: v.Pointer()}
	case reflect.Slice:
		if v.IsNil() || v.Cap() == 0 {
			return nil
		}
		return sliceKey{t: v.Type(), p: v.Pointer(), cap: v.Cap()}
	case reflect.Func:
		return nil
	}

	if v.Comparable() {
		return item
	}
	return nil
}

// leaseSet counts the copies of every key on each side of the pool. A
// reference item has at most one copy; equal values share a key, so several
// of them may be leased at once.
type leaseSet struct {
	active   map[any]int
	inactive map[any]int
}

func newLeaseSet() leaseSet {
	return leaseSet{active: make(map[any]int), inactive: make(map[any]int)}
}

// checkReturn reports why item cannot be despawned, if it cannot.
func (s leaseSet) checkReturn(item any) error {
	key := identityKey(item)
	if key == nil || s.active[key] > 0 {
		return nil
	}
	if s.inactive[key] > 0 {
		return ErrDoubleDespawn
	}
	return ErrNotSpawned
}

func (s leaseSet) lease(item any)   { inc(s.active, identityKey(item)) }
func (s leaseSet) unlease(item any) { dec(s.active, identityKey(item)) }
func (s leaseSet) store(item any)   { inc(s.inactive, identityKey(item)) }
func (s leaseSet) take(item any)    { dec(s.inactive, identityKey(item)) }

func inc(m map[any]int, key any) {
	if key != nil {
		m[key]++
	}
}

func dec(m map[any]int, key any) {
	if key == nil {
		return
	}
	if m[key] <= 1 {
		delete(m, key)
		return
	}
	m[key]--
}
