// Package pool provides reusable-instance pools.
//
// A MemoryPool keeps a free stack of inactive items and a count of items that
// are currently leased out. Items are created through a factory function when
// the free stack runs dry and the expansion policy allows it. The invariant
// NumActive()+NumInactive() == NumTotal() holds after every operation, and a
// failed operation never corrupts the free stack.
//
// The static collection pools (ListPool, DictionaryPool, HashSetPool and
// ArrayPool) are thin wrappers over MemoryPool that hand out cleared
// collections, so hot paths can avoid allocating a fresh slice or map per call.
//
// Pools are safe for concurrent use. Item factories run outside the pool lock,
// so a factory may block or resolve from a container; hooks run inside it and
// must not call back into the pool.
package pool
