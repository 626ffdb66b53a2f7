package pool

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrPoolExceeded        = errors.New("pool exceeded its maximum size")
	ErrDoubleDespawn       = errors.New("item was despawned twice")
	ErrNotSpawned          = errors.New("item was not spawned by this pool")
	ErrNegativeSize        = errors.New("pool size cannot be negative")
	ErrInvalidSettings     = errors.New("invalid pool settings")
	ErrInvalidExpandMethod = errors.New("invalid pool expand method")
	ErrNilFactory          = errors.New("pool factory cannot be nil")
)

var _ error = Error{}

// Error describes a failed pool operation.
type Error struct {
	Op       string
	ItemType reflect.Type
	Cause    error
}

func (e Error) Error() string {
	return fmt.Sprintf("pool of %v: %s failed: %v", e.ItemType, e.Op, e.Cause)
}

func (e Error) Unwrap() error {
	return e.Cause
}
