package zenject

import (
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

var treeLockIds atomic.Uint64

// treeLock serializes access to a container tree. The goroutine holding it
// may acquire it again, so providers and user callbacks can call back into
// the container while a resolution is running.
type treeLock struct {
	id    uint64
	mu    sync.Mutex
	owner atomic.Int64
	depth int
}

func newTreeLock() *treeLock {
	return &treeLock{id: treeLockIds.Add(1)}
}

func (l *treeLock) acquire(gid int64) {
	if l.owner.Load() == gid {
		l.depth++
		return
	}
	l.mu.Lock()
	l.owner.Store(gid)
	l.depth = 1
}

func (l *treeLock) release() {
	l.depth--
	if l.depth == 0 {
		l.owner.Store(0)
		l.mu.Unlock()
	}
}

// mergeLocks returns the distinct locks of parents ordered by id. Locks are
// always taken in that order.
func mergeLocks(parents []*Container) []*treeLock {
	var locks []*treeLock
	for _, p := range parents {
		for _, l := range p.locks {
			if !slices.Contains(locks, l) {
				locks = append(locks, l)
			}
		}
	}
	slices.SortFunc(locks, func(a, b *treeLock) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})
	return locks
}

func acquireAll(locks []*treeLock) func() {
	gid := goroutineID()
	for _, l := range locks {
		l.acquire(gid)
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].release()
		}
	}
}

// lock acquires every tree lock guarding c and returns the release func.
//
//	defer c.lock()()
func (c *Container) lock() func() {
	return acquireAll(c.locks)
}

// goroutineID parses the id of the calling goroutine from its stack header.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	field := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))[0]
	id, _ := strconv.ParseInt(field, 10, 64)
	return id
}
