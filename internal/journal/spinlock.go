package journal

import (
	"runtime"
	"sync/atomic"
)

// spinLock is a test-and-test-and-set spinlock for critical sections that
// are a handful of arithmetic operations and never block or perform I/O
// (spec.md §9 "spin lock choice"). It guards an Active Segment's
// batch_offset/batch_writer_stage/future slot/file_offset, and a Journal's
// files/checkpoints/next_* bookkeeping (spec.md §5).
type spinLock struct {
	held atomic.Bool
}

// lock spins until the lock is acquired, yielding the scheduler between
// attempts so a stalled holder (or GOMAXPROCS=1) doesn't spin a CPU core
// forever without making progress elsewhere.
func (l *spinLock) lock() {
	for {
		if !l.held.Load() && l.held.CompareAndSwap(false, true) {
			return
		}
		runtime.Gosched()
	}
}

// unlock releases the lock. Calling unlock without holding it is a bug in
// the caller, same as with sync.Mutex.
func (l *spinLock) unlock() {
	l.held.Store(false)
}
