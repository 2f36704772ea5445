package journal

import "sync"

// Future is a one-shot, many-waiter completion signal. A single batch
// writer resolves it exactly once (success or error, spec.md §3
// "Completion future", §8 invariant 4); every producer whose append was
// folded into that batch awaits the same Future instance.
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

// newFuture returns an unresolved Future.
func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// resolve completes the future exactly once. Later calls are no-ops, so a
// writer can always call resolve on its way out without tracking whether
// some earlier path already did.
func (f *Future) resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Wait blocks until the future is resolved and returns its error, if any.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

// Done returns a channel that is closed when the future resolves, for
// callers that want to select on it alongside other events (e.g. a
// context's Done channel) instead of blocking unconditionally in Wait.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Err returns the resolved error, or nil if the future has not yet
// resolved or resolved successfully. Callers that only care about the
// terminal error after confirming Done() is closed can use this instead of
// Wait to avoid a second block.
func (f *Future) Err() error {
	select {
	case <-f.done:
		return f.err
	default:
		return nil
	}
}

// allFuture composes N futures into one: it resolves once every input has
// resolved, with the first non-nil error among them (or nil if all
// succeeded). Used by Journal.rotateAndAppend to hand the caller a single
// awaitable for "close of old tail (if any) + link record + user record"
// (spec.md §4.4 step 7).
func allFuture(futures ...*Future) *Future {
	combined := newFuture()
	if len(futures) == 0 {
		combined.resolve(nil)
		return combined
	}
	go func() {
		var firstErr error
		for _, f := range futures {
			if f == nil {
				continue
			}
			if err := f.Wait(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		combined.resolve(firstErr)
	}()
	return combined
}
