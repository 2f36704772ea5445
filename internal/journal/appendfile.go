package journal

import (
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// fileState is the three-state lifecycle of an AppendFile (spec.md §3,
// §4.3): created ACTIVE with an owned activeSegment; close() drains the
// segment and moves to STUB; remove() deletes the file and moves to
// REMOVED.
type fileState int32

const (
	stateActive fileState = iota
	stateStub
	stateRemoved
)

// AppendFile is a thin state machine wrapping an activeSegment by shared
// ownership, because close is asynchronous and must outlive the wrapper's
// lifecycle call (spec.md §4.3).
type AppendFile struct {
	ID   uint64
	path string

	state   atomic.Int32
	segment *activeSegment // kept after Close; its buffer is released by closeFile

	logger zerolog.Logger
}

func newAppendFile(id uint64, path string, capacity uint64, pool *bufferPool, lastWriter *Future, logger zerolog.Logger) *AppendFile {
	f := &AppendFile{
		ID:     id,
		path:   path,
		logger: logger,
	}
	f.state.Store(int32(stateActive))
	f.segment = newActiveSegment(id, path, capacity, pool, lastWriter, logger)
	return f
}

func (f *AppendFile) currentState() fileState { return fileState(f.state.Load()) }

// State returns the file's lifecycle state as a lowercase string, for
// diagnostics (e.g. the HTTP admin surface's segment listing).
func (f *AppendFile) State() string {
	switch f.currentState() {
	case stateActive:
		return "active"
	case stateStub:
		return "stub"
	case stateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Append delegates to the owned Active Segment, or refuses the record if
// this file is not ACTIVE: either because it is full and awaiting close
// (the caller should rotate) or because it has already been closed.
func (f *AppendFile) Append(kind Kind, payload []byte) (*Future, error) {
	if f.currentState() != stateActive {
		return nil, errSegmentFull
	}
	return f.segment.append(kind, payload)
}

// writerDone returns a future resolving when this file's segment writer
// has drained, for chaining into the next segment (spec.md §4.2 step 6).
// Valid to call even before Close.
func (f *AppendFile) writerDone() *Future {
	return f.segment.writerDone()
}

// Close drains the owned Active Segment (await its writer, close the file
// handle, release the buffer) and transitions to STUB. Returns a Future
// that resolves once the drain completes. If the file is not ACTIVE, Close
// returns immediately with an already-resolved Future.
func (f *AppendFile) Close() *Future {
	if !f.state.CompareAndSwap(int32(stateActive), int32(stateStub)) {
		done := newFuture()
		done.resolve(nil)
		return done
	}

	done := newFuture()
	seg := f.segment
	go func() {
		seg.waitDrained()
		err := seg.closeFile()
		done.resolve(err)
	}()
	return done
}

// Remove deletes the on-disk segment file. Only legal once STUB; called on
// a file that is still ACTIVE or already REMOVED raises a StateError
// (spec.md §4.3 invariant).
func (f *AppendFile) Remove() error {
	if !f.state.CompareAndSwap(int32(stateStub), int32(stateRemoved)) {
		return &StateError{Msg: "remove requires STUB state"}
	}
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return &IoError{Op: "remove", Err: err}
	}
	return nil
}
