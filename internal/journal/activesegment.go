package journal

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// writerStage is the tri-valued state from spec.md §3 "Batch writer
// stage": whether a background writer goroutine currently exists for this
// segment, and whether another flush is required once the running one
// completes.
type writerStage int

const (
	stageNone writerStage = iota
	stageLive
	stagePending
)

// activeSegment is the append engine for a single segment file: the
// lock-free slot allocator, the copy-sequencer, and the coalescing batch
// writer goroutine (spec.md §4.1, §4.2). One activeSegment is owned by
// exactly one AppendFile at a time.
type activeSegment struct {
	id       uint64
	path     string
	capacity uint64

	buf  []byte
	pool *bufferPool

	// allocationOffset and commitOffset are read/written outside the spin
	// lock, per spec.md §5.
	allocationOffset atomic.Uint64
	commitOffset     atomic.Uint64

	// lock guards fileOffset, batchOffset, stage, and the pending future
	// slot (spec.md §3, §5).
	lock        spinLock
	fileOffset  uint64
	batchOffset uint64
	stage       writerStage
	pending     *Future

	openOnce sync.Once
	openErr  error
	file     *os.File

	// drained is closed the first time this segment's writer goroutine
	// idles (stage settles back to stageNone). A later append can start a
	// new writer after that, so waitDrained re-checks the stage after it
	// fires. AppendFile.Close waits through waitDrained, not on lastWriter,
	// so close latency never compounds across a long chain of rotated
	// segments (spec.md §5 "Segment close waits for its own batch writer
	// to drain").
	drained     chan struct{}
	drainOnce   sync.Once
	lastWriter  *Future // previous segment's writer-done future, for chaining (spec.md §4.2 step 6, §9)

	logger zerolog.Logger
}

func newActiveSegment(id uint64, path string, capacity uint64, pool *bufferPool, lastWriter *Future, logger zerolog.Logger) *activeSegment {
	return &activeSegment{
		id:         id,
		path:       path,
		capacity:   capacity,
		buf:        pool.acquire(),
		pool:       pool,
		drained:    make(chan struct{}),
		lastWriter: lastWriter,
		logger:     logger,
	}
}

// append reserves space for kind+payload, copies it into the buffer, and
// arranges for it to be flushed by the batch writer, returning a shared
// Future the caller can await. It returns errSegmentFull (not an error in
// the spec.md §7 sense) when the segment has no room left; the caller is
// expected to rotate to a new segment and retry there.
func (s *activeSegment) append(kind Kind, payload []byte) (*Future, error) {
	need := uint64(FrameHeaderSize + len(payload))

	var start uint64
	for {
		start = s.allocationOffset.Load()
		end := start + need
		if end > s.capacity {
			return nil, errSegmentFull
		}
		if s.allocationOffset.CompareAndSwap(start, end) {
			break
		}
	}
	end := start + need

	encodeHeader(s.buf[start:start+FrameHeaderSize], len(payload), kind)
	copy(s.buf[start+FrameHeaderSize:end], payload)

	s.publishCommit(start, end)

	s.lock.lock()
	if end > s.batchOffset {
		s.batchOffset = end
	}
	var future *Future
	switch s.stage {
	case stageNone:
		future = newFuture()
		s.pending = future
		s.stage = stagePending
		go s.runWriter()
	case stageLive:
		future = newFuture()
		s.pending = future
		s.stage = stagePending
	case stagePending:
		future = s.pending
	}
	s.lock.unlock()

	return future, nil
}

// publishCommit busy-waits until this reservation's start is the head of
// the committed prefix, then advances commitOffset to its end. Because
// reservations are disjoint and ordered by successful CAS, at most one
// goroutine's start ever equals the current commitOffset at a time — the
// copy (above) runs fully in parallel across producers; only this publish
// step is sequenced (spec.md §4.1 step 3).
func (s *activeSegment) publishCommit(start, end uint64) {
	backoff := time.Duration(0)
	for {
		if s.commitOffset.Load() == start {
			if s.commitOffset.CompareAndSwap(start, end) {
				return
			}
		}
		if backoff == 0 {
			backoff = time.Microsecond
			continue
		}
		time.Sleep(backoff)
		if backoff < time.Millisecond {
			backoff *= 2
		}
	}
}

// ensureOpen lazily opens the segment's file handle on first use (spec.md
// §5 "awaiting the lazy file open").
func (s *activeSegment) ensureOpen() error {
	s.openOnce.Do(func() {
		f, err := os.OpenFile(s.path, os.O_CREATE|os.O_RDWR, 0o644)
		if err != nil {
			s.openErr = err
			return
		}
		s.file = f
	})
	return s.openErr
}

// runWriter is the batch writer task (spec.md §4.2). One goroutine per
// segment; the stage machine guarantees at most one is ever running.
func (s *activeSegment) runWriter() {
	if err := s.ensureOpen(); err != nil {
		s.lock.lock()
		future := s.pending
		s.pending = nil
		s.stage = stageNone
		s.lock.unlock()
		s.markDrained()
		if future != nil {
			future.resolve(&IoError{Op: "open", Err: err})
		}
		s.logger.Error().Err(err).Str("path", s.path).Msg("failed to open segment file")
		return
	}

	for {
		s.lock.lock()
		s.stage = stageLive
		future := s.pending
		s.pending = nil
		start := s.fileOffset
		end := s.batchOffset
		s.lock.unlock()

		var writeErr error
		if end > start {
			if _, err := s.file.WriteAt(s.buf[start:end], int64(start)); err != nil {
				writeErr = err
			}
		}

		s.lock.lock()
		if writeErr == nil {
			s.fileOffset = end
		}
		again := s.stage == stagePending
		if !again {
			s.stage = stageNone
		}
		s.lock.unlock()

		if writeErr != nil {
			s.logger.Error().Err(writeErr).Str("path", s.path).
				Uint64("start", start).Uint64("end", end).Msg("segment batch write failed")
			future.resolve(&IoError{Op: "write", Err: writeErr})
		} else {
			future.resolve(nil)
		}

		if !again {
			break
		}
	}

	s.markDrained()

	if s.lastWriter != nil {
		s.lastWriter.Wait()
	}
}

func (s *activeSegment) markDrained() {
	s.drainOnce.Do(func() { close(s.drained) })
}

// waitDrained blocks until this segment's writer goroutine has no more
// pending batches. It does not wait on the predecessor chain (see the
// drained field's doc comment).
func (s *activeSegment) waitDrained() {
	for {
		s.lock.lock()
		idle := s.stage == stageNone && s.pending == nil
		s.lock.unlock()
		if idle {
			return
		}
		<-s.drained
		time.Sleep(50 * time.Microsecond)
	}
}

// writerDone returns a Future that resolves once this segment's writer
// goroutine has drained, for use as the next segment's lastWriter chain
// link (spec.md §4.2 step 6).
func (s *activeSegment) writerDone() *Future {
	f := newFuture()
	go func() {
		s.waitDrained()
		f.resolve(nil)
	}()
	return f
}

// closeFile closes the segment's file handle, if it was ever opened, and
// releases the buffer back to the pool. Buffer memory is released exactly
// once, here (spec.md §4.3 invariant).
func (s *activeSegment) closeFile() error {
	var err error
	if s.file != nil {
		err = s.file.Close()
	}
	s.pool.release(s.buf)
	s.buf = nil
	return err
}
