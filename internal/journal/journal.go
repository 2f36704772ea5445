package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// CheckpointMirror is notified of checkpoint bookkeeping changes on a
// best-effort basis (SPEC_FULL.md §4, §7). A Journal never depends on a
// mirror's result: a failed or slow mirror update is logged and dropped,
// never retried, never surfaced through an Append future.
type CheckpointMirror interface {
	Registered(ctx context.Context, id, firstSegmentID uint64) error
	Forgotten(ctx context.Context, id uint64) error
}

// Option configures a Journal at construction, following the teacher's
// functional-option style (WALWriterOption, SegmentRollerOption).
type Option func(*Journal)

// WithLogger overrides the Journal's zerolog logger (default: no-op).
func WithLogger(l zerolog.Logger) Option {
	return func(j *Journal) { j.logger = l }
}

// WithCheckpointMirror wires an optional, non-authoritative checkpoint
// mirror (e.g. internal/checkpointmirror's Postgres-backed one).
func WithCheckpointMirror(m CheckpointMirror) Option {
	return func(j *Journal) { j.mirror = m }
}

// WithMaxFileSize overrides the default 4 MiB segment capacity. Tests use
// this to exercise rotation without writing megabytes of payload.
func WithMaxFileSize(n uint64) Option {
	return func(j *Journal) { j.maxFileSize = n }
}

// WithMaxRecordSize overrides the default 1 MiB maximum record size (the
// 4-byte frame header plus payload).
func WithMaxRecordSize(n uint64) Option {
	return func(j *Journal) { j.maxRecordSize = n }
}

// WithBufferPoolCapacity overrides how many idle segment buffers the
// Journal's bufferPool retains (default 4).
func WithBufferPoolCapacity(n int) Option {
	return func(j *Journal) { j.poolCapacity = n }
}

// Journal is the append-only chain of rotating segment files (spec.md §2,
// §3, §4.4). All exported methods are safe for concurrent use by many
// producer goroutines.
type Journal struct {
	basePath string

	// lock guards every field below except maxFileSize/maxRecordSize/mirror,
	// which are fixed at construction (spec.md §5).
	lock            spinLock
	segmentEmpty    bool
	files           []*AppendFile // ordered by id ascending; only the last is ever ACTIVE
	checkpoints     map[uint64]uint64 // checkpoint id -> first_segment_id_at_registration
	checkpointOrder []uint64          // checkpoint ids, ascending; front is the oldest live one
	nextFileID      uint64
	nextCheckpointID uint64

	pool         *bufferPool
	poolCapacity int
	maxFileSize  uint64
	maxRecordSize uint64

	mirror CheckpointMirror
	logger zerolog.Logger
}

// AppendJournal opens base for writing. base must not already contain
// segment files — this constructor only ever opens an empty journal
// (spec.md §4.4); recovering an existing one is Recover's job.
func AppendJournal(base string, opts ...Option) (*Journal, error) {
	j := &Journal{
		maxFileSize:   MaxFileSize,
		maxRecordSize: MaxRecordSize,
		poolCapacity:  4,
		checkpoints:   make(map[uint64]uint64),
		segmentEmpty:  true,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.basePath = base
	j.pool = newBufferPool(int(j.maxFileSize), j.poolCapacity)

	if err := prepareDir(base); err != nil {
		return nil, err
	}
	ids, err := scanSegments(base)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		return nil, &ConfigError{Msg: fmt.Sprintf(
			"journal directory %s already contains segments %v; AppendJournal only opens empty journals", base, ids)}
	}

	return j, nil
}

// Append reserves space for payload as a KindData record and returns a
// Future that resolves once it durably reaches the file write syscall
// (spec.md §4.4, §6). Append never blocks on I/O; only the returned
// Future does.
func (j *Journal) Append(payload []byte) (*Future, error) {
	if uint64(len(payload)+FrameHeaderSize) > j.maxRecordSize {
		return nil, &ValidationError{Msg: fmt.Sprintf(
			"record of %d bytes (payload plus header) exceeds MaxRecordSize %d", len(payload)+FrameHeaderSize, j.maxRecordSize)}
	}
	j.lock.lock()
	return j.appendInternal(KindData, payload)
}

// appendInternal appends kind+payload to the tail segment, rotating to a
// fresh one if the tail is full or doesn't exist yet (spec.md §4.4 steps
// 1-7). The journal lock must be held on entry; appendInternal always
// releases it before returning.
func (j *Journal) appendInternal(kind Kind, payload []byte) (*Future, error) {
	// Only user data makes the segment non-empty; the link records that
	// RegisterCheckpoint and CheckCheckpoint append do not.
	if kind == KindData {
		j.segmentEmpty = false
	}

	if n := len(j.files); n > 0 {
		tail := j.files[n-1]
		j.lock.unlock()

		future, err := tail.Append(kind, payload)
		if err == nil {
			return future, nil
		}
		if err != errSegmentFull {
			return nil, err
		}

		j.lock.lock()
		var toClose *Future
		if n2 := len(j.files); n2 > 0 && j.files[n2-1] == tail {
			toClose = tail.Close()
		}
		return j.rotateAndAppend(kind, payload, toClose)
	}

	return j.rotateAndAppend(kind, payload, nil)
}

// rotateAndAppend creates a new tail segment, writes its checkpoint-link
// frame followed by the original record, and returns a Future combining
// the old tail's close (if any) with both new writes (spec.md §4.4 steps
// 4-7). The journal lock must be held on entry; it is released before any
// segment I/O is attempted.
func (j *Journal) rotateAndAppend(kind Kind, payload []byte, toClose *Future) (*Future, error) {
	id := j.nextFileID
	j.nextFileID++

	var lastWriter *Future
	if n := len(j.files); n > 0 {
		lastWriter = j.files[n-1].writerDone()
	}

	path := segmentPath(j.basePath, id)
	newFile := newAppendFile(id, path, j.maxFileSize, j.pool, lastWriter, j.logger)
	j.files = append(j.files, newFile)

	linkPayload := encodeLinkPayload(j.earliestCheckpointIDLocked(), j.nextCheckpointID)

	j.lock.unlock()

	linkFuture, err := newFile.Append(KindLink, linkPayload)
	if err != nil {
		return nil, err
	}
	userFuture, err := newFile.Append(kind, payload)
	if err != nil {
		return nil, err
	}

	return allFuture(toClose, linkFuture, userFuture), nil
}

// earliestCheckpointIDLocked returns the smallest live checkpoint id, or 0
// if none are registered. The journal lock must be held by the caller.
func (j *Journal) earliestCheckpointIDLocked() uint64 {
	if len(j.checkpointOrder) == 0 {
		return 0
	}
	return j.checkpointOrder[0]
}

// RegisterCheckpoint marks the current tail segment as a checkpoint
// boundary and returns its id (spec.md §4.4). Calling it again with no
// intervening Append returns the same id without appending another link
// record (spec.md §8 invariant).
func (j *Journal) RegisterCheckpoint() (uint64, error) {
	j.lock.lock()
	if j.segmentEmpty {
		// No data since the last registration: hand back that checkpoint's
		// id (or 0 if none was ever registered) without advancing.
		id := j.nextCheckpointID
		if id > 0 {
			id--
		}
		j.lock.unlock()
		return id, nil
	}

	j.segmentEmpty = true
	id := j.nextCheckpointID
	j.nextCheckpointID++

	tail := j.files[len(j.files)-1]
	j.checkpoints[id] = tail.ID
	j.checkpointOrder = append(j.checkpointOrder, id)

	linkPayload := encodeLinkPayload(j.earliestCheckpointIDLocked(), j.nextCheckpointID)
	if _, err := j.appendInternal(KindLink, linkPayload); err != nil {
		return 0, err
	}

	j.notifyMirrorRegister(id, tail.ID)
	return id, nil
}

// CheckCheckpoint reclaims every segment strictly older than the oldest
// live checkpoint, then retires that checkpoint (spec.md §4.4). It
// requires at least one registered checkpoint; calling it before any
// RegisterCheckpoint call is a StateError (see DESIGN.md).
func (j *Journal) CheckCheckpoint() error {
	j.lock.lock()
	if len(j.checkpointOrder) == 0 {
		j.lock.unlock()
		return &StateError{Msg: "check_checkpoint requires at least one registered checkpoint"}
	}

	earliestID := j.checkpointOrder[0]
	keepFromSegmentID := j.checkpoints[earliestID]

	var toRemove []*AppendFile
	for len(j.files) > 0 && j.files[0].ID < keepFromSegmentID {
		toRemove = append(toRemove, j.files[0])
		j.files = j.files[1:]
	}

	delete(j.checkpoints, earliestID)
	j.checkpointOrder = j.checkpointOrder[1:]
	j.lock.unlock()

	for _, f := range toRemove {
		if err := f.Remove(); err != nil {
			j.logger.Error().Err(err).Uint64("segment", f.ID).Msg("failed to remove reclaimed segment")
		}
	}
	j.notifyMirrorForget(earliestID)

	j.lock.lock()
	linkPayload := encodeLinkPayload(j.earliestCheckpointIDLocked(), j.nextCheckpointID)
	if _, err := j.appendInternal(KindLink, linkPayload); err != nil {
		return err
	}
	return nil
}

// Close closes every AppendFile in parallel and awaits all completions
// (spec.md §4.4). It performs no on-disk cleanup; segments remain on disk
// for a later Recover.
func (j *Journal) Close() error {
	j.lock.lock()
	files := make([]*AppendFile, len(j.files))
	copy(files, j.files)
	j.lock.unlock()

	var g errgroup.Group
	for _, f := range files {
		f := f
		g.Go(func() error {
			return f.Close().Wait()
		})
	}
	return g.Wait()
}

// SegmentSummary describes one AppendFile for diagnostics.
type SegmentSummary struct {
	ID    uint64
	State string
}

// Segments returns a snapshot of every segment currently in the chain,
// ordered oldest first.
func (j *Journal) Segments() []SegmentSummary {
	j.lock.lock()
	defer j.lock.unlock()

	out := make([]SegmentSummary, len(j.files))
	for i, f := range j.files {
		out[i] = SegmentSummary{ID: f.ID, State: f.State()}
	}
	return out
}

// ListSegments enumerates the segment ids present in dir without opening
// them, for inspection tooling that doesn't need to read record bodies
// (e.g. the operator CLI's scan subcommand).
func ListSegments(dir string) ([]uint64, error) {
	return scanSegments(dir)
}

// CheckpointIDs returns the ids of every currently live checkpoint,
// oldest first.
func (j *Journal) CheckpointIDs() []uint64 {
	j.lock.lock()
	defer j.lock.unlock()

	out := make([]uint64, len(j.checkpointOrder))
	copy(out, j.checkpointOrder)
	return out
}

func (j *Journal) notifyMirrorRegister(id, firstSegmentID uint64) {
	if j.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := j.mirror.Registered(ctx, id, firstSegmentID); err != nil {
			j.logger.Warn().Err(err).Uint64("checkpoint", id).Msg("checkpoint mirror update failed")
		}
	}()
}

func (j *Journal) notifyMirrorForget(id uint64) {
	if j.mirror == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := j.mirror.Forgotten(ctx, id); err != nil {
			j.logger.Warn().Err(err).Uint64("checkpoint", id).Msg("checkpoint mirror update failed")
		}
	}()
}
