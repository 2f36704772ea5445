package journal

import (
	"errors"
	"fmt"
)

// ConfigError reports a problem with the on-disk layout or construction
// arguments of a Journal: a base path that isn't a directory, a gap or
// duplicate in the segment id range, or a non-empty directory passed to
// AppendJournal.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "journal: config error: " + e.Msg }

// ValidationError reports a record that fails validation before it is ever
// handed to a segment, e.g. one larger than MaxRecordSize.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "journal: validation error: " + e.Msg }

// StateError reports an operation attempted while its receiver is in the
// wrong lifecycle state, e.g. Remove on an AppendFile that is not STUB, or
// CheckCheckpoint with no checkpoint ever registered.
type StateError struct {
	Msg string
}

func (e *StateError) Error() string { return "journal: state error: " + e.Msg }

// IoError wraps a failure from the underlying file collaborator (open,
// read, write, close). It is the error delivered through a batch's shared
// Future to every producer whose bytes were part of the failing write.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("journal: io error during %s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// FormatError reports a corrupt or truncated frame encountered only during
// recovery: a declared payload length that exceeds the remaining bytes in
// the segment. A short/empty header is not an error — it is the clean
// end-of-file marker (spec.md §3).
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return "journal: format error: " + e.Msg }

// errSegmentFull is returned internally by an Active Segment's append path
// when a record does not fit in the remaining buffer capacity. It is not
// one of the five spec.md §7 error kinds because it isn't a failure: the
// caller (AppendFile / Journal) is expected to rotate and retry.
var errSegmentFull = errors.New("journal: segment full")
