package journal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// Record is one decoded frame surfaced by Reader: either user data
// (KindData) or a checkpoint-link frame (KindLink), which a consumer may
// ignore (spec.md §4.5, §6).
type Record struct {
	Kind    Kind
	Payload []byte
}

// Reader lazily re-emits records from an existing journal directory in
// on-disk order, starting at the lowest segment id (spec.md §4.5, §6). It
// is the recovery reader from the spec's "out of scope" collaborator list,
// implemented in this package because recovery has nowhere else to live in
// a standalone Go module.
type Reader struct {
	base  string
	ids   []uint64
	sizes map[uint64]int64
	idx   int

	buf []byte
	end int64
	pos int64

	cur Record
	err error
}

// Recover opens path for recovery. It fails fast (ConfigError) if the
// segment ids on disk are not contiguous; see scanSegments.
func Recover(path string) (*Reader, error) {
	ids, err := scanSegments(path)
	if err != nil {
		return nil, err
	}

	sizes, err := statSegments(path, ids)
	if err != nil {
		return nil, err
	}

	return &Reader{base: path, ids: ids, sizes: sizes}, nil
}

// statSegments concurrently stats every segment file so the lazy reader
// doesn't have to re-stat on every segment boundary it crosses, and so a
// missing segment is reported before any record is read instead of
// mid-scan. File sizes are recorded, not checked against a capacity.
func statSegments(base string, ids []uint64) (map[uint64]int64, error) {
	sizes := make([]int64, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			info, err := os.Stat(segmentPath(base, id))
			if err != nil {
				return &IoError{Op: "stat", Err: err}
			}
			sizes[i] = info.Size()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bySize := make(map[uint64]int64, len(ids))
	for i, id := range ids {
		bySize[id] = sizes[i]
	}
	return bySize, nil
}

// Next advances to the next record, returning false at the end of the
// directory or on error; call Err to distinguish the two.
func (r *Reader) Next() bool {
	for {
		if r.err != nil {
			return false
		}
		if r.buf == nil {
			if r.idx >= len(r.ids) {
				return false
			}
			if err := r.openSegment(r.ids[r.idx]); err != nil {
				r.err = err
				return false
			}
		}

		// Fewer than a header's worth of bytes left marks the clean
		// end-of-file of this segment (spec.md §3, §4.5).
		if r.pos+FrameHeaderSize > r.end {
			r.buf = nil
			r.idx++
			continue
		}

		payloadLen, kind := decodeHeader(r.buf[r.pos : r.pos+FrameHeaderSize])
		frameEnd := r.pos + FrameHeaderSize + int64(payloadLen)
		if frameEnd > r.end {
			r.err = &FormatError{Msg: fmt.Sprintf(
				"segment %d: frame at offset %d declares %d payload bytes but only %d remain",
				r.ids[r.idx], r.pos, payloadLen, r.end-r.pos-FrameHeaderSize)}
			return false
		}

		payload := make([]byte, payloadLen)
		copy(payload, r.buf[r.pos+FrameHeaderSize:frameEnd])
		r.cur = Record{Kind: kind, Payload: payload}
		r.pos = frameEnd
		return true
	}
}

// Record returns the record produced by the most recent successful Next.
func (r *Reader) Record() Record { return r.cur }

// Err returns the error that stopped iteration, if Next returned false
// because of a failure rather than clean exhaustion.
func (r *Reader) Err() error { return r.err }

func (r *Reader) openSegment(id uint64) error {
	f, err := os.Open(segmentPath(r.base, id))
	if err != nil {
		return &IoError{Op: "open", Err: err}
	}
	defer func() { _ = f.Close() }()

	size := r.sizes[id]
	buf := make([]byte, size)
	if _, err := io.ReadFull(f, buf); err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return &IoError{Op: "read", Err: err}
	}

	r.buf = buf
	r.end = size
	r.pos = 0
	return nil
}
