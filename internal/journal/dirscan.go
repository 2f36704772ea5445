package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// scanSegments enumerates regular files in dir named "<decimal-id>.journal"
// (spec.md §3, §9 — the non-padded decimal form is the one this package
// adopts; any other extension or a non-decimal stem is ignored rather than
// rejected). A zero-padded stem parses to its decimal value, so
// "00.journal" is id 0. It returns the ids in ascending order, or nil when
// there are none.
//
// A duplicate id, or a gap inside the discovered range, is a ConfigError —
// segment ids in a journal directory must form a contiguous [first, last]
// range (spec.md §3, §8 invariant 5).
func scanSegments(dir string) (ids []uint64, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &IoError{Op: "readdir", Err: err}
	}

	seen := make(map[uint64]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, FileExtension) {
			continue
		}
		stem := strings.TrimSuffix(name, FileExtension)
		id, err := strconv.ParseUint(stem, 10, 64)
		if err != nil {
			continue
		}
		if seen[id] {
			return nil, &ConfigError{Msg: fmt.Sprintf("duplicate segment id %d in %s", id, dir)}
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, nil
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	first, last := ids[0], ids[len(ids)-1]
	if last-first+1 != uint64(len(ids)) {
		return nil, &ConfigError{Msg: fmt.Sprintf("segment ids in %s are not contiguous: have %v, expected range [%d, %d]", dir, ids, first, last)}
	}

	return ids, nil
}

// segmentPath returns the on-disk path for a segment id under base.
func segmentPath(base string, id uint64) string {
	return filepath.Join(base, strconv.FormatUint(id, 10)+FileExtension)
}

// prepareDir creates base if missing, or fails if it exists and is not a
// directory (spec.md §4.4, §7 ConfigError).
func prepareDir(base string) error {
	info, err := os.Stat(base)
	if os.IsNotExist(err) {
		if mkErr := os.MkdirAll(base, 0o755); mkErr != nil {
			return &IoError{Op: "mkdir", Err: mkErr}
		}
		return nil
	}
	if err != nil {
		return &IoError{Op: "stat", Err: err}
	}
	if !info.IsDir() {
		return &ConfigError{Msg: fmt.Sprintf("%s exists and is not a directory", base)}
	}
	return nil
}
