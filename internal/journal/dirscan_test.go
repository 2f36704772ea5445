package journal

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScanSegmentsEmptyDir(t *testing.T) {
	dir := t.TempDir()

	ids, err := scanSegments(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected no segments, got %v", ids)
	}
}

func TestScanSegmentsContiguousRange(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []uint64{0, 1, 2} {
		touch(t, segmentPath(dir, id))
	}
	touch(t, filepath.Join(dir, "notes.txt"))

	ids, err := scanSegments(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 || ids[0] != 0 || ids[2] != 2 {
		t.Errorf("expected [0 1 2], got %v", ids)
	}
}

func TestScanSegmentsRejectsGap(t *testing.T) {
	dir := t.TempDir()
	touch(t, segmentPath(dir, 0))
	touch(t, segmentPath(dir, 2))

	if _, err := scanSegments(dir); err == nil {
		t.Fatal("expected a ConfigError for a gap in segment ids")
	} else if _, ok := err.(*ConfigError); !ok {
		t.Errorf("expected *ConfigError, got %T", err)
	}
}

func TestScanSegmentsRejectsDuplicate(t *testing.T) {
	dir := t.TempDir()
	touch(t, segmentPath(dir, 0))
	// "00.journal" parses to the same id 0 as "0.journal".
	touch(t, filepath.Join(dir, "00.journal"))

	if _, err := scanSegments(dir); err == nil {
		t.Fatal("expected a ConfigError for a duplicate segment id")
	} else if _, ok := err.(*ConfigError); !ok {
		t.Errorf("expected *ConfigError, got %T", err)
	}
}

func TestPrepareDirCreatesMissing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "journal")

	if err := prepareDir(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected %s to be created as a directory", dir)
	}
}

func TestPrepareDirRejectsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	touch(t, file)

	if err := prepareDir(file); err == nil {
		t.Fatal("expected a ConfigError for a non-directory path")
	} else if _, ok := err.(*ConfigError); !ok {
		t.Errorf("expected *ConfigError, got %T", err)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("failed to create fixture %s: %v", path, err)
	}
}
