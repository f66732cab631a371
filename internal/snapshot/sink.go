package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fantasy-hero-lab/internal/table"
)

// WriteFileAtomic writes the table to path via a temp file in the same
// directory plus rename, so a concurrent reader observes either the previous
// file or the new one, never a partial write.
func WriteFileAtomic(path string, t *table.Table) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := t.WriteCSV(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file to %s: %w", path, err)
	}
	return nil
}

// SaveTimestamped writes a new timestamped snapshot for prefix and returns
// the file path. Empty tables are not saved: a failed upstream fetch must not
// become the "latest" snapshot and mask the previous good capture.
func SaveTimestamped(dir, prefix string, t *table.Table, now time.Time) (string, error) {
	if t.NumRows() == 0 {
		return "", fmt.Errorf("refusing to save empty %s snapshot", prefix)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, now.Format(TimestampLayout)))
	if err := WriteFileAtomic(path, t); err != nil {
		return "", err
	}
	return path, nil
}
