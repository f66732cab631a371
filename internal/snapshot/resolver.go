// Package snapshot reads and writes the timestamped CSV exports that make up
// the snapshot store. One file per logical source per capture, named
// <prefix>_<YYMMDD>_<HHMM>.csv; only the most recent file per prefix is ever
// consumed.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/table"
)

var (
	// ErrSourceNotFound is returned when no file matches a source prefix.
	ErrSourceNotFound = errors.New("no snapshot file for source")

	// ErrMalformedSnapshot is returned when every matching file failed to
	// parse (empty, unreadable, no header).
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

// TimestampLayout is the filename timestamp format (YYMMDD_HHMM).
const TimestampLayout = "060102_1504"

var snapshotNameRe = regexp.MustCompile(`^(.+)_(\d{6}_\d{4})\.csv$`)

// Resolver selects the latest snapshot per source prefix from a directory.
type Resolver struct {
	dir string
	log zerolog.Logger
}

// NewResolver creates a resolver over dir.
func NewResolver(dir string, log zerolog.Logger) *Resolver {
	return &Resolver{dir: dir, log: log.With().Str("component", "snapshot").Logger()}
}

type candidate struct {
	name string
	ts   time.Time
}

// Latest loads the most recent snapshot for prefix. When two files share the
// prefix the later filename timestamp wins; equal timestamps fall back to the
// lexically greater name so selection stays deterministic. Files that fail to
// parse are skipped with a warning and the next most recent file is tried:
// a truncated export must not shadow a good earlier one.
func (r *Resolver) Latest(prefix string) (*table.Table, error) {
	cands, err := r.scan(prefix)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", ErrSourceNotFound, prefix, r.dir)
	}

	for _, c := range cands {
		t, err := r.load(c.name)
		if err != nil {
			r.log.Warn().Str("file", c.name).Err(err).Msg("skipping unreadable snapshot")
			continue
		}
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s (all %d matching files unreadable)", ErrMalformedSnapshot, prefix, len(cands))
}

// scan returns matching candidates sorted most recent first.
func (r *Resolver) scan(prefix string) ([]candidate, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir %s: %w", r.dir, err)
	}

	var cands []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := snapshotNameRe.FindStringSubmatch(e.Name())
		if m == nil || m[1] != prefix {
			continue
		}
		ts, err := time.Parse(TimestampLayout, m[2])
		if err != nil {
			r.log.Warn().Str("file", e.Name()).Msg("snapshot filename has invalid timestamp")
			continue
		}
		cands = append(cands, candidate{name: e.Name(), ts: ts})
	}

	sort.Slice(cands, func(i, j int) bool {
		if !cands[i].ts.Equal(cands[j].ts) {
			return cands[i].ts.After(cands[j].ts)
		}
		return cands[i].name > cands[j].name
	})
	return cands, nil
}

func (r *Resolver) load(name string) (*table.Table, error) {
	f, err := os.Open(filepath.Join(r.dir, name))
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	t, err := table.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return t, nil
}
