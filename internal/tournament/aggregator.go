// Package tournament builds the wide per-hero score matrix from the
// per-tournament result files. The column set is discovered at run time from
// the files present, never from a fixed schema: new tournaments appear as new
// columns without code changes.
package tournament

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/domain"
	"fantasy-hero-lab/internal/table"
)

// ErrBadResultFile marks a result file that matched the naming pattern but
// could not be used (unparseable dates, missing required columns). Such files
// are skipped per-file with a warning, never failing the whole scan.
var ErrBadResultFile = errors.New("bad tournament result file")

// Result files are named <slug>_<YYYY-MM-DD>_<YYYY-MM-DD>.csv. The slug may
// itself contain underscores, so the date groups anchor the parse.
var resultNameRe = regexp.MustCompile(`^(.+)_(\d{4}-\d{2}-\d{2})_(\d{4}-\d{2}-\d{2})\.csv$`)

const dateLayout = "2006-01-02"

// Required columns in every result file.
const (
	colHandle = domain.ColHeroHandle
	colScore  = domain.ColFantasyScore
)

// Matrix is the outer-joined score table plus the discovered column order.
// Columns are most-recent-tournament first; "the last 4 tournaments" anywhere
// downstream means the first 4 entries of Columns.
type Matrix struct {
	Table   *table.Table
	Columns []string
}

// MainColumns returns the subset of Columns belonging to recurring Main
// tournaments, preserving recency order.
func (m *Matrix) MainColumns() []string {
	var cols []string
	for _, c := range m.Columns {
		if IsMainColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// IsMainColumn reports whether a score column comes from a Main tournament
// rather than a special or promotional event.
func IsMainColumn(col string) bool {
	return strings.HasPrefix(col, "Main ")
}

// Aggregator scans a directory of tournament result files.
type Aggregator struct {
	dir string
	log zerolog.Logger
}

// NewAggregator creates an aggregator over dir.
func NewAggregator(dir string, log zerolog.Logger) *Aggregator {
	return &Aggregator{dir: dir, log: log.With().Str("component", "tournament").Logger()}
}

type resultFile struct {
	name  string
	slug  string
	start time.Time
	end   time.Time
}

// Aggregate scans the directory, loads every usable result file and
// outer-joins them on hero_handle into one wide table, so a hero missing
// from a tournament gets a null score instead of being dropped. A missing
// or empty directory yields an empty matrix: tournament data is optional.
func (a *Aggregator) Aggregate() (*Matrix, error) {
	files, err := a.scan()
	if err != nil {
		return nil, err
	}

	matrix := &Matrix{Table: table.New(colHandle)}
	used := make(map[string]bool)

	for _, f := range files {
		col := columnName(f.slug)
		if used[col] {
			a.log.Warn().Str("file", f.name).Str("column", col).
				Msg("duplicate tournament slug, keeping most recent file")
			continue
		}

		scores, err := a.loadScores(f, col)
		if err != nil {
			a.log.Warn().Str("file", f.name).Err(err).Msg("skipping tournament result file")
			continue
		}

		matrix.Table = matrix.Table.OuterJoin(scores, colHandle)
		matrix.Columns = append(matrix.Columns, col)
		used[col] = true
	}

	return matrix, nil
}

// scan lists result files sorted by start date descending. The ordering is
// load-bearing: statistics over "the most recent N tournaments" follow it.
func (a *Aggregator) scan() ([]resultFile, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		if os.IsNotExist(err) {
			a.log.Warn().Str("dir", a.dir).Msg("tournament results directory missing")
			return nil, nil
		}
		return nil, fmt.Errorf("read tournament results dir %s: %w", a.dir, err)
	}

	var files []resultFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := resultNameRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		start, err1 := time.Parse(dateLayout, m[2])
		end, err2 := time.Parse(dateLayout, m[3])
		if err1 != nil || err2 != nil {
			a.log.Warn().Str("file", e.Name()).Msgf("skipping: %v", ErrBadResultFile)
			continue
		}
		files = append(files, resultFile{name: e.Name(), slug: m[1], start: start, end: end})
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].start.Equal(files[j].start) {
			return files[i].start.After(files[j].start)
		}
		if !files[i].end.Equal(files[j].end) {
			return files[i].end.After(files[j].end)
		}
		return files[i].name > files[j].name
	})
	return files, nil
}

// loadScores reads one result file and projects it to (hero_handle, col).
func (a *Aggregator) loadScores(f resultFile, col string) (*table.Table, error) {
	fh, err := os.Open(filepath.Join(a.dir, f.name))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResultFile, err)
	}
	defer fh.Close()

	t, err := table.ReadCSV(fh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResultFile, err)
	}
	if !t.HasCol(colHandle) || !t.HasCol(colScore) {
		return nil, fmt.Errorf("%w: missing %s or %s column", ErrBadResultFile, colHandle, colScore)
	}

	out := table.New(colHandle, col)
	for _, r := range t.Rows() {
		if r[colHandle] == "" {
			continue
		}
		out.Append(table.Row{colHandle: r[colHandle], col: r[colScore]})
	}
	out.DedupeBy(colHandle)
	return out, nil
}

// columnName turns a file slug into the human-readable score column,
// e.g. "Main_12" -> "Main 12 Score".
func columnName(slug string) string {
	return strings.ReplaceAll(slug, "_", " ") + " Score"
}
