// Package table implements the ordered-column string table the pipeline
// stages transform. Values are kept in their CSV text form; numeric access
// goes through coercion helpers so malformed cells read as absent instead of
// poisoning downstream statistics. The empty string is the null value.
package table

import (
	"strconv"
	"strings"
)

// Row maps column name to cell value. Missing keys read as null.
type Row map[string]string

// Table is an ordered list of columns over a list of rows.
type Table struct {
	cols []string
	rows []Row
}

// New creates an empty table with the given column order.
func New(cols ...string) *Table {
	t := &Table{}
	for _, c := range cols {
		t.AddCol(c)
	}
	return t
}

// Cols returns the column names in order. The slice is a copy.
func (t *Table) Cols() []string {
	out := make([]string, len(t.cols))
	copy(out, t.cols)
	return out
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.rows) }

// HasCol reports whether the column exists.
func (t *Table) HasCol(name string) bool {
	for _, c := range t.cols {
		if c == name {
			return true
		}
	}
	return false
}

// AddCol appends a column if it is not already present.
func (t *Table) AddCol(name string) {
	if !t.HasCol(name) {
		t.cols = append(t.cols, name)
	}
}

// DropCols removes the named columns and their values. Unknown names are
// ignored so callers can drop per-rarity families without probing first.
func (t *Table) DropCols(names ...string) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	kept := t.cols[:0]
	for _, c := range t.cols {
		if !drop[c] {
			kept = append(kept, c)
		}
	}
	t.cols = kept
	for _, r := range t.rows {
		for n := range drop {
			delete(r, n)
		}
	}
}

// Append adds a row. Columns seen in the row but not in the table are NOT
// added; declare columns up front or via AddCol.
func (t *Table) Append(r Row) {
	if r == nil {
		r = Row{}
	}
	t.rows = append(t.rows, r)
}

// Rows returns the backing row slice. Mutating returned rows mutates the
// table.
func (t *Table) Rows() []Row { return t.rows }

// Row returns the i-th row.
func (t *Table) Row(i int) Row { return t.rows[i] }

// Get returns the cell value, "" when the column is absent or null.
func (t *Table) Get(i int, col string) string { return t.rows[i][col] }

// Set writes a cell value, declaring the column if needed.
func (t *Table) Set(i int, col, val string) {
	t.AddCol(col)
	t.rows[i][col] = val
}

// Float parses the cell as a float. The second return is false for null,
// absent or non-numeric cells.
func (t *Table) Float(i int, col string) (float64, bool) {
	return ParseFloat(t.rows[i][col])
}

// SetFloat writes a float cell using the canonical text form.
func (t *Table) SetFloat(i int, col string, v float64) {
	t.Set(i, col, FormatFloat(v))
}

// ParseFloat coerces a cell value to a float64.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatFloat renders a float without trailing noise: integral values print
// as integers, everything else with minimal digits.
func FormatFloat(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// NormalizeIntKey rewrites values of the column that parse as integral
// floats into their integer text form ("7.0" becomes "7"). Sources disagree
// on whether identifiers are numeric; normalizing the declared join keys at
// load time makes key-type mismatches structurally impossible.
func (t *Table) NormalizeIntKey(col string) {
	if !t.HasCol(col) {
		return
	}
	for _, r := range t.rows {
		v, ok := ParseFloat(r[col])
		if !ok {
			continue
		}
		if v == float64(int64(v)) {
			r[col] = strconv.FormatInt(int64(v), 10)
		}
	}
}

// DedupeBy removes rows whose value in col was already seen, keeping the
// first occurrence. Rows with a null key are all kept.
func (t *Table) DedupeBy(col string) {
	seen := make(map[string]bool, len(t.rows))
	kept := t.rows[:0]
	for _, r := range t.rows {
		k := r[col]
		if k != "" && seen[k] {
			continue
		}
		seen[k] = true
		kept = append(kept, r)
	}
	t.rows = kept
}

// Reorder moves the named columns (those that exist) to the front, keeping
// the relative order of the rest.
func (t *Table) Reorder(first ...string) {
	var head []string
	inHead := make(map[string]bool, len(first))
	for _, c := range first {
		if t.HasCol(c) && !inHead[c] {
			head = append(head, c)
			inHead[c] = true
		}
	}
	for _, c := range t.cols {
		if !inHead[c] {
			head = append(head, c)
		}
	}
	t.cols = head
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.cols...)
	for _, r := range t.rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Append(nr)
	}
	return out
}
