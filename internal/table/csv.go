package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ErrEmpty is returned by ReadCSV for inputs with no header row.
var ErrEmpty = errors.New("csv input is empty")

// ReadCSV parses CSV content into a table. The first record is the header;
// duplicate header names keep the first occurrence. Short records leave the
// trailing cells null, mirroring how evolving source schemas show up in old
// snapshots.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	t := New(header...)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(rec) && rec[i] != "" {
				// First header occurrence wins on duplicates.
				if _, dup := row[col]; !dup {
					row[col] = rec[i]
				}
			}
		}
		t.Append(row)
	}
	return t, nil
}

// WriteCSV renders the table with its column order as the header.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	rec := make([]string, len(t.cols))
	for _, r := range t.rows {
		for i, c := range t.cols {
			rec[i] = r[c]
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
