package receipt

import (
	"fmt"
	"slices"
)

// Row is one line of tabular output. Rows are never modified after creation;
// With returns a changed copy.
type Row struct {
	cells []string
}

// Cells returns a copy of the row's cells in column order
func (r Row) Cells() []string {
	return slices.Clone(r.cells)
}

// Table lays records out as rows: document column, categorical fields,
// then monetary fields, each in vocabulary order
type Table struct {
	vocab   *Vocabulary
	columns []string
	index   map[string]int
}

// NewTable creates a Table for vocab
func NewTable(vocab *Vocabulary) *Table {
	cols := vocab.Columns()
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c] = i
	}
	return &Table{vocab: vocab, columns: cols, index: index}
}

// Columns returns the header row
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether name is one of the table's columns
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Get returns the cell of row under column, or "" for an unknown column
func (t *Table) Get(row Row, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row.cells) {
		return ""
	}
	return row.cells[i]
}

// With returns a copy of row with column set to value
func (t *Table) With(row Row, column, value string) Row {
	out := Row{cells: slices.Clone(row.cells)}
	if i, ok := t.index[column]; ok && i < len(out.cells) {
		out.cells[i] = value
	}
	return out
}

// Expand explodes each record into one row per monetary value. Every
// populated monetary field must hold the same number of values; a record
// that breaks this is reported and left out. Records are not modified.
func (t *Table) Expand(records ...*Record) ([]Row, []Diagnostic) {
	var (
		rows  []Row
		diags []Diagnostic
	)

	monetary := t.vocab.Monetary()
	for _, rec := range records {
		k, err := valueCount(rec, monetary)
		if err != nil {
			diags = append(diags, diagnose(rec.DocumentID, err))
			continue
		}

		for i := 0; i < k; i++ {
			cells := make([]string, len(t.columns))
			cells[0] = rec.DocumentID
			for c, f := range t.vocab.fields {
				if f.Kind == Monetary {
					if vals := rec.Values(f.Name); i < len(vals) {
						cells[c+1] = vals[i]
					}
					continue
				}
				cells[c+1] = rec.Get(f.Name)
			}
			rows = append(rows, Row{cells: cells})
		}
	}

	return rows, diags
}

// Record rebuilds a single-valued Record from a row
func (t *Table) Record(row Row) *Record {
	rec := NewRecord(t.Get(row, DocumentColumn))
	for _, f := range t.vocab.fields {
		if v := t.Get(row, f.Name); v != "" {
			rec.Set(f, v)
		}
	}
	return rec
}

// valueCount returns the shared number of monetary values, at least one
func valueCount(rec *Record, monetary []Field) (int, error) {
	k := -1
	for _, f := range monetary {
		n := len(rec.Values(f.Name))
		if n == 0 {
			continue
		}
		if k == -1 {
			k = n
			continue
		}
		if n != k {
			return 0, fmt.Errorf("%s has %d values, expected %d: %w", f.Name, n, k, ErrFieldCountMismatch)
		}
	}
	if k < 1 {
		k = 1
	}
	return k, nil
}
