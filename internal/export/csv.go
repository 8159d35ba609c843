package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// BOM marks the CSV as UTF-8 so spreadsheet tools read Hangul correctly
var BOM = []byte{0xEF, 0xBB, 0xBF}

// Sheet is a header row and the rows under it
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// CSV encodes the sheet as BOM-prefixed CSV
func (s Sheet) CSV() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write(s.Header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, row := range s.Rows {
		if len(row) != len(s.Header) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i+1, len(row), len(s.Header))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flushing CSV: %w", err)
	}
	return buf.Bytes(), nil
}
