package extraction

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// Tolerance controls how glyphs are joined into lines, in PDF points
type Tolerance struct {
	// X is the horizontal gap above which a space is inserted
	X float64
	// Y is the baseline distance below which glyphs share a line
	Y float64
}

// DefaultTolerance suits the 9-10pt print of card receipts
var DefaultTolerance = Tolerance{X: 3, Y: 3}

// cleanLine composes decomposed Hangul jamo and trims trailing blanks.
// Non-breaking spaces are kept; the amount parser relies on them.
func cleanLine(s string) string {
	return strings.TrimRight(norm.NFC.String(s), " \t\r")
}

// splitLines breaks extracted text into cleaned, non-empty lines
func splitLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = cleanLine(l); strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// crop keeps the glyphs whose left edge lies inside [x0, x1)
func crop(texts []pdf.Text, x0, x1 float64) []pdf.Text {
	var out []pdf.Text
	for _, t := range texts {
		if t.X >= x0 && t.X < x1 {
			out = append(out, t)
		}
	}
	return out
}

// buildLines groups glyphs into lines by baseline, top to bottom, and joins
// each line left to right, inserting a space where the gap exceeds tol.X
func buildLines(texts []pdf.Text, tol Tolerance) []string {
	glyphs := make([]pdf.Text, len(texts))
	copy(glyphs, texts)
	sort.SliceStable(glyphs, func(i, j int) bool {
		return glyphs[i].Y > glyphs[j].Y
	})

	var rows [][]pdf.Text
	for _, g := range glyphs {
		if n := len(rows); n > 0 && math.Abs(rows[n-1][0].Y-g.Y) <= tol.Y {
			rows[n-1] = append(rows[n-1], g)
			continue
		}
		rows = append(rows, []pdf.Text{g})
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })

		var b strings.Builder
		end := math.Inf(-1)
		for _, g := range row {
			if b.Len() > 0 && g.X-end > tol.X && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(g.S, " ") {
				b.WriteByte(' ')
			}
			b.WriteString(g.S)
			end = g.X + g.W
		}

		if line := cleanLine(b.String()); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
