package receipt

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
)

// minPageLines is the line count at or below which a page region is
// treated as empty
const minPageLines = 2

// linePair is a header line and the line that follows it
type linePair struct {
	Line   int
	Header HeaderMatch
	Value  string
}

// Assembler turns the lines of one document half into a Record.
// It holds no mutable state and is safe for concurrent use.
type Assembler struct {
	vocab   *Vocabulary
	matcher *Matcher
	refiner *Refiner
}

// NewAssembler creates an Assembler for vocab
func NewAssembler(vocab *Vocabulary) *Assembler {
	return &Assembler{
		vocab:   vocab,
		matcher: NewMatcher(vocab),
		refiner: NewRefiner(vocab),
	}
}

// Assemble scans pages in order and merges every header/value pair into one
// Record. Pairs never span pages. A header on the last line of a page fails
// the whole document with ErrMissingValueLine; refinement failures are
// returned as diagnostics and leave the field unpopulated.
func (a *Assembler) Assemble(documentID string, pages ...[]string) (*Record, []Diagnostic, error) {
	rec := NewRecord(documentID)
	var diags []Diagnostic

	for n, lines := range pages {
		if len(lines) <= minPageLines {
			continue
		}

		for p, err := range a.pairs(lines) {
			if err != nil {
				err = fmt.Errorf("page %d: %w", n+1, err)
				return nil, append(diags, diagnose(documentID, err)), err
			}

			if a.placeholderRow(p) {
				slog.Debug("Skipping placeholder row", "document", documentID, "page", n+1, "line", p.Line+1)
				continue
			}

			for _, f := range a.fieldsOf(p.Header) {
				values, err := a.refiner.Refine(f, p.Header, p.Value)
				if err != nil {
					diags = append(diags, diagnose(documentID, fmt.Errorf("page %d line %d: %w", n+1, p.Line+2, err)))
					continue
				}
				for _, v := range values {
					rec.Set(v.Field, v.Text)
				}
			}
		}
	}

	return rec, diags, nil
}

// pairs yields every header line of a page with the line after it. The
// sequence ends with ErrMissingValueLine when the last line is a header.
func (a *Assembler) pairs(lines []string) iter.Seq2[linePair, error] {
	return func(yield func(linePair, error) bool) {
		for i, line := range lines {
			header := a.matcher.Match(line)
			if !header.IsHeader() {
				continue
			}
			if i+1 == len(lines) {
				yield(linePair{Line: i, Header: header}, fmt.Errorf("line %d %q: %w", i+1, line, ErrMissingValueLine))
				return
			}
			if !yield(linePair{Line: i, Header: header, Value: lines[i+1]}, nil) {
				return
			}
		}
	}
}

// fieldsOf returns the distinct labels of a header in vocabulary order
func (a *Assembler) fieldsOf(header HeaderMatch) []Field {
	var fields []Field
	for _, f := range a.vocab.fields {
		if header.Index(f.Name) >= 0 {
			fields = append(fields, f)
		}
	}
	return fields
}

// placeholderRow reports whether a pair is an unused amount slot: the header
// is the amount label twice and the value line echoes the digit captions
func (a *Assembler) placeholderRow(p linePair) bool {
	amount, ok := a.vocab.byStrategy(StrategyAmount)
	if !ok {
		return false
	}
	return slices.Equal(p.Header.Titles(), []string{amount.Name, amount.Name}) && isPlaceholder(p.Value)
}
