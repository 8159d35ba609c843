package receipt

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Segment is one piece of a split header line. Field is nil for text
// between labels.
type Segment struct {
	Text   string
	Offset int
	Field  *Field
}

// HeaderMatch is a line split around the vocabulary labels it contains
type HeaderMatch struct {
	Line     string
	Segments []Segment
}

// IsHeader reports whether the line contained at least one label
func (h HeaderMatch) IsHeader() bool {
	for _, s := range h.Segments {
		if s.Field != nil {
			return true
		}
	}
	return false
}

// Titles returns the text of every surviving segment, labels and filler alike
func (h HeaderMatch) Titles() []string {
	titles := make([]string, len(h.Segments))
	for i, s := range h.Segments {
		titles[i] = s.Text
	}
	return titles
}

// Fields returns the matched labels in left-to-right order
func (h HeaderMatch) Fields() []Field {
	var fields []Field
	for _, s := range h.Segments {
		if s.Field != nil {
			fields = append(fields, *s.Field)
		}
	}
	return fields
}

// Index returns the segment position of the first occurrence of name, or -1
func (h HeaderMatch) Index(name string) int {
	for i, s := range h.Segments {
		if s.Field != nil && s.Field.Name == name {
			return i
		}
	}
	return -1
}

// Last returns the text of the final segment
func (h HeaderMatch) Last() string {
	if len(h.Segments) == 0 {
		return ""
	}
	return h.Segments[len(h.Segments)-1].Text
}

// Matcher splits lines on the vocabulary labels
type Matcher struct {
	vocab   *Vocabulary
	pattern *regexp.Regexp
}

// NewMatcher builds one alternation over the vocabulary in priority order.
// Go's alternation is leftmost-first, so an earlier label wins over a later
// one starting at the same position.
func NewMatcher(vocab *Vocabulary) *Matcher {
	names := make([]string, 0, len(vocab.fields))
	for _, f := range vocab.fields {
		names = append(names, regexp.QuoteMeta(f.Name))
	}
	return &Matcher{
		vocab:   vocab,
		pattern: regexp.MustCompile(strings.Join(names, "|")),
	}
}

// Match splits line into segments, keeping labels as their own segments and
// dropping pieces of one rune or less. A line without labels yields an empty match.
func (m *Matcher) Match(line string) HeaderMatch {
	match := HeaderMatch{Line: line}

	locs := m.pattern.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return match
	}

	add := func(start, end int, field *Field) {
		text := line[start:end]
		if utf8.RuneCountInString(text) <= 1 {
			return
		}
		match.Segments = append(match.Segments, Segment{Text: text, Offset: start, Field: field})
	}

	prev := 0
	for _, loc := range locs {
		add(prev, loc[0], nil)
		f, _ := m.vocab.Lookup(line[loc[0]:loc[1]])
		add(loc[0], loc[1], &f)
		prev = loc[1]
	}
	add(prev, len(line), nil)

	return match
}
