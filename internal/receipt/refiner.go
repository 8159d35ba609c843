package receipt

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	nbsp = "\u00a0"

	// placeholder is the digit-place caption ("백 천 원") echoed twice by an
	// unused amount slot in the template
	placeholder = "백천원백천원"

	// representativeRunes is the width of a representative name when the
	// value line carries no comma
	representativeRunes = 3
)

var timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}`)

// Value is one extracted field value
type Value struct {
	Field Field
	Text  string
}

// Refiner extracts field values from header/value line pairs
type Refiner struct {
	vocab *Vocabulary
}

// NewRefiner creates a Refiner for vocab
func NewRefiner(vocab *Vocabulary) *Refiner {
	return &Refiner{vocab: vocab}
}

// Refine extracts the value of field. Store and representative names come
// out of the same split, so either label yields both values.
func (r *Refiner) Refine(field Field, header HeaderMatch, valueLine string) ([]Value, error) {
	switch field.Strategy {
	case StrategyTimestamp:
		ts := timestampPattern.FindString(valueLine)
		if ts == "" {
			return nil, fmt.Errorf("%s: %w", field.Name, ErrNoTimestamp)
		}
		return []Value{{Field: field, Text: ts}}, nil

	case StrategyStoreName, StrategyRepresentative:
		store, representative := splitNames(valueLine)
		var values []Value
		if f, ok := r.vocab.byStrategy(StrategyStoreName); ok {
			values = append(values, Value{Field: f, Text: store})
		}
		if f, ok := r.vocab.byStrategy(StrategyRepresentative); ok {
			values = append(values, Value{Field: f, Text: representative})
		}
		return values, nil

	case StrategyAmount:
		segments := amountSegments(valueLine)
		if len(segments) == 0 {
			return nil, fmt.Errorf("%s: %w", field.Name, ErrNoAmount)
		}
		return []Value{{Field: field, Text: segments[0]}}, nil

	case StrategyHeaderEmbedded:
		return []Value{{Field: field, Text: strings.ReplaceAll(header.Last(), " ", "")}}, nil

	default:
		idx := header.Index(field.Name)
		tokens := strings.Split(valueLine, " ")
		if idx < 0 || idx >= len(tokens) {
			return nil, fmt.Errorf("%s at segment %d of %d tokens: %w", field.Name, idx, len(tokens), ErrNoToken)
		}
		return []Value{{Field: field, Text: tokens[idx]}}, nil
	}
}

// amountSegments drops spaces and splits on non-breaking spaces, keeping the
// non-empty pieces
func amountSegments(line string) []string {
	var segments []string
	for _, s := range strings.Split(strings.ReplaceAll(line, " ", ""), nbsp) {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// isPlaceholder reports whether the value line is the echoed amount caption
func isPlaceholder(line string) bool {
	return strings.Join(amountSegments(line), "") == placeholder
}

// splitNames separates the store name from the representative name(s).
// With commas, the trailing comma-count-plus-one tokens are representatives
// (at least one token stays with the store). Without, the last three runes are.
func splitNames(text string) (store, representative string) {
	text = strings.TrimSpace(text)

	if commas := strings.Count(text, ","); commas > 0 {
		tokens := strings.Split(text, " ")
		n := min(commas+1, len(tokens)-1)
		if n < 1 {
			n = 1
		}
		head := tokens[:len(tokens)-n]
		start := len(strings.Join(head, " "))
		store = strings.TrimSpace(text[:start])
		representative = strings.ReplaceAll(strings.Join(tokens[len(tokens)-n:], " "), ",", "")
		return store, representative
	}

	runes := []rune(text)
	if len(runes) <= representativeRunes {
		return "", text
	}
	cut := len(runes) - representativeRunes
	return strings.TrimSpace(string(runes[:cut])), string(runes[cut:])
}
