package receipt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind separates single-valued fields from price columns
type Kind int

const (
	// Categorical fields hold exactly one string per record
	Categorical Kind = iota
	// Monetary fields hold an ordered list of strings, exploded into rows
	Monetary
)

func (k Kind) String() string {
	if k == Monetary {
		return "monetary"
	}
	return "categorical"
}

// Strategy names how a field value is pulled out of a header/value pair
type Strategy string

const (
	StrategyPositional     Strategy = "positional"
	StrategyTimestamp      Strategy = "timestamp"
	StrategyStoreName      Strategy = "store-name"
	StrategyRepresentative Strategy = "representative"
	StrategyAmount         Strategy = "amount"
	StrategyHeaderEmbedded Strategy = "header-embedded"
)

func (s Strategy) valid() bool {
	switch s {
	case StrategyPositional, StrategyTimestamp, StrategyStoreName,
		StrategyRepresentative, StrategyAmount, StrategyHeaderEmbedded:
		return true
	}
	return false
}

// Labels printed on the card receipts
const (
	DocumentColumn = "파일명"

	FieldApprovalNumber     = "승인번호"
	FieldCardType           = "카드종류"
	FieldCardNumber         = "카드번호"
	FieldPaidAt             = "결제일자"
	FieldStoreName          = "판매자 상호"
	FieldRepresentative     = "대표자명"
	FieldRegistrationNumber = "사업자등록번호"
	FieldRegistrationStatus = "사업자등록상태"

	FieldAmount = "금액"
	FieldTax    = "부가세"
	FieldTotal  = "합계"
)

// Field is one recognised header label
type Field struct {
	Name     string
	Kind     Kind
	Strategy Strategy
}

// Vocabulary is the ordered, immutable set of recognised labels.
// Categorical fields always precede monetary ones; the order is the
// match priority and the output column order.
type Vocabulary struct {
	fields []Field
	index  map[string]int
}

// NewVocabulary orders fields categorical-first (keeping declaration order
// within each kind) and validates them
func NewVocabulary(fields []Field) (*Vocabulary, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("vocabulary is empty")
	}

	ordered := make([]Field, 0, len(fields))
	for _, kind := range []Kind{Categorical, Monetary} {
		for _, f := range fields {
			if f.Kind == kind {
				ordered = append(ordered, f)
			}
		}
	}
	if len(ordered) != len(fields) {
		return nil, fmt.Errorf("vocabulary contains fields of unknown kind")
	}

	index := make(map[string]int, len(ordered))
	for i, f := range ordered {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d has no name", i)
		}
		if f.Name == DocumentColumn {
			return nil, fmt.Errorf("field name %q is reserved", f.Name)
		}
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field %q", f.Name)
		}
		if !f.Strategy.valid() {
			return nil, fmt.Errorf("field %q: unknown strategy %q", f.Name, f.Strategy)
		}
		index[f.Name] = i
	}

	return &Vocabulary{fields: ordered, index: index}, nil
}

// DefaultVocabulary returns the labels of the two-column card receipt template
func DefaultVocabulary() *Vocabulary {
	v, err := NewVocabulary([]Field{
		{Name: FieldApprovalNumber, Kind: Categorical, Strategy: StrategyPositional},
		{Name: FieldCardType, Kind: Categorical, Strategy: StrategyPositional},
		{Name: FieldCardNumber, Kind: Categorical, Strategy: StrategyPositional},
		{Name: FieldPaidAt, Kind: Categorical, Strategy: StrategyTimestamp},
		{Name: FieldStoreName, Kind: Categorical, Strategy: StrategyStoreName},
		{Name: FieldRepresentative, Kind: Categorical, Strategy: StrategyRepresentative},
		{Name: FieldRegistrationNumber, Kind: Categorical, Strategy: StrategyPositional},
		{Name: FieldRegistrationStatus, Kind: Categorical, Strategy: StrategyPositional},
		{Name: FieldAmount, Kind: Monetary, Strategy: StrategyAmount},
		{Name: FieldTax, Kind: Monetary, Strategy: StrategyHeaderEmbedded},
		{Name: FieldTotal, Kind: Monetary, Strategy: StrategyHeaderEmbedded},
	})
	if err != nil {
		panic(err)
	}
	return v
}

// vocabularyFile is the YAML shape accepted by LoadVocabulary
type vocabularyFile struct {
	Categorical []fieldEntry `yaml:"categorical"`
	Monetary    []fieldEntry `yaml:"monetary"`
}

type fieldEntry struct {
	Name     string `yaml:"name"`
	Strategy string `yaml:"strategy"`
}

// LoadVocabulary reads a vocabulary from a YAML file. Entries without a
// strategy default to positional (categorical) or header-embedded (monetary).
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary: %w", err)
	}

	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing vocabulary: %w", err)
	}

	fields := make([]Field, 0, len(file.Categorical)+len(file.Monetary))
	for _, e := range file.Categorical {
		fields = append(fields, e.field(Categorical, StrategyPositional))
	}
	for _, e := range file.Monetary {
		fields = append(fields, e.field(Monetary, StrategyHeaderEmbedded))
	}

	v, err := NewVocabulary(fields)
	if err != nil {
		return nil, fmt.Errorf("invalid vocabulary %s: %w", path, err)
	}
	return v, nil
}

func (e fieldEntry) field(kind Kind, fallback Strategy) Field {
	s := Strategy(e.Strategy)
	if s == "" {
		s = fallback
	}
	return Field{Name: e.Name, Kind: kind, Strategy: s}
}

// Fields returns the fields in priority order
func (v *Vocabulary) Fields() []Field {
	out := make([]Field, len(v.fields))
	copy(out, v.fields)
	return out
}

// Lookup returns the field with the given label
func (v *Vocabulary) Lookup(name string) (Field, bool) {
	i, ok := v.index[name]
	if !ok {
		return Field{}, false
	}
	return v.fields[i], true
}

// byStrategy returns the first field using s
func (v *Vocabulary) byStrategy(s Strategy) (Field, bool) {
	for _, f := range v.fields {
		if f.Strategy == s {
			return f, true
		}
	}
	return Field{}, false
}

// Monetary returns the monetary fields in declaration order
func (v *Vocabulary) Monetary() []Field {
	var out []Field
	for _, f := range v.fields {
		if f.Kind == Monetary {
			out = append(out, f)
		}
	}
	return out
}

// Columns returns the table header: document column, then every field
func (v *Vocabulary) Columns() []string {
	cols := make([]string, 0, len(v.fields)+1)
	cols = append(cols, DocumentColumn)
	for _, f := range v.fields {
		cols = append(cols, f.Name)
	}
	return cols
}
