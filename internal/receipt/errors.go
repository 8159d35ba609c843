package receipt

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingValueLine is returned when a header line has no following line
	ErrMissingValueLine = errors.New("header line has no value line")
	// ErrFieldCountMismatch is returned when monetary fields disagree on their value count
	ErrFieldCountMismatch = errors.New("monetary fields hold different value counts")
	// ErrNoTimestamp is returned when a value line holds no payment timestamp
	ErrNoTimestamp = errors.New("no timestamp found")
	// ErrNoAmount is returned when an amount value line is empty after splitting
	ErrNoAmount = errors.New("no amount found")
	// ErrNoToken is returned when the value line has no token at the label's position
	ErrNoToken = errors.New("no token at label position")
)

// DiagnosticType classifies a per-document problem
type DiagnosticType string

const (
	MissingValueLine   DiagnosticType = "MissingValueLine"
	FieldCountMismatch DiagnosticType = "FieldCountMismatch"
	RefinementFailure  DiagnosticType = "RefinementFailure"
	LookupFailure      DiagnosticType = "LookupFailure"
	ExtractionFailure  DiagnosticType = "ExtractionFailure"
	InvalidDocument    DiagnosticType = "InvalidDocument"
)

// Diagnostic is one itemised failure tied to a document
type Diagnostic struct {
	DocumentID string
	Type       DiagnosticType
	Reason     string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.DocumentID, d.Type, d.Reason)
}

// diagnose maps an error onto its diagnostic type
func diagnose(documentID string, err error) Diagnostic {
	t := RefinementFailure
	switch {
	case errors.Is(err, ErrMissingValueLine):
		t = MissingValueLine
	case errors.Is(err, ErrFieldCountMismatch):
		t = FieldCountMismatch
	}
	return Diagnostic{DocumentID: documentID, Type: t, Reason: err.Error()}
}
