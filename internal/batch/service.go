package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/zombor/card-receipts/internal/export"
	"github.com/zombor/card-receipts/internal/extraction"
	"github.com/zombor/card-receipts/internal/receipt"
	"github.com/zombor/card-receipts/internal/registry"
)

// Lookup resolves registration numbers to their statuses
type Lookup interface {
	Resolve(ctx context.Context, numbers []string) (map[string]registry.Result, error)
}

// Validator checks a document before it is opened
type Validator func(path string) error

// Options tune a Service
type Options struct {
	// Regions are the page strips read as separate receipts
	Regions []extraction.Region
	// Validate runs a structural check on each document first
	Validate bool
	// XLSX also writes a workbook next to the CSV
	XLSX bool
}

// Result is the outcome of a run
type Result struct {
	Documents   int
	Rows        []receipt.Row
	Diagnostics []receipt.Diagnostic
}

// Service turns a batch of receipt documents into table rows
type Service struct {
	extractor extraction.Extractor
	assembler *receipt.Assembler
	table     *receipt.Table
	lookup    Lookup
	storage   export.Storage
	validator Validator
	regions   []extraction.Region
	xlsx      bool
}

// NewService creates a Service. lookup may be nil to skip enrichment.
func NewService(vocab *receipt.Vocabulary, extractor extraction.Extractor, lookup Lookup, storage export.Storage, opts Options) *Service {
	var validator Validator
	if opts.Validate {
		validator = extraction.Validate
	}
	return NewServiceWithDeps(vocab, extractor, lookup, storage, validator, opts)
}

// NewServiceWithDeps creates a Service with a custom validator
func NewServiceWithDeps(vocab *receipt.Vocabulary, extractor extraction.Extractor, lookup Lookup, storage export.Storage, validator Validator, opts Options) *Service {
	regions := opts.Regions
	if len(regions) == 0 {
		regions = []extraction.Region{extraction.FullPage}
	}

	return &Service{
		extractor: extractor,
		assembler: receipt.NewAssembler(vocab),
		table:     receipt.NewTable(vocab),
		lookup:    lookup,
		storage:   storage,
		validator: validator,
		regions:   regions,
		xlsx:      opts.XLSX,
	}
}

// Table returns the table rows are laid out in
func (s *Service) Table() *receipt.Table {
	return s.table
}

// Run processes paths in order. A failing document is reported as a
// diagnostic and never stops the batch; only a cancelled ctx does.
func (s *Service) Run(ctx context.Context, paths []string) (*Result, error) {
	var (
		records []*receipt.Record
		diags   []receipt.Diagnostic
	)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		recs, d := s.process(path)
		records = append(records, recs...)
		diags = append(diags, d...)

		slog.Info("Document processed",
			"document", filepath.Base(path),
			"index", i+1,
			"total", len(paths),
			"records", len(recs),
			"diagnostics", len(d),
		)
	}

	rows, d := s.table.Expand(records...)
	diags = append(diags, d...)

	rows, d, err := s.enrich(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("looking up registration statuses: %w", err)
	}
	diags = append(diags, d...)

	return &Result{Documents: len(paths), Rows: rows, Diagnostics: diags}, nil
}

// process reads every region of one document. Halves too sparse to be a
// receipt are dropped; a missing value line drops the whole document.
func (s *Service) process(path string) ([]*receipt.Record, []receipt.Diagnostic) {
	id := filepath.Base(path)

	if s.validator != nil {
		if err := s.validator(path); err != nil {
			slog.Warn("Skipping invalid document", "document", id, "error", err)
			return nil, []receipt.Diagnostic{{DocumentID: id, Type: receipt.InvalidDocument, Reason: err.Error()}}
		}
	}

	doc, err := s.extractor.Open(path)
	if err != nil {
		slog.Warn("Failed to open document", "document", id, "error", err)
		return nil, []receipt.Diagnostic{{DocumentID: id, Type: receipt.ExtractionFailure, Reason: err.Error()}}
	}
	defer doc.Close()

	var (
		records []*receipt.Record
		diags   []receipt.Diagnostic
	)
	for _, region := range s.regions {
		pages := make([][]string, 0, doc.NumPage())
		for p := range doc.NumPage() {
			lines, err := doc.Lines(p, region)
			if err != nil {
				slog.Warn("Failed to extract text", "document", id, "page", p+1, "error", err)
				return nil, append(diags, receipt.Diagnostic{DocumentID: id, Type: receipt.ExtractionFailure, Reason: err.Error()})
			}
			pages = append(pages, lines)
		}

		rec, d, err := s.assembler.Assemble(id, pages...)
		diags = append(diags, d...)
		if err != nil {
			slog.Warn("Dropping document", "document", id, "error", err)
			return nil, diags
		}

		if rec.Blank() {
			slog.Debug("Skipping blank region", "document", id, "region", region.Index+1)
			continue
		}
		records = append(records, rec)
	}

	return records, diags
}

// enrich fills the registration status column of every row whose number
// could be looked up
func (s *Service) enrich(ctx context.Context, rows []receipt.Row) ([]receipt.Row, []receipt.Diagnostic, error) {
	if s.lookup == nil ||
		!s.table.HasColumn(receipt.FieldRegistrationNumber) ||
		!s.table.HasColumn(receipt.FieldRegistrationStatus) {
		return rows, nil, nil
	}

	numbers := make([]string, 0, len(rows))
	for _, row := range rows {
		numbers = append(numbers, s.table.Get(row, receipt.FieldRegistrationNumber))
	}

	results, err := s.lookup.Resolve(ctx, numbers)
	if err != nil {
		return nil, nil, err
	}

	var (
		diags    []receipt.Diagnostic
		reported = make(map[string]bool)
	)
	out := make([]receipt.Row, len(rows))
	for i, row := range rows {
		out[i] = row

		res, ok := results[s.table.Get(row, receipt.FieldRegistrationNumber)]
		if !ok {
			continue
		}

		if res.Err != nil {
			id := s.table.Get(row, receipt.DocumentColumn)
			if key := id + "\x00" + res.Number; !reported[key] {
				reported[key] = true
				diags = append(diags, receipt.Diagnostic{
					DocumentID: id,
					Type:       receipt.LookupFailure,
					Reason:     fmt.Sprintf("%s: %v", res.Number, res.Err),
				})
			}
		}
		out[i] = s.table.With(row, receipt.FieldRegistrationStatus, res.Status)
	}

	return out, diags, nil
}

// receiptSheet names the workbook sheet. Labels are file names and may not
// be valid sheet names.
const receiptSheet = "receipts"

// Write stores the rows as <label>.csv, and <label>.xlsx when enabled, plus
// <label>.diagnostics.csv when there are diagnostics. It returns the paths
// written.
func (s *Service) Write(label string, res *Result) ([]string, error) {
	rows := make([][]string, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = r.Cells()
	}
	sheet := export.Sheet{Name: receiptSheet, Header: s.table.Columns(), Rows: rows}

	var paths []string
	data, err := sheet.CSV()
	if err != nil {
		return nil, fmt.Errorf("encoding CSV: %w", err)
	}
	path, err := s.storage.Save(label+".csv", data)
	if err != nil {
		return nil, fmt.Errorf("saving CSV: %w", err)
	}
	paths = append(paths, path)

	if s.xlsx {
		data, err := sheet.XLSX()
		if err != nil {
			return nil, fmt.Errorf("encoding workbook: %w", err)
		}
		path, err := s.storage.Save(label+".xlsx", data)
		if err != nil {
			return nil, fmt.Errorf("saving workbook: %w", err)
		}
		paths = append(paths, path)
	}

	diagName := label + ".diagnostics.csv"
	if len(res.Diagnostics) == 0 {
		// a report from an earlier run with the same label would be stale
		if err := s.storage.Delete(diagName); err != nil {
			return nil, fmt.Errorf("removing old diagnostics: %w", err)
		}
		return paths, nil
	}

	data, err = diagnosticSheet(res.Diagnostics).CSV()
	if err != nil {
		return nil, fmt.Errorf("encoding diagnostics: %w", err)
	}
	path, err = s.storage.Save(diagName, data)
	if err != nil {
		return nil, fmt.Errorf("saving diagnostics: %w", err)
	}
	return append(paths, path), nil
}

func diagnosticSheet(diags []receipt.Diagnostic) export.Sheet {
	rows := make([][]string, len(diags))
	for i, d := range diags {
		rows[i] = []string{d.DocumentID, string(d.Type), d.Reason}
	}
	return export.Sheet{Name: "diagnostics", Header: []string{"document", "type", "reason"}, Rows: rows}
}
