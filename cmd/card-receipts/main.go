package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/card-receipts/internal/batch"
	"github.com/zombor/card-receipts/internal/export"
	"github.com/zombor/card-receipts/internal/extraction"
	"github.com/zombor/card-receipts/internal/receipt"
	"github.com/zombor/card-receipts/internal/registry"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("card-receipts")
	var (
		pdfDir        = fs.StringLong("pdf-dir", "", "Directory holding the receipt PDFs (required)")
		csvDir        = fs.StringLong("csv-dir", ".", "Directory the results are written to")
		label         = fs.StringLong("label", time.Now().Format("060102"), "Run label used as the output file name")
		exts          = fs.StringLong("ext", "pdf", "Comma separated input file extensions")
		columns       = fs.IntLong("columns", 2, "Receipts printed side by side on a page")
		extractorType = fs.StringLong("extractor", "pdf", "Text extractor: 'pdf' or 'fitz' (fitz needs --columns 1)")
		skipValidate  = fs.BoolLong("skip-validation", "Read each PDF without validating it first")
		vocabPath     = fs.StringLong("vocabulary", "", "YAML file overriding the field vocabulary (optional)")
		writeXLSX     = fs.BoolLong("xlsx", "Also write an .xlsx workbook")
		noLookup      = fs.BoolLong("no-lookup", "Leave business registration statuses empty")
		lookupURL     = fs.StringLong("lookup-url", registry.DefaultURL, "Registration status inquiry URL")
		lookupBody    = fs.StringLong("lookup-body", registry.DefaultBody, "Inquiry request body; {CRN} is replaced by the number")
		lookupWorkers = fs.IntLong("lookup-workers", 1, "Concurrent registration lookups")
		lookupDelay   = fs.DurationLong("lookup-delay", registry.DefaultDelay, "Minimum delay between the requests of one worker")
		lookupTimeout = fs.DurationLong("lookup-timeout", registry.DefaultTimeout, "Timeout of a single lookup")
		cachePath     = fs.StringLong("cache", "", "BoltDB file caching registration statuses (optional)")
		verbose       = fs.BoolLong("verbose", "Log debug output")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("CARD_RECEIPTS"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("run", uuid.NewString()))

	if *pdfDir == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: --pdf-dir is required\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, config{
		pdfDir:         *pdfDir,
		csvDir:         *csvDir,
		label:          *label,
		exts:           strings.Split(*exts, ","),
		columns:        *columns,
		extractor:      *extractorType,
		skipValidation: *skipValidate,
		vocabulary:     *vocabPath,
		xlsx:           *writeXLSX,
		noLookup:       *noLookup,
		lookupURL:      *lookupURL,
		lookupBody:     *lookupBody,
		lookupWorkers:  *lookupWorkers,
		lookupDelay:    *lookupDelay,
		lookupTimeout:  *lookupTimeout,
		cachePath:      *cachePath,
	})
	if err != nil {
		slog.Error("Run failed", "error", err)
		stop()
		os.Exit(1)
	}
}

type config struct {
	pdfDir         string
	csvDir         string
	label          string
	exts           []string
	columns        int
	extractor      string
	skipValidation bool
	vocabulary     string
	xlsx           bool
	noLookup       bool
	lookupURL      string
	lookupBody     string
	lookupWorkers  int
	lookupDelay    time.Duration
	lookupTimeout  time.Duration
	cachePath      string
}

// run processes every document under cfg.pdfDir and writes the results.
// Everything it opens is closed before it returns.
func run(ctx context.Context, cfg config) error {
	paths, err := batch.Discover(cfg.pdfDir, cfg.exts)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("input directory %s does not exist", cfg.pdfDir)
	}
	if err != nil {
		return fmt.Errorf("listing input documents: %w", err)
	}
	slog.Info("Found documents", "dir", cfg.pdfDir, "count", len(paths), "version", version)

	vocab := receipt.DefaultVocabulary()
	if cfg.vocabulary != "" {
		vocab, err = receipt.LoadVocabulary(cfg.vocabulary)
		if err != nil {
			return fmt.Errorf("loading vocabulary: %w", err)
		}
	}

	var extractor extraction.Extractor
	switch cfg.extractor {
	case "pdf":
		extractor = extraction.NewPDF(extraction.DefaultTolerance)
	case "fitz":
		if cfg.columns != 1 {
			return fmt.Errorf("the fitz extractor reads whole pages only, got --columns %d", cfg.columns)
		}
		extractor = extraction.NewFitz()
	default:
		return fmt.Errorf("invalid extractor type %q, want pdf or fitz", cfg.extractor)
	}

	var resolver batch.Lookup
	if !cfg.noLookup {
		var cache *registry.Cache
		if cfg.cachePath != "" {
			cache, err = registry.OpenCache(cfg.cachePath)
			if err != nil {
				return fmt.Errorf("opening status cache: %w", err)
			}
			defer cache.Close()
		}

		pool := registry.NewPool(cfg.lookupWorkers, cfg.lookupDelay,
			registry.HometaxSessions(cfg.lookupURL, cfg.lookupBody, cfg.lookupTimeout))
		resolver = registry.NewResolver(pool, cache)
	}

	store, err := export.NewLocalStorage(cfg.csvDir)
	if err != nil {
		return fmt.Errorf("initializing output directory: %w", err)
	}

	service := batch.NewService(vocab, extractor, resolver, store, batch.Options{
		Regions:  extraction.Columns(cfg.columns),
		Validate: !cfg.skipValidation,
		XLSX:     cfg.xlsx,
	})

	result, err := service.Run(ctx, paths)
	if err != nil {
		return err
	}

	for _, d := range result.Diagnostics {
		slog.Warn("Diagnostic", "document", d.DocumentID, "type", d.Type, "reason", d.Reason)
	}

	written, err := service.Write(cfg.label, result)
	if err != nil {
		return err
	}

	slog.Info("Results saved",
		"files", written,
		"documents", result.Documents,
		"rows", len(result.Rows),
		"diagnostics", len(result.Diagnostics),
	)
	return nil
}
