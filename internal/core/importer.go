package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrUnknownBroker is returned when a caller names a schema that is not registered.
var ErrUnknownBroker = errors.New("unknown broker")

// FirstDataRow is the row number of the first data line; row 1 is the header.
const FirstDataRow = 2

// DefaultParallelThreshold is the row count from which a multi-worker
// Importer fans rows out.
const DefaultParallelThreshold = 500

// ImportOptions are the optional hints of one import run.
type ImportOptions struct {
	// Broker names the schema to use. Empty means detect from the header row.
	// An unknown key is reported as a run-level warning and detection is used.
	Broker string

	// Override is merged over the selected schema; every field it sets wins.
	Override *BrokerSchema
}

// Importer turns broker export text into validated positions.
// An Importer holds no per-run state and is safe for concurrent use.
type Importer struct {
	now               func() time.Time
	workers           int
	parallelThreshold int
	logger            *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer)

// WithClock sets the source of the processing instant.
func WithClock(now func() time.Time) Option {
	return func(im *Importer) {
		if now != nil {
			im.now = now
		}
	}
}

// WithWorkers sets how many goroutines process rows of large inputs.
// Values below 2 keep processing on the calling goroutine.
func WithWorkers(n int) Option {
	return func(im *Importer) {
		im.workers = n
	}
}

// WithParallelThreshold sets the row count from which rows are fanned out.
func WithParallelThreshold(n int) Option {
	return func(im *Importer) {
		if n > 0 {
			im.parallelThreshold = n
		}
	}
}

// WithLogger sets the logger used for run summaries.
func WithLogger(l *slog.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}

// NewImporter creates an Importer.
func NewImporter(opts ...Option) *Importer {
	im := &Importer{
		now:               time.Now,
		workers:           1,
		parallelThreshold: DefaultParallelThreshold,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImportPositions runs the pipeline with a default Importer.
func ImportPositions(text, broker string, override *BrokerSchema) *CSVImportResult {
	return NewImporter().Import(context.Background(), text, ImportOptions{Broker: broker, Override: override})
}

// Import runs the pipeline over text. It never fails: every problem is
// reported as a diagnostic in the result. ctx only carries logging context.
func (im *Importer) Import(ctx context.Context, text string, opts ImportOptions) *CSVImportResult {
	start := time.Now()
	now := im.now()

	result := &CSVImportResult{
		ImportID:  uuid.NewString(),
		Errors:    []ImportError{},
		Warnings:  []ImportWarning{},
		Positions: []ImportedPosition{},
	}

	logger := im.log().With("import_id", result.ImportID)
	if src := SourceFromContext(ctx); src != "" {
		logger = logger.With("source", src)
	}
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}

	headers, rows := TokenizeWithHeaders(text)
	if len(rows) == 0 {
		msg := "no data rows found"
		if len(headers) == 0 {
			msg = "empty input: no header row found"
		}
		result.Errors = append(result.Errors, ImportError{
			Row:      0,
			Message:  msg,
			Severity: SeverityError,
			Code:     CodeEmptyInput,
		})
		result.Summary = Summarize(nil)
		logger.Info("import rejected", "reason", msg)
		return result
	}

	schema := im.selectSchema(headers, opts, result)
	result.Broker = schema.Key
	result.TotalRows = len(rows)

	proc := newRowProcessor(schema, now)
	for _, rr := range im.processRows(proc, rows) {
		result.Errors = append(result.Errors, rr.Errors...)
		result.Warnings = append(result.Warnings, rr.Warnings...)
		if rr.Position != nil {
			result.Positions = append(result.Positions, *rr.Position)
		} else {
			logger.Debug("row rejected", "row", rr.Row, "errors", len(rr.Errors))
		}
	}

	result.ImportedRows = len(result.Positions)
	result.Success = result.ErrorCount() == 0
	result.Summary = Summarize(result.Positions)

	logger.Info("import completed",
		"broker", result.Broker,
		"total_rows", result.TotalRows,
		"imported_rows", result.ImportedRows,
		"errors", result.ErrorCount(),
		"warnings", len(result.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result
}

// selectSchema applies the precedence explicit key > detected > generic, then
// merges the caller's override.
func (im *Importer) selectSchema(headers []string, opts ImportOptions, result *CSVImportResult) BrokerSchema {
	var (
		schema BrokerSchema
		found  bool
	)

	if opts.Broker != "" {
		schema, found = Get(opts.Broker)
		if !found {
			result.Warnings = append(result.Warnings, ImportWarning{
				Row:     0,
				Message: fmt.Sprintf("%v %q, detecting from headers", ErrUnknownBroker, opts.Broker),
				Code:    CodeUnknownBroker,
			})
		}
	}
	if !found {
		schema, found = Get(Detect(headers))
	}
	if !found {
		schema = Generic()
	}

	return schema.Merge(opts.Override)
}

// processRows returns one RowResult per row, in input order. Large inputs are
// spread over the configured workers.
func (im *Importer) processRows(proc *rowProcessor, rows []RawRow) []RowResult {
	results := make([]RowResult, len(rows))

	if im.workers < 2 || len(rows) < im.parallelThreshold {
		for i, row := range rows {
			results[i] = safeProcess(proc, row, i+FirstDataRow)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(im.workers)
	for i, row := range rows {
		g.Go(func() error {
			results[i] = safeProcess(proc, row, i+FirstDataRow)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// safeProcess converts a panic while processing one row into a row error.
func safeProcess(proc *rowProcessor, row RawRow, rowNum int) (rr RowResult) {
	defer func() {
		if p := recover(); p != nil {
			rr = RowResult{
				Row: rowNum,
				Errors: []ImportError{{
					Row:      rowNum,
					Message:  fmt.Sprintf("unexpected error processing row: %v", p),
					Severity: SeverityError,
					Code:     CodeRowFailure,
				}},
			}
		}
	}()
	return proc.process(row, rowNum)
}

func (im *Importer) log() *slog.Logger {
	if im.logger != nil {
		return im.logger
	}
	return slog.Default()
}
