// =============================================================================
// Purchase Order Exporter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the
// pipeline for a single uploaded spreadsheet, from the raw bytes to the
// in-memory order document.
//
// CONVERSION PIPELINE:
//   1. Decode the XLSX workbook (first sheet, first row is the header)
//   2. Check that every required column is present
//   3. Normalize each data row into a line item
//   4. Aggregate the line items into an order document
//
// Serialization is a separate step (see Session.Export) because it needs the
// operator's supplier and payment choices.
//
// CONCURRENCY:
//   A Converter holds no per-file state and can be shared. Each file is
//   processed synchronously by the caller.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ginjaninja78/po-export/internal/types"
	"github.com/ginjaninja78/po-export/internal/validation"
	"github.com/ginjaninja78/po-export/internal/xlsxparser"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Document is the order built from the file. Nil if processing failed.
	Document *types.Document

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// RowsRead is the number of data rows read from the sheet.
	RowsRead int

	// LineItemsCreated is the number of line items in the document.
	LineItemsCreated int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Logger is the logging interface used by the pipeline. *slog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Converter runs the read, validate, normalize and aggregate stages.
type Converter struct {
	required []string
	maxSize  int64
	logger   Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRequiredColumns overrides the required header list.
func WithRequiredColumns(columns []string) Option {
	return func(c *Converter) { c.required = columns }
}

// WithMaxSize caps the number of bytes read from an input file.
// Default: xlsxparser.DefaultMaxSize.
func WithMaxSize(n int64) Option {
	return func(c *Converter) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
func New(opts ...Option) *Converter {
	c := &Converter{
		required: validation.RequiredColumns,
		maxSize:  xlsxparser.DefaultMaxSize,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxSize returns the configured input size limit.
func (c *Converter) MaxSize() int64 { return c.maxSize }

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run executes the pipeline for a file on disk.
//
// RETURNS:
//   - A Result with the document and statistics.
//   - The first stage error, wrapped with the stage name. The error chain
//     keeps the typed error (DecodeError, SchemaError, NormalizationError)
//     for errors.As.
func (c *Converter) Run(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	result := Result{FilePath: path}

	c.logger.Info("processing file", "file", path)

	sheet, err := xlsxparser.ReadFileLimit(ctx, path, c.maxSize)
	if err != nil {
		return result, fmt.Errorf("failed to read workbook: %w", err)
	}

	doc, err := c.Build(sheet)
	if err != nil {
		return result, err
	}

	result.Document = doc
	result.Stats = ProcessingStats{
		RowsRead:         len(sheet.Rows),
		LineItemsCreated: doc.Len(),
		ProcessingTime:   time.Since(start),
	}

	c.logger.Info("file processed",
		"file", path,
		"items", doc.Len(),
		"total", doc.Total.StringFixed(2),
		"duration", result.Stats.ProcessingTime)

	return result, nil
}

// Load executes the pipeline on an in-memory workbook.
func (c *Converter) Load(data []byte) (*types.Document, error) {
	sheet, err := xlsxparser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	return c.Build(sheet)
}

// Build runs validation, normalization and aggregation on a decoded sheet.
func (c *Converter) Build(sheet *xlsxparser.Sheet) (*types.Document, error) {
	c.logger.Debug("sheet decoded", "sheet", sheet.Name, "rows", len(sheet.Rows))

	if err := validation.Validate(sheet.Rows, c.required); err != nil {
		c.logger.Warn("schema validation failed", "sheet", sheet.Name, "error", err)
		return nil, fmt.Errorf("invalid spreadsheet: %w", err)
	}

	items, err := Normalize(sheet.Rows, sheet.RowNumbers)
	if err != nil {
		c.logger.Warn("normalization failed", "sheet", sheet.Name, "error", err)
		return nil, fmt.Errorf("invalid spreadsheet: %w", err)
	}

	doc := Aggregate(items)
	c.logger.Debug("document built", "items", doc.Len(), "total", doc.Total.String())
	return doc, nil
}
