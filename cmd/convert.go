// =============================================================================
// Purchase Order Exporter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which turns order spreadsheets into
// ERP import files.
//
// COMMAND USAGE:
//   poexport convert [files...] --supplier CODE [flags]
//
// FLAGS:
//   --supplier       : Supplier code, looked up in the supplier directory
//   --payment-terms  : Override the supplier's default payment terms
//   --class          : Purchase class (STOCK, FULL or BACKORDER)
//   --variant        : Output format (semicolon or comma)
//   --output-dir     : Override output_dir from the configuration
//   --dry-run        : Run the pipeline without writing anything
//   --archive        : Move each spreadsheet to input_archive_dir after export
//
// PROCESSING PIPELINE:
//   1. Resolve the supplier and the export metadata
//   2. Collect the files (arguments, or every .xlsx in input_dir)
//   3. For each file, in order:
//      a. Load the workbook into a session
//      b. Apply supplier, payment terms and purchase class
//      c. Serialize the order
//      d. Write <name>.csv to the output directory
//      e. Archive the spreadsheet when archiving is on
//   4. Write an error log for the failed files and print a summary
//
// A failed file does not stop the others. The command exits non-zero when any
// file failed.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/po-export/internal/converter"
	"github.com/ginjaninja78/po-export/internal/csvwriter"
	"github.com/ginjaninja78/po-export/internal/supplier"
	"github.com/ginjaninja78/po-export/internal/types"
	"github.com/ginjaninja78/po-export/internal/validation"
	"github.com/ginjaninja78/po-export/internal/xlsxparser"
	"github.com/ginjaninja78/po-export/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var convertFlags struct {
	supplier     string
	paymentTerms string
	class        string
	variant      string
	outputDir    string
	dryRun       bool
	archive      bool
}

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert order spreadsheets into ERP import files",
	Long: `The convert command reads each spreadsheet, builds the order and writes the
ERP import file next to the other exports in the output directory. Without
arguments every .xlsx file in input_dir is converted.

The supplier is looked up in the configured supplier directory. Its default
payment terms are used unless --payment-terms is given.

On success:
  - <name>.csv is written to the output directory
  - The spreadsheet is moved to the input archive when archiving is on

On error:
  - An error log is created in the output directory
  - The spreadsheet stays where it is
  - Processing continues with the next file`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringVar(&convertFlags.supplier, "supplier", "", "Supplier code (required)")
	flags.StringVar(&convertFlags.paymentTerms, "payment-terms", "", "Payment terms; defaults to the supplier's terms")
	flags.StringVar(&convertFlags.class, "class", "STOCK", "Purchase class: STOCK, FULL or BACKORDER")
	flags.StringVar(&convertFlags.variant, "variant", "", "Output format: semicolon or comma (default from config)")
	flags.StringVar(&convertFlags.outputDir, "output-dir", "", "Output directory (default from config)")
	flags.BoolVar(&convertFlags.dryRun, "dry-run", false, "Run the pipeline without writing output files")
	flags.BoolVar(&convertFlags.archive, "archive", false, "Archive spreadsheets after a successful export")
	convertCmd.MarkFlagRequired("supplier")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// convertJob is the export metadata shared by every file of one run.
type convertJob struct {
	supplier *types.Supplier
	terms    string
	class    types.PurchaseClass
	options  csvwriter.Options
}

func runConvert(ctx context.Context, out io.Writer, args []string) error {
	startTime := time.Now()

	job, err := resolveJob(ctx)
	if err != nil {
		return err
	}

	outputDir := appConfig.OutputDir
	if convertFlags.outputDir != "" {
		outputDir = convertFlags.outputDir
	}
	fm := utils.NewFileManager(appConfig.InputDir, outputDir, appConfig.InputArchiveDir)
	fm.ArchiveOnSuccess = (appConfig.ArchiveOnSuccess || convertFlags.archive) && !convertFlags.dryRun

	files := args
	if len(files) == 0 {
		files, err = fm.DiscoverInputFiles()
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintf(out, "No .xlsx files found in %s.\n", fm.InputDir)
			return nil
		}
	}

	if !convertFlags.dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "Converting %d file(s) for supplier %s (%s, %s)\n",
		len(files), job.supplier.Code, job.class.Literal(), job.options.Variant)

	conv := newConverter()
	var failures []utils.ErrorLogEntry

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		written, err := convertFile(ctx, conv, fm, job, path)
		if err != nil {
			failures = append(failures, errorLogEntry(path, err))
			fmt.Fprintf(out, "  ✗ %s: %v\n", filepath.Base(path), err)
			continue
		}
		fmt.Fprintf(out, "  ✓ %s -> %s\n", filepath.Base(path), written)
	}

	// =========================================================================
	// SUMMARY
	// =========================================================================

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", len(files))
	fmt.Fprintf(out, "Successful:      %d\n", len(files)-len(failures))
	fmt.Fprintf(out, "Errors:          %d\n", len(failures))
	fmt.Fprintf(out, "Time elapsed:    %s\n", time.Since(startTime).Round(time.Millisecond))

	if len(failures) == 0 {
		return nil
	}

	if !convertFlags.dryRun {
		logPath, err := fm.WriteErrorLog(failures)
		if err != nil {
			logger.Error("failed to write error log", "error", err)
		} else {
			fmt.Fprintf(out, "\nErrors have been logged to %s\n", logPath)
		}
	}
	return fmt.Errorf("%d of %d file(s) failed", len(failures), len(files))
}

// resolveJob looks up the supplier and checks the flags before any file is
// read.
func resolveJob(ctx context.Context) (convertJob, error) {
	var job convertJob

	class, err := types.ParsePurchaseClass(convertFlags.class)
	if err != nil {
		return job, err
	}
	job.class = class

	job.options = appConfig.ExportOptions()
	if convertFlags.variant != "" {
		variant, err := csvwriter.ParseVariant(convertFlags.variant)
		if err != nil {
			return job, err
		}
		job.options.Variant = variant
	}

	dir, closeDir, err := supplier.Open(ctx, appConfig.Suppliers)
	if err != nil {
		return job, fmt.Errorf("failed to open supplier directory: %w", err)
	}
	defer closeDir()

	sup, err := dir.Lookup(ctx, convertFlags.supplier)
	if err != nil {
		return job, fmt.Errorf("supplier %q: %w", convertFlags.supplier, err)
	}
	job.supplier = sup

	job.terms = sup.PaymentTerms
	if strings.TrimSpace(convertFlags.paymentTerms) != "" {
		job.terms = convertFlags.paymentTerms
	}
	if strings.TrimSpace(job.terms) == "" {
		return job, fmt.Errorf("supplier %s has no default payment terms; use --payment-terms", sup.Code)
	}

	return job, nil
}

// convertFile runs one spreadsheet through a fresh session and returns where
// the export went.
func convertFile(ctx context.Context, conv *converter.Converter, fm *utils.FileManager, job convertJob, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	session := converter.NewSession(conv, job.options)
	if err := session.Load(ctx, filepath.Base(path), f); err != nil {
		return "", err
	}
	session.SelectSupplier(job.supplier)
	session.SetPaymentTerms(job.terms)
	session.SetPurchaseClass(job.class)

	export, err := session.Export()
	if err != nil {
		return "", err
	}

	if convertFlags.dryRun {
		return export.FileName + " (dry run)", nil
	}

	written, err := fm.WriteOutput(export.FileName, export.Data)
	if err != nil {
		return "", err
	}

	// Close before archiving so the move works on every platform.
	f.Close()
	if _, err := fm.ArchiveInputFile(path); err != nil {
		logger.Warn("failed to archive input file", "file", path, "error", err)
	}
	return written, nil
}

// errorLogEntry classifies a failure for the error log.
func errorLogEntry(path string, err error) utils.ErrorLogEntry {
	entry := utils.ErrorLogEntry{
		Timestamp:    time.Now(),
		FileName:     filepath.Base(path),
		ErrorType:    "processing",
		ErrorMessage: err.Error(),
	}

	var (
		schemaErr *validation.SchemaError
		normErr   *converter.NormalizationError
		serErr    *csvwriter.SerializationError
		decodeErr *xlsxparser.DecodeError
	)
	switch {
	case errors.As(err, &schemaErr):
		entry.ErrorType = "schema"
		entry.FieldName = strings.Join(schemaErr.Missing, ", ")
	case errors.As(err, &normErr):
		entry.ErrorType = "normalization"
		entry.RowNumber = normErr.Row
		entry.FieldName = normErr.Column
		entry.FieldValue = normErr.Value
	case errors.As(err, &serErr):
		entry.ErrorType = "serialization"
		entry.RowNumber = serErr.Row
	case errors.As(err, &decodeErr), errors.Is(err, xlsxparser.ErrEmptyData), errors.Is(err, xlsxparser.ErrTooLarge):
		entry.ErrorType = "decode"
	}
	return entry
}
