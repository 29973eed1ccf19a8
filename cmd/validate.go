// =============================================================================
// Purchase Order Exporter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which runs the read, validate and
// normalize stages and prints the resulting order. Nothing is written.
//
// COMMAND USAGE:
//   poexport validate <files...>
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/ginjaninja78/po-export/internal/converter"
	"github.com/ginjaninja78/po-export/internal/numeric"
	"github.com/ginjaninja78/po-export/internal/types"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <files...>",
	Short: "Check order spreadsheets and print the parsed orders",
	Long: `The validate command loads each spreadsheet, checks the required columns and
normalizes every row. The order table and its grand total are printed; no
export is written.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(ctx context.Context, out io.Writer, files []string) error {
	conv := newConverter()

	failed := 0
	for _, path := range files {
		result, err := conv.Run(ctx, path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s: %v\n\n", filepath.Base(path), err)
			continue
		}

		fmt.Fprintf(out, "✓ %s: %d item(s), %d row(s) read in %s\n",
			filepath.Base(path), result.Stats.LineItemsCreated, result.Stats.RowsRead, result.Stats.ProcessingTime)
		if err := printDocument(out, result.Document); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed validation", failed, len(files))
	}
	return nil
}

// printDocument writes the order table shown to the operator before export.
func printDocument(out io.Writer, doc *types.Document) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintln(w, "Linha\tProduto\tDescrição\tRef. Fabricante\tPreço\tQtde\tTotal\t")
	for _, item := range doc.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t\n",
			item.Row,
			item.ProductCode,
			item.Description,
			item.ManufacturerRef,
			numeric.FormatBRL(item.DisplayPrice()),
			item.Quantity,
			converter.DisplayTotal(item.Total),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "Total do pedido: %s\n", converter.DisplayTotal(doc.Total))
	return err
}
