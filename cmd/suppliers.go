package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ginjaninja78/po-export/internal/supplier"
	"github.com/spf13/cobra"
)

var suppliersCmd = &cobra.Command{
	Use:   "suppliers <term>",
	Short: "Search the supplier directory by name or code",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dir, closeDir, err := supplier.Open(ctx, appConfig.Suppliers)
		if err != nil {
			return fmt.Errorf("failed to open supplier directory: %w", err)
		}
		defer closeDir()

		matches, err := dir.Search(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintln(out, "No suppliers found.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CODIGO\tRAZAO SOCIAL\tCOND. PAGTO")
		for _, s := range matches {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Code, s.Name, s.PaymentTerms)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(suppliersCmd)
}
