// =============================================================================
// Purchase Order Exporter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (poexport)
//   ├── convertCmd   (poexport convert)
//   ├── validateCmd  (poexport validate)
//   ├── suppliersCmd (poexport suppliers)
//   ├── serveCmd     (poexport serve)
//   └── versionCmd   (poexport version)
//
// Before any subcommand runs, the root command loads .env, the YAML
// configuration and the logger. The results are kept in appConfig and logger.
//
// =============================================================================

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ginjaninja78/po-export/internal/config"
	"github.com/ginjaninja78/po-export/internal/converter"
	"github.com/ginjaninja78/po-export/internal/logging"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file. Empty means config.yaml,
// which may be absent.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// appConfig and logger are set by loadConfig before a subcommand runs.
var (
	appConfig *config.Config
	logger    *slog.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "poexport",
	Short: "Purchase Order Exporter - Turn order spreadsheets into ERP import files",
	Long: `Purchase Order Exporter reads a purchase order spreadsheet (.xlsx), checks
that the required columns are present, normalizes every row into a line item
and writes the delimited file read by the ERP purchase-order import.

Example Usage:
  poexport validate pedido.xlsx                  # Show the parsed order
  poexport convert pedido.xlsx --supplier 000123 # Write pedido.csv
  poexport suppliers acme                        # Search the supplier directory
  poexport serve                                 # Start the HTTP API`,

	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is config.yaml)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// loadConfig reads .env and the configuration file and installs the logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	appConfig = cfg
	logger = logging.Setup(cfg.LogLevel, cfg.LogFormat)
	logger.Debug("configuration loaded", "config", cfgFile, "variant", cfg.Export.Variant, "suppliers", cfg.Suppliers.Source)
	return nil
}

// newConverter builds the pipeline shared by the subcommands.
func newConverter() *converter.Converter {
	return converter.New(
		converter.WithLogger(logger),
		converter.WithMaxSize(appConfig.Server.MaxUploadBytes),
	)
}
