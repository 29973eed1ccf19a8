// =============================================================================
// Purchase Order Exporter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the poexport CLI application. It delegates
// command execution to the cmd package.
//
// USAGE:
//   poexport convert    - Convert order spreadsheets into ERP import files
//   poexport validate   - Check spreadsheets and print the parsed orders
//   poexport suppliers  - Search the supplier directory
//   poexport serve      - Start the HTTP API
//   poexport version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Pipeline stages, supplier directory, config, HTTP API
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/po-export/cmd"
)

func main() {
	cmd.Execute()
}
