// =============================================================================
// Purchase Order Exporter - Schema Validation Module
// =============================================================================
//
// This module gates the pipeline on the presence of the required columns.
// The check runs once, against the keys of the first data row, before any
// row is normalized.
//
// REQUIRED COLUMNS (exact, case- and accent-sensitive):
//   Produto, Descrição, Ref.Fabricante, Prc Compra Totvs, Pedido, Total
//
// OPTIONAL COLUMNS (consumed when present):
//   Loja, Local
//
// The reader materializes every header column on every row, so checking the
// first row is the same as checking the header and every other row.
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ginjaninja78/po-export/internal/types"
)

// =============================================================================
// COLUMN NAMES
// =============================================================================

const (
	ColumnProduct         = "Produto"
	ColumnDescription     = "Descrição"
	ColumnManufacturerRef = "Ref.Fabricante"
	ColumnUnitPrice       = "Prc Compra Totvs"
	ColumnQuantity        = "Pedido"
	ColumnTotal           = "Total"

	ColumnStore    = "Loja"
	ColumnLocation = "Local"
)

// RequiredColumns is the ordered list of columns every order sheet must have.
var RequiredColumns = []string{
	ColumnProduct,
	ColumnDescription,
	ColumnManufacturerRef,
	ColumnUnitPrice,
	ColumnQuantity,
	ColumnTotal,
}

// OptionalColumns are read when the sheet has them.
var OptionalColumns = []string{ColumnStore, ColumnLocation}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNoRows is returned when Validate is given no rows to inspect.
var ErrNoRows = errors.New("no rows to validate")

// SchemaError lists the required columns absent from the input.
type SchemaError struct {
	// Missing holds the absent column names in required-list order.
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// Validate checks that every required column is a key of the first row.
//
// PARAMETERS:
//   - rows: The raw rows produced by the reader.
//   - required: The column names to require; nil means RequiredColumns.
//
// RETURNS:
//   - nil when all columns are present.
//   - *SchemaError naming exactly the absent columns.
//   - ErrNoRows when rows is empty.
func Validate(rows []types.RawRow, required []string) error {
	if len(rows) == 0 {
		return ErrNoRows
	}
	if required == nil {
		required = RequiredColumns
	}

	first := rows[0]
	var missing []string
	for _, col := range required {
		if _, ok := first[col]; !ok {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// ValidateHeader runs the same check against a header row.
func ValidateHeader(header []string, required []string) error {
	if required == nil {
		required = RequiredColumns
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}

	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}
