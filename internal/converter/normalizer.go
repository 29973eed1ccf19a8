// =============================================================================
// Purchase Order Exporter - Row Normalizer
// =============================================================================
//
// This module turns raw spreadsheet rows into typed line items.
//
// FIELD RULES:
//   - Produto, Descrição, Ref.Fabricante, Loja, Local:
//       coerced to text and trimmed, "" when blank
//   - Pedido (quantity):
//       numeric cells are used as-is; text must be digits with optional
//       thousands dots and a decimal comma ("1.200", "4,0").
//       Must be a whole number between 0 and MaxQuantity.
//   - Total:
//       numeric cells are used as-is; text goes through numeric.ParseLocale
//   - Prc Compra Totvs (unit price):
//       kept raw on the line item and resolved only on display or export
//
// Quantity and total are strict: a value that cannot be parsed fails the
// whole file with a *NormalizationError. Nothing silently becomes zero.
//
// =============================================================================

package converter

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ginjaninja78/po-export/internal/numeric"
	"github.com/ginjaninja78/po-export/internal/types"
	"github.com/ginjaninja78/po-export/internal/validation"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ERRORS
// =============================================================================

// MaxQuantity is the largest order quantity accepted.
const MaxQuantity = math.MaxInt32

var (
	errNotWhole = errors.New("not a whole number")
	errNegative = fmt.Errorf("quantity %w", numeric.ErrNegative)
	errTooLarge = fmt.Errorf("quantity exceeds %d", MaxQuantity)
)

// quantityText is the accepted shape of a text quantity.
var quantityText = regexp.MustCompile(`^(\d+|\d{1,3}(\.\d{3})+)(,\d*)?$`)

// NormalizationError reports a required numeric field that could not be
// parsed.
type NormalizationError struct {
	// Row is the 1-indexed spreadsheet row.
	Row int

	// Column is the header name of the offending cell.
	Column string

	// Value is the cell value as text.
	Value string

	Err error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("row %d: column %s: invalid value %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// =============================================================================
// NORMALIZATION FUNCTIONS
// =============================================================================

// Normalize converts every raw row into a line item.
//
// PARAMETERS:
//   - rows: The validated raw rows.
//   - rowNumbers: The sheet row of each entry in rows, for error reporting.
//     When nil, rows are assumed to start at sheet row 2.
//
// RETURNS:
//   - One line item per row, in input order.
//   - The first *NormalizationError encountered; no items are returned then.
func Normalize(rows []types.RawRow, rowNumbers []int) ([]types.LineItem, error) {
	items := make([]types.LineItem, 0, len(rows))
	for i, row := range rows {
		rowNumber := i + 2
		if i < len(rowNumbers) {
			rowNumber = rowNumbers[i]
		}

		item, err := NormalizeRow(row, rowNumber)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// NormalizeRow converts a single raw row.
func NormalizeRow(row types.RawRow, rowNumber int) (types.LineItem, error) {
	item := types.LineItem{
		Row:             rowNumber,
		ProductCode:     text(row[validation.ColumnProduct]),
		Description:     text(row[validation.ColumnDescription]),
		ManufacturerRef: text(row[validation.ColumnManufacturerRef]),
		RawPrice:        row[validation.ColumnUnitPrice],
		Store:           text(row[validation.ColumnStore]),
		Location:        text(row[validation.ColumnLocation]),
	}

	qtyCell := row[validation.ColumnQuantity]
	qty, err := quantity(qtyCell)
	if err != nil {
		return types.LineItem{}, &NormalizationError{
			Row:    rowNumber,
			Column: validation.ColumnQuantity,
			Value:  qtyCell.String(),
			Err:    err,
		}
	}
	item.Quantity = qty

	totalCell := row[validation.ColumnTotal]
	total, err := totalCell.Decimal()
	if err != nil {
		return types.LineItem{}, &NormalizationError{
			Row:    rowNumber,
			Column: validation.ColumnTotal,
			Value:  totalCell.String(),
			Err:    err,
		}
	}
	item.Total = total

	return item, nil
}

// text coerces a cell to a trimmed string.
func text(c types.Cell) string {
	return strings.TrimSpace(c.String())
}

// quantity resolves the order quantity.
func quantity(c types.Cell) (int, error) {
	switch c.Kind {
	case types.CellNumber:
		f := c.Number
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, numeric.ErrUnparsable
		}
		if f != math.Trunc(f) {
			return 0, errNotWhole
		}
		if f < 0 {
			return 0, errNegative
		}
		if f > MaxQuantity {
			return 0, errTooLarge
		}
		return int(f), nil

	case types.CellString:
		s := strings.TrimSpace(c.Text)
		if strings.HasPrefix(s, "-") {
			return 0, errNegative
		}
		if !quantityText.MatchString(s) {
			return 0, fmt.Errorf("%w: %q", numeric.ErrUnparsable, s)
		}

		s = strings.ReplaceAll(s, ".", "")
		s = strings.TrimSuffix(strings.Replace(s, ",", ".", 1), ".")
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", numeric.ErrUnparsable, c.Text)
		}
		if !d.Equal(d.Truncate(0)) {
			return 0, errNotWhole
		}
		if d.GreaterThan(decimal.NewFromInt(MaxQuantity)) {
			return 0, errTooLarge
		}
		return int(d.IntPart()), nil

	default:
		return 0, numeric.ErrUnparsable
	}
}

// DisplayTotal formats an amount the way the order table shows it.
func DisplayTotal(d decimal.Decimal) string {
	return numeric.FormatBRL(d)
}
