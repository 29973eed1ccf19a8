package types

import (
	"github.com/ginjaninja78/po-export/internal/numeric"
	"github.com/shopspring/decimal"
)

// Decimal resolves the cell to an amount. Numbers are used directly and text
// goes through numeric.ParseLocale. Empty cells are unparsable.
func (c Cell) Decimal() (decimal.Decimal, error) {
	switch c.Kind {
	case CellNumber:
		return numeric.FromFloat(c.Number)
	case CellString:
		return numeric.ParseLocale(c.Text)
	default:
		return decimal.Zero, numeric.ErrUnparsable
	}
}

// UnitPrice is the strict price conversion used on export. Negative prices,
// numeric or text, are rejected with numeric.ErrNegative.
func (i LineItem) UnitPrice() (decimal.Decimal, error) {
	if i.RawPrice.Kind == CellString && numeric.HasMinusSign(i.RawPrice.Text) {
		return decimal.Zero, numeric.ErrNegative
	}
	d, err := i.RawPrice.Decimal()
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, numeric.ErrNegative
	}
	return d, nil
}

// DisplayPrice is the permissive price conversion used for display.
// Unparsable prices show as zero.
func (i LineItem) DisplayPrice() decimal.Decimal {
	d, err := i.RawPrice.Decimal()
	if err != nil {
		return decimal.Zero
	}
	return d
}
