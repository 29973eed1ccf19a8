// =============================================================================
// Purchase Order Exporter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - xlsxparser (RawRow, Cell)
//   - validation (RawRow)
//   - converter  (LineItem, Document, Metadata)
//   - csvwriter  (Document, Metadata)
//   - supplier   (Supplier)
//
// =============================================================================

package types

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RAW SPREADSHEET TYPES
// =============================================================================

// CellKind tells which of the Cell value slots is meaningful.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
)

// Cell is an untyped spreadsheet cell value: text, number or empty.
type Cell struct {
	Kind CellKind

	// Text holds the value for CellString cells.
	Text string

	// Number holds the value for CellNumber cells.
	Number float64
}

// StringCell returns a text cell.
func StringCell(s string) Cell { return Cell{Kind: CellString, Text: s} }

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell { return Cell{Kind: CellNumber, Number: f} }

// IsEmpty reports whether the cell carries no value. A text cell holding
// only whitespace counts as empty.
func (c Cell) IsEmpty() bool {
	switch c.Kind {
	case CellNumber:
		return false
	case CellString:
		return strings.TrimSpace(c.Text) == ""
	default:
		return true
	}
}

// String renders the cell as text. Numbers use the shortest representation
// that round-trips, so 3 renders as "3" and 10.5 as "10.5".
func (c Cell) String() string {
	switch c.Kind {
	case CellString:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// RawRow maps a column name from the header row to the cell below it.
// One RawRow is produced per data row of the first sheet.
type RawRow map[string]Cell

// =============================================================================
// ORDER TYPES
// =============================================================================

// LineItem is one normalized purchase-order row.
type LineItem struct {
	// Row is the 1-indexed spreadsheet row the item came from.
	// Useful for error reporting.
	Row int

	ProductCode     string
	Description     string
	ManufacturerRef string

	// RawPrice is the unit price exactly as read from the sheet ("Prc Compra
	// Totvs"). It is resolved to a decimal only when displayed or exported.
	RawPrice Cell

	Quantity int

	// Total is the line total taken from the source. It is never recomputed
	// from price and quantity.
	Total decimal.Decimal

	// Store and Location are filled from the optional "Loja" and "Local"
	// columns when the sheet carries them.
	Store    string
	Location string
}

// Document is the in-memory order built from one uploaded file.
// Total always equals the sum of the item totals.
type Document struct {
	Items []LineItem
	Total decimal.Decimal
}

// NewDocument builds a document and computes its grand total.
func NewDocument(items []LineItem) *Document {
	d := &Document{}
	d.SetItems(items)
	return d
}

// SetItems replaces the item sequence and recomputes the grand total.
func (d *Document) SetItems(items []LineItem) {
	d.Items = items
	d.recompute()
}

// Append adds items and recomputes the grand total.
func (d *Document) Append(items ...LineItem) {
	d.Items = append(d.Items, items...)
	d.recompute()
}

// Len returns the number of line items.
func (d *Document) Len() int { return len(d.Items) }

func (d *Document) recompute() {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Total)
	}
	d.Total = total
}

// =============================================================================
// SUPPLIER AND METADATA TYPES
// =============================================================================

// Supplier is a read-only entry from the supplier directory.
type Supplier struct {
	// Code is the ERP supplier code and the unique key of the directory.
	Code string `json:"code"`

	// Name is the legal name (razão social).
	Name string `json:"name"`

	// PaymentTerms is the supplier's default payment condition, if any.
	PaymentTerms string `json:"payment_terms,omitempty"`

	// Store is the supplier store ("loja") when the directory provides one.
	Store string `json:"store,omitempty"`
}

// Metadata is the operator-chosen export metadata for one order.
// It stays mutable until export.
type Metadata struct {
	Supplier      *Supplier
	PaymentTerms  string
	PurchaseClass PurchaseClass
}

// Complete reports whether the metadata allows serialization: a supplier is
// selected and the payment terms are not blank.
func (m Metadata) Complete() bool {
	return m.Supplier != nil && strings.TrimSpace(m.Supplier.Code) != "" &&
		strings.TrimSpace(m.PaymentTerms) != ""
}
