// =============================================================================
// Purchase Order Exporter - Delimited Writer Module
// =============================================================================
//
// This module renders an order document and its export metadata as the flat
// text file read by the ERP purchase-order import.
//
// OUTPUT STRUCTURE (variant "semicolon"):
//
//   Fornecedor;Loja;CondPag;Produto;Quantidade;Valor;DataEntrega;Local;ClasCompra
//   S1;'01;'30/60;X1;3;10,50;14/10/2026;'01;ESTOQUE
//
// The leading apostrophe on "'01" is literal text. Spreadsheet tools that open
// the file keep it as text, so the leading zero of the code survives.
//
// VARIANTS (one per deployment, never mixed):
//   | Variant   | Delimiter | CondPag      | Valor          | DataEntrega |
//   |-----------|-----------|--------------|----------------|-------------|
//   | semicolon | ;         | '<terms>     | 1234,50        | DD/MM/YYYY  |
//   | comma     | ,         | <terms>      | 1234.5         | YYYY-MM-DD  |
//
// Lines are joined with "\n" and the file has no trailing newline.
//
// =============================================================================

package csvwriter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/po-export/internal/numeric"
	"github.com/ginjaninja78/po-export/internal/types"
)

// =============================================================================
// VARIANTS AND OPTIONS
// =============================================================================

// Variant selects one of the two output formats.
type Variant string

const (
	VariantSemicolon Variant = "semicolon"
	VariantComma     Variant = "comma"
)

// ParseVariant validates a variant name. Empty means VariantSemicolon.
func ParseVariant(s string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case "", VariantSemicolon:
		return VariantSemicolon, nil
	case VariantComma:
		return VariantComma, nil
	default:
		return "", fmt.Errorf("unknown export variant %q (want semicolon or comma)", s)
	}
}

// HeaderFields are the output column names, in order.
var HeaderFields = []string{
	"Fornecedor",
	"Loja",
	"CondPag",
	"Produto",
	"Quantidade",
	"Valor",
	"DataEntrega",
	"Local",
	"ClasCompra",
}

// DefaultPlaceholder is written to the Loja and Local columns.
const DefaultPlaceholder = "'01"

// Options contains options for file generation.
type Options struct {
	// Variant is the output format. Default: VariantSemicolon.
	Variant Variant

	// StoreCode is the constant written to the Loja column.
	// Default: "'01"
	StoreCode string

	// LocationCode is the constant written to the Local column.
	// Default: "'01"
	LocationCode string
}

// DefaultOptions returns the canonical export options.
func DefaultOptions() Options {
	return Options{
		Variant:      VariantSemicolon,
		StoreCode:    DefaultPlaceholder,
		LocationCode: DefaultPlaceholder,
	}
}

// withDefaults fills the placeholders and normalizes the variant name.
// An unknown variant is an error.
func (o Options) withDefaults() (Options, error) {
	variant, err := ParseVariant(string(o.Variant))
	if err != nil {
		return o, err
	}
	o.Variant = variant
	if o.StoreCode == "" {
		o.StoreCode = DefaultPlaceholder
	}
	if o.LocationCode == "" {
		o.LocationCode = DefaultPlaceholder
	}
	return o, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrIncompleteMetadata is returned when no supplier is selected or the
// payment terms are blank.
var ErrIncompleteMetadata = errors.New("export metadata incomplete: supplier and payment terms are required")

// ErrEmptyDocument is returned when there is nothing to export.
var ErrEmptyDocument = errors.New("order document has no line items")

// SerializationError reports an export that could not be produced.
type SerializationError struct {
	// Row is the spreadsheet row of the offending item, zero when the failure
	// is not tied to an item.
	Row int

	Err error
}

func (e *SerializationError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("cannot serialize row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("cannot serialize order: %v", e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// =============================================================================
// METADATA RESOLUTION
// =============================================================================

// Resolved is the export metadata after the operator's choices are final.
type Resolved struct {
	SupplierCode  string
	PaymentTerms  string
	PurchaseClass types.PurchaseClass
}

// Resolve checks that meta is complete and flattens it for Generate.
func Resolve(meta types.Metadata) (Resolved, error) {
	if !meta.Complete() {
		return Resolved{}, &SerializationError{Err: ErrIncompleteMetadata}
	}
	return Resolved{
		SupplierCode:  strings.TrimSpace(meta.Supplier.Code),
		PaymentTerms:  strings.TrimSpace(meta.PaymentTerms),
		PurchaseClass: meta.PurchaseClass,
	}, nil
}

// =============================================================================
// GENERATION FUNCTIONS
// =============================================================================

// Generate renders the export file.
//
// PARAMETERS:
//   - doc: The order document.
//   - meta: The resolved metadata; supplier code and terms must be non-empty.
//   - date: The delivery date, normally the local date at export time.
//   - options: The variant and placeholder settings.
//
// RETURNS:
//   - The file contents.
//   - *SerializationError if the variant is unknown, metadata is incomplete,
//     or a unit price cannot be resolved or is negative. No partial output
//     is returned.
func Generate(doc *types.Document, meta Resolved, date time.Time, options Options) ([]byte, error) {
	options, err := options.withDefaults()
	if err != nil {
		return nil, &SerializationError{Err: err}
	}

	if strings.TrimSpace(meta.SupplierCode) == "" || strings.TrimSpace(meta.PaymentTerms) == "" {
		return nil, &SerializationError{Err: ErrIncompleteMetadata}
	}
	if doc == nil || doc.Len() == 0 {
		return nil, &SerializationError{Err: ErrEmptyDocument}
	}

	var buffer bytes.Buffer
	w := csv.NewWriter(&buffer)
	w.Comma = options.delimiter()

	if err := w.Write(HeaderFields); err != nil {
		return nil, &SerializationError{Err: err}
	}

	for _, item := range doc.Items {
		record, err := buildRecord(item, meta, date, options)
		if err != nil {
			return nil, err
		}
		if err := w.Write(record); err != nil {
			return nil, &SerializationError{Row: item.Row, Err: err}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, &SerializationError{Err: err}
	}

	return bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), nil
}

// buildRecord lays out one line item in output column order.
func buildRecord(item types.LineItem, meta Resolved, date time.Time, options Options) ([]string, error) {
	price, err := item.UnitPrice()
	if err != nil {
		return nil, &SerializationError{Row: item.Row, Err: fmt.Errorf("unit price %q: %w", item.RawPrice.String(), err)}
	}

	return []string{
		meta.SupplierCode,
		options.StoreCode,
		options.paymentTerms(meta.PaymentTerms),
		item.ProductCode,
		strconv.Itoa(item.Quantity),
		options.price(price.String(), numeric.FormatComma(price)),
		options.date(date),
		options.LocationCode,
		meta.PurchaseClass.Literal(),
	}, nil
}

func (o Options) delimiter() rune {
	if o.Variant == VariantComma {
		return ','
	}
	return ';'
}

func (o Options) paymentTerms(terms string) string {
	if o.Variant == VariantComma {
		return terms
	}
	return "'" + terms
}

func (o Options) price(plain, comma string) string {
	if o.Variant == VariantComma {
		return plain
	}
	return comma
}

func (o Options) date(t time.Time) string {
	if o.Variant == VariantComma {
		return t.Format("2006-01-02")
	}
	return t.Format("02/01/2006")
}

// =============================================================================
// FILE NAMING
// =============================================================================

// OutputFileName derives the export file name from the uploaded file name by
// replacing its extension with .csv.
func OutputFileName(inputName string) string {
	base := filepath.Base(inputName)
	if base == "." || base == string(filepath.Separator) {
		base = "pedido"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".csv"
}
