package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/ginjaninja78/po-export/internal/converter"
	"github.com/ginjaninja78/po-export/internal/csvwriter"
	"github.com/ginjaninja78/po-export/internal/types"
	"github.com/ginjaninja78/po-export/internal/validation"
	"github.com/ginjaninja78/po-export/internal/xlsxparser"
	"github.com/shopspring/decimal"
)

func TestErrorLogEntry(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantType  string
		wantRow   int
		wantField string
	}{
		{
			name:      "schema",
			err:       fmt.Errorf("invalid spreadsheet: %w", &validation.SchemaError{Missing: []string{"Qtde", "Total"}}),
			wantType:  "schema",
			wantField: "Qtde, Total",
		},
		{
			name:      "normalization",
			err:       fmt.Errorf("invalid spreadsheet: %w", &converter.NormalizationError{Row: 7, Column: "Qtde", Value: "x"}),
			wantType:  "normalization",
			wantRow:   7,
			wantField: "Qtde",
		},
		{
			name:     "serialization",
			err:      &csvwriter.SerializationError{Row: 3, Err: fmt.Errorf("bad price")},
			wantType: "serialization",
			wantRow:  3,
		},
		{
			name:     "decode",
			err:      fmt.Errorf("failed to read upload: %w", &xlsxparser.DecodeError{File: "a.xlsx", Err: xlsxparser.ErrNotXLSX}),
			wantType: "decode",
		},
		{
			name:     "other",
			err:      fmt.Errorf("disk full"),
			wantType: "processing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := errorLogEntry("/in/pedido.xlsx", tt.err)
			if entry.FileName != "pedido.xlsx" {
				t.Errorf("FileName = %q", entry.FileName)
			}
			if entry.ErrorType != tt.wantType {
				t.Errorf("ErrorType = %q, want %q", entry.ErrorType, tt.wantType)
			}
			if entry.RowNumber != tt.wantRow {
				t.Errorf("RowNumber = %d, want %d", entry.RowNumber, tt.wantRow)
			}
			if entry.FieldName != tt.wantField {
				t.Errorf("FieldName = %q, want %q", entry.FieldName, tt.wantField)
			}
			if entry.ErrorMessage != tt.err.Error() {
				t.Errorf("ErrorMessage = %q", entry.ErrorMessage)
			}
		})
	}
}

func TestPrintDocument(t *testing.T) {
	doc := types.NewDocument([]types.LineItem{
		{Row: 2, ProductCode: "X1", Description: "Widget", ManufacturerRef: "RF1", RawPrice: types.NumberCell(10.5), Quantity: 3, Total: decimal.RequireFromString("31.5")},
		{Row: 3, ProductCode: "X2", Description: "Gadget", RawPrice: types.StringCell("sob consulta"), Quantity: 1, Total: decimal.RequireFromString("2")},
	})

	var buf bytes.Buffer
	if err := printDocument(&buf, doc); err != nil {
		t.Fatalf("printDocument: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Widget", "R$ 10,50", "R$ 31,50", "R$ 0,00", "Total do pedido: R$ 33,50"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
