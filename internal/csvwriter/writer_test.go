package csvwriter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/po-export/internal/numeric"
	"github.com/ginjaninja78/po-export/internal/types"
	"github.com/shopspring/decimal"
)

var exportDate = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.Local)

func sampleDocument() *types.Document {
	return types.NewDocument([]types.LineItem{
		{
			Row:             2,
			ProductCode:     "X1",
			Description:     "Widget",
			ManufacturerRef: "RF1",
			RawPrice:        types.NumberCell(10.5),
			Quantity:        3,
			Total:           decimal.RequireFromString("31.5"),
		},
	})
}

func sampleMeta() Resolved {
	return Resolved{SupplierCode: "S1", PaymentTerms: "30/60", PurchaseClass: types.ClassStock}
}

func TestGenerateSemicolonVariant(t *testing.T) {
	out, err := Generate(sampleDocument(), sampleMeta(), exportDate, DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	lines := strings.Split(string(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if want := "Fornecedor;Loja;CondPag;Produto;Quantidade;Valor;DataEntrega;Local;ClasCompra"; lines[0] != want {
		t.Errorf("header = %q, want %q", lines[0], want)
	}
	if want := "S1;'01;'30/60;X1;3;10,50;14/10/2026;'01;ESTOQUE"; lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestGenerateCommaVariant(t *testing.T) {
	opts := DefaultOptions()
	opts.Variant = VariantComma

	out, err := Generate(sampleDocument(), sampleMeta(), exportDate, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	lines := strings.Split(string(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out)
	}
	if want := "Fornecedor,Loja,CondPag,Produto,Quantidade,Valor,DataEntrega,Local,ClasCompra"; lines[0] != want {
		t.Errorf("header = %q, want %q", lines[0], want)
	}
	if want := "S1,'01,30/60,X1,3,10.5,2026-10-14,'01,ESTOQUE"; lines[1] != want {
		t.Errorf("row = %q, want %q", lines[1], want)
	}
}

func TestGeneratePriceFormatting(t *testing.T) {
	tests := []struct {
		name  string
		price types.Cell
		want  string
	}{
		{name: "numeric", price: types.NumberCell(1234.5), want: "1234,50"},
		{name: "locale text", price: types.StringCell("R$ 1.234,56"), want: "1234,56"},
		{name: "rounds half up", price: types.NumberCell(2.345), want: "2,35"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := types.NewDocument([]types.LineItem{{Row: 2, ProductCode: "P", RawPrice: tt.price, Quantity: 1}})
			out, err := Generate(doc, sampleMeta(), exportDate, DefaultOptions())
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			fields := strings.Split(strings.Split(string(out), "\n")[1], ";")
			if fields[5] != tt.want {
				t.Errorf("Valor = %q, want %q", fields[5], tt.want)
			}
		})
	}
}

func TestGenerateClassLiterals(t *testing.T) {
	for class, want := range map[types.PurchaseClass]string{
		types.ClassStock:     "ESTOQUE",
		types.ClassFull:      "FULL",
		types.ClassBackorder: "ENCOMENDA",
	} {
		meta := sampleMeta()
		meta.PurchaseClass = class
		out, err := Generate(sampleDocument(), meta, exportDate, DefaultOptions())
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !strings.HasSuffix(string(out), ";"+want) {
			t.Errorf("class %v: output %q does not end with %q", class, out, want)
		}
	}
}

func TestGenerateQuotesDelimiterInsideFields(t *testing.T) {
	doc := types.NewDocument([]types.LineItem{{Row: 2, ProductCode: "A;B", RawPrice: types.NumberCell(1), Quantity: 1}})
	out, err := Generate(doc, sampleMeta(), exportDate, DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(string(out), `;"A;B";`) {
		t.Errorf("expected quoted product code, got %q", out)
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name    string
		doc     *types.Document
		meta    Resolved
		wantErr error
		wantRow int
	}{
		{
			name:    "no supplier",
			doc:     sampleDocument(),
			meta:    Resolved{PaymentTerms: "30"},
			wantErr: ErrIncompleteMetadata,
		},
		{
			name:    "blank payment terms",
			doc:     sampleDocument(),
			meta:    Resolved{SupplierCode: "S1", PaymentTerms: " "},
			wantErr: ErrIncompleteMetadata,
		},
		{
			name:    "empty document",
			doc:     types.NewDocument(nil),
			meta:    sampleMeta(),
			wantErr: ErrEmptyDocument,
		},
		{
			name: "unparsable price",
			doc: types.NewDocument([]types.LineItem{
				{Row: 2, RawPrice: types.NumberCell(1), Quantity: 1},
				{Row: 3, RawPrice: types.StringCell("sob consulta"), Quantity: 1},
			}),
			meta:    sampleMeta(),
			wantRow: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Generate(tt.doc, tt.meta, exportDate, DefaultOptions())
			if out != nil {
				t.Errorf("expected no output, got %q", out)
			}
			var se *SerializationError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SerializationError", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if se.Row != tt.wantRow {
				t.Errorf("row = %d, want %d", se.Row, tt.wantRow)
			}
		})
	}
}

func TestGenerateRejectsNegativePrice(t *testing.T) {
	for _, price := range []types.Cell{types.NumberCell(-10.5), types.StringCell("-10,50"), types.StringCell("R$ -1,00")} {
		doc := types.NewDocument([]types.LineItem{{Row: 4, ProductCode: "X1", RawPrice: price, Quantity: 3}})
		out, err := Generate(doc, sampleMeta(), exportDate, DefaultOptions())
		if out != nil {
			t.Errorf("price %v: expected no output, got %q", price, out)
		}
		var se *SerializationError
		if !errors.As(err, &se) || se.Row != 4 {
			t.Fatalf("price %v: err = %v, want *SerializationError at row 4", price, err)
		}
		if !errors.Is(err, numeric.ErrNegative) {
			t.Errorf("price %v: err = %v, want ErrNegative", price, err)
		}
	}
}

func TestGenerateUnknownVariant(t *testing.T) {
	opts := DefaultOptions()
	opts.Variant = "tab"

	out, err := Generate(sampleDocument(), sampleMeta(), exportDate, opts)
	if out != nil {
		t.Errorf("expected no output, got %q", out)
	}
	var se *SerializationError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SerializationError", err)
	}

	opts.Variant = "Comma"
	out, err = Generate(sampleDocument(), sampleMeta(), exportDate, opts)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(string(out), "Fornecedor,Loja,") {
		t.Errorf("variant name not normalized: %q", out)
	}
}

func TestResolve(t *testing.T) {
	_, err := Resolve(types.Metadata{PaymentTerms: "30/60"})
	if !errors.Is(err, ErrIncompleteMetadata) {
		t.Fatalf("err = %v, want ErrIncompleteMetadata", err)
	}

	r, err := Resolve(types.Metadata{
		Supplier:      &types.Supplier{Code: " S1 "},
		PaymentTerms:  " 30/60 ",
		PurchaseClass: types.ClassFull,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.SupplierCode != "S1" || r.PaymentTerms != "30/60" || r.PurchaseClass != types.ClassFull {
		t.Errorf("Resolve = %+v", r)
	}
}

func TestParseVariant(t *testing.T) {
	for in, want := range map[string]Variant{"": VariantSemicolon, "Semicolon": VariantSemicolon, "comma": VariantComma} {
		got, err := ParseVariant(in)
		if err != nil || got != want {
			t.Errorf("ParseVariant(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseVariant("tab"); err == nil {
		t.Error("expected error for unknown variant")
	}
}

func TestOutputFileName(t *testing.T) {
	tests := map[string]string{
		"pedido.xlsx":        "pedido.csv",
		"Pedido Março.XLSX":  "Pedido Março.csv",
		"/tmp/in/order.xlsx": "order.csv",
		"noext":              "noext.csv",
	}
	for in, want := range tests {
		if got := OutputFileName(in); got != want {
			t.Errorf("OutputFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
