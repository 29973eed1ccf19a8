package converter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/ginjaninja78/po-export/internal/testutil"
	"github.com/ginjaninja78/po-export/internal/validation"
	"github.com/ginjaninja78/po-export/internal/xlsxparser"
	"github.com/shopspring/decimal"
)

func quietConverter() *Converter {
	return New(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestLoadBuildsDocument(t *testing.T) {
	data := testutil.OrderWorkbook(t,
		[]any{"X1", "Widget", "RF1", 10.5, 3, 31.5},
		[]any{"X2", "Gadget", "RF2", "1.234,56", "2", "2.469,12"},
		[]any{"X3", "Bolt", "RF3", 0.1, 1, 0.1},
	)

	doc, err := quietConverter().Load(data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Len() != 3 {
		t.Fatalf("items = %d, want 3", doc.Len())
	}
	if want := decimal.RequireFromString("2500.72"); !doc.Total.Equal(want) {
		t.Errorf("total = %s, want %s", doc.Total, want)
	}

	first := doc.Items[0]
	if first.ProductCode != "X1" || first.Description != "Widget" || first.ManufacturerRef != "RF1" || first.Quantity != 3 {
		t.Errorf("first item = %+v", first)
	}
	if price, err := first.UnitPrice(); err != nil || !price.Equal(decimal.RequireFromString("10.5")) {
		t.Errorf("first price = %s, %v", price, err)
	}
}

func TestLoadLineCountMatchesRows(t *testing.T) {
	for _, n := range []int{1, 5, 40} {
		rows := make([][]any, n)
		for i := range rows {
			rows[i] = []any{"P", "D", "R", 1.25, i, 1.25 * float64(i)}
		}
		doc, err := quietConverter().Load(testutil.OrderWorkbook(t, rows...))
		if err != nil {
			t.Fatalf("n=%d: Load: %v", n, err)
		}
		if doc.Len() != n {
			t.Errorf("n=%d: items = %d", n, doc.Len())
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		check func(t *testing.T, err error)
	}{
		{
			name: "not a workbook",
			data: []byte("Produto;Total\nX1;3"),
			check: func(t *testing.T, err error) {
				var de *xlsxparser.DecodeError
				if !errors.As(err, &de) {
					t.Errorf("err = %v, want DecodeError", err)
				}
			},
		},
		{
			name: "header only",
			data: testutil.OrderWorkbook(t),
			check: func(t *testing.T, err error) {
				if !errors.Is(err, xlsxparser.ErrEmptyData) {
					t.Errorf("err = %v, want ErrEmptyData", err)
				}
			},
		},
		{
			name: "missing columns",
			data: testutil.Workbook(t,
				[]any{"Produto", "Descrição", "Prc Compra Totvs", "Total"},
				[]any{"X1", "Widget", 10.5, 31.5},
			),
			check: func(t *testing.T, err error) {
				var se *validation.SchemaError
				if !errors.As(err, &se) {
					t.Fatalf("err = %v, want SchemaError", err)
				}
				if len(se.Missing) != 2 || se.Missing[0] != "Ref.Fabricante" || se.Missing[1] != "Pedido" {
					t.Errorf("missing = %v, want [Ref.Fabricante Pedido]", se.Missing)
				}
			},
		},
		{
			name: "bad quantity",
			data: testutil.OrderWorkbook(t,
				[]any{"X1", "Widget", "RF1", 10.5, 3, 31.5},
				[]any{"X2", "Widget", "RF1", 10.5, "três", 31.5},
			),
			check: func(t *testing.T, err error) {
				var ne *NormalizationError
				if !errors.As(err, &ne) {
					t.Fatalf("err = %v, want NormalizationError", err)
				}
				if ne.Row != 3 || ne.Column != "Pedido" {
					t.Errorf("error at row %d column %s", ne.Row, ne.Column)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := quietConverter().Load(tt.data)
			if doc != nil {
				t.Errorf("expected no document, got %d items", doc.Len())
			}
			tt.check(t, err)
		})
	}
}

func TestRunReportsStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedido.xlsx")
	data := testutil.OrderWorkbook(t,
		[]any{"X1", "Widget", "RF1", 10.5, 3, 31.5},
		[]any{"X2", "Widget", "RF1", 10.5, 1, 10.5},
	)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := quietConverter().Run(context.Background(), path)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FilePath != path || result.Stats.RowsRead != 2 || result.Stats.LineItemsCreated != 2 {
		t.Errorf("result = %+v", result)
	}
	if !result.Document.Total.Equal(decimal.NewFromInt(42)) {
		t.Errorf("total = %s, want 42", result.Document.Total)
	}
}

func TestRunHonoursMaxSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pedido.xlsx")
	if err := os.WriteFile(path, testutil.OrderWorkbook(t, []any{"X1", "W", "R", 1, 1, 1}), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(WithMaxSize(16), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	if _, err := c.Run(context.Background(), path); !errors.Is(err, xlsxparser.ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}
