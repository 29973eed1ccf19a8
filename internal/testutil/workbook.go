// Package testutil builds in-memory workbooks for package tests.
package testutil

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// OrderHeader is the header row of a well-formed purchase-order sheet.
var OrderHeader = []any{"Produto", "Descrição", "Ref.Fabricante", "Prc Compra Totvs", "Pedido", "Total"}

// Workbook writes rows to the first sheet of a new workbook and returns the
// encoded .xlsx bytes. Strings are stored as text cells and Go numbers as
// numeric cells; nil leaves the cell blank.
func Workbook(t testing.TB, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, axis, &r); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// OrderWorkbook is Workbook with OrderHeader prepended.
func OrderWorkbook(t testing.TB, rows ...[]any) []byte {
	t.Helper()
	return Workbook(t, append([][]any{OrderHeader}, rows...)...)
}
