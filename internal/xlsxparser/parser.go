// =============================================================================
// Purchase Order Exporter - XLSX Workbook Reader
// =============================================================================
//
// This module decodes the purchase-order workbook uploaded by the operator
// into raw rows. Only the first sheet is read:
//
//   | Produto | Descrição | Ref.Fabricante | Prc Compra Totvs | Pedido | Total |  <- header row
//   | X1      | Widget    | RF1            | 10,50            | 3      | 31.5  |  <- data rows
//
// Each data row becomes a types.RawRow keyed by the header names. Every header
// column is present on every row; blank cells are types.CellEmpty.
//
// CELL TYPING:
//   - shared/inline strings and string formula results stay text
//   - numeric and untyped cells whose raw value parses as a float become numbers
//   - blank cells are empty
//
// =============================================================================

package xlsxparser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/po-export/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrEmptyData is returned when the first sheet has no data row below the
// header.
var ErrEmptyData = errors.New("workbook contains no data rows")

// ErrNotXLSX is wrapped in a DecodeError when the file name does not end in
// .xlsx.
var ErrNotXLSX = errors.New("only .xlsx files are accepted")

// ErrTooLarge is returned by ReadAll when the input exceeds the size limit.
var ErrTooLarge = errors.New("workbook exceeds the maximum allowed size")

// DecodeError reports an input that is not a readable workbook.
type DecodeError struct {
	// File is the source file name, when known.
	File string

	Err error
}

func (e *DecodeError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("cannot decode workbook %s: %v", e.File, e.Err)
	}
	return fmt.Sprintf("cannot decode workbook: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// =============================================================================
// SHEET STRUCTURE
// =============================================================================

// Sheet is the decoded first sheet of a workbook.
type Sheet struct {
	// Name is the sheet name as stored in the workbook.
	Name string

	// Headers are the column names in sheet order. Blank header cells and
	// repeated names are dropped.
	Headers []string

	// Rows holds one RawRow per non-blank data row.
	Rows []types.RawRow

	// RowNumbers holds the 1-indexed sheet row of each entry in Rows.
	RowNumbers []int
}

// DefaultMaxSize bounds how many bytes ReadAll accepts when no limit is given.
const DefaultMaxSize int64 = 32 << 20

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// CheckExtension rejects names that do not end in .xlsx, in any case.
func CheckExtension(name string) error {
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return &DecodeError{File: filepath.Base(name), Err: ErrNotXLSX}
	}
	return nil
}

// ReadFile loads and decodes a workbook from disk.
//
// Only files with an .xlsx extension are accepted. The read is the single
// blocking step of the pipeline; ctx is checked before it starts.
func ReadFile(ctx context.Context, path string) (*Sheet, error) {
	return ReadFileLimit(ctx, path, DefaultMaxSize)
}

// ReadFileLimit is ReadFile with an explicit size limit.
func ReadFileLimit(ctx context.Context, path string, maxSize int64) (*Sheet, error) {
	if err := CheckExtension(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	data, err := ReadAll(ctx, file, maxSize)
	if err != nil {
		return nil, err
	}

	sheet, err := Parse(data)
	var de *DecodeError
	if errors.As(err, &de) && de.File == "" {
		de.File = filepath.Base(path)
	}
	return sheet, err
}

// ReadAll reads the full byte buffer from r, up to maxSize bytes.
// A maxSize of zero or less means DefaultMaxSize.
func ReadAll(ctx context.Context, r io.Reader, maxSize int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

// Parse decodes a workbook held in memory.
//
// RETURNS:
//   - The first sheet, with the first non-blank row used as the header.
//   - *DecodeError if data is not a parseable workbook.
//   - ErrEmptyData if the sheet has no data rows.
func Parse(data []byte) (*Sheet, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Err: errors.New("empty input")}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Err: errors.New("workbook has no sheets")}
	}
	sheetName := sheets[0]

	// Raw values keep numbers unformatted ("10.5" instead of "R$ 10,50").
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("failed to read rows: %w", err)}
	}

	// Skip leading blank rows to find the header.
	headerIndex := 0
	for headerIndex < len(rows) && isRowEmpty(rows[headerIndex]) {
		headerIndex++
	}
	if headerIndex >= len(rows) {
		return nil, ErrEmptyData
	}

	columns := headerColumns(rows[headerIndex])
	sheet := &Sheet{Name: sheetName}
	for _, col := range columns {
		sheet.Headers = append(sheet.Headers, col.name)
	}

	for i := headerIndex + 1; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		rowNumber := i + 1
		raw := make(types.RawRow, len(columns))
		for _, col := range columns {
			value := ""
			if col.index < len(row) {
				value = row[col.index]
			}
			cell, err := toCell(f, sheetName, col.index, rowNumber, value)
			if err != nil {
				return nil, &DecodeError{Err: err}
			}
			raw[col.name] = cell
		}

		sheet.Rows = append(sheet.Rows, raw)
		sheet.RowNumbers = append(sheet.RowNumbers, rowNumber)
	}

	if len(sheet.Rows) == 0 {
		return nil, ErrEmptyData
	}

	return sheet, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

type column struct {
	index int
	name  string
}

// headerColumns returns the named columns of the header row. The first
// occurrence of a repeated name wins.
func headerColumns(header []string) []column {
	seen := make(map[string]bool, len(header))
	columns := make([]column, 0, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" || seen[name] {
			continue
		}
		seen[name] = true
		columns = append(columns, column{index: i, name: name})
	}
	return columns
}

// toCell types a raw cell value using the cell type stored in the sheet.
func toCell(f *excelize.File, sheet string, colIndex, rowNumber int, value string) (types.Cell, error) {
	if value == "" {
		return types.Cell{}, nil
	}

	axis, err := excelize.CoordinatesToCellName(colIndex+1, rowNumber)
	if err != nil {
		return types.Cell{}, err
	}
	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return types.Cell{}, fmt.Errorf("cell %s: %w", axis, err)
	}

	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if n, err := strconv.ParseFloat(value, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			return types.NumberCell(n), nil
		}
	}
	return types.StringCell(value), nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
