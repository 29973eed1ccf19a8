// =============================================================================
// Purchase Order Exporter - Delimited Text Parser
// =============================================================================
//
// This module parses delimited text exports, such as the supplier list
// exported from the ERP. It handles:
//   - Different delimiters (comma, semicolon, pipe, tab)
//   - A UTF-8 byte order mark at the start of the file
//   - Quoted fields, including quotes that do not follow strict CSV rules
//   - Rows with fewer or more fields than the header
//
// =============================================================================

package csvparser

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmpty is returned when the input has no header row.
var ErrEmpty = errors.New("delimited file is empty")

// Settings controls how the input is split into fields.
type Settings struct {
	// Delimiter is a single character or one of the names "tab", "pipe",
	// "semicolon", "comma". Default: ",".
	Delimiter string
}

// Data represents the parsed file.
type Data struct {
	// Headers contains the trimmed column headers.
	Headers []string

	// Rows contains the data rows as maps of header -> value.
	Rows []map[string]string

	// RowNumbers holds the 1-indexed line of each entry in Rows.
	RowNumbers []int
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads delimited text with a header row.
//
// PARAMETERS:
//   - r: The input.
//   - settings: The delimiter settings.
//
// RETURNS:
//   - The parsed data. Blank lines are skipped; missing trailing fields
//     are empty strings.
//   - ErrEmpty if there is no header row, or the csv error for malformed
//     input.
func Parse(r io.Reader, settings Settings) (*Data, error) {
	reader := bufio.NewReader(r)
	if bom, err := reader.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = reader.Discard(3)
	}

	csvReader := csv.NewReader(reader)
	configureReader(csvReader, settings)

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	data := &Data{Headers: cleanHeaders(header)}

	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if isRowEmpty(record) {
			continue
		}

		line, _ := csvReader.FieldPos(0)
		row := make(map[string]string, len(data.Headers))
		for i, h := range data.Headers {
			if h == "" {
				continue
			}
			if i < len(record) {
				row[h] = strings.TrimSpace(record[i])
			} else {
				row[h] = ""
			}
		}
		data.Rows = append(data.Rows, row)
		data.RowNumbers = append(data.RowNumbers, line)
	}

	return data, nil
}

// Delimiter resolves a delimiter setting to the rune used by encoding/csv.
func Delimiter(s string) rune {
	switch s {
	case "\\t", "\t", "tab", "TAB":
		return '\t'
	case "|", "pipe", "PIPE":
		return '|'
	case ";", "semicolon":
		return ';'
	case "", "comma":
		return ','
	default:
		return []rune(s)[0]
	}
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	reader.Comma = Delimiter(settings.Delimiter)

	// ERP exports are not consistent about trailing separators.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// cleanHeaders trims header names. Blank headers stay blank and their
// column is ignored.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = strings.TrimSpace(header)
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
