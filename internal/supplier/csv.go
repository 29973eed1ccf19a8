package supplier

import (
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/po-export/internal/csvparser"
	"github.com/ginjaninja78/po-export/internal/types"
)

// Column names accepted in a delimited supplier export. The first present
// name of each list is used.
var (
	csvCodeColumns  = []string{"Codigo", "Código", "code"}
	csvNameColumns  = []string{"Razao Social", "Razão Social", "Razao", "name"}
	csvTermsColumns = []string{"Cond. Pagto", "condPagto", "payment_terms"}
	csvStoreColumns = []string{"Loja", "store"}
)

// LoadCSV reads a delimited supplier export with a header row.
func LoadCSV(r io.Reader, delimiter string) (*Memory, error) {
	data, err := csvparser.Parse(r, csvparser.Settings{Delimiter: delimiter})
	if err != nil {
		return nil, fmt.Errorf("failed to parse supplier list: %w", err)
	}

	code := pickColumn(data.Headers, csvCodeColumns)
	if code == "" {
		return nil, fmt.Errorf("supplier list has no code column (want one of %v)", csvCodeColumns)
	}
	name := pickColumn(data.Headers, csvNameColumns)
	terms := pickColumn(data.Headers, csvTermsColumns)
	store := pickColumn(data.Headers, csvStoreColumns)

	suppliers := make([]types.Supplier, 0, len(data.Rows))
	for _, row := range data.Rows {
		suppliers = append(suppliers, types.Supplier{
			Code:         row[code],
			Name:         row[name],
			PaymentTerms: row[terms],
			Store:        row[store],
		})
	}
	return NewMemory(suppliers), nil
}

// LoadCSVFile is LoadCSV on a file.
func LoadCSVFile(path, delimiter string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open supplier file: %w", err)
	}
	defer f.Close()
	return LoadCSV(f, delimiter)
}

func pickColumn(headers []string, candidates []string) string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	for _, c := range candidates {
		if present[c] {
			return c
		}
	}
	return ""
}
