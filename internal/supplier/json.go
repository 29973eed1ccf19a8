package supplier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ginjaninja78/po-export/internal/types"
)

// jsonRecord is one entry of fornecedor.json. Older files use "Razao" and
// "condPagto" instead of the long keys.
type jsonRecord struct {
	Codigo      textValue `json:"Codigo"`
	Loja        textValue `json:"Loja"`
	RazaoSocial textValue `json:"Razao Social"`
	Razao       textValue `json:"Razao"`
	CondPagto   textValue `json:"Cond. Pagto"`
	CondPagtoV1 textValue `json:"condPagto"`
}

// textValue accepts a JSON string or number. Spreadsheet-generated files
// often store codes as numbers.
type textValue string

func (v *textValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = textValue(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*v = textValue(n.String())
	}
	return nil
}

func (r jsonRecord) supplier() types.Supplier {
	return types.Supplier{
		Code:         strings.TrimSpace(string(r.Codigo)),
		Name:         strings.TrimSpace(firstNonEmpty(string(r.RazaoSocial), string(r.Razao))),
		PaymentTerms: strings.TrimSpace(firstNonEmpty(string(r.CondPagto), string(r.CondPagtoV1))),
		Store:        strings.TrimSpace(string(r.Loja)),
	}
}

// LoadJSON reads a fornecedor.json document: an array of supplier objects.
func LoadJSON(r io.Reader) (*Memory, error) {
	var records []jsonRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode supplier list: %w", err)
	}

	suppliers := make([]types.Supplier, 0, len(records))
	for _, rec := range records {
		suppliers = append(suppliers, rec.supplier())
	}
	return NewMemory(suppliers), nil
}

// LoadJSONFile is LoadJSON on a file.
func LoadJSONFile(path string) (*Memory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open supplier file: %w", err)
	}
	defer f.Close()
	return LoadJSON(f)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
