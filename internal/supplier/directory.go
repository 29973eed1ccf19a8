// Package supplier provides the read-only supplier directory used to attach a
// supplier to an order before export.
//
// Three sources are supported: the fornecedor.json file shipped with the
// purchasing tool, a delimited export of the ERP supplier table, and a
// PostgreSQL table. All of them match search terms the same way: a
// case-insensitive substring of the supplier name or code.
package supplier

import (
	"context"
	"errors"
	"strings"

	"github.com/ginjaninja78/po-export/internal/types"
)

// ErrNotFound is returned by Lookup when no supplier has the code.
var ErrNotFound = errors.New("supplier not found")

// Directory looks suppliers up by code or by a free-text term.
type Directory interface {
	// Search returns the suppliers whose name or code contains term,
	// ignoring case. A blank term returns no suppliers.
	Search(ctx context.Context, term string) ([]types.Supplier, error)

	// Lookup returns the supplier with exactly this code, or ErrNotFound.
	Lookup(ctx context.Context, code string) (*types.Supplier, error)
}

// Memory is a Directory over a fixed list, kept in load order.
type Memory struct {
	suppliers []types.Supplier
	byCode    map[string]int
}

// NewMemory builds a directory from suppliers. Entries without a code are
// dropped and the first entry wins when a code repeats.
func NewMemory(suppliers []types.Supplier) *Memory {
	m := &Memory{byCode: make(map[string]int, len(suppliers))}
	for _, s := range suppliers {
		s.Code = strings.TrimSpace(s.Code)
		if s.Code == "" {
			continue
		}
		if _, dup := m.byCode[s.Code]; dup {
			continue
		}
		m.byCode[s.Code] = len(m.suppliers)
		m.suppliers = append(m.suppliers, s)
	}
	return m
}

// Len returns the number of suppliers.
func (m *Memory) Len() int { return len(m.suppliers) }

// Search implements Directory.
func (m *Memory) Search(ctx context.Context, term string) ([]types.Supplier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil, nil
	}

	var out []types.Supplier
	for _, s := range m.suppliers {
		if Matches(s, needle) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Lookup implements Directory.
func (m *Memory) Lookup(ctx context.Context, code string) (*types.Supplier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	i, ok := m.byCode[strings.TrimSpace(code)]
	if !ok {
		return nil, ErrNotFound
	}
	s := m.suppliers[i]
	return &s, nil
}

// Matches reports whether the lowercased needle is a substring of the
// supplier name or code.
func Matches(s types.Supplier, needle string) bool {
	return strings.Contains(strings.ToLower(s.Name), needle) ||
		strings.Contains(strings.ToLower(s.Code), needle)
}
