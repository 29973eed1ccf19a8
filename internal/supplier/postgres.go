package supplier

import (
	"context"
	"fmt"
	"strings"

	"github.com/ginjaninja78/po-export/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultTable is the supplier table read by Postgres.
const DefaultTable = "fornecedores"

// Querier is the subset of *pgxpool.Pool used by Postgres.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres is a Directory backed by a table with the columns
// code, name, payment_terms and store. payment_terms and store may be NULL.
type Postgres struct {
	db    Querier
	table string
}

// NewPostgres wraps an open connection pool. An empty table means
// DefaultTable; a dotted name is read as schema.table.
func NewPostgres(db Querier, table string) *Postgres {
	if strings.TrimSpace(table) == "" {
		table = DefaultTable
	}
	return &Postgres{db: db, table: pgx.Identifier(strings.Split(table, ".")).Sanitize()}
}

// OpenPostgres connects a pool to databaseURL and verifies it with a ping.
// The caller closes the returned pool.
func OpenPostgres(ctx context.Context, databaseURL, table string) (*Postgres, *pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewPostgres(pool, table), pool, nil
}

func (p *Postgres) selectColumns() string {
	return `SELECT code, name, COALESCE(payment_terms, ''), COALESCE(store, '') FROM ` + p.table
}

func (p *Postgres) searchQuery() string {
	return p.selectColumns() +
		` WHERE name ILIKE $1 ESCAPE '\' OR code ILIKE $1 ESCAPE '\' ORDER BY name, code`
}

func (p *Postgres) lookupQuery() string {
	return p.selectColumns() + ` WHERE code = $1`
}

// Search implements Directory.
func (p *Postgres) Search(ctx context.Context, term string) ([]types.Supplier, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	suppliers, err := p.query(ctx, p.searchQuery(), "%"+escapeLike(term)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search suppliers: %w", err)
	}
	return suppliers, nil
}

// Lookup implements Directory.
func (p *Postgres) Lookup(ctx context.Context, code string) (*types.Supplier, error) {
	suppliers, err := p.query(ctx, p.lookupQuery(), strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("failed to look up supplier: %w", err)
	}
	if len(suppliers) == 0 {
		return nil, ErrNotFound
	}
	return &suppliers[0], nil
}

func (p *Postgres) query(ctx context.Context, sql string, arg string) ([]types.Supplier, error) {
	rows, err := p.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Supplier
	for rows.Next() {
		var s types.Supplier
		if err := rows.Scan(&s.Code, &s.Name, &s.PaymentTerms, &s.Store); err != nil {
			return nil, err
		}
		s.Code = strings.TrimSpace(s.Code)
		s.Name = strings.TrimSpace(s.Name)
		s.PaymentTerms = strings.TrimSpace(s.PaymentTerms)
		s.Store = strings.TrimSpace(s.Store)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// escapeLike escapes the ILIKE wildcards in a user term.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ Directory = (*Postgres)(nil)
var _ Directory = (*Memory)(nil)
