package supplier

import (
	"context"
	"fmt"
	"strings"

	"github.com/ginjaninja78/po-export/internal/config"
)

// Open builds the directory selected by cfg. The returned close function
// releases the database pool of the postgres source and is a no-op otherwise.
func Open(ctx context.Context, cfg config.SuppliersConfig) (Directory, func(), error) {
	noop := func() {}

	switch strings.ToLower(cfg.Source) {
	case "", "json":
		dir, err := LoadJSONFile(cfg.Path)
		if err != nil {
			return nil, noop, err
		}
		return dir, noop, nil

	case "csv":
		dir, err := LoadCSVFile(cfg.Path, cfg.CSVDelimiter)
		if err != nil {
			return nil, noop, err
		}
		return dir, noop, nil

	case "postgres":
		dir, pool, err := OpenPostgres(ctx, cfg.DatabaseURL, cfg.Table)
		if err != nil {
			return nil, noop, err
		}
		return dir, pool.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown supplier source %q", cfg.Source)
	}
}
