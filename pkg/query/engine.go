// Package query executes the fixed analytical query catalog against
// each format artifact through DuckDB and records per-cell latency.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/oDuPrado/Benchmark-case/internal/model"
)

// csvColumnSpec matches the writer's CSV column order and the Arrow
// schema types.
const csvColumnSpec = `{
	'txn_id': 'VARCHAR',
	'store_id': 'INTEGER',
	'customer_id': 'BIGINT',
	'product_id': 'INTEGER',
	'quantity': 'INTEGER',
	'unit_price': 'DOUBLE',
	'total': 'DOUBLE',
	'sold_at': 'TIMESTAMP'
}`

// Engine is a thin wrapper around an in-memory DuckDB connection.
// Artifacts are registered as a read-only `sales` relation so the same
// catalog SQL runs unchanged against every format.
type Engine struct {
	db *sql.DB
}

// NewEngine opens an in-memory DuckDB instance.
func NewEngine() (*Engine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize duckdb: %w", err)
	}

	// One connection: session state (views, attached databases) must be
	// visible to every statement, and query timing should not race a
	// second session.
	db.SetMaxOpenConns(1)

	db.Exec(fmt.Sprintf("SET threads=%d", runtime.NumCPU()))

	return &Engine{db: db}, nil
}

// Close releases the underlying connection.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Register exposes a format artifact as the `sales` relation.
// Registration is read-only in every case: Parquet and CSV are scanned
// through views, the native database is attached READ_ONLY.
func (e *Engine) Register(ctx context.Context, kind model.FormatKind, path string) error {
	escaped := strings.ReplaceAll(path, "'", "''")

	switch kind {
	case model.FormatParquet:
		_, err := e.db.ExecContext(ctx, fmt.Sprintf(
			"CREATE OR REPLACE VIEW sales AS SELECT * FROM read_parquet('%s')", escaped))
		return err
	case model.FormatCSV:
		// Column types are pinned rather than sniffed so a header-only
		// file (empty dataset) still binds the aggregate queries.
		_, err := e.db.ExecContext(ctx, fmt.Sprintf(
			"CREATE OR REPLACE VIEW sales AS SELECT * FROM read_csv('%s', header=true, columns=%s)",
			escaped, csvColumnSpec))
		return err
	case model.FormatDuckDB:
		if _, err := e.db.ExecContext(ctx, fmt.Sprintf(
			"ATTACH '%s' AS bench (READ_ONLY)", escaped)); err != nil {
			return err
		}
		_, err := e.db.ExecContext(ctx,
			"CREATE OR REPLACE VIEW sales AS SELECT * FROM bench.sales")
		return err
	default:
		return fmt.Errorf("unknown format kind %q", kind)
	}
}

// CountRows runs a query and returns the number of result rows,
// discarding the values. Used for the per-cell sanity check.
func (e *Engine) CountRows(ctx context.Context, stmt string) (int64, error) {
	rows, err := e.db.QueryContext(ctx, stmt)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		count++
	}
	return count, rows.Err()
}

// ScalarInt runs a single-value query, treating SQL NULL as zero.
// An aggregate over an empty relation reports zero, keeping the
// empty-dataset behavior uniform across formats.
func (e *Engine) ScalarInt(ctx context.Context, stmt string) (int64, error) {
	var v sql.NullInt64
	if err := e.db.QueryRowContext(ctx, stmt).Scan(&v); err != nil {
		return 0, err
	}
	return v.Int64, nil
}

// ScalarFloat runs a single-value query, treating SQL NULL as zero.
func (e *Engine) ScalarFloat(ctx context.Context, stmt string) (float64, error) {
	var v sql.NullFloat64
	if err := e.db.QueryRowContext(ctx, stmt).Scan(&v); err != nil {
		return 0, err
	}
	return v.Float64, nil
}
