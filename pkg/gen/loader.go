package gen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/oDuPrado/Benchmark-case/internal/model"
)

// LoadParquet reads a canonical dataset artifact back into memory
// through DuckDB, preserving row order. The loaded records are
// identical to what was written: ints, float64 values, and
// whole-second UTC timestamps all survive the Parquet round trip.
func LoadParquet(ctx context.Context, path string) (*model.Dataset, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(
		"SELECT txn_id, store_id, customer_id, product_id, quantity, unit_price, total, sold_at FROM read_parquet('%s')",
		strings.ReplaceAll(path, "'", "''"))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet dataset: %w", err)
	}
	defer rows.Close()

	ds := &model.Dataset{}
	for rows.Next() {
		var r model.SalesRecord
		if err := rows.Scan(&r.TxnID, &r.StoreID, &r.CustomerID, &r.ProductID,
			&r.Quantity, &r.UnitPrice, &r.Total, &r.SoldAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset row: %w", err)
		}
		r.SoldAt = r.SoldAt.UTC()
		ds.Records = append(ds.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("dataset scan failed: %w", err)
	}

	return ds, nil
}
