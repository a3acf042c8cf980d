package writer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	berrors "github.com/oDuPrado/Benchmark-case/pkg/errors"
)

// createSalesTable is the native table matching the Arrow schema.
const createSalesTable = `
	CREATE TABLE sales (
		txn_id      VARCHAR   NOT NULL,
		store_id    INTEGER   NOT NULL,
		customer_id BIGINT    NOT NULL,
		product_id  INTEGER   NOT NULL,
		quantity    INTEGER   NOT NULL,
		unit_price  DOUBLE    NOT NULL,
		total       DOUBLE    NOT NULL,
		sold_at     TIMESTAMP NOT NULL
	)
`

const insertSalesRow = `
	INSERT INTO sales (txn_id, store_id, customer_id, product_id, quantity, unit_price, total, sold_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// DuckDBWriter writes the dataset into a native DuckDB database file
// using batched prepared-statement inserts inside transactions.
type DuckDBWriter struct {
	path string
	cfg  Config
}

// NewDuckDBWriter creates a DuckDB format writer targeting path.
func NewDuckDBWriter(path string, cfg Config) *DuckDBWriter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &DuckDBWriter{path: path, cfg: cfg}
}

// Kind implements FormatWriter.
func (w *DuckDBWriter) Kind() model.FormatKind {
	return model.FormatDuckDB
}

// Write implements FormatWriter.
func (w *DuckDBWriter) Write(ctx context.Context, ds *model.Dataset) (*model.FormatArtifact, error) {
	start := time.Now()

	rows, err := w.writeFile(ctx, ds)
	if err != nil {
		return nil, berrors.WriteFailed(string(model.FormatDuckDB), err)
	}

	dur := time.Since(start)

	stat, err := os.Stat(w.path)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CodeWriteFlush, "failed to stat duckdb artifact")
	}

	return &model.FormatArtifact{
		Kind:          model.FormatDuckDB,
		Path:          w.path,
		WriteDuration: dur,
		SizeBytes:     stat.Size(),
		Rows:          rows,
	}, nil
}

func (w *DuckDBWriter) writeFile(ctx context.Context, ds *model.Dataset) (int64, error) {
	// Start clean: a stale database would make CREATE TABLE fail and
	// the size measurement meaningless.
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to remove prior duckdb file: %w", err)
	}
	os.Remove(w.path + ".wal")

	db, err := sql.Open("duckdb", w.path)
	if err != nil {
		return 0, fmt.Errorf("failed to open duckdb: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createSalesTable); err != nil {
		return 0, fmt.Errorf("failed to create sales table: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, insertSalesRow)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	var written int64
	for off := 0; off < len(ds.Records); off += w.cfg.BatchSize {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		end := off + w.cfg.BatchSize
		if end > len(ds.Records) {
			end = len(ds.Records)
		}

		n, err := w.insertBatch(ctx, db, stmt, ds.Records[off:end])
		written += n
		if err != nil {
			return written, err
		}
	}

	// Fold the WAL into the database file so the size read after close
	// reflects the whole artifact.
	if _, err := db.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return written, fmt.Errorf("failed to checkpoint duckdb: %w", err)
	}
	if err := db.Close(); err != nil {
		return written, fmt.Errorf("failed to close duckdb: %w", err)
	}

	return written, nil
}

func (w *DuckDBWriter) insertBatch(ctx context.Context, db *sql.DB, stmt *sql.Stmt, records []model.SalesRecord) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	txStmt := tx.Stmt(stmt)
	for i := range records {
		r := &records[i]
		_, err := txStmt.ExecContext(ctx,
			r.TxnID, r.StoreID, r.CustomerID, r.ProductID,
			r.Quantity, r.UnitPrice, r.Total, r.SoldAt.UTC(),
		)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}
	return int64(len(records)), nil
}
