package writer

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	"github.com/oDuPrado/Benchmark-case/pkg/query"
)

// readBack opens an artifact through the query engine and returns
// (rows, total quantity).
func readBack(t *testing.T, kind model.FormatKind, path string) (int64, int64) {
	t.Helper()

	engine, err := query.NewEngine()
	if err != nil {
		t.Fatalf("failed to start engine: %v", err)
	}
	defer engine.Close()

	ctx := context.Background()
	if err := engine.Register(ctx, kind, path); err != nil {
		t.Fatalf("failed to register %s artifact: %v", kind, err)
	}

	rows, err := engine.ScalarInt(ctx, "SELECT COUNT(*) FROM sales")
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	qty, err := engine.ScalarInt(ctx, "SELECT SUM(quantity) FROM sales")
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	return rows, qty
}

func TestParquetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.parquet")
	ds := testDataset(1000)

	artifact, err := NewParquetWriter(path, DefaultConfig()).Write(context.Background(), ds)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if artifact.Rows != 1000 {
		t.Errorf("expected 1000 rows written, got %d", artifact.Rows)
	}

	rows, qty := readBack(t, model.FormatParquet, path)
	if rows != int64(ds.Len()) {
		t.Errorf("row count mismatch: wrote %d, read %d", ds.Len(), rows)
	}
	if qty != ds.TotalQuantity() {
		t.Errorf("quantity sum mismatch: wrote %d, read %d", ds.TotalQuantity(), qty)
	}
}

func TestParquetEmptyDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.parquet")

	artifact, err := NewParquetWriter(path, DefaultConfig()).Write(context.Background(), &model.Dataset{})
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if artifact.Rows != 0 {
		t.Errorf("expected 0 rows, got %d", artifact.Rows)
	}

	// Schema-only file must still be readable.
	rows, _ := readBack(t, model.FormatParquet, path)
	if rows != 0 {
		t.Errorf("expected empty relation, got %d rows", rows)
	}
}

func TestParquetCompressionCodecs(t *testing.T) {
	ds := testDataset(200)
	for _, comp := range []CompressionType{CompressionNone, CompressionSnappy, CompressionGzip, CompressionZstd} {
		t.Run(comp.String(), func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "sales.parquet")
			cfg := DefaultConfig()
			cfg.Compression = comp

			if _, err := NewParquetWriter(path, cfg).Write(context.Background(), ds); err != nil {
				t.Fatalf("Write with %s failed: %v", comp, err)
			}
			rows, _ := readBack(t, model.FormatParquet, path)
			if rows != int64(ds.Len()) {
				t.Errorf("row count mismatch with %s: %d", comp, rows)
			}
		})
	}
}

func TestDuckDBRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.duckdb")
	ds := testDataset(1000)

	cfg := DefaultConfig()
	cfg.BatchSize = 256 // force multiple insert transactions

	artifact, err := NewDuckDBWriter(path, cfg).Write(context.Background(), ds)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if artifact.Rows != 1000 {
		t.Errorf("expected 1000 rows written, got %d", artifact.Rows)
	}

	rows, qty := readBack(t, model.FormatDuckDB, path)
	if rows != int64(ds.Len()) {
		t.Errorf("row count mismatch: wrote %d, read %d", ds.Len(), rows)
	}
	if qty != ds.TotalQuantity() {
		t.Errorf("quantity sum mismatch: wrote %d, read %d", ds.TotalQuantity(), qty)
	}
}

func TestDuckDBOverwritesStaleDatabase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.duckdb")
	ctx := context.Background()

	if _, err := NewDuckDBWriter(path, DefaultConfig()).Write(ctx, testDataset(500)); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if _, err := NewDuckDBWriter(path, DefaultConfig()).Write(ctx, testDataset(50)); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	rows, _ := readBack(t, model.FormatDuckDB, path)
	if rows != 50 {
		t.Errorf("stale rows survived overwrite: %d", rows)
	}
}

func TestCSVReadBackThroughEngine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sales.csv")
	ds := testDataset(300)

	if _, err := NewCSVWriter(path).Write(context.Background(), ds); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	rows, qty := readBack(t, model.FormatCSV, path)
	if rows != int64(ds.Len()) {
		t.Errorf("row count mismatch: wrote %d, read %d", ds.Len(), rows)
	}
	if qty != ds.TotalQuantity() {
		t.Errorf("quantity sum mismatch: wrote %d, read %d", ds.TotalQuantity(), qty)
	}
}
