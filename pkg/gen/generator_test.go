package gen

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/oDuPrado/Benchmark-case/pkg/config"
)

func testDatasetConfig() config.DatasetConfig {
	return config.Default().Dataset
}

func TestGenerateExactRowCount(t *testing.T) {
	tests := []struct {
		name string
		rows int
	}{
		{"zero rows", 0},
		{"single row", 1},
		{"batch boundary", 8192},
		{"several batches", 20000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(testDatasetConfig(), tt.rows, 42)
			ds, err := g.Generate(context.Background())
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if ds.Len() != tt.rows {
				t.Errorf("expected %d rows, got %d", tt.rows, ds.Len())
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	const rows = 5000

	first, err := New(testDatasetConfig(), rows, 42).Generate(context.Background())
	if err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	second, err := New(testDatasetConfig(), rows, 42).Generate(context.Background())
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	for i := range first.Records {
		if first.Records[i] != second.Records[i] {
			t.Fatalf("row %d differs between runs:\n  %+v\n  %+v",
				i, first.Records[i], second.Records[i])
		}
	}
}

func TestGenerateDifferentSeeds(t *testing.T) {
	const rows = 1000

	a, err := New(testDatasetConfig(), rows, 1).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := New(testDatasetConfig(), rows, 2).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	same := 0
	for i := range a.Records {
		if a.Records[i].TxnID == b.Records[i].TxnID {
			same++
		}
	}
	if same == rows {
		t.Error("different seeds produced identical txn ids")
	}
}

func TestGenerateBounds(t *testing.T) {
	cfg := testDatasetConfig()
	g := New(cfg, 10000, 42)
	ds, err := g.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	windowStart, _ := time.Parse(time.RFC3339, cfg.WindowStart)
	windowEnd, _ := time.Parse(time.RFC3339, cfg.WindowEnd)

	seen := make(map[string]bool, ds.Len())
	for i, r := range ds.Records {
		if seen[r.TxnID] {
			t.Fatalf("row %d: duplicate txn id %s", i, r.TxnID)
		}
		seen[r.TxnID] = true

		if r.StoreID < 1 || r.StoreID > cfg.NumStores {
			t.Fatalf("row %d: store_id %d out of [1, %d]", i, r.StoreID, cfg.NumStores)
		}
		if r.CustomerID < 1 || r.CustomerID > cfg.NumCustomers {
			t.Fatalf("row %d: customer_id %d out of [1, %d]", i, r.CustomerID, cfg.NumCustomers)
		}
		if r.ProductID < 1 || r.ProductID > cfg.NumProducts {
			t.Fatalf("row %d: product_id %d out of [1, %d]", i, r.ProductID, cfg.NumProducts)
		}
		if r.Quantity < 1 || r.Quantity > cfg.MaxQuantity {
			t.Fatalf("row %d: quantity %d out of [1, %d]", i, r.Quantity, cfg.MaxQuantity)
		}
		if r.UnitPrice < 0.01 || r.UnitPrice > cfg.MaxUnitPrice {
			t.Fatalf("row %d: unit_price %f out of [0.01, %f]", i, r.UnitPrice, cfg.MaxUnitPrice)
		}

		want := round2(float64(r.Quantity) * r.UnitPrice)
		if r.Total != want {
			t.Fatalf("row %d: total %f, want %f", i, r.Total, want)
		}

		if r.SoldAt.Before(windowStart) || r.SoldAt.After(windowEnd) {
			t.Fatalf("row %d: sold_at %v outside window", i, r.SoldAt)
		}
		if r.SoldAt.Nanosecond() != 0 {
			t.Fatalf("row %d: sold_at has sub-second precision", i)
		}
		if r.SoldAt.Location() != time.UTC {
			t.Fatalf("row %d: sold_at not UTC", i)
		}
	}
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testDatasetConfig(), 100000, 42).Generate(ctx)
	if err == nil {
		t.Fatal("expected error from canceled context")
	}
}

func TestMaterializeGeneratesThenReuses(t *testing.T) {
	dir := t.TempDir()
	canonical := filepath.Join(dir, "dataset.parquet")
	ctx := context.Background()

	g := New(testDatasetConfig(), 500, 42)

	first, reused, err := g.Materialize(ctx, canonical, true)
	if err != nil {
		t.Fatalf("first Materialize failed: %v", err)
	}
	if reused {
		t.Error("first run should generate, not reuse")
	}

	second, reused, err := g.Materialize(ctx, canonical, true)
	if err != nil {
		t.Fatalf("second Materialize failed: %v", err)
	}
	if !reused {
		t.Error("second run should reuse the canonical artifact")
	}

	if first.Len() != second.Len() {
		t.Fatalf("row count changed across reuse: %d vs %d", first.Len(), second.Len())
	}
	for i := range first.Records {
		a, b := first.Records[i], second.Records[i]
		if a.TxnID != b.TxnID || a.StoreID != b.StoreID || a.CustomerID != b.CustomerID ||
			a.ProductID != b.ProductID || a.Quantity != b.Quantity ||
			a.UnitPrice != b.UnitPrice || a.Total != b.Total || !a.SoldAt.Equal(b.SoldAt) {
			t.Fatalf("row %d changed across parquet round trip:\n  %+v\n  %+v", i, a, b)
		}
	}
}

func TestMaterializeNoReuseRegenerates(t *testing.T) {
	dir := t.TempDir()
	canonical := filepath.Join(dir, "dataset.parquet")
	ctx := context.Background()

	g := New(testDatasetConfig(), 100, 42)

	if _, _, err := g.Materialize(ctx, canonical, true); err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}

	_, reused, err := g.Materialize(ctx, canonical, false)
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if reused {
		t.Error("reuse disabled but canonical artifact was loaded")
	}
}

func TestPriceCents(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{99.99, 9999},
		{0.01, 1},
		{1.00, 100},
		{49.95, 4995},
	}
	for _, tt := range tests {
		if got := priceCents(tt.in); got != tt.want {
			t.Errorf("priceCents(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestGenerateMaxPriceReachable(t *testing.T) {
	cfg := testDatasetConfig()
	ds, err := New(cfg, 200000, 42).Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var max float64
	for _, r := range ds.Records {
		if r.UnitPrice > max {
			max = r.UnitPrice
		}
	}
	if max != cfg.MaxUnitPrice {
		t.Errorf("max unit_price over 200k rows is %v, want the bound %v to be reachable",
			max, cfg.MaxUnitPrice)
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{1.006, 1.01},
		{2.0, 2.0},
		{0.1 + 0.2, 0.3},
		{99.994, 99.99},
	}
	for _, tt := range tests {
		if got := round2(tt.in); got != tt.want {
			t.Errorf("round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
