// Package gen produces the synthetic sales dataset and manages the
// canonical on-disk artifact used to skip regeneration between runs.
package gen

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	"github.com/oDuPrado/Benchmark-case/pkg/config"
	berrors "github.com/oDuPrado/Benchmark-case/pkg/errors"
	"github.com/oDuPrado/Benchmark-case/pkg/writer"
)

// Generator builds datasets from a seeded random source. The same
// (seed, rows, bounds) triple always yields the same records.
type Generator struct {
	cfg  config.DatasetConfig
	rows int
	seed int64

	// OnProgress, when set, is called every progressStep rows and once
	// at completion. Purely cosmetic.
	OnProgress func(done, total int)
}

const progressStep = 50_000

// New creates a generator for the given dataset bounds.
func New(cfg config.DatasetConfig, rows int, seed int64) *Generator {
	return &Generator{cfg: cfg, rows: rows, seed: seed}
}

// Generate produces exactly g.rows records. Rows of zero yields an
// empty dataset, which downstream phases turn into empty artifacts and
// empty query results uniformly across formats.
func (g *Generator) Generate(ctx context.Context) (*model.Dataset, error) {
	windowStart, windowEnd, err := g.window()
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CodeGenerateFailed, "invalid timestamp window")
	}
	windowSeconds := windowEnd.Unix() - windowStart.Unix()
	if windowSeconds <= 0 {
		return nil, berrors.New(berrors.CodeGenerateFailed, "timestamp window must not be empty").
			WithContext("start", g.cfg.WindowStart).
			WithContext("end", g.cfg.WindowEnd)
	}

	rng := rand.New(rand.NewSource(g.seed))
	maxCents := priceCents(g.cfg.MaxUnitPrice)

	records := make([]model.SalesRecord, g.rows)
	for i := 0; i < g.rows; i++ {
		if i%progressStep == 0 {
			select {
			case <-ctx.Done():
				return nil, berrors.Wrap(ctx.Err(), berrors.CodeGenerateFailed, "generation canceled")
			default:
			}
			if g.OnProgress != nil {
				g.OnProgress(i, g.rows)
			}
		}

		// UUIDs are drawn from the seeded source so the whole row,
		// ids included, is reproducible.
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, berrors.Wrap(err, berrors.CodeGenerateFailed, "failed to generate txn id")
		}

		qty := int32(1 + rng.Intn(int(g.cfg.MaxQuantity)))
		// Prices are whole cents so the two-decimal invariant holds
		// exactly in every format.
		price := float64(1+rng.Intn(maxCents)) / 100
		total := round2(float64(qty) * price)

		records[i] = model.SalesRecord{
			TxnID:      id.String(),
			StoreID:    int32(1 + rng.Intn(int(g.cfg.NumStores))),
			CustomerID: 1 + rng.Int63n(g.cfg.NumCustomers),
			ProductID:  int32(1 + rng.Intn(int(g.cfg.NumProducts))),
			Quantity:   qty,
			UnitPrice:  price,
			Total:      total,
			SoldAt:     windowStart.Add(time.Duration(rng.Int63n(windowSeconds)) * time.Second).UTC(),
		}
	}

	if g.OnProgress != nil {
		g.OnProgress(g.rows, g.rows)
	}

	return &model.Dataset{Records: records, Seed: g.seed}, nil
}

// Materialize returns the dataset for this run. With reuse enabled and
// a canonical artifact present it loads that artifact unchanged;
// otherwise it generates fresh data and persists it to canonicalPath.
// A canonical location that cannot be written is fatal.
func (g *Generator) Materialize(ctx context.Context, canonicalPath string, reuse bool) (*model.Dataset, bool, error) {
	if reuse {
		if _, err := os.Stat(canonicalPath); err == nil {
			ds, err := LoadParquet(ctx, canonicalPath)
			if err != nil {
				return nil, false, berrors.Wrap(err, berrors.CodeDatasetLoad, "failed to load canonical dataset").
					WithContext("path", canonicalPath)
			}
			return ds, true, nil
		}
	}

	ds, err := g.Generate(ctx)
	if err != nil {
		return nil, false, err
	}

	if _, err := writer.WriteParquetFile(ctx, ds, canonicalPath, writer.DefaultConfig()); err != nil {
		return nil, false, berrors.Wrap(err, berrors.CodeDatasetPersist, "failed to persist canonical dataset").
			WithContext("path", canonicalPath)
	}

	return ds, false, nil
}

// window parses the configured timestamp bounds.
func (g *Generator) window() (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, g.cfg.WindowStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("window_start: %w", err)
	}
	end, err := time.Parse(time.RFC3339, g.cfg.WindowEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("window_end: %w", err)
	}
	return start.UTC(), end.UTC(), nil
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

// priceCents converts a price bound to whole cents. Rounding matters:
// truncating 99.99*100 = 9998.999... would silently lower the bound.
func priceCents(v float64) int {
	return int(math.Round(v * 100))
}
