// Package model defines the core data structures shared by the benchmark
// pipeline: the synthetic sales schema, the format artifacts, and the
// measurement matrix.
package model

import "time"

// SalesRecord is one row of the synthetic sales dataset.
// Fields use fixed-width primitive types so the same row can be
// materialized identically in Parquet, CSV, and DuckDB.
type SalesRecord struct {
	// TxnID is a UUIDv4 string uniquely identifying the transaction.
	TxnID string

	// StoreID in [1, NumStores]. Small cardinality (tens of stores).
	StoreID int32

	// CustomerID in [1, NumCustomers]. Large cardinality relative to
	// stores and products to simulate realistic fan-out.
	CustomerID int64

	// ProductID in [1, NumProducts].
	ProductID int32

	// Quantity of units sold, in [1, 6].
	Quantity int32

	// UnitPrice in currency units, two decimal places.
	UnitPrice float64

	// Total = Quantity * UnitPrice, rounded to two decimal places.
	Total float64

	// SoldAt is the transaction timestamp, UTC, whole seconds.
	SoldAt time.Time
}

// Dataset is an ordered, immutable sequence of sales records.
// The same dataset is the single source of truth for every format
// artifact so query results stay comparable across formats.
type Dataset struct {
	Records []SalesRecord

	// Seed that produced the records. Zero when loaded from a
	// canonical artifact written by an earlier run.
	Seed int64
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// TotalQuantity sums the quantity column. Used by the round-trip
// sanity check against engine-computed sums.
func (d *Dataset) TotalQuantity() int64 {
	var sum int64
	for i := range d.Records {
		sum += int64(d.Records[i].Quantity)
	}
	return sum
}

// TotalRevenue sums the total column.
func (d *Dataset) TotalRevenue() float64 {
	var sum float64
	for i := range d.Records {
		sum += d.Records[i].Total
	}
	return sum
}

// FormatKind identifies one of the three benchmarked storage formats.
type FormatKind string

const (
	FormatParquet FormatKind = "parquet"
	FormatCSV     FormatKind = "csv"
	FormatDuckDB  FormatKind = "duckdb"
)

// Formats lists all format kinds in the fixed benchmark order.
// Table rows and chart groups follow this order so reports are
// deterministic across runs.
func Formats() []FormatKind {
	return []FormatKind{FormatParquet, FormatCSV, FormatDuckDB}
}

// FormatArtifact describes the on-disk file produced by writing the
// dataset in one format. Immutable after creation.
type FormatArtifact struct {
	Kind FormatKind

	// Path is the artifact location under the output directory.
	Path string

	// WriteDuration covers serialization through final flush/close.
	WriteDuration time.Duration

	// SizeBytes is taken from the filesystem after the write closed.
	SizeBytes int64

	// Rows written to the artifact.
	Rows int64

	// Err is set when the write failed; Path may not exist then.
	Err error
}

// OK reports whether the artifact was written successfully.
func (a *FormatArtifact) OK() bool {
	return a != nil && a.Err == nil
}

// QueryResult is one cell of the comparison matrix: a single query
// executed against a single format artifact.
type QueryResult struct {
	Format    FormatKind
	QueryName string

	// Duration of the query execution. Undefined when Err is set.
	Duration time.Duration

	// Rows returned, for the cross-format sanity check.
	Rows int64

	// Err marks the cell as missing; the rest of the matrix still runs.
	Err error
}

// OK reports whether the cell holds a valid measurement.
func (r *QueryResult) OK() bool {
	return r != nil && r.Err == nil
}

// BenchmarkReport aggregates everything a single run measured.
// Written once at the end of the run, never updated incrementally.
type BenchmarkReport struct {
	// RowCount the run was configured for.
	RowCount int

	// Seed used for generation.
	Seed int64

	// GeneratedAt is the run completion time.
	GeneratedAt time.Time

	// Artifacts keyed by format, one per format kind.
	Artifacts map[FormatKind]*FormatArtifact

	// Results holds all 3x3 cells in (format, query) order.
	Results []QueryResult
}

// Cell returns the result for a (format, query) pair, or nil when the
// matrix does not contain it.
func (r *BenchmarkReport) Cell(kind FormatKind, query string) *QueryResult {
	for i := range r.Results {
		if r.Results[i].Format == kind && r.Results[i].QueryName == query {
			return &r.Results[i]
		}
	}
	return nil
}
