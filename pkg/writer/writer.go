// Package writer serializes the sales dataset into the three benchmarked
// formats: Parquet (Apache Arrow), delimited text (CSV), and a native
// DuckDB database file.
package writer

import (
	"context"

	"github.com/oDuPrado/Benchmark-case/internal/model"
)

// FormatWriter materializes a dataset as one on-disk artifact.
// Write measures its own wall-clock duration around the full
// serialization, including flush and close, and reads the artifact size
// from the filesystem only after the file is closed.
type FormatWriter interface {
	// Kind identifies the output format.
	Kind() model.FormatKind

	// Write serializes the full dataset, overwriting any prior artifact.
	Write(ctx context.Context, ds *model.Dataset) (*model.FormatArtifact, error)
}

// Config holds writer configuration.
type Config struct {
	// BatchSize is rows per Arrow record batch and per DuckDB insert
	// transaction.
	BatchSize int

	// Compression for Parquet output.
	Compression CompressionType
}

// CompressionType represents Parquet compression options.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionSnappy
	CompressionGzip
	CompressionZstd
	CompressionLZ4
)

// String returns the compression type name.
func (c CompressionType) String() string {
	switch c {
	case CompressionSnappy:
		return "snappy"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "none"
	}
}

// ParseCompression parses a compression type string.
func ParseCompression(s string) CompressionType {
	switch s {
	case "snappy":
		return CompressionSnappy
	case "gzip":
		return CompressionGzip
	case "zstd":
		return CompressionZstd
	case "lz4":
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchSize:   8192,
		Compression: CompressionSnappy,
	}
}

// ForKind returns the writer for a format kind writing to path.
func ForKind(kind model.FormatKind, path string, cfg Config) FormatWriter {
	switch kind {
	case model.FormatParquet:
		return NewParquetWriter(path, cfg)
	case model.FormatCSV:
		return NewCSVWriter(path)
	case model.FormatDuckDB:
		return NewDuckDBWriter(path, cfg)
	default:
		return nil
	}
}
