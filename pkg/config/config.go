// Package config provides layered configuration for salesbench.
// Priority: defaults < config file < environment < flags.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all salesbench configuration.
type Config struct {
	Version int `yaml:"version"`

	Bench     BenchConfig     `yaml:"bench"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Writer    WriterConfig    `yaml:"writer"`
	History   HistoryConfig   `yaml:"history"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// BenchConfig controls the benchmark run itself.
type BenchConfig struct {
	// Rows is the synthetic dataset size.
	Rows int `yaml:"rows"`

	// Seed makes generation reproducible: same seed, same data.
	Seed int64 `yaml:"seed"`

	// OutputDir holds all artifacts and the generated report.
	OutputDir string `yaml:"output_dir"`

	// Reuse loads the canonical dataset artifact from a previous run
	// instead of regenerating.
	Reuse bool `yaml:"reuse"`

	// ParallelWrites runs the three format writes concurrently.
	// Per-format timings stay independent either way.
	ParallelWrites bool `yaml:"parallel_writes"`
}

// DatasetConfig bounds the synthetic value distributions.
type DatasetConfig struct {
	NumStores    int32   `yaml:"num_stores"`
	NumCustomers int64   `yaml:"num_customers"`
	NumProducts  int32   `yaml:"num_products"`
	MaxQuantity  int32   `yaml:"max_quantity"`
	MaxUnitPrice float64 `yaml:"max_unit_price"`

	// WindowStart/WindowEnd bound the simulated timestamp range,
	// RFC3339 dates.
	WindowStart string `yaml:"window_start"`
	WindowEnd   string `yaml:"window_end"`
}

// WriterConfig controls format serialization.
type WriterConfig struct {
	// Compression for Parquet output (none, snappy, gzip, zstd, lz4).
	Compression string `yaml:"compression"`

	// BatchSize is rows per Arrow record batch / DuckDB insert tx.
	BatchSize int `yaml:"batch_size"`
}

// HistoryConfig controls run-history recording.
type HistoryConfig struct {
	// Backend is "file" (default) or "redis".
	Backend string `yaml:"backend"`

	// Redis settings, used when Backend is "redis".
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
}

// ArchiveConfig controls optional report upload to S3.
type ArchiveConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// TelemetryConfig controls optional OTLP trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration. Defaults mirror the
// reference experiment: one million rows, seed 42, data/ output dir.
func Default() *Config {
	return &Config{
		Version: 1,
		Bench: BenchConfig{
			Rows:           1_000_000,
			Seed:           42,
			OutputDir:      "data",
			Reuse:          true,
			ParallelWrites: false,
		},
		Dataset: DatasetConfig{
			NumStores:    40,
			NumCustomers: 200_000,
			NumProducts:  500,
			MaxQuantity:  6,
			MaxUnitPrice: 99.99,
			WindowStart:  "2016-01-01T00:00:00Z",
			WindowEnd:    "2025-12-31T23:59:59Z",
		},
		Writer: WriterConfig{
			Compression: "snappy",
			BatchSize:   8192,
		},
		History: HistoryConfig{
			Backend: "file",
		},
		Archive: ArchiveConfig{
			Prefix: "salesbench/",
		},
		Telemetry: TelemetryConfig{
			Endpoint: "localhost:4317",
		},
	}
}

// fileConfig mirrors Config for file parsing. Booleans are pointers so
// merge can tell an explicit false (e.g. `reuse: false`) from an
// absent key; everything else merges on non-zero.
type fileConfig struct {
	Bench struct {
		Rows           int    `yaml:"rows"`
		Seed           int64  `yaml:"seed"`
		OutputDir      string `yaml:"output_dir"`
		Reuse          *bool  `yaml:"reuse"`
		ParallelWrites *bool  `yaml:"parallel_writes"`
	} `yaml:"bench"`

	Dataset DatasetConfig `yaml:"dataset"`
	Writer  WriterConfig  `yaml:"writer"`
	History HistoryConfig `yaml:"history"`

	Archive struct {
		Enabled      *bool  `yaml:"enabled"`
		Bucket       string `yaml:"bucket"`
		Prefix       string `yaml:"prefix"`
		Region       string `yaml:"region"`
		Endpoint     string `yaml:"endpoint"`
		UsePathStyle *bool  `yaml:"use_path_style"`
	} `yaml:"archive"`

	Telemetry struct {
		Enabled  *bool  `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"telemetry"`
}

// Load reads a config file and merges it over the defaults, then applies
// environment overrides. A missing path is not an error when optional.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %q: %w", path, err)
		}
		var partial fileConfig
		if err := yaml.Unmarshal(data, &partial); err != nil {
			return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
		cfg.merge(&partial)
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge applies file values over cfg.
func (c *Config) merge(src *fileConfig) {
	if src.Bench.Rows != 0 {
		c.Bench.Rows = src.Bench.Rows
	}
	if src.Bench.Seed != 0 {
		c.Bench.Seed = src.Bench.Seed
	}
	if src.Bench.OutputDir != "" {
		c.Bench.OutputDir = src.Bench.OutputDir
	}
	if src.Bench.Reuse != nil {
		c.Bench.Reuse = *src.Bench.Reuse
	}
	if src.Bench.ParallelWrites != nil {
		c.Bench.ParallelWrites = *src.Bench.ParallelWrites
	}

	if src.Dataset.NumStores != 0 {
		c.Dataset.NumStores = src.Dataset.NumStores
	}
	if src.Dataset.NumCustomers != 0 {
		c.Dataset.NumCustomers = src.Dataset.NumCustomers
	}
	if src.Dataset.NumProducts != 0 {
		c.Dataset.NumProducts = src.Dataset.NumProducts
	}
	if src.Dataset.MaxQuantity != 0 {
		c.Dataset.MaxQuantity = src.Dataset.MaxQuantity
	}
	if src.Dataset.MaxUnitPrice != 0 {
		c.Dataset.MaxUnitPrice = src.Dataset.MaxUnitPrice
	}
	if src.Dataset.WindowStart != "" {
		c.Dataset.WindowStart = src.Dataset.WindowStart
	}
	if src.Dataset.WindowEnd != "" {
		c.Dataset.WindowEnd = src.Dataset.WindowEnd
	}

	if src.Writer.Compression != "" {
		c.Writer.Compression = src.Writer.Compression
	}
	if src.Writer.BatchSize != 0 {
		c.Writer.BatchSize = src.Writer.BatchSize
	}

	if src.History.Backend != "" {
		c.History.Backend = src.History.Backend
	}
	if src.History.RedisAddr != "" {
		c.History.RedisAddr = src.History.RedisAddr
	}
	if src.History.RedisPassword != "" {
		c.History.RedisPassword = src.History.RedisPassword
	}
	if src.History.RedisDB != 0 {
		c.History.RedisDB = src.History.RedisDB
	}

	if src.Archive.Enabled != nil {
		c.Archive.Enabled = *src.Archive.Enabled
	}
	if src.Archive.Bucket != "" {
		c.Archive.Bucket = src.Archive.Bucket
	}
	if src.Archive.Prefix != "" {
		c.Archive.Prefix = src.Archive.Prefix
	}
	if src.Archive.Region != "" {
		c.Archive.Region = src.Archive.Region
	}
	if src.Archive.Endpoint != "" {
		c.Archive.Endpoint = src.Archive.Endpoint
	}
	if src.Archive.UsePathStyle != nil {
		c.Archive.UsePathStyle = *src.Archive.UsePathStyle
	}

	if src.Telemetry.Enabled != nil {
		c.Telemetry.Enabled = *src.Telemetry.Enabled
	}
	if src.Telemetry.Endpoint != "" {
		c.Telemetry.Endpoint = src.Telemetry.Endpoint
	}
}

// loadEnv applies SALESBENCH_* environment overrides.
func (c *Config) loadEnv() {
	if v := os.Getenv("SALESBENCH_ROWS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Bench.Rows = n
		}
	}
	if v := os.Getenv("SALESBENCH_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Bench.Seed = n
		}
	}
	if v := os.Getenv("SALESBENCH_OUT"); v != "" {
		c.Bench.OutputDir = v
	}
	if v := os.Getenv("SALESBENCH_HISTORY_BACKEND"); v != "" {
		c.History.Backend = v
	}
	if v := os.Getenv("SALESBENCH_REDIS_ADDR"); v != "" {
		c.History.RedisAddr = v
	}
	if v := os.Getenv("SALESBENCH_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
		c.Telemetry.Enabled = true
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Bench.Rows < 0 {
		return fmt.Errorf("bench.rows must be >= 0, got %d", c.Bench.Rows)
	}
	if c.Bench.OutputDir == "" {
		return fmt.Errorf("bench.output_dir must not be empty")
	}
	if c.Dataset.NumStores <= 0 || c.Dataset.NumCustomers <= 0 || c.Dataset.NumProducts <= 0 {
		return fmt.Errorf("dataset cardinalities must be positive")
	}
	if c.Dataset.MaxQuantity <= 0 {
		return fmt.Errorf("dataset.max_quantity must be positive")
	}
	if c.Dataset.MaxUnitPrice <= 0 {
		return fmt.Errorf("dataset.max_unit_price must be positive")
	}
	if c.Writer.BatchSize <= 0 {
		return fmt.Errorf("writer.batch_size must be positive")
	}
	switch c.History.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("history.backend must be file or redis, got %q", c.History.Backend)
	}
	if c.History.Backend == "redis" && c.History.RedisAddr == "" {
		return fmt.Errorf("history.redis_addr required for the redis backend")
	}
	if c.Archive.Enabled && c.Archive.Bucket == "" {
		return fmt.Errorf("archive.bucket required when archive is enabled")
	}
	return nil
}
