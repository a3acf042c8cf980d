package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Bench.Rows != 1_000_000 {
		t.Errorf("expected default rows, got %d", cfg.Bench.Rows)
	}
	if cfg.Bench.Seed != 42 {
		t.Errorf("expected default seed, got %d", cfg.Bench.Seed)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	yaml := `
version: 1
bench:
  rows: 5000
  output_dir: /tmp/out
writer:
  compression: zstd
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Bench.Rows != 5000 {
		t.Errorf("rows not merged: got %d", cfg.Bench.Rows)
	}
	if cfg.Bench.OutputDir != "/tmp/out" {
		t.Errorf("output_dir not merged: got %q", cfg.Bench.OutputDir)
	}
	if cfg.Writer.Compression != "zstd" {
		t.Errorf("compression not merged: got %q", cfg.Writer.Compression)
	}
	// Untouched fields keep their defaults.
	if cfg.Bench.Seed != 42 {
		t.Errorf("seed should keep default, got %d", cfg.Bench.Seed)
	}
	if cfg.Dataset.NumStores != 40 {
		t.Errorf("num_stores should keep default, got %d", cfg.Dataset.NumStores)
	}
}

func TestLoadBooleanKnobsFromFile(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want func(*Config) error
	}{
		{
			"explicit reuse false",
			"bench:\n  reuse: false\n",
			func(c *Config) error {
				if c.Bench.Reuse {
					return fmt.Errorf("reuse: false in config file was ignored; Bench.Reuse = true")
				}
				return nil
			},
		},
		{
			"absent reuse keeps default",
			"bench:\n  rows: 10\n",
			func(c *Config) error {
				if !c.Bench.Reuse {
					return fmt.Errorf("absent reuse key must keep the default true")
				}
				return nil
			},
		},
		{
			"explicit reuse true",
			"bench:\n  reuse: true\n",
			func(c *Config) error {
				if !c.Bench.Reuse {
					return fmt.Errorf("reuse: true not applied")
				}
				return nil
			},
		},
		{
			"parallel writes from file",
			"bench:\n  parallel_writes: true\n",
			func(c *Config) error {
				if !c.Bench.ParallelWrites {
					return fmt.Errorf("parallel_writes: true not applied")
				}
				return nil
			},
		},
		{
			"telemetry enabled then disabled wins",
			"telemetry:\n  enabled: false\n",
			func(c *Config) error {
				if c.Telemetry.Enabled {
					return fmt.Errorf("telemetry.enabled: false not applied")
				}
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "bench.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if err := tt.want(cfg); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SALESBENCH_ROWS", "777")
	t.Setenv("SALESBENCH_SEED", "9")
	t.Setenv("SALESBENCH_OUT", "/tmp/envout")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Bench.Rows != 777 {
		t.Errorf("env rows not applied: got %d", cfg.Bench.Rows)
	}
	if cfg.Bench.Seed != 9 {
		t.Errorf("env seed not applied: got %d", cfg.Bench.Seed)
	}
	if cfg.Bench.OutputDir != "/tmp/envout" {
		t.Errorf("env output dir not applied: got %q", cfg.Bench.OutputDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero rows allowed", func(c *Config) { c.Bench.Rows = 0 }, false},
		{"negative rows", func(c *Config) { c.Bench.Rows = -1 }, true},
		{"empty output dir", func(c *Config) { c.Bench.OutputDir = "" }, true},
		{"zero stores", func(c *Config) { c.Dataset.NumStores = 0 }, true},
		{"zero batch size", func(c *Config) { c.Writer.BatchSize = 0 }, true},
		{"unknown history backend", func(c *Config) { c.History.Backend = "etcd" }, true},
		{"redis without addr", func(c *Config) { c.History.Backend = "redis" }, true},
		{"redis with addr", func(c *Config) {
			c.History.Backend = "redis"
			c.History.RedisAddr = "localhost:6379"
		}, false},
		{"archive without bucket", func(c *Config) { c.Archive.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("bench: ["), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for invalid yaml")
	}
}
