package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	"github.com/oDuPrado/Benchmark-case/pkg/query"
	"github.com/oDuPrado/Benchmark-case/pkg/tui"
)

// detectKind maps an artifact extension to its format kind.
func detectKind(path string) (model.FormatKind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return model.FormatParquet, nil
	case ".csv":
		return model.FormatCSV, nil
	case ".duckdb", ".db":
		return model.FormatDuckDB, nil
	default:
		return "", fmt.Errorf("unable to detect format from extension of %s", path)
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(inspectPath); err != nil {
		return fmt.Errorf("artifact does not exist: %s", inspectPath)
	}

	kind, err := detectKind(inspectPath)
	if err != nil {
		return err
	}

	engine, err := query.NewEngine()
	if err != nil {
		return err
	}
	defer engine.Close()

	ctx := cmd.Context()
	if err := engine.Register(ctx, kind, inspectPath); err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}

	rows, err := engine.ScalarInt(ctx, "SELECT COUNT(*) FROM sales")
	if err != nil {
		return fmt.Errorf("failed to count rows: %w", err)
	}
	quantity, err := engine.ScalarInt(ctx, "SELECT SUM(quantity) FROM sales")
	if err != nil {
		return fmt.Errorf("failed to sum quantity: %w", err)
	}
	revenue, err := engine.ScalarFloat(ctx, "SELECT SUM(total) FROM sales")
	if err != nil {
		return fmt.Errorf("failed to sum revenue: %w", err)
	}
	stores, err := engine.ScalarInt(ctx, "SELECT COUNT(DISTINCT store_id) FROM sales")
	if err != nil {
		return fmt.Errorf("failed to count stores: %w", err)
	}

	stat, _ := os.Stat(inspectPath)
	size := int64(0)
	if stat != nil {
		size = stat.Size()
	}

	fmt.Printf("Path:     %s\n", inspectPath)
	fmt.Printf("Format:   %s\n", kind)
	fmt.Printf("Size:     %s\n", tui.FormatBytes(size))
	fmt.Printf("Rows:     %s\n", tui.FormatNumber(rows))
	fmt.Printf("Quantity: %s units\n", tui.FormatNumber(quantity))
	fmt.Printf("Revenue:  %.2f\n", revenue)
	fmt.Printf("Stores:   %d\n", stores)

	return nil
}

func runQueries(cmd *cobra.Command, args []string) error {
	for _, q := range query.Catalog() {
		fmt.Printf("-- %s\n%s\n\n", q.Name, q.SQL)
	}
	return nil
}
