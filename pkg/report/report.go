// Package report turns the measurement matrix into the run outputs:
// a comparison table, chart images, a Jupyter notebook document, and
// an Excel workbook of the raw numbers.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	berrors "github.com/oDuPrado/Benchmark-case/pkg/errors"
	"github.com/oDuPrado/Benchmark-case/pkg/query"
)

// notAvailable marks a missing matrix cell in rendered output.
// Missing cells are shown explicitly, never omitted.
const notAvailable = "n/a"

// Output lists the files a report build produced.
type Output struct {
	NotebookPath string
	WorkbookPath string
	ChartPaths   []string
}

// Builder renders the benchmark report under the output directory.
type Builder struct {
	outDir string
}

// NewBuilder creates a report builder writing to outDir.
func NewBuilder(outDir string) *Builder {
	return &Builder{outDir: outDir}
}

// Build renders charts, the notebook, and the workbook. Any failure
// here is fatal for the run: the report is the final step and has no
// fallback.
func (b *Builder) Build(ctx context.Context, rep *model.BenchmarkReport) (*Output, error) {
	chartDir := filepath.Join(b.outDir, "charts")
	if err := os.MkdirAll(chartDir, 0755); err != nil {
		return nil, berrors.Wrap(err, berrors.CodeChartRender, "failed to create chart directory")
	}

	charts, err := RenderCharts(rep, chartDir)
	if err != nil {
		return nil, berrors.Wrap(err, berrors.CodeChartRender, "failed to render charts")
	}

	table := BuildTable(rep)

	notebookPath := filepath.Join(b.outDir, "report.ipynb")
	if err := WriteNotebook(notebookPath, rep, table, charts); err != nil {
		return nil, berrors.Wrap(err, berrors.CodeNotebookWrite, "failed to write notebook")
	}

	workbookPath := filepath.Join(b.outDir, "results.xlsx")
	if err := WriteWorkbook(workbookPath, rep, table); err != nil {
		return nil, berrors.Wrap(err, berrors.CodeWorkbookWrite, "failed to write workbook")
	}

	chartPaths := make([]string, len(charts))
	for i, c := range charts {
		chartPaths[i] = c.Path
	}

	return &Output{
		NotebookPath: notebookPath,
		WorkbookPath: workbookPath,
		ChartPaths:   chartPaths,
	}, nil
}

// Table is the rendered comparison matrix. Row order follows
// model.Formats(), column order follows the query catalog, so the
// table is byte-stable across runs with identical measurements.
type Table struct {
	Header []string
	Rows   [][]string
}

// BuildTable assembles the comparison table from a report. Formats
// with missing artifacts still get a row; their cells read "n/a".
func BuildTable(rep *model.BenchmarkReport) *Table {
	names := query.QueryNames()

	header := []string{"format", "write_s", "size_mb"}
	for _, name := range names {
		header = append(header, name+"_s")
	}

	t := &Table{Header: header}
	for _, kind := range model.Formats() {
		row := []string{string(kind)}

		artifact := rep.Artifacts[kind]
		if artifact.OK() {
			row = append(row,
				fmt.Sprintf("%.3f", artifact.WriteDuration.Seconds()),
				fmt.Sprintf("%.1f", float64(artifact.SizeBytes)/(1024*1024)))
		} else {
			row = append(row, notAvailable, notAvailable)
		}

		for _, name := range names {
			cell := rep.Cell(kind, name)
			if cell.OK() {
				row = append(row, fmt.Sprintf("%.3f", cell.Duration.Seconds()))
			} else {
				row = append(row, notAvailable)
			}
		}

		t.Rows = append(t.Rows, row)
	}
	return t
}

// Markdown renders the table as a GitHub-style markdown table.
func (t *Table) Markdown() string {
	var sb strings.Builder

	sb.WriteString("| " + strings.Join(t.Header, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(t.Header)) + "\n")
	for _, row := range t.Rows {
		sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
	}

	return sb.String()
}
