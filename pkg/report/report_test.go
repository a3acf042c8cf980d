package report

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	"github.com/oDuPrado/Benchmark-case/pkg/query"
)

// fakeReport builds a fully populated measurement matrix.
func fakeReport() *model.BenchmarkReport {
	rep := &model.BenchmarkReport{
		RowCount:    1000,
		Seed:        42,
		GeneratedAt: time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC),
		Artifacts:   make(map[model.FormatKind]*model.FormatArtifact),
	}

	sizes := map[model.FormatKind]int64{
		model.FormatParquet: 10 << 20,
		model.FormatCSV:     40 << 20,
		model.FormatDuckDB:  15 << 20,
	}
	for _, kind := range model.Formats() {
		rep.Artifacts[kind] = &model.FormatArtifact{
			Kind:          kind,
			Path:          "data/sales." + string(kind),
			WriteDuration: 1500 * time.Millisecond,
			SizeBytes:     sizes[kind],
			Rows:          1000,
		}
	}

	for _, kind := range model.Formats() {
		for _, name := range query.QueryNames() {
			rep.Results = append(rep.Results, model.QueryResult{
				Format:    kind,
				QueryName: name,
				Duration:  250 * time.Millisecond,
				Rows:      10,
			})
		}
	}
	return rep
}

func TestBuildTableShape(t *testing.T) {
	table := BuildTable(fakeReport())

	wantCols := 3 + len(query.QueryNames())
	if len(table.Header) != wantCols {
		t.Fatalf("expected %d header columns, got %d", wantCols, len(table.Header))
	}
	if table.Header[0] != "format" || table.Header[1] != "write_s" || table.Header[2] != "size_mb" {
		t.Errorf("unexpected header prefix: %v", table.Header[:3])
	}

	if len(table.Rows) != len(model.Formats()) {
		t.Fatalf("expected %d rows, got %d", len(model.Formats()), len(table.Rows))
	}
	for i, kind := range model.Formats() {
		if table.Rows[i][0] != string(kind) {
			t.Errorf("row %d: got format %q, want %q", i, table.Rows[i][0], kind)
		}
		for j, cell := range table.Rows[i] {
			if cell == notAvailable {
				t.Errorf("row %d col %d unexpectedly %q", i, j, notAvailable)
			}
		}
	}

	if table.Rows[0][1] != "1.500" {
		t.Errorf("write_s should use three decimals: %q", table.Rows[0][1])
	}
	if table.Rows[0][2] != "10.0" {
		t.Errorf("size_mb should use one decimal: %q", table.Rows[0][2])
	}
}

func TestBuildTableMissingCells(t *testing.T) {
	rep := fakeReport()

	// Break the CSV artifact and one parquet cell.
	rep.Artifacts[model.FormatCSV] = &model.FormatArtifact{
		Kind: model.FormatCSV,
		Err:  errors.New("disk full"),
	}
	rep.Cell(model.FormatParquet, "sales_by_store").Err = errors.New("boom")

	table := BuildTable(rep)

	if len(table.Rows) != len(model.Formats()) {
		t.Fatal("failed formats must still get a table row")
	}

	csvRow := table.Rows[1]
	if csvRow[1] != notAvailable || csvRow[2] != notAvailable {
		t.Errorf("failed artifact cells should read %q: %v", notAvailable, csvRow)
	}

	parquetRow := table.Rows[0]
	if parquetRow[3] != notAvailable {
		t.Errorf("failed query cell should read %q, got %q", notAvailable, parquetRow[3])
	}
	if parquetRow[4] == notAvailable {
		t.Error("healthy cells must not be blanked by a sibling failure")
	}
}

func TestTableMarkdown(t *testing.T) {
	md := BuildTable(fakeReport()).Markdown()

	lines := strings.Split(strings.TrimRight(md, "\n"), "\n")
	wantLines := 2 + len(model.Formats())
	if len(lines) != wantLines {
		t.Fatalf("expected %d markdown lines, got %d", wantLines, len(lines))
	}
	if !strings.HasPrefix(lines[0], "| format |") {
		t.Errorf("unexpected header line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "---") {
		t.Errorf("missing separator line: %q", lines[1])
	}
}

func TestWriteNotebookStructure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.ipynb")

	rep := fakeReport()
	table := BuildTable(rep)
	charts := []Chart{
		{Title: "Query latency by format", Path: filepath.Join(dir, "charts", "query_latency.png")},
		{Title: "On-disk size by format", Path: filepath.Join(dir, "charts", "artifact_size.png")},
	}

	if err := WriteNotebook(path, rep, table, charts); err != nil {
		t.Fatalf("WriteNotebook failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var nb struct {
		Cells []struct {
			CellType string   `json:"cell_type"`
			Source   []string `json:"source"`
		} `json:"cells"`
		NBFormat int `json:"nbformat"`
	}
	if err := json.Unmarshal(data, &nb); err != nil {
		t.Fatalf("notebook is not valid JSON: %v", err)
	}
	if nb.NBFormat != 4 {
		t.Errorf("expected nbformat 4, got %d", nb.NBFormat)
	}
	if len(nb.Cells) != 6 {
		t.Fatalf("expected 6 cells, got %d", len(nb.Cells))
	}

	full := ""
	tables := 0
	for _, cell := range nb.Cells {
		if cell.CellType != "markdown" {
			t.Errorf("unexpected cell type %q", cell.CellType)
		}
		src := strings.Join(cell.Source, "")
		full += src
		if strings.Contains(src, "| format |") {
			tables++
		}
	}
	if tables != 1 {
		t.Errorf("report must contain exactly one comparison table, found %d", tables)
	}

	for _, section := range []string{"# File Format Benchmark", "## Methodology", "## Results", "## Charts", "## Discussion", "## Conclusion"} {
		if !strings.Contains(full, section) {
			t.Errorf("missing section %q", section)
		}
	}

	// Chart references are relative to the notebook.
	if !strings.Contains(full, "](charts/query_latency.png)") {
		t.Error("chart image reference missing or not relative")
	}
}

func TestWriteNotebookDeterministic(t *testing.T) {
	dir := t.TempDir()
	rep := fakeReport()
	table := BuildTable(rep)

	a := filepath.Join(dir, "a.ipynb")
	b := filepath.Join(dir, "b.ipynb")
	if err := WriteNotebook(a, rep, table, nil); err != nil {
		t.Fatal(err)
	}
	if err := WriteNotebook(b, rep, table, nil); err != nil {
		t.Fatal(err)
	}

	da, _ := os.ReadFile(a)
	db, _ := os.ReadFile(b)
	if string(da) != string(db) {
		t.Error("identical measurements must render byte-identical notebooks")
	}
}

func TestRenderCharts(t *testing.T) {
	dir := t.TempDir()

	charts, err := RenderCharts(fakeReport(), dir)
	if err != nil {
		t.Fatalf("RenderCharts failed: %v", err)
	}
	if len(charts) != 3 {
		t.Fatalf("expected 3 charts, got %d", len(charts))
	}

	wantFiles := []string{"query_latency.png", "artifact_size.png", "write_time.png"}
	for i, c := range charts {
		if filepath.Base(c.Path) != wantFiles[i] {
			t.Errorf("chart %d: got %s, want %s", i, filepath.Base(c.Path), wantFiles[i])
		}
		stat, err := os.Stat(c.Path)
		if err != nil {
			t.Errorf("chart %s not written: %v", c.Path, err)
			continue
		}
		if stat.Size() == 0 {
			t.Errorf("chart %s is empty", c.Path)
		}
	}
}

func TestRenderChartsWithMissingCells(t *testing.T) {
	dir := t.TempDir()
	rep := fakeReport()
	rep.Artifacts[model.FormatDuckDB] = &model.FormatArtifact{
		Kind: model.FormatDuckDB,
		Err:  errors.New("write failed"),
	}
	for i := range rep.Results {
		if rep.Results[i].Format == model.FormatDuckDB {
			rep.Results[i].Err = errors.New("skipped")
		}
	}

	if _, err := RenderCharts(rep, dir); err != nil {
		t.Fatalf("charts must tolerate missing cells: %v", err)
	}
}

func TestBuilderBuild(t *testing.T) {
	dir := t.TempDir()

	out, err := NewBuilder(dir).Build(context.Background(), fakeReport())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	for _, path := range append([]string{out.NotebookPath, out.WorkbookPath}, out.ChartPaths...) {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("output %s missing: %v", path, err)
		}
	}
	if filepath.Base(out.NotebookPath) != "report.ipynb" {
		t.Errorf("unexpected notebook name %s", out.NotebookPath)
	}
	if filepath.Base(out.WorkbookPath) != "results.xlsx" {
		t.Errorf("unexpected workbook name %s", out.WorkbookPath)
	}
}
