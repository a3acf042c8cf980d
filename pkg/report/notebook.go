package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oDuPrado/Benchmark-case/internal/model"
)

// The notebook is plain nbformat 4 JSON assembled by hand: there is no
// Go nbformat library, and the format is a small stable JSON schema.

type notebook struct {
	Cells         []notebookCell   `json:"cells"`
	Metadata      notebookMetadata `json:"metadata"`
	NBFormat      int              `json:"nbformat"`
	NBFormatMinor int              `json:"nbformat_minor"`
}

type notebookMetadata struct {
	LanguageInfo struct {
		Name string `json:"name"`
	} `json:"language_info"`
}

type notebookCell struct {
	CellType string                 `json:"cell_type"`
	Metadata map[string]interface{} `json:"metadata"`
	Source   []string               `json:"source"`
}

// markdownCell splits text into nbformat source lines, each line
// keeping its trailing newline except the last.
func markdownCell(text string) notebookCell {
	lines := strings.SplitAfter(strings.TrimRight(text, "\n"), "\n")
	return notebookCell{
		CellType: "markdown",
		Metadata: map[string]interface{}{},
		Source:   lines,
	}
}

// WriteNotebook emits the report notebook. Section order is fixed:
// title, methodology, the single results table, chart images,
// discussion, conclusion.
func WriteNotebook(path string, rep *model.BenchmarkReport, table *Table, charts []Chart) error {
	nb := notebook{
		NBFormat:      4,
		NBFormatMinor: 5,
	}
	nb.Metadata.LanguageInfo.Name = "markdown"

	nb.Cells = append(nb.Cells,
		markdownCell("# File Format Benchmark\n\nAutomatically generated report comparing Parquet, CSV, and native DuckDB storage for a synthetic sales dataset."),
		markdownCell(methodologySection(rep)),
		markdownCell("## Results\n\n"+table.Markdown()),
		markdownCell(chartsSection(path, charts)),
		markdownCell(discussionSection(rep)),
		markdownCell(conclusionSection(rep)),
	)

	data, err := json.MarshalIndent(&nb, "", " ")
	if err != nil {
		return fmt.Errorf("failed to marshal notebook: %w", err)
	}
	data = append(data, '\n')

	return os.WriteFile(path, data, 0644)
}

func methodologySection(rep *model.BenchmarkReport) string {
	return fmt.Sprintf(`## Methodology

- **Dataset**: %d synthetic sales rows (seed %d), 8 columns.
- **Formats**: Parquet (columnar), CSV (plain text), and the native DuckDB database file.
- **Metrics**: write time, on-disk size, and the latency of three fixed SQL queries executed through DuckDB.
- Missing cells are reported as `+"`"+notAvailable+"`"+` when a write or query failed; the remaining matrix is unaffected.`,
		rep.RowCount, rep.Seed)
}

func chartsSection(notebookPath string, charts []Chart) string {
	var sb strings.Builder
	sb.WriteString("## Charts\n")
	base := filepath.Dir(notebookPath)
	for _, c := range charts {
		rel, err := filepath.Rel(base, c.Path)
		if err != nil {
			rel = c.Path
		}
		sb.WriteString(fmt.Sprintf("\n![%s](%s)\n", c.Title, filepath.ToSlash(rel)))
	}
	return sb.String()
}

func discussionSection(rep *model.BenchmarkReport) string {
	var sb strings.Builder
	sb.WriteString("## Discussion\n\n")

	if smallest := smallestArtifact(rep); smallest != nil {
		sb.WriteString(fmt.Sprintf("- **%s** produced the smallest artifact (%.1f MB).\n",
			smallest.Kind, float64(smallest.SizeBytes)/(1024*1024)))
	}
	if fastest, total := fastestFormat(rep); fastest != "" {
		sb.WriteString(fmt.Sprintf("- **%s** had the lowest combined query latency (%.3f s over the full catalog).\n",
			fastest, total))
	}
	for _, kind := range model.Formats() {
		if a := rep.Artifacts[kind]; !a.OK() {
			sb.WriteString(fmt.Sprintf("- **%s** could not be written this run; its cells are marked %s.\n",
				kind, notAvailable))
		}
	}
	sb.WriteString("- CSV carries per-value parsing cost on every read, while the columnar and native formats pay encoding cost once at write time.\n")

	return sb.String()
}

func conclusionSection(rep *model.BenchmarkReport) string {
	return fmt.Sprintf(`## Conclusion

Format choice directly drives storage cost and query latency. For local
analytical pipelines, Parquet or the native DuckDB file are preferable
to CSV, which should be reserved for interchange with tools that accept
nothing else.

*Generated at %s.*`, rep.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
}

// smallestArtifact returns the successful artifact with the fewest
// bytes, or nil when every write failed.
func smallestArtifact(rep *model.BenchmarkReport) *model.FormatArtifact {
	var best *model.FormatArtifact
	for _, kind := range model.Formats() {
		a := rep.Artifacts[kind]
		if !a.OK() {
			continue
		}
		if best == nil || a.SizeBytes < best.SizeBytes {
			best = a
		}
	}
	return best
}

// fastestFormat returns the format with the lowest summed query time
// across complete rows of the matrix.
func fastestFormat(rep *model.BenchmarkReport) (model.FormatKind, float64) {
	var bestKind model.FormatKind
	var bestTotal float64

	for _, kind := range model.Formats() {
		total := 0.0
		complete := true
		for _, res := range rep.Results {
			if res.Format != kind {
				continue
			}
			if !res.OK() {
				complete = false
				break
			}
			total += res.Duration.Seconds()
		}
		if !complete {
			continue
		}
		if bestKind == "" || total < bestTotal {
			bestKind = kind
			bestTotal = total
		}
	}
	return bestKind, bestTotal
}
