// Package tui renders benchmark progress and results to the terminal.
// Purely cosmetic; nothing here is a correctness dependency.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"

	"github.com/oDuPrado/Benchmark-case/internal/model"
)

var (
	accent  = lipgloss.Color("#FF8800")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")
	failure = lipgloss.Color("#FF3333")
	white   = lipgloss.Color("#FFFFFF")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(white)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
	failStyle    = lipgloss.NewStyle().Foreground(failure).Bold(true)
)

// PrintHeader prints the tool banner.
func PrintHeader(version string) {
	fmt.Println()
	fmt.Println(titleStyle.Render("  SALESBENCH") + mutedStyle.Render(" v"+version))
	fmt.Println(mutedStyle.Render("  DuckDB file-format benchmark: parquet vs csv vs native"))
	fmt.Println()
}

// PrintPhase prints a phase banner.
func PrintPhase(name string) {
	fmt.Println(accentStyle.Render("▸ " + name))
}

// PrintArtifact prints one format write result.
func PrintArtifact(a *model.FormatArtifact) {
	if !a.OK() {
		fmt.Printf("  %s %-8s %s\n",
			failStyle.Render("✗"), a.Kind, mutedStyle.Render(a.Err.Error()))
		return
	}
	fmt.Printf("  %s %-8s %s %s\n",
		successStyle.Render("✓"), a.Kind,
		titleStyle.Render(FormatDuration(a.WriteDuration)),
		mutedStyle.Render("("+FormatBytes(a.SizeBytes)+")"))
}

// PrintCell prints one (format, query) measurement.
func PrintCell(res model.QueryResult) {
	if !res.OK() {
		fmt.Printf("  %s %-8s %-26s %s\n",
			failStyle.Render("✗"), res.Format, res.QueryName, mutedStyle.Render("skipped"))
		return
	}
	fmt.Printf("  %s %-8s %-26s %s %s\n",
		successStyle.Render("✓"), res.Format, res.QueryName,
		titleStyle.Render(FormatDuration(res.Duration)),
		mutedStyle.Render(fmt.Sprintf("(%d rows)", res.Rows)))
}

// PrintSummary prints the final run summary.
func PrintSummary(rep *model.BenchmarkReport, notebookPath string, elapsed time.Duration) {
	fmt.Println()
	fmt.Println(successStyle.Render("  ✓ BENCHMARK COMPLETE"))
	fmt.Println()
	fmt.Printf("  %s %s rows, seed %d\n",
		mutedStyle.Render("Dataset:"), FormatNumber(int64(rep.RowCount)), rep.Seed)
	fmt.Printf("  %s %s\n", mutedStyle.Render("Report:"), titleStyle.Render(notebookPath))
	fmt.Printf("  %s %s\n", mutedStyle.Render("Time:"), titleStyle.Render(FormatDuration(elapsed)))
	fmt.Println()
}

// ShowProgress creates a progress bar for a long-running phase.
func ShowProgress(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// FormatBytes formats a byte size in human-readable form.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}

// FormatNumber formats a count with K/M suffixes.
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}
