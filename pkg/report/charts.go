package report

import (
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	"github.com/oDuPrado/Benchmark-case/pkg/query"
)

// Chart describes one rendered chart image.
type Chart struct {
	Title string
	Path  string
}

// RenderCharts draws the comparison charts as PNG files under dir and
// returns them in a fixed order. Missing cells draw as zero-height
// bars; the table is the authoritative place where they read "n/a".
func RenderCharts(rep *model.BenchmarkReport, dir string) ([]Chart, error) {
	charts := []struct {
		title  string
		file   string
		render func(*model.BenchmarkReport, string, string) error
	}{
		{"Query latency by format", "query_latency.png", renderQueryLatency},
		{"On-disk size by format", "artifact_size.png", renderArtifactSize},
		{"Write time by format", "write_time.png", renderWriteTime},
	}

	out := make([]Chart, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(dir, c.file)
		if err := c.render(rep, c.title, path); err != nil {
			return nil, fmt.Errorf("%s: %w", c.file, err)
		}
		out = append(out, Chart{Title: c.title, Path: path})
	}
	return out, nil
}

// renderQueryLatency draws grouped bars: one group per query, one bar
// per format.
func renderQueryLatency(rep *model.BenchmarkReport, title, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "seconds"

	names := query.QueryNames()
	formats := model.Formats()

	barWidth := vg.Points(18)
	for i, kind := range formats {
		vals := make(plotter.Values, len(names))
		for j, name := range names {
			if cell := rep.Cell(kind, name); cell.OK() {
				vals[j] = cell.Duration.Seconds()
			}
		}

		bars, err := plotter.NewBarChart(vals, barWidth)
		if err != nil {
			return err
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Points(float64(i-1) * 20)
		p.Add(bars)
		p.Legend.Add(string(kind), bars)
	}

	p.Legend.Top = true
	p.NominalX(names...)

	return p.Save(7*vg.Inch, 4*vg.Inch, path)
}

// renderArtifactSize draws one bar per format with the artifact size
// in megabytes.
func renderArtifactSize(rep *model.BenchmarkReport, title, path string) error {
	vals := make(plotter.Values, 0, len(model.Formats()))
	for _, kind := range model.Formats() {
		if a := rep.Artifacts[kind]; a.OK() {
			vals = append(vals, float64(a.SizeBytes)/(1024*1024))
		} else {
			vals = append(vals, 0)
		}
	}
	return renderFormatBars(vals, title, "MB", path)
}

// renderWriteTime draws one bar per format with the write duration.
func renderWriteTime(rep *model.BenchmarkReport, title, path string) error {
	vals := make(plotter.Values, 0, len(model.Formats()))
	for _, kind := range model.Formats() {
		if a := rep.Artifacts[kind]; a.OK() {
			vals = append(vals, a.WriteDuration.Seconds())
		} else {
			vals = append(vals, 0)
		}
	}
	return renderFormatBars(vals, title, "seconds", path)
}

func renderFormatBars(vals plotter.Values, title, yLabel, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel

	bars, err := plotter.NewBarChart(vals, vg.Points(30))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)
	p.Add(bars)

	labels := make([]string, len(model.Formats()))
	for i, kind := range model.Formats() {
		labels[i] = string(kind)
	}
	p.NominalX(labels...)

	return p.Save(5*vg.Inch, 4*vg.Inch, path)
}
