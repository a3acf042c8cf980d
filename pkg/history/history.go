// Package history records benchmark runs so results can be compared
// over time. Backends store the same Run record; the file backend is
// the default, Redis is for shared environments.
package history

import (
	"context"
	"time"

	"github.com/oDuPrado/Benchmark-case/internal/model"
)

// Run is one recorded benchmark run. It is a flat summary of the
// measurement matrix, not the full report.
type Run struct {
	ID         string            `json:"id"`
	StartedAt  time.Time         `json:"started_at"`
	Elapsed    time.Duration     `json:"elapsed"`
	Rows       int               `json:"rows"`
	Seed       int64             `json:"seed"`
	ReusedData bool              `json:"reused_data"`
	Artifacts  []ArtifactSummary `json:"artifacts"`
	Cells      []CellSummary     `json:"cells"`
}

// ArtifactSummary is the recorded outcome of one format write.
type ArtifactSummary struct {
	Format    string  `json:"format"`
	OK        bool    `json:"ok"`
	WriteSecs float64 `json:"write_secs,omitempty"`
	SizeBytes int64   `json:"size_bytes,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// CellSummary is the recorded outcome of one (format, query) cell.
type CellSummary struct {
	Format string  `json:"format"`
	Query  string  `json:"query"`
	OK     bool    `json:"ok"`
	Secs   float64 `json:"secs,omitempty"`
	Rows   int64   `json:"rows,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Backend stores and lists benchmark runs.
type Backend interface {
	// Append records a completed run.
	Append(ctx context.Context, run *Run) error

	// List returns recorded runs, newest last. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Name returns the backend name for logging.
	Name() string

	// Close releases backend resources.
	Close() error
}

// Summarize flattens a benchmark report into a Run record. startedAt
// is when the run began; the report's own timestamp marks completion.
func Summarize(id string, rep *model.BenchmarkReport, reused bool, startedAt time.Time, elapsed time.Duration) *Run {
	run := &Run{
		ID:         id,
		StartedAt:  startedAt.UTC(),
		Elapsed:    elapsed,
		Rows:       rep.RowCount,
		Seed:       rep.Seed,
		ReusedData: reused,
	}

	for _, kind := range model.Formats() {
		a := rep.Artifacts[kind]
		s := ArtifactSummary{Format: string(kind)}
		if a != nil && a.OK() {
			s.OK = true
			s.WriteSecs = a.WriteDuration.Seconds()
			s.SizeBytes = a.SizeBytes
		} else if a != nil && a.Err != nil {
			s.Error = a.Err.Error()
		} else {
			s.Error = "not written"
		}
		run.Artifacts = append(run.Artifacts, s)
	}

	for _, res := range rep.Results {
		c := CellSummary{
			Format: string(res.Format),
			Query:  res.QueryName,
		}
		if res.OK() {
			c.OK = true
			c.Secs = res.Duration.Seconds()
			c.Rows = res.Rows
		} else if res.Err != nil {
			c.Error = res.Err.Error()
		}
		run.Cells = append(run.Cells, c)
	}

	return run
}
