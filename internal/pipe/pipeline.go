// Package pipe orchestrates a full benchmark run: dataset
// materialization, the three format writes, the query matrix, and the
// report build, plus the optional history and archive integrations.
package pipe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	"github.com/oDuPrado/Benchmark-case/pkg/archive"
	"github.com/oDuPrado/Benchmark-case/pkg/config"
	berrors "github.com/oDuPrado/Benchmark-case/pkg/errors"
	"github.com/oDuPrado/Benchmark-case/pkg/gen"
	"github.com/oDuPrado/Benchmark-case/pkg/history"
	"github.com/oDuPrado/Benchmark-case/pkg/query"
	"github.com/oDuPrado/Benchmark-case/pkg/report"
	"github.com/oDuPrado/Benchmark-case/pkg/writer"
)

// Artifact file names under the output directory. The canonical
// dataset is kept separate from the benchmarked Parquet artifact so
// reusing it never skews the Parquet write measurement.
const (
	CanonicalFile = "dataset.parquet"
	ParquetFile   = "sales.parquet"
	CSVFile       = "sales.csv"
	DuckDBFile    = "sales.duckdb"
)

// Hooks receive progress callbacks during a run. All fields are
// optional and cosmetic.
type Hooks struct {
	OnPhase    func(name string)
	OnProgress func(done, total int)
	OnArtifact func(a *model.FormatArtifact)
	OnCell     func(res model.QueryResult)
}

// Result is the outcome of one benchmark run.
type Result struct {
	RunID     string
	Report    *model.BenchmarkReport
	Output    *report.Output
	Reused    bool
	StartedAt time.Time
	Elapsed   time.Duration

	// ArchivedKeys lists S3 keys when archiving was enabled.
	ArchivedKeys []string
}

// Pipeline wires the benchmark phases together.
type Pipeline struct {
	cfg    *config.Config
	hooks  Hooks
	tracer trace.Tracer
}

// New creates a pipeline for the given configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		tracer: noop.NewTracerProvider().Tracer("salesbench"),
	}
}

// WithHooks attaches progress hooks.
func (p *Pipeline) WithHooks(h Hooks) *Pipeline {
	p.hooks = h
	return p
}

// WithTracer attaches a tracer; each phase becomes one span.
func (p *Pipeline) WithTracer(t trace.Tracer) *Pipeline {
	if t != nil {
		p.tracer = t
	}
	return p
}

// Run executes the full benchmark. Generation and report failures
// abort the run; write and query failures degrade to missing matrix
// cells so one broken format never hides the others.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	outDir := p.cfg.Bench.OutputDir
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ds, reused, err := p.materialize(ctx)
	if err != nil {
		return nil, err
	}

	artifacts := p.writeFormats(ctx, ds)

	rep := &model.BenchmarkReport{
		RowCount:  ds.Len(),
		Seed:      p.cfg.Bench.Seed,
		Artifacts: artifacts,
	}
	rep.Results = p.runQueries(ctx, artifacts)
	rep.GeneratedAt = time.Now().UTC()

	output, err := p.buildReport(ctx, rep)
	if err != nil {
		return nil, err
	}

	res := &Result{
		RunID:     runID,
		Report:    rep,
		Output:    output,
		Reused:    reused,
		StartedAt: start,
		Elapsed:   time.Since(start),
	}

	// History and archive are post-run conveniences: failures are
	// reported but never fail a run that already produced its report.
	if err := p.appendHistory(ctx, res); err != nil {
		fmt.Fprintf(os.Stderr, "warning: history append failed: %v\n", err)
	}
	if p.cfg.Archive.Enabled {
		keys, err := p.archiveRun(ctx, res)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: archive upload failed: %v\n", err)
		}
		res.ArchivedKeys = keys
	}

	return res, nil
}

// materialize loads or generates the dataset.
func (p *Pipeline) materialize(ctx context.Context) (*model.Dataset, bool, error) {
	ctx, span := p.tracer.Start(ctx, "materialize")
	defer span.End()

	p.phase("dataset")

	g := gen.New(p.cfg.Dataset, p.cfg.Bench.Rows, p.cfg.Bench.Seed)
	g.OnProgress = p.hooks.OnProgress

	canonical := filepath.Join(p.cfg.Bench.OutputDir, CanonicalFile)
	ds, reused, err := g.Materialize(ctx, canonical, p.cfg.Bench.Reuse)
	if err != nil {
		span.RecordError(err)
		return nil, false, err
	}

	span.SetAttributes(
		attribute.Int("rows", ds.Len()),
		attribute.Bool("reused", reused),
	)
	return ds, reused, nil
}

// writeFormats serializes the dataset into all three formats. A failed
// write becomes an artifact with Err set; it never aborts the run.
func (p *Pipeline) writeFormats(ctx context.Context, ds *model.Dataset) map[model.FormatKind]*model.FormatArtifact {
	ctx, span := p.tracer.Start(ctx, "write")
	defer span.End()

	p.phase("write")

	wcfg := writer.Config{
		BatchSize:   p.cfg.Writer.BatchSize,
		Compression: writer.ParseCompression(p.cfg.Writer.Compression),
	}
	paths := map[model.FormatKind]string{
		model.FormatParquet: filepath.Join(p.cfg.Bench.OutputDir, ParquetFile),
		model.FormatCSV:     filepath.Join(p.cfg.Bench.OutputDir, CSVFile),
		model.FormatDuckDB:  filepath.Join(p.cfg.Bench.OutputDir, DuckDBFile),
	}

	artifacts := make(map[model.FormatKind]*model.FormatArtifact, len(paths))

	writeOne := func(kind model.FormatKind) *model.FormatArtifact {
		w := writer.ForKind(kind, paths[kind], wcfg)
		a, err := w.Write(ctx, ds)
		if err != nil {
			a = &model.FormatArtifact{
				Kind: kind,
				Path: paths[kind],
				Err:  berrors.WriteFailed(string(kind), err),
			}
		}
		return a
	}

	if p.cfg.Bench.ParallelWrites {
		// Wall-clock timing stays per writer, so concurrency only
		// affects total run time, not the reported write durations.
		var g errgroup.Group
		results := make([]*model.FormatArtifact, len(model.Formats()))
		for i, kind := range model.Formats() {
			i, kind := i, kind
			g.Go(func() error {
				results[i] = writeOne(kind)
				return nil
			})
		}
		_ = g.Wait()
		for _, a := range results {
			artifacts[a.Kind] = a
		}
	} else {
		for _, kind := range model.Formats() {
			artifacts[kind] = writeOne(kind)
		}
	}

	for _, kind := range model.Formats() {
		a := artifacts[kind]
		if p.hooks.OnArtifact != nil {
			p.hooks.OnArtifact(a)
		}
		if a.OK() {
			span.SetAttributes(attribute.Int64(string(kind)+".size_bytes", a.SizeBytes))
		}
	}

	return artifacts
}

// runQueries executes the full query matrix.
func (p *Pipeline) runQueries(ctx context.Context, artifacts map[model.FormatKind]*model.FormatArtifact) []model.QueryResult {
	ctx, span := p.tracer.Start(ctx, "query")
	defer span.End()

	p.phase("query")

	r := query.NewRunner()
	r.OnCell = p.hooks.OnCell
	results := r.Run(ctx, artifacts)

	ok := 0
	for i := range results {
		if results[i].OK() {
			ok++
		}
	}
	span.SetAttributes(
		attribute.Int("cells", len(results)),
		attribute.Int("cells_ok", ok),
	)
	return results
}

// buildReport renders the notebook, charts, and workbook.
func (p *Pipeline) buildReport(ctx context.Context, rep *model.BenchmarkReport) (*report.Output, error) {
	ctx, span := p.tracer.Start(ctx, "report")
	defer span.End()

	p.phase("report")

	output, err := report.NewBuilder(p.cfg.Bench.OutputDir).Build(ctx, rep)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return output, nil
}

// appendHistory records the run in the configured history backend.
func (p *Pipeline) appendHistory(ctx context.Context, res *Result) error {
	backend, err := OpenHistory(p.cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	run := history.Summarize(res.RunID, res.Report, res.Reused, res.StartedAt, res.Elapsed)
	return backend.Append(ctx, run)
}

// OpenHistory opens the history backend named by the configuration.
func OpenHistory(cfg *config.Config) (history.Backend, error) {
	switch cfg.History.Backend {
	case "redis":
		rcfg := history.DefaultRedisConfig(cfg.History.RedisAddr)
		rcfg.Password = cfg.History.RedisPassword
		rcfg.Database = cfg.History.RedisDB
		return history.NewRedisBackend(rcfg)
	default:
		return history.NewFileBackend(filepath.Join(cfg.Bench.OutputDir, "history.jsonl"))
	}
}

// archiveRun uploads the report artifacts to S3.
func (p *Pipeline) archiveRun(ctx context.Context, res *Result) ([]string, error) {
	acfg := archive.DefaultS3Config(p.cfg.Archive.Bucket)
	if p.cfg.Archive.Prefix != "" {
		acfg.Prefix = p.cfg.Archive.Prefix
	}
	acfg.Region = p.cfg.Archive.Region
	acfg.Endpoint = p.cfg.Archive.Endpoint
	acfg.UsePathStyle = p.cfg.Archive.UsePathStyle

	arc, err := archive.NewS3Archive(ctx, acfg)
	if err != nil {
		return nil, err
	}

	paths := []string{res.Output.NotebookPath, res.Output.WorkbookPath}
	paths = append(paths, res.Output.ChartPaths...)
	return arc.UploadRun(ctx, res.RunID, paths)
}

// phase invokes the phase hook.
func (p *Pipeline) phase(name string) {
	if p.hooks.OnPhase != nil {
		p.hooks.OnPhase(name)
	}
}
