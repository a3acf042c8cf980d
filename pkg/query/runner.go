package query

import (
	"context"
	"time"

	"github.com/oDuPrado/Benchmark-case/internal/model"
	berrors "github.com/oDuPrado/Benchmark-case/pkg/errors"
)

// Runner executes the full catalog against every format artifact and
// always yields the complete formats x queries matrix. A failing cell
// is recorded with its error and the rest of the matrix still runs.
type Runner struct {
	catalog []NamedQuery

	// OnCell, when set, is called after each cell completes. Cosmetic.
	OnCell func(res model.QueryResult)
}

// NewRunner creates a runner over the fixed catalog.
func NewRunner() *Runner {
	return &Runner{catalog: Catalog()}
}

// Run produces one QueryResult per (format, query) pair, in format
// order then catalog order. Execution is read-only; each format gets
// its own engine which is closed before the next format starts, even
// when registration or a query fails.
func (r *Runner) Run(ctx context.Context, artifacts map[model.FormatKind]*model.FormatArtifact) []model.QueryResult {
	results := make([]model.QueryResult, 0, len(model.Formats())*len(r.catalog))

	for _, kind := range model.Formats() {
		artifact := artifacts[kind]
		results = append(results, r.runFormat(ctx, kind, artifact)...)
	}

	return results
}

// runFormat runs all catalog queries against one artifact inside a
// scoped engine lifetime.
func (r *Runner) runFormat(ctx context.Context, kind model.FormatKind, artifact *model.FormatArtifact) []model.QueryResult {
	if !artifact.OK() {
		err := berrors.New(berrors.CodeRegisterView, "artifact missing, queries skipped").
			WithContext("format", string(kind))
		return r.failAll(kind, err)
	}

	engine, err := NewEngine()
	if err != nil {
		return r.failAll(kind, berrors.Wrap(err, berrors.CodeEngineInit, "failed to start engine"))
	}
	defer engine.Close()

	if err := engine.Register(ctx, kind, artifact.Path); err != nil {
		return r.failAll(kind, berrors.Wrap(err, berrors.CodeRegisterView, "failed to register artifact").
			WithContext("format", string(kind)))
	}

	results := make([]model.QueryResult, 0, len(r.catalog))
	for _, q := range r.catalog {
		res := r.runCell(ctx, engine, kind, q)
		if r.OnCell != nil {
			r.OnCell(res)
		}
		results = append(results, res)
	}
	return results
}

func (r *Runner) runCell(ctx context.Context, engine *Engine, kind model.FormatKind, q NamedQuery) model.QueryResult {
	start := time.Now()
	rows, err := engine.CountRows(ctx, q.SQL)
	dur := time.Since(start)

	if err != nil {
		return model.QueryResult{
			Format:    kind,
			QueryName: q.Name,
			Err:       berrors.QueryFailed(string(kind), q.Name, err),
		}
	}

	return model.QueryResult{
		Format:    kind,
		QueryName: q.Name,
		Duration:  dur,
		Rows:      rows,
	}
}

// failAll marks every catalog cell for a format with the same error.
func (r *Runner) failAll(kind model.FormatKind, err error) []model.QueryResult {
	results := make([]model.QueryResult, 0, len(r.catalog))
	for _, q := range r.catalog {
		res := model.QueryResult{Format: kind, QueryName: q.Name, Err: err}
		if r.OnCell != nil {
			r.OnCell(res)
		}
		results = append(results, res)
	}
	return results
}
