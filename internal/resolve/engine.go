package resolve

import (
	"github.com/razor389/sec-queries/internal/facts"
	"github.com/razor389/sec-queries/internal/ruletable"
)

// DefaultTolerance is the absolute identity tolerance used when the caller
// does not configure one. Filing values are whole dollars; one dollar
// absorbs rounding in the disclosed totals.
const DefaultTolerance = 1.0

// Engine ties the resolvers together for whole (company, fiscal year)
// requests. It holds only immutable state and is safe for concurrent use;
// build it once per rule table.
type Engine struct {
	table      *ruletable.Table
	metrics    *MetricResolver
	segments   *SegmentMatcher
	aggregator *CategoryAggregator
}

// Option configures an Engine
type Option func(*options)

type options struct {
	tolerance float64
}

// WithTolerance sets the balance-sheet identity tolerance
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// New creates an Engine over an immutable rule table
func New(table *ruletable.Table, opts ...Option) *Engine {
	o := options{tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		table:      table,
		metrics:    NewMetricResolver(table),
		segments:   NewSegmentMatcher(table),
		aggregator: NewCategoryAggregator(table, o.tolerance),
	}
}

// Table returns the engine's rule table
func (e *Engine) Table() *ruletable.Table {
	return e.table
}

// Resolve runs one complete (company, fiscal year) request against an
// indexed fact pool: every metric, every segment, category totals and the
// identity check. It always returns a complete Result; non-fatal conditions
// accumulate in Result.Diagnostics.
func (e *Engine) Resolve(company string, year int, idx *facts.Index) *Result {
	res := &Result{
		Company:    company,
		FiscalYear: year,
	}

	var diags []Diagnostic

	metrics, metricDiags := e.metrics.ResolveAll(company, year, idx)
	res.Metrics = metrics
	diags = append(diags, metricDiags...)

	segments, segDiags := e.segments.ResolveAll(company, year, idx)
	res.Segments = segments
	diags = append(diags, segDiags...)

	totals, aggDiags := e.aggregator.Aggregate(company, metrics)
	res.Categories = totals
	diags = append(diags, aggDiags...)

	identity, idDiags := e.aggregator.CheckIdentity(totals)
	res.Identity = identity
	diags = append(diags, idDiags...)

	res.Diagnostics = diags
	return res
}
