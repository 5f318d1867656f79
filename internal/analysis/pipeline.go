package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ecomdash/internal/dataset"
	"ecomdash/internal/infrastructure"
)

// runner is a transform with its result type erased.
type runner func(context.Context, *dataset.Snapshot) (any, error)

// bind adapts a typed transform to a runner.
func bind[R any](fn func(context.Context, *dataset.Snapshot) (R, error)) runner {
	return func(ctx context.Context, snap *dataset.Snapshot) (any, error) {
		r, err := fn(ctx, snap)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

var registry = map[Kind]runner{
	PriceDistribution:   bind(ComputePriceDistribution),
	PaymentCorrelation:  bind(ComputePaymentCorrelation),
	PaymentMethods:      bind(ComputePaymentMethods),
	CustomersByState:    bind(ComputeCustomersByState),
	PriceBoxplot:        bind(ComputePriceBoxplot),
	SalesTrend:          bind(ComputeSalesTrend),
	WeekdayWeekend:      bind(ComputeWeekdayWeekend),
	TopCategories:       bind(ComputeTopCategories),
	TopProductsByReview: bind(ComputeTopProductsByReview),
	TopSellersByRevenue: bind(ComputeTopSellersByRevenue),
}

// Section is the outcome of one analysis. Exactly one of Result and Err is
// set.
type Section struct {
	Kind    Kind          `json:"kind"`
	Title   string        `json:"title"`
	Result  any           `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
	Elapsed time.Duration `json:"-"`
	Err     error         `json:"-"`
}

// Failed reports whether the analysis produced an error.
func (s Section) Failed() bool {
	return s.Err != nil
}

// Pipeline runs selected analyses against a snapshot.
type Pipeline struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *infrastructure.BusinessMetrics
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = logger }
}

// WithTracer sets the tracer used for analysis spans.
func WithTracer(tracer trace.Tracer) PipelineOption {
	return func(p *Pipeline) { p.tracer = tracer }
}

// WithMetrics records run counts, durations and failures.
func WithMetrics(metrics *infrastructure.BusinessMetrics) PipelineOption {
	return func(p *Pipeline) { p.metrics = metrics }
}

// NewPipeline creates a Pipeline.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		logger: infrastructure.GetLogger(),
		tracer: otel.Tracer("ecomdash/analysis"),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = infrastructure.WithComponent(p.logger, "analysis_pipeline")
	return p
}

// Run executes the selected analyses in catalog order. A failing analysis
// yields a section carrying its error; the others are unaffected.
func (p *Pipeline) Run(ctx context.Context, snap *dataset.Snapshot, sel Selection) []Section {
	kinds := sel.Kinds()
	sections := make([]Section, 0, len(kinds))
	for _, k := range kinds {
		sections = append(sections, p.RunOne(ctx, snap, k))
	}
	return sections
}

// RunOne executes a single analysis.
func (p *Pipeline) RunOne(ctx context.Context, snap *dataset.Snapshot, kind Kind) Section {
	section := Section{Kind: kind, Title: kind.Title()}

	run, ok := registry[kind]
	if !ok {
		section.Err = fmt.Errorf("%w: %d", ErrUnknownKind, int(kind))
		section.Error = section.Err.Error()
		return section
	}

	ctx, span := p.tracer.Start(ctx, "analysis.run",
		trace.WithAttributes(attribute.String("analysis.kind", kind.String())))
	defer span.End()

	start := time.Now()
	result, err := p.safeRun(ctx, run, snap, kind)
	section.Elapsed = time.Since(start)

	infrastructure.RecordAnalysis(ctx, p.metrics, kind.String(), section.Elapsed, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		p.logger.WarnContext(ctx, "Analysis failed",
			slog.String("kind", kind.String()),
			slog.String("error", err.Error()))
		section.Err = err
		section.Error = err.Error()
		return section
	}

	p.logger.DebugContext(ctx, "Analysis complete",
		slog.String("kind", kind.String()),
		slog.Duration("elapsed", section.Elapsed))
	section.Result = result
	return section
}

// safeRun turns a panic inside a transform into a ComputationError.
func (p *Pipeline) safeRun(ctx context.Context, run runner, snap *dataset.Snapshot, kind Kind) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &ComputationError{Kind: kind, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return run(ctx, snap)
}
