// Package orchestrator composes scope resolution, bounded event-store
// queries, cost and aggregation computation, and catalog enrichment into
// one façade per analytics report type. Every request moves through the
// same pipeline of resolve, fetch, aggregate, and enrich, and a partial
// upstream failure degrades the response instead of failing it.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/courseloop/insights/internal/core/domain"
	"github.com/courseloop/insights/internal/core/ports"
	"github.com/courseloop/insights/internal/enrich"
	"github.com/courseloop/insights/internal/eventstore"
	"github.com/courseloop/insights/internal/pricing"
	"github.com/courseloop/insights/internal/scope"
)

// Defaults applied when a filter leaves the corresponding knob unset.
const (
	DefaultWindowDays     = 30
	DefaultTopN           = 10
	DefaultMinOccurrences = 2
	DefaultFAQResults     = 20
)

// Options is the static configuration of the orchestrator, passed in at
// construction. No ambient global state.
type Options struct {
	// MaxWindow caps the queryable time window. Zero means no cap.
	MaxWindow time.Duration

	// MaxRecords bounds each logical event query. Zero applies the event
	// store client's default.
	MaxRecords int
}

// Filters carries the caller-supplied parameters of one report request.
type Filters struct {
	Unit   scope.UnitFilter
	Window domain.TimeRange // zero value selects the trailing 30 days

	Granularity    domain.Granularity // trend series; default daily
	Metric         domain.RankMetric  // module comparison; default messages
	TopN           int                // module comparison; default 10
	MinOccurrences int                // FAQ; default 2
	MaxResults     int                // FAQ; default 20
}

// Orchestrator is the analytics façade. One method per report type, each
// taking a caller context and filters and returning an immutable DTO.
type Orchestrator struct {
	scopes  *scope.Resolver
	catalog ports.CatalogStore
	events  *eventstore.Client
	logger  *slog.Logger
	opts    Options
	tracer  trace.Tracer

	// now is swappable for tests.
	now func() time.Time
}

// New wires the orchestrator from its dependencies. This is the only
// place the analytics pipeline is assembled.
func New(catalog ports.CatalogStore, events *eventstore.Client, logger *slog.Logger, opts Options) *Orchestrator {
	return &Orchestrator{
		scopes:  scope.NewResolver(catalog),
		catalog: catalog,
		events:  events,
		logger:  logger,
		opts:    opts,
		tracer:  otel.Tracer("insights/orchestrator"),
		now:     time.Now,
	}
}

// validate normalizes filters and rejects invalid combinations before any
// I/O happens.
func (o *Orchestrator) validate(f Filters) (Filters, error) {
	if err := f.Unit.Validate(); err != nil {
		return f, err
	}

	switch {
	case f.Window.Start.IsZero() && f.Window.End.IsZero():
		f.Window = domain.TrailingDays(o.now(), DefaultWindowDays)
	case f.Window.Start.IsZero() || f.Window.End.IsZero():
		return f, domain.ErrInvalidFilter("window requires both start and end").WithParam("window")
	case !f.Window.Start.Before(f.Window.End):
		return f, domain.ErrInvalidFilter("window start must precede end").WithParam("window")
	}
	if o.opts.MaxWindow > 0 && f.Window.Duration() > o.opts.MaxWindow {
		return f, domain.ErrInvalidFilter("window exceeds maximum").WithParam("window")
	}

	if f.Granularity == "" {
		f.Granularity = domain.GranularityDaily
	}
	if !f.Granularity.Valid() {
		return f, domain.ErrInvalidFilter("unknown granularity").WithParam("granularity")
	}

	if f.Metric == "" {
		f.Metric = domain.RankByMessages
	}
	if !f.Metric.Valid() {
		return f, domain.ErrInvalidFilter("unknown ranking metric").WithParam("metric")
	}

	if f.TopN < 0 {
		return f, domain.ErrInvalidFilter("top n must not be negative").WithParam("top_n")
	}
	if f.TopN == 0 {
		f.TopN = DefaultTopN
	}
	if f.MinOccurrences < 0 {
		return f, domain.ErrInvalidFilter("min occurrences must not be negative").WithParam("min_occurrences")
	}
	if f.MinOccurrences == 0 {
		f.MinOccurrences = DefaultMinOccurrences
	}
	if f.MaxResults < 0 {
		return f, domain.ErrInvalidFilter("max results must not be negative").WithParam("max_results")
	}
	if f.MaxResults == 0 {
		f.MaxResults = DefaultFAQResults
	}

	return f, nil
}

// request is the per-request pipeline state. Everything in it is a
// request-scoped snapshot; nothing is shared across requests.
type request struct {
	caller  domain.CallerContext
	filters Filters
	scope   domain.AccessibleModuleSet
	joiner  *enrich.Joiner
	pricing *pricing.Resolver
	result  eventstore.Result
}

// meta builds the report meta shared by every DTO.
func (r *request) meta() domain.ReportMeta {
	return domain.ReportMeta{
		Window:           r.filters.Window,
		Degraded:         r.result.Degraded(),
		FailedPartitions: r.result.FailedPartitions,
		Truncated:        r.result.Truncated,
	}
}

// run executes the shared pipeline prefix: validate, resolve scope, fetch
// events, and (when the report needs it) snapshot the pricing table. An
// empty scope short-circuits with an empty result set; that is a valid
// state, not an error.
func (o *Orchestrator) run(ctx context.Context, caller domain.CallerContext, f Filters, report string, withPricing bool) (*request, error) {
	ctx, span := o.tracer.Start(ctx, "analytics."+report,
		trace.WithAttributes(
			attribute.String("caller.role", string(caller.Role)),
			attribute.String("report", report),
		))
	defer span.End()

	f, err := o.validate(f)
	if err != nil {
		return nil, err
	}

	resolution, err := o.scopes.Resolve(ctx, caller, f.Unit)
	if err != nil {
		return nil, err
	}

	req := &request{
		caller:  caller,
		filters: f,
		scope:   resolution.Scope,
		joiner:  enrich.New(resolution.Hierarchy),
	}

	if withPricing {
		entries, err := o.catalog.GetActivePricing(ctx)
		if err != nil {
			return nil, domain.ErrCatalogUnavailable(err)
		}
		req.pricing = pricing.NewResolver(entries)
	}

	keys := partitionKeys(resolution)
	if len(keys) == 0 {
		o.logger.Debug("scope resolved empty",
			slog.String("report", report),
			slog.String("caller", caller.Identity),
		)
		return req, nil
	}

	result, err := o.events.Query(ctx, keys, f.Window, o.opts.MaxRecords)
	if err != nil {
		return nil, err
	}
	req.result = result

	if result.Degraded() {
		span.SetAttributes(attribute.Int("failed_partitions", len(result.FailedPartitions)))
		o.logger.Warn("report degraded by partition failures",
			slog.String("report", report),
			slog.Int("failed_partitions", len(result.FailedPartitions)),
		)
	}
	return req, nil
}

// partitionKeys materializes the scope into module partition keys. The
// unrestricted sentinel enumerates modules from the request's hierarchy
// snapshot, which the catalog already holds in memory.
func partitionKeys(res scope.Resolution) []domain.PartitionKey {
	if res.Scope.Unrestricted {
		keys := make([]domain.PartitionKey, 0, len(res.Hierarchy.Modules))
		for id := range res.Hierarchy.Modules {
			keys = append(keys, domain.ModuleKey(id))
		}
		return keys
	}
	keys := make([]domain.PartitionKey, 0, len(res.Scope.Modules))
	for id := range res.Scope.Modules {
		keys = append(keys, domain.ModuleKey(id))
	}
	return keys
}
