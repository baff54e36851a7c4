package orchestrator

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/courseloop/insights/internal/analytics"
	"github.com/courseloop/insights/internal/core/domain"
)

// modelRef identifies a (provider, model) pair in aggregation maps.
type modelRef struct {
	provider string
	model    string
}

type tokenTotals struct {
	events       int64
	inputTokens  int64
	outputTokens int64
}

// CostBreakdown reports spend over the window split by model and module.
// Events without an active pricing entry contribute zero cost and are
// counted separately as unpriced.
func (o *Orchestrator) CostBreakdown(ctx context.Context, caller domain.CallerContext, f Filters) (domain.CostBreakdown, error) {
	req, err := o.run(ctx, caller, f, "cost_breakdown", true)
	if err != nil {
		return domain.CostBreakdown{}, err
	}

	byModel := make(map[modelRef]*tokenTotals)
	byModule := make(map[int64]map[modelRef]*tokenTotals)
	for _, ev := range req.result.Events {
		ref := modelRef{provider: ev.Provider, model: ev.ModelName}

		mt, ok := byModel[ref]
		if !ok {
			mt = &tokenTotals{}
			byModel[ref] = mt
		}
		mt.events++
		mt.inputTokens += ev.InputTokens
		mt.outputTokens += ev.OutputTokens

		mod, ok := byModule[ev.ModuleID]
		if !ok {
			mod = make(map[modelRef]*tokenTotals)
			byModule[ev.ModuleID] = mod
		}
		modT, ok := mod[ref]
		if !ok {
			modT = &tokenTotals{}
			mod[ref] = modT
		}
		modT.events++
		modT.inputTokens += ev.InputTokens
		modT.outputTokens += ev.OutputTokens
	}

	out := domain.CostBreakdown{
		ReportMeta: req.meta(),
		TotalCost:  decimal.Zero,
		InputCost:  decimal.Zero,
		OutputCost: decimal.Zero,
	}

	// Cost is linear in token counts, so per-model totals can be priced
	// in one multiplication instead of per event.
	refs := make([]modelRef, 0, len(byModel))
	for ref := range byModel {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].provider != refs[j].provider {
			return refs[i].provider < refs[j].provider
		}
		return refs[i].model < refs[j].model
	})

	for _, ref := range refs {
		t := byModel[ref]
		mc := domain.ModelCost{
			Provider:     ref.provider,
			ModelName:    ref.model,
			Events:       t.events,
			InputTokens:  t.inputTokens,
			OutputTokens: t.outputTokens,
			Cost:         decimal.Zero,
		}
		in, outCost, known := req.pricing.CostParts(ref.provider, ref.model, t.inputTokens, t.outputTokens)
		if known {
			mc.Priced = true
			mc.Cost = in.Add(outCost)
			out.InputCost = out.InputCost.Add(in)
			out.OutputCost = out.OutputCost.Add(outCost)
			out.TotalCost = out.TotalCost.Add(mc.Cost)
		} else {
			out.UnpricedEvents += t.events
			out.UnpricedModels = append(out.UnpricedModels, ref.provider+"/"+ref.model)
		}
		out.ByModel = append(out.ByModel, mc)
	}

	moduleIDs := make([]int64, 0, len(byModule))
	for id := range byModule {
		moduleIDs = append(moduleIDs, id)
	}
	sort.Slice(moduleIDs, func(i, j int) bool { return moduleIDs[i] < moduleIDs[j] })

	for _, id := range moduleIDs {
		labels := req.joiner.Module(id)
		row := domain.ModuleCost{
			ModuleID:        id,
			ModuleName:      labels.Module,
			CourseName:      labels.Course,
			InstitutionName: labels.Institution,
			Cost:            decimal.Zero,
		}
		for ref, t := range byModule[id] {
			row.Events += t.events
			if amount, known := req.pricing.Cost(ref.provider, ref.model, t.inputTokens, t.outputTokens); known {
				row.Cost = row.Cost.Add(amount)
			}
		}
		out.ByModule = append(out.ByModule, row)
	}

	return out, nil
}

// UsageSnapshot reports raw interaction volume over the window.
func (o *Orchestrator) UsageSnapshot(ctx context.Context, caller domain.CallerContext, f Filters) (domain.UsageSnapshot, error) {
	req, err := o.run(ctx, caller, f, "usage_snapshot", false)
	if err != nil {
		return domain.UsageSnapshot{}, err
	}

	out := domain.UsageSnapshot{ReportMeta: req.meta()}
	conversations := make(map[string]struct{})
	students := make(map[string]struct{})
	providers := make(map[string]*domain.ProviderUsage)

	for _, ev := range req.result.Events {
		out.TotalEvents++
		out.InputTokens += ev.InputTokens
		out.OutputTokens += ev.OutputTokens
		if ev.HasAttachment {
			out.AttachmentEvents++
		}
		conversations[ev.ConversationID] = struct{}{}
		students[ev.StudentID] = struct{}{}

		pu, ok := providers[ev.Provider]
		if !ok {
			pu = &domain.ProviderUsage{Provider: ev.Provider}
			providers[ev.Provider] = pu
		}
		pu.Events++
		pu.InputTokens += ev.InputTokens
		pu.OutputTokens += ev.OutputTokens
	}
	out.TotalConversations = int64(len(conversations))
	out.ActiveStudents = int64(len(students))

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out.ByProvider = append(out.ByProvider, *providers[name])
	}

	return out, nil
}

// TrendSeries reports volume and spend over daily or hourly buckets.
func (o *Orchestrator) TrendSeries(ctx context.Context, caller domain.CallerContext, f Filters) (domain.TrendSeries, error) {
	req, err := o.run(ctx, caller, f, "trend_series", true)
	if err != nil {
		return domain.TrendSeries{}, err
	}

	out := domain.TrendSeries{
		ReportMeta:  req.meta(),
		Granularity: req.filters.Granularity,
	}

	for _, bucket := range analytics.TimeBuckets(req.result.Events, req.filters.Granularity) {
		point := domain.TrendPoint{
			BucketStart: bucket.Start.Format(bucketTimeFormat(req.filters.Granularity)),
			Cost:        decimal.Zero,
		}
		for _, ev := range bucket.Events {
			point.Events++
			point.InputTokens += ev.InputTokens
			point.OutputTokens += ev.OutputTokens
			if amount, known := req.pricing.Cost(ev.Provider, ev.ModelName, ev.InputTokens, ev.OutputTokens); known {
				point.Cost = point.Cost.Add(amount)
			}
		}
		out.TotalEvents += point.Events
		out.Points = append(out.Points, point)
	}

	return out, nil
}

func bucketTimeFormat(g domain.Granularity) string {
	if g == domain.GranularityHourly {
		return "2006-01-02T15:00Z"
	}
	return "2006-01-02"
}

// HourlyProfile reports activity by hour of day across the window.
func (o *Orchestrator) HourlyProfile(ctx context.Context, caller domain.CallerContext, f Filters) (domain.HourlyProfile, error) {
	req, err := o.run(ctx, caller, f, "hourly_profile", false)
	if err != nil {
		return domain.HourlyProfile{}, err
	}

	hours, peak := analytics.HourProfile(req.result.Events)
	out := domain.HourlyProfile{ReportMeta: req.meta(), PeakHour: peak}
	for h, n := range hours {
		out.Hours = append(out.Hours, domain.HourCount{Hour: h, Events: n})
	}
	return out, nil
}

// EngagementSummary reports conversation shape and per-module engagement
// scores.
func (o *Orchestrator) EngagementSummary(ctx context.Context, caller domain.CallerContext, f Filters) (domain.EngagementSummary, error) {
	req, err := o.run(ctx, caller, f, "engagement_summary", false)
	if err != nil {
		return domain.EngagementSummary{}, err
	}

	out := domain.EngagementSummary{
		ReportMeta:    req.meta(),
		Conversations: analytics.ClassifyConversations(req.result.Events),
		Modules:       analytics.EngagementByModule(req.result.Events),
	}
	for i := range out.Modules {
		out.Modules[i].ModuleName = req.joiner.Module(out.Modules[i].ModuleID).Module
	}
	return out, nil
}

// PerformanceProfile reports response-time percentiles, overall and per
// provider.
func (o *Orchestrator) PerformanceProfile(ctx context.Context, caller domain.CallerContext, f Filters) (domain.PerformanceProfile, error) {
	req, err := o.run(ctx, caller, f, "performance_profile", false)
	if err != nil {
		return domain.PerformanceProfile{}, err
	}

	out := domain.PerformanceProfile{ReportMeta: req.meta()}

	all := make([]int64, 0, len(req.result.Events))
	byProvider := make(map[string][]int64)
	var totalMillis int64
	for _, ev := range req.result.Events {
		all = append(all, ev.ResponseTimeMillis)
		byProvider[ev.Provider] = append(byProvider[ev.Provider], ev.ResponseTimeMillis)
		totalMillis += ev.ResponseTimeMillis
	}

	out.SampleCount = int64(len(all))
	if out.SampleCount > 0 {
		out.AvgMillis = float64(totalMillis) / float64(out.SampleCount)
	}
	out.P50, out.P95, out.P99 = analytics.ResponsePercentiles(all)

	names := make([]string, 0, len(byProvider))
	for name := range byProvider {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		samples := byProvider[name]
		pl := domain.ProviderLatency{Provider: name, Events: int64(len(samples))}
		pl.P50, pl.P95, pl.P99 = analytics.ResponsePercentiles(samples)
		out.ByProvider = append(out.ByProvider, pl)
	}

	return out, nil
}

// ModuleComparison ranks modules in scope by the requested metric.
func (o *Orchestrator) ModuleComparison(ctx context.Context, caller domain.CallerContext, f Filters) (domain.ModuleComparison, error) {
	req, err := o.run(ctx, caller, f, "module_comparison", true)
	if err != nil {
		return domain.ModuleComparison{}, err
	}

	engagement := make(map[int64]float64)
	for _, me := range analytics.EngagementByModule(req.result.Events) {
		engagement[me.ModuleID] = me.Score
	}

	byModule := make(map[int64]*domain.ModuleRank)
	for _, ev := range req.result.Events {
		row, ok := byModule[ev.ModuleID]
		if !ok {
			row = &domain.ModuleRank{ModuleID: ev.ModuleID, Cost: decimal.Zero}
			byModule[ev.ModuleID] = row
		}
		row.Messages++
		if amount, known := req.pricing.Cost(ev.Provider, ev.ModelName, ev.InputTokens, ev.OutputTokens); known {
			row.Cost = row.Cost.Add(amount)
		}
	}

	rows := make([]domain.ModuleRank, 0, len(byModule))
	for id, row := range byModule {
		row.EngagementScore = engagement[id]
		rows = append(rows, *row)
	}

	out := domain.ModuleComparison{
		ReportMeta: req.meta(),
		Metric:     req.filters.Metric,
		Entries:    analytics.RankModules(rows, req.filters.Metric, req.filters.TopN),
	}
	for i := range out.Entries {
		labels := req.joiner.Module(out.Entries[i].ModuleID)
		out.Entries[i].ModuleName = labels.Module
		out.Entries[i].CourseName = labels.Course
	}
	return out, nil
}

// FAQList clusters student questions into the most frequently asked
// topics.
func (o *Orchestrator) FAQList(ctx context.Context, caller domain.CallerContext, f Filters) (domain.FAQList, error) {
	req, err := o.run(ctx, caller, f, "faq_list", false)
	if err != nil {
		return domain.FAQList{}, err
	}

	questions := make([]string, 0, len(req.result.Events))
	for _, ev := range req.result.Events {
		if ev.Question != "" {
			questions = append(questions, ev.Question)
		}
	}

	return domain.FAQList{
		ReportMeta: req.meta(),
		Clusters:   analytics.ClusterQuestions(questions, req.filters.MinOccurrences, req.filters.MaxResults),
	}, nil
}
