package domain

import "github.com/shopspring/decimal"

// ReportMeta is embedded in every report DTO. A degraded report is still a
// successful response: it carries the data that could be collected plus an
// explicit record of what is missing.
type ReportMeta struct {
	Window TimeRange `json:"window"`

	// Degraded is true when at least one partition scan failed or the
	// request deadline expired before all scans finished.
	Degraded bool `json:"degraded"`

	// FailedPartitions lists the partitions whose scans failed, in
	// "kind/value" form.
	FailedPartitions []string `json:"failed_partitions,omitempty"`

	// Truncated is true when the bounded query limit cut off results.
	Truncated bool `json:"truncated"`
}

// ModelCost is the per-model slice of a cost breakdown.
type ModelCost struct {
	Provider     string          `json:"provider"`
	ModelName    string          `json:"model_name"`
	Events       int64           `json:"events"`
	InputTokens  int64           `json:"input_tokens"`
	OutputTokens int64           `json:"output_tokens"`
	Cost         decimal.Decimal `json:"cost"`
	// Priced is false when no active pricing entry covered this model;
	// its Cost is zero and its events are counted in UnpricedEvents.
	Priced bool `json:"priced"`
}

// ModuleCost is the per-module slice of a cost breakdown, enriched with
// catalog display names.
type ModuleCost struct {
	ModuleID        int64           `json:"module_id"`
	ModuleName      string          `json:"module_name"`
	CourseName      string          `json:"course_name"`
	InstitutionName string          `json:"institution_name"`
	Events          int64           `json:"events"`
	Cost            decimal.Decimal `json:"cost"`
}

// CostBreakdown reports spend over the window, split by model and module.
type CostBreakdown struct {
	ReportMeta

	TotalCost  decimal.Decimal `json:"total_cost"`
	InputCost  decimal.Decimal `json:"input_cost"`
	OutputCost decimal.Decimal `json:"output_cost"`

	// UnpricedEvents counts events whose (provider, model) had no active
	// pricing entry. Their spend is unknown, not zero; operators use this
	// to spot gaps in the pricing table.
	UnpricedEvents int64    `json:"unpriced_events"`
	UnpricedModels []string `json:"unpriced_models,omitempty"`

	ByModel  []ModelCost  `json:"by_model"`
	ByModule []ModuleCost `json:"by_module"`
}

// ProviderUsage is the per-provider slice of a usage snapshot.
type ProviderUsage struct {
	Provider     string `json:"provider"`
	Events       int64  `json:"events"`
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
}

// UsageSnapshot reports raw volume over the window.
type UsageSnapshot struct {
	ReportMeta

	TotalEvents        int64           `json:"total_events"`
	TotalConversations int64           `json:"total_conversations"`
	ActiveStudents     int64           `json:"active_students"`
	InputTokens        int64           `json:"input_tokens"`
	OutputTokens       int64           `json:"output_tokens"`
	AttachmentEvents   int64           `json:"attachment_events"`
	ByProvider         []ProviderUsage `json:"by_provider"`
}

// Granularity selects the bucket width of a trend series.
type Granularity string

const (
	GranularityDaily  Granularity = "daily"
	GranularityHourly Granularity = "hourly"
)

// Valid reports whether the granularity is supported.
func (g Granularity) Valid() bool {
	return g == GranularityDaily || g == GranularityHourly
}

// TrendPoint is one bucket of a trend series. BucketStart is the bucket
// boundary in UTC.
type TrendPoint struct {
	BucketStart  string          `json:"bucket_start"`
	Events       int64           `json:"events"`
	InputTokens  int64           `json:"input_tokens"`
	OutputTokens int64           `json:"output_tokens"`
	Cost         decimal.Decimal `json:"cost"`
}

// TrendSeries reports volume and spend over time buckets. The sum of
// per-bucket event counts always equals the total event count for the
// window.
type TrendSeries struct {
	ReportMeta

	Granularity Granularity  `json:"granularity"`
	TotalEvents int64        `json:"total_events"`
	Points      []TrendPoint `json:"points"`
}

// HourCount is one hour-of-day slot in an hourly profile.
type HourCount struct {
	Hour   int   `json:"hour"`
	Events int64 `json:"events"`
}

// HourlyProfile reports activity by hour of day (UTC) across the window.
type HourlyProfile struct {
	ReportMeta

	Hours    []HourCount `json:"hours"` // always 24 entries, hour 0..23
	PeakHour int         `json:"peak_hour"`
}

// ConversationStats classifies conversations by length. Completion rate is
// the fraction of conversations with at least three messages.
type ConversationStats struct {
	Total          int64   `json:"total"`
	SingleMessage  int64   `json:"single_message"`
	Short          int64   `json:"short"`  // 2-5 messages
	Medium         int64   `json:"medium"` // 6-15 messages
	Long           int64   `json:"long"`   // 16+ messages
	CompletionRate float64 `json:"completion_rate"`
}

// ModuleEngagement is the per-module slice of an engagement summary.
type ModuleEngagement struct {
	ModuleID           int64   `json:"module_id"`
	ModuleName         string  `json:"module_name"`
	Students           int64   `json:"students"`
	Messages           int64   `json:"messages"`
	MessagesPerStudent float64 `json:"messages_per_student"`
	AvgResponseMillis  float64 `json:"avg_response_millis"`
	Score              float64 `json:"score"`
}

// EngagementSummary reports engagement scores and conversation shape over
// the window.
type EngagementSummary struct {
	ReportMeta

	Conversations ConversationStats  `json:"conversations"`
	Modules       []ModuleEngagement `json:"modules"`
}

// ProviderLatency is the per-provider slice of a performance profile.
type ProviderLatency struct {
	Provider string `json:"provider"`
	Events   int64  `json:"events"`
	P50      int64  `json:"p50_millis"`
	P95      int64  `json:"p95_millis"`
	P99      int64  `json:"p99_millis"`
}

// PerformanceProfile reports response-time percentiles over the window.
// Percentiles are nearest-rank over the sorted sample; an empty sample
// yields zeros.
type PerformanceProfile struct {
	ReportMeta

	SampleCount int64             `json:"sample_count"`
	AvgMillis   float64           `json:"avg_millis"`
	P50         int64             `json:"p50_millis"`
	P95         int64             `json:"p95_millis"`
	P99         int64             `json:"p99_millis"`
	ByProvider  []ProviderLatency `json:"by_provider"`
}

// RankMetric selects the ordering of a module comparison.
type RankMetric string

const (
	RankByMessages   RankMetric = "messages"
	RankByCost       RankMetric = "cost"
	RankByEngagement RankMetric = "engagement"
)

// Valid reports whether the metric is supported.
func (m RankMetric) Valid() bool {
	switch m {
	case RankByMessages, RankByCost, RankByEngagement:
		return true
	}
	return false
}

// ModuleRank is one row of a module comparison.
type ModuleRank struct {
	Rank            int             `json:"rank"`
	ModuleID        int64           `json:"module_id"`
	ModuleName      string          `json:"module_name"`
	CourseName      string          `json:"course_name"`
	Messages        int64           `json:"messages"`
	Cost            decimal.Decimal `json:"cost"`
	EngagementScore float64         `json:"engagement_score"`
}

// ModuleComparison ranks modules in scope by the requested metric. Ties
// are broken by module ID ascending so the ordering is deterministic.
type ModuleComparison struct {
	ReportMeta

	Metric  RankMetric   `json:"metric"`
	Entries []ModuleRank `json:"entries"`
}

// FaqCluster is a group of semantically similar student questions,
// represented by its most frequent literal phrasing.
type FaqCluster struct {
	Representative string   `json:"representative"`
	Count          int      `json:"count"`
	Variants       []string `json:"variants,omitempty"`
}

// FAQList reports the most frequently asked question clusters.
type FAQList struct {
	ReportMeta

	Clusters []FaqCluster `json:"clusters"`
}
