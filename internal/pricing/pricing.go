// Package pricing maps (provider, model) pairs to per-million-token costs
// and computes event costs as fixed-point decimals. Missing pricing is
// "cost unknown", never an error: unpriced spend is counted separately so
// it cannot silently vanish or be assumed free.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/courseloop/insights/internal/core/domain"
)

var million = decimal.NewFromInt(1_000_000)

// Resolver resolves pricing entries from a request-scoped snapshot of the
// active pricing table. It is immutable after construction.
type Resolver struct {
	entries map[string]domain.PricingEntry
}

// NewResolver builds a resolver over a pricing snapshot. Inactive entries
// are skipped; provider and model names match case-insensitively.
func NewResolver(entries []domain.PricingEntry) *Resolver {
	m := make(map[string]domain.PricingEntry, len(entries))
	for _, e := range entries {
		if !e.IsActive {
			continue
		}
		m[pricingKey(e.Provider, e.ModelName)] = e
	}
	return &Resolver{entries: m}
}

// Lookup returns the active pricing entry for a (provider, model) pair.
func (r *Resolver) Lookup(provider, model string) (domain.PricingEntry, bool) {
	e, ok := r.entries[pricingKey(provider, model)]
	return e, ok
}

// Cost computes the monetary cost of a single interaction:
//
//	inputTokens/1e6 × inputCostPerMillion + outputTokens/1e6 × outputCostPerMillion
//
// known is false when no active pricing entry covers the pair; the amount
// is then zero and the caller must account for the event as unpriced.
func (r *Resolver) Cost(provider, model string, inputTokens, outputTokens int64) (amount decimal.Decimal, known bool) {
	e, ok := r.Lookup(provider, model)
	if !ok {
		return decimal.Zero, false
	}
	in, out := splitCost(e, inputTokens, outputTokens)
	return in.Add(out), true
}

// CostParts is like Cost but keeps the input and output components
// separate, for reports that break spend down by direction.
func (r *Resolver) CostParts(provider, model string, inputTokens, outputTokens int64) (in, out decimal.Decimal, known bool) {
	e, ok := r.Lookup(provider, model)
	if !ok {
		return decimal.Zero, decimal.Zero, false
	}
	in, out = splitCost(e, inputTokens, outputTokens)
	return in, out, true
}

func splitCost(e domain.PricingEntry, inputTokens, outputTokens int64) (in, out decimal.Decimal) {
	in = decimal.NewFromInt(inputTokens).Mul(e.InputCostPerMillionTokens).Div(million)
	out = decimal.NewFromInt(outputTokens).Mul(e.OutputCostPerMillionTokens).Div(million)
	return in, out
}

func pricingKey(provider, model string) string {
	return strings.ToLower(provider) + "\x00" + strings.ToLower(model)
}
