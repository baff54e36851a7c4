package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/courseloop/insights/internal/core/domain"
)

func entry(provider, model, inCost, outCost string, active bool) domain.PricingEntry {
	return domain.PricingEntry{
		Provider:                   provider,
		ModelName:                  model,
		InputCostPerMillionTokens:  decimal.RequireFromString(inCost),
		OutputCostPerMillionTokens: decimal.RequireFromString(outCost),
		IsActive:                   active,
	}
}

func TestCost_KnownModel(t *testing.T) {
	// $2.50/M input, $10.00/M output; 1,000 input + 500 output tokens:
	// 0.0025 + 0.005 = $0.0075.
	r := NewResolver([]domain.PricingEntry{
		entry("openai", "gpt-4o", "2.50", "10.00", true),
	})

	amount, known := r.Cost("openai", "gpt-4o", 1000, 500)
	if !known {
		t.Fatal("known = false, want true")
	}
	if want := decimal.RequireFromString("0.0075"); !amount.Equal(want) {
		t.Errorf("cost = %s, want %s", amount, want)
	}
}

func TestCost_UnknownModelIsZeroNotError(t *testing.T) {
	r := NewResolver(nil)

	amount, known := r.Cost("openai", "gpt-4o", 5000, 5000)
	if known {
		t.Error("known = true for missing entry, want false")
	}
	if !amount.IsZero() {
		t.Errorf("cost = %s, want 0", amount)
	}
}

func TestCost_InactiveEntryIgnored(t *testing.T) {
	r := NewResolver([]domain.PricingEntry{
		entry("anthropic", "claude-retired", "1.00", "2.00", false),
	})

	if _, known := r.Cost("anthropic", "claude-retired", 100, 100); known {
		t.Error("inactive entry resolved, want unknown")
	}
}

func TestCost_ZeroTokensZeroCost(t *testing.T) {
	r := NewResolver([]domain.PricingEntry{
		entry("openai", "gpt-4o", "2.50", "10.00", true),
	})

	amount, known := r.Cost("openai", "gpt-4o", 0, 0)
	if !known {
		t.Fatal("known = false, want true")
	}
	if !amount.IsZero() {
		t.Errorf("cost = %s, want 0", amount)
	}
}

func TestCost_LinearInTokenCounts(t *testing.T) {
	r := NewResolver([]domain.PricingEntry{
		entry("openai", "gpt-4o", "3.00", "15.00", true),
	})

	single, _ := r.Cost("openai", "gpt-4o", 1000, 2000)
	double, _ := r.Cost("openai", "gpt-4o", 2000, 4000)
	if !double.Equal(single.Mul(decimal.NewFromInt(2))) {
		t.Errorf("cost not linear: 2x tokens = %s, 2 * 1x = %s", double, single.Mul(decimal.NewFromInt(2)))
	}

	inOnly, _ := r.Cost("openai", "gpt-4o", 1000, 0)
	outOnly, _ := r.Cost("openai", "gpt-4o", 0, 2000)
	combined, _ := r.Cost("openai", "gpt-4o", 1000, 2000)
	if !combined.Equal(inOnly.Add(outOnly)) {
		t.Errorf("cost not additive: combined = %s, in+out = %s", combined, inOnly.Add(outOnly))
	}
}

func TestCost_CaseInsensitiveLookup(t *testing.T) {
	r := NewResolver([]domain.PricingEntry{
		entry("OpenAI", "GPT-4o", "2.50", "10.00", true),
	})

	if _, known := r.Cost("openai", "gpt-4o", 1, 1); !known {
		t.Error("case-insensitive lookup failed")
	}
}

func TestCostParts(t *testing.T) {
	r := NewResolver([]domain.PricingEntry{
		entry("openai", "gpt-4o", "2.50", "10.00", true),
	})

	in, out, known := r.CostParts("openai", "gpt-4o", 1000, 500)
	if !known {
		t.Fatal("known = false, want true")
	}
	if want := decimal.RequireFromString("0.0025"); !in.Equal(want) {
		t.Errorf("input cost = %s, want %s", in, want)
	}
	if want := decimal.RequireFromString("0.005"); !out.Equal(want) {
		t.Errorf("output cost = %s, want %s", out, want)
	}
}
