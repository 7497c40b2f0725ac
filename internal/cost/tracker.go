// Package cost implements the CostTracker: monotonic token and
// cost bookkeeping across a run, plus the per-adapter pricing table used to
// estimate cost from token counts when an adapter doesn't report it
// directly.
package cost

import "fmt"

// ModelPricing gives per-million-token USD rates for one model.
type ModelPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// Estimate returns the USD cost of tokensIn/tokensOut at this pricing.
func (p ModelPricing) Estimate(tokensIn, tokensOut int) float64 {
	return float64(tokensIn)/1_000_000*p.InputPerMillion +
		float64(tokensOut)/1_000_000*p.OutputPerMillion
}

// PricingTable maps an agent tag to its pricing. A missing entry means cost
// cannot be estimated from tokens for that agent; callers fall back to
// whatever cost the adapter itself reports.
type PricingTable map[string]ModelPricing

// Tracker accumulates token and cost counters across a run. Every counter is
// monotonically non-decreasing: Record never subtracts.
type Tracker struct {
	pricing PricingTable

	tokensIn  int
	tokensOut int
	totalCost float64

	missingTokenWarnings int
}

// New returns a Tracker consulting pricing for any iteration that doesn't
// carry its own adapter-reported cost.
func New(pricing PricingTable) *Tracker {
	if pricing == nil {
		pricing = PricingTable{}
	}
	return &Tracker{pricing: pricing}
}

// Record folds one iteration's token/cost figures into the running totals.
// A nil tokensIn or tokensOut counts as zero and bumps the missing-token
// warning counter once per missing side, rather than erroring. A nil
// reportedCost falls back to the pricing-table estimate for agentTag (zero
// when the tag has no entry).
func (t *Tracker) Record(agentTag string, tokensIn, tokensOut *int, reportedCost *float64) {
	in, out := 0, 0
	if tokensIn != nil {
		in = *tokensIn
	} else {
		t.missingTokenWarnings++
	}
	if tokensOut != nil {
		out = *tokensOut
	} else {
		t.missingTokenWarnings++
	}

	t.tokensIn += in
	t.tokensOut += out

	switch {
	case reportedCost != nil:
		t.totalCost += *reportedCost
	default:
		if pricing, ok := t.pricing[agentTag]; ok {
			t.totalCost += pricing.Estimate(in, out)
		}
	}
}

// TokensIn returns the cumulative input token count.
func (t *Tracker) TokensIn() int { return t.tokensIn }

// TokensOut returns the cumulative output token count.
func (t *Tracker) TokensOut() int { return t.tokensOut }

// TotalCost returns the cumulative estimated USD cost. Guaranteed
// non-decreasing across calls to Record.
func (t *Tracker) TotalCost() float64 { return t.totalCost }

// MissingTokenWarnings returns how many token counts were missing across
// all recorded iterations; an iteration missing both sides counts twice.
func (t *Tracker) MissingTokenWarnings() int { return t.missingTokenWarnings }

// ExceedsCeiling reports whether the current total cost has crossed
// maxCost. A negative maxCost means no ceiling is configured; zero is a
// real ceiling that trips as soon as any cost has been recorded.
func (t *Tracker) ExceedsCeiling(maxCost float64) bool {
	return maxCost >= 0 && t.totalCost >= maxCost
}

// String renders a one-line human summary, used by the terminal report.
func (t *Tracker) String() string {
	return fmt.Sprintf("tokens_in=%d tokens_out=%d cost=$%.4f", t.tokensIn, t.tokensOut, t.totalCost)
}
