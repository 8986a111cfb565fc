// Package reconciler allocates settlements (payments) against claims
// (invoices) when no shared identifier links them.
//
// Claims are processed in input order. For each claim the settlements are
// scanned in input order and a settlement is taken when:
//   - its combined similarity score is strictly above the threshold
//   - its amount fits in the claim's remaining balance
//   - no earlier claim has already consumed it
//
// Allocation is greedy and never revisited, so the outcome depends on the
// order of both lists.
//
// Example usage:
//
//	engine := reconciler.NewEngine(reconciler.DefaultConfig(), nil, logger)
//	result, err := engine.Reconcile(ctx, claims, settlements)
//	for _, m := range result.Matches {
//		fmt.Println(m.ClaimID, m.SettlementID, m.MatchedAmount)
//	}
package reconciler

import (
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/autoreconcile/internal/domain/similarity"
)

// Claim is an obligation to reconcile, such as an invoice.
type Claim struct {
	ID               string          `json:"id"`
	CounterpartyName string          `json:"counterparty_name"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
}

// Settlement is a candidate payment for a claim.
type Settlement struct {
	ID               string          `json:"id"`
	CounterpartyName string          `json:"counterparty_name"`
	Description      string          `json:"description"`
	Amount           decimal.Decimal `json:"amount"`
}

// MatchRecord links one settlement to one claim.
type MatchRecord struct {
	ClaimID       string          `json:"claim_id"`
	SettlementID  string          `json:"settlement_id"`
	MatchedAmount decimal.Decimal `json:"matched_amount"`
	MatchScore    float64         `json:"match_score"`
}

// UnmatchedRecord carries the balance a claim could not cover.
type UnmatchedRecord struct {
	ClaimID         string          `json:"claim_id"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

// Allocation is the engine's per-claim bookkeeping after a run.
type Allocation struct {
	ClaimID         string
	Amount          decimal.Decimal
	RemainingAmount decimal.Decimal
	MatchCount      int
}

// Result is the output of one reconciliation run.
type Result struct {
	Matches     []MatchRecord
	Unmatched   []UnmatchedRecord
	Allocations []Allocation // One per claim, in claim order
}

// MatchesFor returns the match records of a single claim, in emit order.
func (r *Result) MatchesFor(claimID string) []MatchRecord {
	var out []MatchRecord
	for _, m := range r.Matches {
		if m.ClaimID == claimID {
			out = append(out, m)
		}
	}
	return out
}

// Config holds engine configuration
type Config struct {
	Threshold   float64            // Scores must be strictly greater (default: 60)
	Weights     similarity.Weights // Description/counterparty blend (default: 0.6/0.4)
	AmountScale int32              // Decimal places amounts are rounded to (default: 2)
	Workers     int                // >1 scores all pairs in parallel before allocating
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Threshold:   60,
		Weights:     similarity.DefaultWeights(),
		AmountScale: 2,
		Workers:     1,
	}
}
