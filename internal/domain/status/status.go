// Package status classifies claims by how much of them was settled.
//
// Classification is a pure view over a claim and its match records, so it
// can be recomputed from persisted matches at any time with the same result.
package status

import (
	"github.com/shopspring/decimal"

	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
)

// Status is the terminal state of a claim after allocation.
type Status string

const (
	FullySettled     Status = "fully_settled"
	PartiallySettled Status = "partially_settled"
	Unsettled        Status = "unsettled"
)

// All lists the statuses in report order.
var All = []Status{FullySettled, PartiallySettled, Unsettled}

// Label returns the human-readable name used in reports.
func (s Status) Label() string {
	switch s {
	case FullySettled:
		return "Fully Paid"
	case PartiallySettled:
		return "Partially Paid"
	case Unsettled:
		return "Unpaid"
	default:
		return string(s)
	}
}

// ClaimStatus pairs a claim with its classification.
type ClaimStatus struct {
	ClaimID      string          `json:"claim_id"`
	Amount       decimal.Decimal `json:"amount"`
	TotalMatched decimal.Decimal `json:"total_matched"`
	Status       Status          `json:"status"`
}

// Classify returns the status of claim given its match records. Records
// for other claims are ignored.
//
// The full-settlement check runs first, so a zero-amount claim with no
// matches is FullySettled. A total above the claim amount cannot come out
// of the engine; if persisted data says otherwise it is PartiallySettled.
func Classify(claim reconciler.Claim, matches []reconciler.MatchRecord) Status {
	total := totalMatched(claim.ID, matches)
	return classifyTotal(claim.Amount, total)
}

// ClassifyAll classifies every claim in order.
func ClassifyAll(claims []reconciler.Claim, matches []reconciler.MatchRecord) []ClaimStatus {
	byClaim := make(map[string][]reconciler.MatchRecord, len(claims))
	for _, m := range matches {
		byClaim[m.ClaimID] = append(byClaim[m.ClaimID], m)
	}

	out := make([]ClaimStatus, 0, len(claims))
	for _, c := range claims {
		total := totalMatched(c.ID, byClaim[c.ID])
		out = append(out, ClaimStatus{
			ClaimID:      c.ID,
			Amount:       c.Amount,
			TotalMatched: total,
			Status:       classifyTotal(c.Amount, total),
		})
	}
	return out
}

func classifyTotal(amount, total decimal.Decimal) Status {
	switch {
	case total.Equal(amount):
		return FullySettled
	case total.IsPositive():
		return PartiallySettled
	default:
		return Unsettled
	}
}

func totalMatched(claimID string, matches []reconciler.MatchRecord) decimal.Decimal {
	total := decimal.Zero
	for _, m := range matches {
		if m.ClaimID == claimID {
			total = total.Add(m.MatchedAmount)
		}
	}
	return total
}
