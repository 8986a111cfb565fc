// Package report renders a finished reconciliation run as a spreadsheet
// or a PDF. Both formats carry the same content: a status summary, one row
// per claim, the match records and the unmatched balances.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
	"github.com/eshaffer321/autoreconcile/internal/domain/status"
)

// Report is everything a rendered run needs.
type Report struct {
	RunID       string
	Mode        string
	Threshold   float64
	AmountScale int32
	GeneratedAt time.Time
	Claims      []reconciler.Claim
	Matches     []reconciler.MatchRecord
	Unmatched   []reconciler.UnmatchedRecord
	Statuses    []status.ClaimStatus
}

// Summary counts the report's statuses.
func (r *Report) Summary() status.Summary {
	return status.Summarize(r.Statuses)
}

// amount formats a money value with the run's amount scale.
func (r *Report) amount(d decimal.Decimal) string {
	return d.StringFixed(r.AmountScale)
}

func (r *Report) title() string {
	switch r.Mode {
	case "payables":
		return "Vendor Invoice Payment Status"
	case "receivables":
		return "Invoice Payment Status"
	default:
		return "Reconciliation Status"
	}
}

func (r *Report) counterparty(claimID string) string {
	for _, c := range r.Claims {
		if c.ID == claimID {
			return c.CounterpartyName
		}
	}
	return ""
}
