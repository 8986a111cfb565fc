package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
	"github.com/eshaffer321/autoreconcile/internal/domain/status"
)

// Run states
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one reconciliation run and the configuration it used.
type Run struct {
	ID                 string          `json:"id"`
	Mode               string          `json:"mode"`
	Status             string          `json:"status"`
	Threshold          float64         `json:"threshold"`
	WeightDescription  float64         `json:"weight_description"`
	WeightCounterparty float64         `json:"weight_counterparty"`
	AmountScale        int32           `json:"amount_scale"`
	StartedAt          time.Time       `json:"started_at"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	ClaimCount         int             `json:"claim_count"`
	SettlementCount    int             `json:"settlement_count"`
	MatchCount         int             `json:"match_count"`
	UnmatchedCount     int             `json:"unmatched_count"`
	Summary            status.Summary  `json:"summary"`
	MatchedAmount      decimal.Decimal `json:"matched_amount"`
	ErrorMessage       string          `json:"error_message,omitempty"`
}

// ClaimRecord is a persisted claim with its classification at run time.
type ClaimRecord struct {
	reconciler.Claim
	TotalMatched decimal.Decimal `json:"total_matched"`
	Status       status.Status   `json:"status"`
}

// RunOutcome is everything CompleteRun writes for a run.
type RunOutcome struct {
	SettlementCount int
	Claims          []ClaimRecord
	Matches         []reconciler.MatchRecord
	Unmatched       []reconciler.UnmatchedRecord
}

// summary counts claim statuses.
func (o *RunOutcome) summary() status.Summary {
	var s status.Summary
	for _, c := range o.Claims {
		switch c.Status {
		case status.FullySettled:
			s.FullySettled++
		case status.PartiallySettled:
			s.PartiallySettled++
		case status.Unsettled:
			s.Unsettled++
		}
	}
	return s
}

// matchedAmount sums the matched amounts.
func (o *RunOutcome) matchedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, m := range o.Matches {
		total = total.Add(m.MatchedAmount)
	}
	return total
}

// RunDetail is a run with all of its records, in input order.
type RunDetail struct {
	Run
	Claims    []ClaimRecord                `json:"claims"`
	Matches   []reconciler.MatchRecord     `json:"matches"`
	Unmatched []reconciler.UnmatchedRecord `json:"unmatched"`
}

// ClaimList returns the plain claims in input order.
func (d *RunDetail) ClaimList() []reconciler.Claim {
	claims := make([]reconciler.Claim, len(d.Claims))
	for i, c := range d.Claims {
		claims[i] = c.Claim
	}
	return claims
}

// Stats represents aggregate statistics
type Stats struct {
	TotalRuns     int                  `json:"total_runs"`
	CompletedRuns int                  `json:"completed_runs"`
	FailedRuns    int                  `json:"failed_runs"`
	TotalClaims   int                  `json:"total_claims"`
	TotalMatches  int                  `json:"total_matches"`
	MatchedAmount decimal.Decimal      `json:"matched_amount"`
	Statuses      status.Summary       `json:"statuses"`
	ModeStats     map[string]ModeStats `json:"mode_stats"`
}

// ModeStats holds per-mode statistics
type ModeStats struct {
	Runs          int             `json:"runs"`
	Claims        int             `json:"claims"`
	Matches       int             `json:"matches"`
	MatchedAmount decimal.Decimal `json:"matched_amount"`
}
