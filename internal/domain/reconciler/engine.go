package reconciler

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Engine runs reconciliations with a fixed configuration and scorer.
// It holds no per-run state and may be reused.
type Engine struct {
	config Config
	scorer Scorer
	logger *slog.Logger
}

// NewEngine creates an engine. A nil scorer selects a TextScorer built from
// config.Weights; a nil logger discards engine logs.
func NewEngine(config Config, scorer Scorer, logger *slog.Logger) *Engine {
	if scorer == nil {
		scorer = NewTextScorer(config.Weights)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		config: config,
		scorer: scorer,
		logger: logger,
	}
}

// Reconcile validates the inputs and allocates settlements to claims.
// A validation failure returns a *ValidationError and no partial result.
// The context is only consulted while scoring in parallel.
func (e *Engine) Reconcile(ctx context.Context, claims []Claim, settlements []Settlement) (*Result, error) {
	claims, settlements, err := Normalize(claims, settlements, e.config.AmountScale)
	if err != nil {
		return nil, err
	}

	scores, err := e.scoreTable(ctx, claims, settlements)
	if err != nil {
		return nil, err
	}

	consumed := NewConsumedSet(len(settlements))
	result := e.allocate(claims, settlements, scores, consumed)

	e.logger.Info("reconciliation complete",
		"claims", len(claims),
		"settlements", len(settlements),
		"matches", len(result.Matches),
		"unmatched", len(result.Unmatched),
		"consumed", consumed.Len())

	return result, nil
}

// Reconcile is a convenience wrapper that runs a default-configured engine
// with the given threshold and scorer.
func Reconcile(claims []Claim, settlements []Settlement, threshold float64, scorer Scorer) (*Result, error) {
	cfg := DefaultConfig()
	cfg.Threshold = threshold
	return NewEngine(cfg, scorer, nil).Reconcile(context.Background(), claims, settlements)
}

// allocate walks claims in order and greedily takes admissible settlements
// until the claim's balance reaches exactly zero or the list is exhausted.
func (e *Engine) allocate(claims []Claim, settlements []Settlement, scores scoreTable, consumed *ConsumedSet) *Result {
	result := &Result{
		Matches:     make([]MatchRecord, 0),
		Unmatched:   make([]UnmatchedRecord, 0),
		Allocations: make([]Allocation, 0, len(claims)),
	}

	for ci, claim := range claims {
		remaining := claim.Amount
		matched := 0

		for si, settlement := range settlements {
			if consumed.Contains(settlement.ID) {
				continue
			}

			score := scores.score(ci, si)
			if score <= e.config.Threshold {
				continue
			}
			if settlement.Amount.GreaterThan(remaining) {
				continue
			}
			if !consumed.Consume(settlement.ID) {
				continue
			}

			result.Matches = append(result.Matches, MatchRecord{
				ClaimID:       claim.ID,
				SettlementID:  settlement.ID,
				MatchedAmount: settlement.Amount,
				MatchScore:    score,
			})
			remaining = remaining.Sub(settlement.Amount)
			matched++

			e.logger.Debug("settlement allocated",
				"claim_id", claim.ID,
				"settlement_id", settlement.ID,
				"amount", settlement.Amount.String(),
				"score", score,
				"remaining", remaining.String())

			if remaining.IsZero() {
				break
			}
		}

		switch {
		case matched == 0:
			result.Unmatched = append(result.Unmatched, UnmatchedRecord{
				ClaimID:         claim.ID,
				RemainingAmount: claim.Amount,
			})
		case remaining.IsPositive():
			result.Unmatched = append(result.Unmatched, UnmatchedRecord{
				ClaimID:         claim.ID,
				RemainingAmount: remaining,
			})
		}

		result.Allocations = append(result.Allocations, Allocation{
			ClaimID:         claim.ID,
			Amount:          claim.Amount,
			RemainingAmount: remaining,
			MatchCount:      matched,
		})
	}

	return result
}

// scoreTable yields the score of claim ci against settlement si.
type scoreTable interface {
	score(ci, si int) float64
}

// lazyScores computes each score on demand.
type lazyScores struct {
	scorer      Scorer
	claims      []Claim
	settlements []Settlement
}

func (l lazyScores) score(ci, si int) float64 {
	return l.scorer.Score(l.claims[ci], l.settlements[si])
}

// scoreMatrix holds every pair's score, computed up front.
type scoreMatrix [][]float64

func (m scoreMatrix) score(ci, si int) float64 {
	return m[ci][si]
}

// scoreTable picks lazy scoring for a single worker, otherwise fills the
// full matrix with one goroutine per claim row, bounded by Workers.
func (e *Engine) scoreTable(ctx context.Context, claims []Claim, settlements []Settlement) (scoreTable, error) {
	if e.config.Workers <= 1 {
		return lazyScores{scorer: e.scorer, claims: claims, settlements: settlements}, nil
	}

	matrix := make(scoreMatrix, len(claims))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for ci := range claims {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row := make([]float64, len(settlements))
			for si := range settlements {
				row[si] = e.scorer.Score(claims[ci], settlements[si])
			}
			matrix[ci] = row
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return matrix, nil
}
