package reconciler

import "github.com/eshaffer321/autoreconcile/internal/domain/similarity"

// Scorer rates how plausibly a settlement pays a claim, in [0, 100] for the
// default weights. Implementations must be pure: the engine may call Score
// from several goroutines and in any order.
type Scorer interface {
	Score(claim Claim, settlement Settlement) float64
}

// ScorerFunc adapts a plain function to Scorer.
type ScorerFunc func(claim Claim, settlement Settlement) float64

// Score calls f.
func (f ScorerFunc) Score(claim Claim, settlement Settlement) float64 {
	return f(claim, settlement)
}

// TextScorer compares descriptions and counterparty names with a
// similarity.Scorer.
type TextScorer struct {
	scorer *similarity.Scorer
}

// NewTextScorer creates a token-set scorer with the given weights.
func NewTextScorer(weights similarity.Weights) *TextScorer {
	return &TextScorer{scorer: similarity.NewScorer(weights, similarity.TokenSetRatio)}
}

// Score returns the weighted description and counterparty similarity.
func (t *TextScorer) Score(claim Claim, settlement Settlement) float64 {
	return t.scorer.Combine(
		claim.Description, settlement.Description,
		claim.CounterpartyName, settlement.CounterpartyName,
	)
}
