package similarity

// Weights controls how the description and counterparty comparisons are
// blended. They are not required to sum to 1.
type Weights struct {
	Description  float64 `yaml:"weight_description" json:"weight_description"`
	Counterparty float64 `yaml:"weight_counterparty" json:"weight_counterparty"`
}

// DefaultWeights returns the 0.6 / 0.4 description-heavy blend.
func DefaultWeights() Weights {
	return Weights{
		Description:  0.6,
		Counterparty: 0.4,
	}
}

// Scorer combines two text comparisons into one confidence score.
// The zero value is not usable; build one with NewScorer.
type Scorer struct {
	weights Weights
	metric  Func
}

// NewScorer creates a scorer. A nil metric selects TokenSetRatio.
func NewScorer(weights Weights, metric Func) *Scorer {
	if metric == nil {
		metric = TokenSetRatio
	}
	return &Scorer{
		weights: weights,
		metric:  metric,
	}
}

// Weights returns the scorer's blend.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Combine scores a description pair and a counterparty pair and returns
// the weighted sum.
func (s *Scorer) Combine(descA, descB, nameA, nameB string) float64 {
	descScore := s.metric(descA, descB)
	nameScore := s.metric(nameA, nameB)
	return s.weights.Description*descScore + s.weights.Counterparty*nameScore
}
