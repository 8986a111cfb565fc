package status

// Summary counts claims per status.
type Summary struct {
	FullySettled     int `json:"fully_settled"`
	PartiallySettled int `json:"partially_settled"`
	Unsettled        int `json:"unsettled"`
}

// Summarize counts the statuses.
func Summarize(statuses []ClaimStatus) Summary {
	var s Summary
	for _, cs := range statuses {
		switch cs.Status {
		case FullySettled:
			s.FullySettled++
		case PartiallySettled:
			s.PartiallySettled++
		case Unsettled:
			s.Unsettled++
		}
	}
	return s
}

// Count returns the number of claims with the given status.
func (s Summary) Count(st Status) int {
	switch st {
	case FullySettled:
		return s.FullySettled
	case PartiallySettled:
		return s.PartiallySettled
	case Unsettled:
		return s.Unsettled
	default:
		return 0
	}
}

// Total returns the number of classified claims.
func (s Summary) Total() int {
	return s.FullySettled + s.PartiallySettled + s.Unsettled
}
