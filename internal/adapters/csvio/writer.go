package csvio

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
)

// ScorePlaces is the number of decimal places MatchScore is written with.
const ScorePlaces = 3

// WriteMatched writes one row per match record:
// claim id, settlement id, claim counterparty, matched amount, score.
// Amounts are written with scale decimal places.
func WriteMatched(w io.Writer, p Profile, scale int32, claims []reconciler.Claim, matches []reconciler.MatchRecord) error {
	names := counterpartyNames(claims)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{p.ClaimID, p.MatchedSettlementID, p.ClaimCounterparty, p.MatchedAmount, p.MatchScore}); err != nil {
		return err
	}
	for _, m := range matches {
		row := []string{
			m.ClaimID,
			m.SettlementID,
			names[m.ClaimID],
			m.MatchedAmount.StringFixed(scale),
			FormatScore(m.MatchScore),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUnmatched writes one row per unmatched record:
// claim id, claim counterparty, remaining amount.
func WriteUnmatched(w io.Writer, p Profile, scale int32, claims []reconciler.Claim, unmatched []reconciler.UnmatchedRecord) error {
	names := counterpartyNames(claims)

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{p.ClaimID, p.ClaimCounterparty, p.RemainingAmount}); err != nil {
		return err
	}
	for _, u := range unmatched {
		row := []string{
			u.ClaimID,
			names[u.ClaimID],
			u.RemainingAmount.StringFixed(scale),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatScore rounds a score to ScorePlaces and drops trailing zeros.
func FormatScore(score float64) string {
	scale := math.Pow10(ScorePlaces)
	return strconv.FormatFloat(math.Round(score*scale)/scale, 'f', -1, 64)
}

func counterpartyNames(claims []reconciler.Claim) map[string]string {
	names := make(map[string]string, len(claims))
	for _, c := range claims {
		names[c.ID] = c.CounterpartyName
	}
	return names
}
