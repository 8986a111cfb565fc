package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
	"github.com/eshaffer321/autoreconcile/internal/domain/status"
)

// StartRun records the start of a reconciliation run
func (s *Storage) StartRun(run *Run) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = RunStatusRunning

	query := `
		INSERT INTO reconciliation_runs
		(id, mode, status, threshold, weight_description, weight_counterparty, amount_scale, started_at, claim_count, settlement_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		run.ID,
		run.Mode,
		run.Status,
		run.Threshold,
		run.WeightDescription,
		run.WeightCounterparty,
		run.AmountScale,
		run.StartedAt,
		run.ClaimCount,
		run.SettlementCount,
	)
	return err
}

// CompleteRun writes all records of a run in one transaction
func (s *Storage) CompleteRun(runID string, outcome *RunOutcome) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, c := range outcome.Claims {
		_, err = tx.Exec(`
			INSERT INTO run_claims
			(run_id, position, claim_id, counterparty_name, description, amount, total_matched, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, runID, i, c.ID, c.CounterpartyName, c.Description, c.Amount, c.TotalMatched, string(c.Status))
		if err != nil {
			return fmt.Errorf("failed to save claim %s: %w", c.ID, err)
		}
	}

	for i, m := range outcome.Matches {
		_, err = tx.Exec(`
			INSERT INTO match_records
			(run_id, position, claim_id, settlement_id, matched_amount, match_score)
			VALUES (?, ?, ?, ?, ?, ?)
		`, runID, i, m.ClaimID, m.SettlementID, m.MatchedAmount, m.MatchScore)
		if err != nil {
			return fmt.Errorf("failed to save match %s/%s: %w", m.ClaimID, m.SettlementID, err)
		}
	}

	for i, u := range outcome.Unmatched {
		_, err = tx.Exec(`
			INSERT INTO unmatched_records (run_id, position, claim_id, remaining_amount)
			VALUES (?, ?, ?, ?)
		`, runID, i, u.ClaimID, u.RemainingAmount)
		if err != nil {
			return fmt.Errorf("failed to save unmatched %s: %w", u.ClaimID, err)
		}
	}

	summary := outcome.summary()
	res, err := tx.Exec(`
		UPDATE reconciliation_runs
		SET status = ?,
		    completed_at = ?,
		    claim_count = ?,
		    settlement_count = ?,
		    match_count = ?,
		    unmatched_count = ?,
		    fully_settled = ?,
		    partially_settled = ?,
		    unsettled = ?,
		    matched_amount = ?
		WHERE id = ?
	`,
		RunStatusCompleted,
		time.Now().UTC(),
		len(outcome.Claims),
		outcome.SettlementCount,
		len(outcome.Matches),
		len(outcome.Unmatched),
		summary.FullySettled,
		summary.PartiallySettled,
		summary.Unsettled,
		outcome.matchedAmount(),
		runID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}

	return tx.Commit()
}

// FailRun records a failed run
func (s *Storage) FailRun(runID string, message string) error {
	_, err := s.db.Exec(`
		UPDATE reconciliation_runs
		SET status = ?, completed_at = ?, error_message = ?
		WHERE id = ?
	`, RunStatusFailed, time.Now().UTC(), message, runID)
	return err
}

const runColumns = `
	id, mode, status, threshold, weight_description, weight_counterparty, amount_scale,
	started_at, completed_at, claim_count, settlement_count, match_count, unmatched_count,
	fully_settled, partially_settled, unsettled, matched_amount, error_message`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	run := &Run{}
	var completedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.Mode,
		&run.Status,
		&run.Threshold,
		&run.WeightDescription,
		&run.WeightCounterparty,
		&run.AmountScale,
		&run.StartedAt,
		&completedAt,
		&run.ClaimCount,
		&run.SettlementCount,
		&run.MatchCount,
		&run.UnmatchedCount,
		&run.Summary.FullySettled,
		&run.Summary.PartiallySettled,
		&run.Summary.Unsettled,
		&run.MatchedAmount,
		&run.ErrorMessage,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return run, nil
}

// GetRun retrieves a run and its records by ID
func (s *Storage) GetRun(runID string) (*RunDetail, error) {
	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM reconciliation_runs WHERE id = ?`, runID))
	if err == sql.ErrNoRows {
		return nil, nil // Not found is not an error
	}
	if err != nil {
		return nil, err
	}

	detail := &RunDetail{Run: *run}

	if detail.Claims, err = s.getClaims(runID); err != nil {
		return nil, err
	}
	if detail.Matches, err = s.getMatches(runID); err != nil {
		return nil, err
	}
	if detail.Unmatched, err = s.getUnmatched(runID); err != nil {
		return nil, err
	}

	return detail, nil
}

func (s *Storage) getClaims(runID string) ([]ClaimRecord, error) {
	rows, err := s.db.Query(`
		SELECT claim_id, counterparty_name, description, amount, total_matched, status
		FROM run_claims WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	claims := []ClaimRecord{}
	for rows.Next() {
		var c ClaimRecord
		var st string
		if err := rows.Scan(&c.ID, &c.CounterpartyName, &c.Description, &c.Amount, &c.TotalMatched, &st); err != nil {
			return nil, err
		}
		c.Status = status.Status(st)
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func (s *Storage) getMatches(runID string) ([]reconciler.MatchRecord, error) {
	rows, err := s.db.Query(`
		SELECT claim_id, settlement_id, matched_amount, match_score
		FROM match_records WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	matches := []reconciler.MatchRecord{}
	for rows.Next() {
		var m reconciler.MatchRecord
		if err := rows.Scan(&m.ClaimID, &m.SettlementID, &m.MatchedAmount, &m.MatchScore); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Storage) getUnmatched(runID string) ([]reconciler.UnmatchedRecord, error) {
	rows, err := s.db.Query(`
		SELECT claim_id, remaining_amount
		FROM unmatched_records WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	unmatched := []reconciler.UnmatchedRecord{}
	for rows.Next() {
		var u reconciler.UnmatchedRecord
		if err := rows.Scan(&u.ClaimID, &u.RemainingAmount); err != nil {
			return nil, err
		}
		unmatched = append(unmatched, u)
	}
	return unmatched, rows.Err()
}

// ListRuns returns runs matching the given filters, newest first
func (s *Storage) ListRuns(filters RunFilters) (*RunListResult, error) {
	var where []string
	var args []any
	if filters.Mode != "" {
		where = append(where, "mode = ?")
		args = append(args, filters.Mode)
	}
	if filters.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filters.Status)
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	result := &RunListResult{
		Runs:   []Run{},
		Limit:  filters.limit(),
		Offset: filters.Offset,
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM reconciliation_runs`+whereClause, args...).Scan(&result.TotalCount); err != nil {
		return nil, err
	}

	query := `SELECT ` + runColumns + ` FROM reconciliation_runs` + whereClause +
		` ORDER BY started_at DESC, rowid DESC LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, append(args, result.Limit, result.Offset)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		result.Runs = append(result.Runs, *run)
	}

	return result, rows.Err()
}

// GetStats returns aggregate statistics over all runs
func (s *Storage) GetStats() (*Stats, error) {
	stats := &Stats{
		MatchedAmount: decimal.Zero,
		ModeStats:     make(map[string]ModeStats),
	}

	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'completed' THEN 1 END),
			COUNT(CASE WHEN status = 'failed' THEN 1 END)
		FROM reconciliation_runs
	`).Scan(&stats.TotalRuns, &stats.CompletedRuns, &stats.FailedRuns)
	if err != nil {
		return nil, err
	}

	// Decimal totals are summed in Go; SQLite would coerce TEXT to REAL.
	rows, err := s.db.Query(`
		SELECT mode, claim_count, match_count, fully_settled, partially_settled, unsettled, matched_amount
		FROM reconciliation_runs
		WHERE status = 'completed'
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var mode string
		var claims, matches int
		var summary status.Summary
		var amount decimal.Decimal
		if err := rows.Scan(&mode, &claims, &matches, &summary.FullySettled, &summary.PartiallySettled, &summary.Unsettled, &amount); err != nil {
			return nil, err
		}

		stats.TotalClaims += claims
		stats.TotalMatches += matches
		stats.MatchedAmount = stats.MatchedAmount.Add(amount)
		stats.Statuses.FullySettled += summary.FullySettled
		stats.Statuses.PartiallySettled += summary.PartiallySettled
		stats.Statuses.Unsettled += summary.Unsettled

		ms := stats.ModeStats[mode]
		ms.Runs++
		ms.Claims += claims
		ms.Matches += matches
		ms.MatchedAmount = ms.MatchedAmount.Add(amount)
		stats.ModeStats[mode] = ms
	}

	return stats, rows.Err()
}
