package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps, making tests fast and isolated.
type MockRepository struct {
	mu    sync.Mutex
	runs  map[string]*RunDetail
	order []string // insertion order, for stable listing

	// Hooks for test assertions
	StartRunCalled    bool
	LastStartedRun    *Run
	CompleteRunCalled bool
	LastOutcome       *RunOutcome
	FailRunCalled     bool
	LastFailMessage   string

	// Error injection for testing error paths
	StartRunErr    error
	CompleteRunErr error
	FailRunErr     error
	GetRunErr      error
	ListRunsErr    error
	GetStatsErr    error
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs: make(map[string]*RunDetail),
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// StartRun stores the run in memory
func (m *MockRepository) StartRun(run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartRunCalled = true
	m.LastStartedRun = run
	if m.StartRunErr != nil {
		return m.StartRunErr
	}
	if _, exists := m.runs[run.ID]; exists {
		return fmt.Errorf("run %s already exists", run.ID)
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = RunStatusRunning

	m.runs[run.ID] = &RunDetail{Run: *run}
	m.order = append(m.order, run.ID)
	return nil
}

// CompleteRun attaches the outcome to the stored run
func (m *MockRepository) CompleteRun(runID string, outcome *RunOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteRunCalled = true
	m.LastOutcome = outcome
	if m.CompleteRunErr != nil {
		return m.CompleteRunErr
	}
	detail, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("run %s not found", runID)
	}

	now := time.Now().UTC()
	detail.Status = RunStatusCompleted
	detail.CompletedAt = &now
	detail.ClaimCount = len(outcome.Claims)
	detail.SettlementCount = outcome.SettlementCount
	detail.MatchCount = len(outcome.Matches)
	detail.UnmatchedCount = len(outcome.Unmatched)
	detail.Summary = outcome.summary()
	detail.MatchedAmount = outcome.matchedAmount()
	detail.Claims = append(detail.Claims[:0:0], outcome.Claims...)
	detail.Matches = append(detail.Matches[:0:0], outcome.Matches...)
	detail.Unmatched = append(detail.Unmatched[:0:0], outcome.Unmatched...)
	return nil
}

// FailRun marks the stored run failed
func (m *MockRepository) FailRun(runID string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FailRunCalled = true
	m.LastFailMessage = message
	if m.FailRunErr != nil {
		return m.FailRunErr
	}
	if detail, ok := m.runs[runID]; ok {
		now := time.Now().UTC()
		detail.Status = RunStatusFailed
		detail.CompletedAt = &now
		detail.ErrorMessage = message
	}
	return nil
}

// GetRun returns a copy of the stored run, or nil if absent
func (m *MockRepository) GetRun(runID string) (*RunDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetRunErr != nil {
		return nil, m.GetRunErr
	}
	detail, ok := m.runs[runID]
	if !ok {
		return nil, nil
	}
	copied := *detail
	return &copied, nil
}

// ListRuns filters and paginates the stored runs, newest first
func (m *MockRepository) ListRuns(filters RunFilters) (*RunListResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListRunsErr != nil {
		return nil, m.ListRunsErr
	}

	var matched []Run
	for i := len(m.order) - 1; i >= 0; i-- {
		run := m.runs[m.order[i]].Run
		if filters.Mode != "" && run.Mode != filters.Mode {
			continue
		}
		if filters.Status != "" && run.Status != filters.Status {
			continue
		}
		matched = append(matched, run)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].StartedAt.After(matched[j].StartedAt)
	})

	result := &RunListResult{
		Runs:       []Run{},
		TotalCount: len(matched),
		Limit:      filters.limit(),
		Offset:     filters.Offset,
	}
	if filters.Offset < len(matched) {
		end := min(filters.Offset+result.Limit, len(matched))
		result.Runs = append(result.Runs, matched[filters.Offset:end]...)
	}
	return result, nil
}

// GetStats computes statistics over the stored runs
func (m *MockRepository) GetStats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetStatsErr != nil {
		return nil, m.GetStatsErr
	}

	stats := &Stats{
		MatchedAmount: decimal.Zero,
		ModeStats:     make(map[string]ModeStats),
	}
	for _, id := range m.order {
		run := m.runs[id].Run
		stats.TotalRuns++
		switch run.Status {
		case RunStatusFailed:
			stats.FailedRuns++
			continue
		case RunStatusCompleted:
			stats.CompletedRuns++
		default:
			continue
		}

		stats.TotalClaims += run.ClaimCount
		stats.TotalMatches += run.MatchCount
		stats.MatchedAmount = stats.MatchedAmount.Add(run.MatchedAmount)
		stats.Statuses.FullySettled += run.Summary.FullySettled
		stats.Statuses.PartiallySettled += run.Summary.PartiallySettled
		stats.Statuses.Unsettled += run.Summary.Unsettled

		ms := stats.ModeStats[run.Mode]
		ms.Runs++
		ms.Claims += run.ClaimCount
		ms.Matches += run.MatchCount
		ms.MatchedAmount = ms.MatchedAmount.Add(run.MatchedAmount)
		stats.ModeStats[run.Mode] = ms
	}
	return stats, nil
}
