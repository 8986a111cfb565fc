package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, in-memory mock)
// and makes testing the service layer straightforward.
type Repository interface {
	RunRepository
	Close() error
}

// RunRepository persists reconciliation runs and their records.
type RunRepository interface {
	// StartRun records a run in the running state. run.ID must be set.
	StartRun(run *Run) error

	// CompleteRun stores the run's claims, matches and unmatched balances
	// and marks it completed. Nothing is written if any insert fails.
	CompleteRun(runID string, outcome *RunOutcome) error

	// FailRun marks a run failed with the given message
	FailRun(runID string, message string) error

	// GetRun retrieves a run with all its records. Returns nil, nil if not found.
	GetRun(runID string) (*RunDetail, error)

	// ListRuns returns runs matching the filters, newest first
	ListRuns(filters RunFilters) (*RunListResult, error)

	// GetStats returns aggregate statistics across completed runs
	GetStats() (*Stats, error)
}

// RunFilters defines filters for listing runs
type RunFilters struct {
	Mode   string // Filter by mode (empty = all)
	Status string // Filter by run status (empty = all)
	Limit  int    // Max results (0 = default 50)
	Offset int    // Pagination offset
}

// DefaultListLimit is used when RunFilters.Limit is zero.
const DefaultListLimit = 50

func (f RunFilters) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// RunListResult contains paginated run results
type RunListResult struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"total_count"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
