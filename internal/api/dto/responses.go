package dto

import (
	"time"

	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
	"github.com/eshaffer321/autoreconcile/internal/domain/status"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/storage"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response stamped with the current time.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ClaimStatusResponse is one classified claim.
type ClaimStatusResponse struct {
	status.ClaimStatus
	Label string `json:"label"`
}

// NewClaimStatuses adds display labels to classified claims.
func NewClaimStatuses(statuses []status.ClaimStatus) []ClaimStatusResponse {
	out := make([]ClaimStatusResponse, len(statuses))
	for i, cs := range statuses {
		out[i] = ClaimStatusResponse{ClaimStatus: cs, Label: cs.Status.Label()}
	}
	return out
}

// CreateRunResponse is returned by POST /api/runs.
type CreateRunResponse struct {
	RunID      string                       `json:"run_id"`
	Mode       string                       `json:"mode"`
	Threshold  float64                      `json:"threshold"`
	Matches    []reconciler.MatchRecord     `json:"matches"`
	Unmatched  []reconciler.UnmatchedRecord `json:"unmatched"`
	Statuses   []ClaimStatusResponse        `json:"statuses"`
	Summary    status.Summary               `json:"summary"`
	DurationMs int64                        `json:"duration_ms"`
}

// RunListResponse is returned when listing runs.
type RunListResponse struct {
	Runs       []storage.Run `json:"runs"`
	TotalCount int           `json:"total_count"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
}

// StatusesResponse is returned by GET /api/runs/:id/statuses.
type StatusesResponse struct {
	RunID    string                `json:"run_id"`
	Statuses []ClaimStatusResponse `json:"statuses"`
	Summary  status.Summary        `json:"summary"`
}
