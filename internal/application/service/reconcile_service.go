package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/autoreconcile/internal/adapters/csvio"
	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
	"github.com/eshaffer321/autoreconcile/internal/domain/similarity"
	"github.com/eshaffer321/autoreconcile/internal/domain/status"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/config"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/metrics"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/storage"
)

var (
	// ErrInvalidRequest is returned for a bad mode or bad engine overrides.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRunNotFound is returned when a run ID is unknown.
	ErrRunNotFound = errors.New("run not found")

	// ErrNoStorage is returned by lookups on a service built without a repository.
	ErrNoStorage = errors.New("run storage is not configured")
)

// RunRequest holds the inputs of one reconciliation. Nil overrides fall
// back to the service configuration.
type RunRequest struct {
	Mode        string // "receivables" or "payables"
	Claims      []reconciler.Claim
	Settlements []reconciler.Settlement

	Threshold *float64
	Weights   *similarity.Weights
	Workers   *int
}

// RunResult is the outcome of a reconciliation.
type RunResult struct {
	RunID    string
	Mode     string
	Config   reconciler.Config
	Claims   []reconciler.Claim // after validation and rounding
	Result   *reconciler.Result
	Statuses []status.ClaimStatus
	Summary  status.Summary
	Duration time.Duration
}

// ReconcileService runs reconciliations and keeps their history.
type ReconcileService struct {
	matching config.MatchingConfig
	storage  storage.Repository
	metrics  *metrics.Metrics
	logger   *slog.Logger

	newID func() string
	now   func() time.Time
}

// NewReconcileService creates a service. store and m may be nil: without a
// store runs are not persisted, without metrics nothing is recorded.
func NewReconcileService(
	cfg *config.Config,
	store storage.Repository,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ReconcileService {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ReconcileService{
		matching: cfg.Matching,
		storage:  store,
		metrics:  m,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// EngineConfig resolves the engine configuration for a request.
func (s *ReconcileService) EngineConfig(req RunRequest) (reconciler.Config, error) {
	cfg := s.matching.ToEngineConfig()
	if req.Threshold != nil {
		cfg.Threshold = *req.Threshold
	}
	if req.Weights != nil {
		cfg.Weights = *req.Weights
	}
	if req.Workers != nil {
		if *req.Workers < 0 {
			return cfg, fmt.Errorf("%w: workers must be >= 0", ErrInvalidRequest)
		}
		cfg.Workers = *req.Workers
	}
	return cfg, nil
}

// Run validates the request, reconciles it and stores the run.
//
// Validation failures are returned as *reconciler.ValidationError (wrapped)
// and, when storage is configured, recorded as a failed run.
func (s *ReconcileService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if _, err := csvio.ProfileFor(req.Mode); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	engineCfg, err := s.EngineConfig(req)
	if err != nil {
		return nil, err
	}

	start := s.now()
	runID := s.newID()
	logger := s.logger.With("run_id", runID, "mode", req.Mode)

	if s.storage != nil {
		run := &storage.Run{
			ID:                 runID,
			Mode:               req.Mode,
			Threshold:          engineCfg.Threshold,
			WeightDescription:  engineCfg.Weights.Description,
			WeightCounterparty: engineCfg.Weights.Counterparty,
			AmountScale:        engineCfg.AmountScale,
			StartedAt:          start.UTC(),
			ClaimCount:         len(req.Claims),
			SettlementCount:    len(req.Settlements),
		}
		if err := s.storage.StartRun(run); err != nil {
			return nil, fmt.Errorf("failed to record run start: %w", err)
		}
	}

	result, err := s.reconcile(ctx, engineCfg, req, logger)
	if err != nil {
		outcome := metrics.ResultFailed
		if errors.Is(err, reconciler.ErrValidation) {
			outcome = metrics.ResultInvalid
		}
		s.metrics.ObserveRun(req.Mode, outcome, s.now().Sub(start))
		logger.Warn("reconciliation failed", "error", err)

		if s.storage != nil {
			if ferr := s.storage.FailRun(runID, err.Error()); ferr != nil {
				logger.Error("failed to record run failure", "error", ferr)
			}
		}
		return nil, err
	}
	result.RunID = runID
	result.Mode = req.Mode

	if s.storage != nil {
		if err := s.storage.CompleteRun(runID, outcomeOf(result, len(req.Settlements))); err != nil {
			s.metrics.ObserveRun(req.Mode, metrics.ResultFailed, s.now().Sub(start))
			if ferr := s.storage.FailRun(runID, err.Error()); ferr != nil {
				logger.Error("failed to record run failure", "error", ferr)
			}
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
	}

	result.Duration = s.now().Sub(start)
	s.metrics.ObserveRun(req.Mode, metrics.ResultCompleted, result.Duration)
	s.metrics.ObserveOutcome(req.Mode, result.Summary, len(result.Result.Matches), len(req.Settlements))

	logger.Info("run complete",
		"fully_settled", result.Summary.FullySettled,
		"partially_settled", result.Summary.PartiallySettled,
		"unsettled", result.Summary.Unsettled,
		"duration", result.Duration,
	)

	return result, nil
}

func (s *ReconcileService) reconcile(ctx context.Context, cfg reconciler.Config, req RunRequest, logger *slog.Logger) (*RunResult, error) {
	claims, settlements, err := reconciler.Normalize(req.Claims, req.Settlements, cfg.AmountScale)
	if err != nil {
		return nil, err
	}

	engine := reconciler.NewEngine(cfg, nil, logger.With("component", "engine"))
	result, err := engine.Reconcile(ctx, claims, settlements)
	if err != nil {
		return nil, err
	}

	statuses := status.ClassifyAll(claims, result.Matches)
	return &RunResult{
		Config:   cfg,
		Claims:   claims,
		Result:   result,
		Statuses: statuses,
		Summary:  status.Summarize(statuses),
	}, nil
}

func outcomeOf(r *RunResult, settlementCount int) *storage.RunOutcome {
	records := make([]storage.ClaimRecord, len(r.Claims))
	for i, c := range r.Claims {
		records[i] = storage.ClaimRecord{
			Claim:        c,
			TotalMatched: r.Statuses[i].TotalMatched,
			Status:       r.Statuses[i].Status,
		}
	}
	return &storage.RunOutcome{
		SettlementCount: settlementCount,
		Claims:          records,
		Matches:         r.Result.Matches,
		Unmatched:       r.Result.Unmatched,
	}
}

// GetRun returns a stored run with its records.
func (s *ReconcileService) GetRun(runID string) (*storage.RunDetail, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	detail, err := s.storage.GetRun(runID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return detail, nil
}

// ListRuns returns stored runs, newest first.
func (s *ReconcileService) ListRuns(filters storage.RunFilters) (*storage.RunListResult, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	return s.storage.ListRuns(filters)
}

// Stats returns aggregate statistics over stored runs.
func (s *ReconcileService) Stats() (*storage.Stats, error) {
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	return s.storage.GetStats()
}

// Statuses reclassifies a stored run from its persisted match records.
// The result equals the statuses computed when the run completed.
func (s *ReconcileService) Statuses(runID string) ([]status.ClaimStatus, status.Summary, error) {
	detail, err := s.GetRun(runID)
	if err != nil {
		return nil, status.Summary{}, err
	}
	statuses := status.ClassifyAll(detail.ClaimList(), detail.Matches)
	return statuses, status.Summarize(statuses), nil
}
