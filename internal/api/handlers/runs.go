package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/autoreconcile/internal/api/dto"
	"github.com/eshaffer321/autoreconcile/internal/application/service"
	"github.com/eshaffer321/autoreconcile/internal/domain/similarity"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/storage"
)

// RunsHandler handles reconciliation run requests.
type RunsHandler struct {
	*Base
	defaults similarity.Weights
}

// NewRunsHandler creates a new runs handler. defaults fills in a weight the
// request leaves out when it sets only the other one.
func NewRunsHandler(svc *service.ReconcileService, defaults similarity.Weights) *RunsHandler {
	return &RunsHandler{
		Base:     NewBase(svc),
		defaults: defaults,
	}
}

// Create handles POST /api/runs - reconciles the posted records.
func (h *RunsHandler) Create(c *gin.Context) {
	var body dto.CreateRunRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid request body: "+err.Error()))
		return
	}

	claims, err := body.ToClaims()
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}
	settlements, err := body.ToSettlements()
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	req := service.RunRequest{
		Mode:        body.Mode,
		Claims:      claims,
		Settlements: settlements,
		Threshold:   body.Threshold,
		Workers:     body.Workers,
	}
	if body.WeightDescription != nil || body.WeightCounterparty != nil {
		weights := h.defaults
		if body.WeightDescription != nil {
			weights.Description = *body.WeightDescription
		}
		if body.WeightCounterparty != nil {
			weights.Counterparty = *body.WeightCounterparty
		}
		req.Weights = &weights
	}

	result, err := h.svc.Run(c.Request.Context(), req)
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	h.WriteJSON(c, http.StatusCreated, dto.CreateRunResponse{
		RunID:      result.RunID,
		Mode:       result.Mode,
		Threshold:  result.Config.Threshold,
		Matches:    nonNil(result.Result.Matches),
		Unmatched:  nonNil(result.Result.Unmatched),
		Statuses:   dto.NewClaimStatuses(result.Statuses),
		Summary:    result.Summary,
		DurationMs: result.Duration.Milliseconds(),
	})
}

// List handles GET /api/runs - returns stored runs, newest first.
func (h *RunsHandler) List(c *gin.Context) {
	var params dto.RunListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid query: "+err.Error()))
		return
	}

	result, err := h.svc.ListRuns(storage.RunFilters{
		Mode:   params.Mode,
		Status: params.Status,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.RunListResponse{
		Runs:       result.Runs,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /api/runs/:id - returns a run with all its records.
func (h *RunsHandler) Get(c *gin.Context) {
	detail, err := h.svc.GetRun(c.Param("id"))
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}
	h.WriteJSON(c, http.StatusOK, detail)
}

// Statuses handles GET /api/runs/:id/statuses - reclassifies a stored run.
func (h *RunsHandler) Statuses(c *gin.Context) {
	runID := c.Param("id")
	statuses, summary, err := h.svc.Statuses(runID)
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}
	h.WriteJSON(c, http.StatusOK, dto.StatusesResponse{
		RunID:    runID,
		Statuses: dto.NewClaimStatuses(statuses),
		Summary:  summary,
	})
}

// Export handles GET /api/runs/:id/export?format=xlsx|pdf|matched.csv|unmatched.csv.
func (h *RunsHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", service.FormatXLSX)

	out, err := h.svc.Export(c.Param("id"), format)
	if err != nil {
		h.WriteServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+out.Filename+`"`)
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
