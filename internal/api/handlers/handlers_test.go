package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/autoreconcile/internal/api/dto"
	"github.com/eshaffer321/autoreconcile/internal/api/handlers"
	"github.com/eshaffer321/autoreconcile/internal/application/service"
	"github.com/eshaffer321/autoreconcile/internal/domain/reconciler"
	"github.com/eshaffer321/autoreconcile/internal/domain/similarity"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/config"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(repo storage.Repository) (*gin.Engine, *service.ReconcileService) {
	svc := service.NewReconcileService(config.Default(), repo, nil, nil)
	runs := handlers.NewRunsHandler(svc, similarity.DefaultWeights())
	stats := handlers.NewStatsHandler(svc)

	r := gin.New()
	r.GET("/health", handlers.NewHealthHandler().Get)
	r.POST("/api/runs", runs.Create)
	r.GET("/api/runs", runs.List)
	r.GET("/api/runs/:id", runs.Get)
	r.GET("/api/runs/:id/statuses", runs.Statuses)
	r.GET("/api/runs/:id/export", runs.Export)
	r.GET("/api/stats", stats.Get)
	return r, svc
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const createBody = `{
	"mode": "receivables",
	"claims": [
		{"id": "INV-1001", "counterparty_name": "Acme Corp", "description": "Website redesign project", "amount": "1500"},
		{"id": "INV-1002", "counterparty_name": "Globex", "description": "Quarterly server hosting", "amount": 300}
	],
	"settlements": [
		{"id": "PAY-1", "counterparty_name": "ACME Corporation", "description": "project website redesign", "amount": "1000.00"},
		{"id": "PAY-2", "counterparty_name": "Globex", "description": "server hosting quarterly", "amount": "120.50"}
	]
}`

func postRun(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/runs", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHealthHandler(t *testing.T) {
	r, _ := newRouter(nil)

	rec := do(r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response dto.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
}

func TestRunsHandler_Create(t *testing.T) {
	t.Run("reconciles posted records", func(t *testing.T) {
		repo := storage.NewMockRepository()
		r, _ := newRouter(repo)

		rec := postRun(r, createBody)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var response dto.CreateRunResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))

		assert.NotEmpty(t, response.RunID)
		assert.Equal(t, 60.0, response.Threshold)
		require.Len(t, response.Matches, 2)
		assert.Equal(t, "PAY-1", response.Matches[0].SettlementID)
		assert.True(t, decimal.RequireFromString("120.5").Equal(response.Matches[1].MatchedAmount))
		require.Len(t, response.Statuses, 2)
		assert.Equal(t, "Partially Paid", response.Statuses[0].Label)
		assert.Equal(t, 2, response.Summary.PartiallySettled)
		require.Len(t, response.Unmatched, 2)
		assert.Equal(t, "500", response.Unmatched[0].RemainingAmount.String())
		assert.True(t, repo.CompleteRunCalled)
	})

	t.Run("threshold override", func(t *testing.T) {
		r, _ := newRouter(storage.NewMockRepository())
		body := `{"mode":"receivables","threshold":100,
			"claims":[{"id":"INV-1","counterparty_name":"Globex","description":"hosting","amount":10}],
			"settlements":[{"id":"PAY-1","counterparty_name":"Globex","description":"hosting","amount":10}]}`

		rec := postRun(r, body)

		require.Equal(t, http.StatusCreated, rec.Code)
		var response dto.CreateRunResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		// A perfect score of 100 is not strictly above 100
		assert.Empty(t, response.Matches)
		assert.Equal(t, 1, response.Summary.Unsettled)
	})

	t.Run("validation error is 422 with field details", func(t *testing.T) {
		r, _ := newRouter(storage.NewMockRepository())
		body := `{"mode":"payables",
			"claims":[{"id":"INV-1","counterparty_name":"A","description":"x","amount":10}],
			"settlements":[{"id":"PAY-1","counterparty_name":"A","description":"x","amount":-3}]}`

		rec := postRun(r, body)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		assert.Equal(t, dto.ErrCodeValidation, apiErr.Code)
		require.NotNil(t, apiErr.Field)
		assert.Equal(t, reconciler.KindSettlement, apiErr.Field.Kind)
		assert.Equal(t, "PAY-1", apiErr.Field.RecordID)
		assert.Equal(t, "amount", apiErr.Field.Field)
	})

	t.Run("missing amount is a validation error", func(t *testing.T) {
		r, _ := newRouter(nil)
		body := `{"mode":"receivables","claims":[{"id":"INV-1","counterparty_name":"A","description":"x"}]}`

		rec := postRun(r, body)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "INV-1")
	})

	t.Run("missing text fields are validation errors", func(t *testing.T) {
		tests := []struct {
			name   string
			record string
			field  string
		}{
			{"no description", `{"id":"INV-1","counterparty_name":"Acme","amount":"100"}`, "description"},
			{"no counterparty", `{"id":"INV-1","description":"hosting","amount":"100"}`, "counterparty_name"},
			{"neither", `{"id":"INV-1","amount":"100"}`, "counterparty_name"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := storage.NewMockRepository()
				r, _ := newRouter(repo)
				body := `{"mode":"receivables","claims":[` + tt.record + `],
					"settlements":[{"id":"PAY-1","counterparty_name":"Acme","description":"hosting","amount":"100"}]}`

				rec := postRun(r, body)

				require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
				var apiErr dto.APIError
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
				require.NotNil(t, apiErr.Field)
				assert.Equal(t, reconciler.KindClaim, apiErr.Field.Kind)
				assert.Equal(t, "INV-1", apiErr.Field.RecordID)
				assert.Equal(t, tt.field, apiErr.Field.Field)
				assert.False(t, repo.StartRunCalled)
			})
		}
	})

	t.Run("settlement without text fields is rejected", func(t *testing.T) {
		r, _ := newRouter(storage.NewMockRepository())
		body := `{"mode":"receivables",
			"claims":[{"id":"INV-1","counterparty_name":"","description":"","amount":"100"}],
			"settlements":[{"id":"PAY-1","amount":"100"}]}`

		rec := postRun(r, body)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var apiErr dto.APIError
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
		require.NotNil(t, apiErr.Field)
		assert.Equal(t, reconciler.KindSettlement, apiErr.Field.Kind)
		assert.Equal(t, "PAY-1", apiErr.Field.RecordID)
	})

	t.Run("empty text fields are accepted", func(t *testing.T) {
		r, _ := newRouter(storage.NewMockRepository())
		body := `{"mode":"receivables",
			"claims":[{"id":"INV-1","counterparty_name":"","description":"","amount":"100"}],
			"settlements":[{"id":"PAY-1","counterparty_name":"","description":"","amount":"100"}]}`

		rec := postRun(r, body)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("unknown mode is 400", func(t *testing.T) {
		r, _ := newRouter(nil)

		rec := postRun(r, `{"mode":"ledger","claims":[]}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), dto.ErrCodeBadRequest)
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		r, _ := newRouter(nil)

		rec := postRun(r, `{"mode":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("storage failure is 500", func(t *testing.T) {
		repo := storage.NewMockRepository()
		repo.StartRunErr = errors.New("database is locked")
		r, _ := newRouter(repo)

		rec := postRun(r, createBody)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), dto.ErrCodeInternalError)
	})
}

func TestRunsHandler_GetAndStatuses(t *testing.T) {
	repo := storage.NewMockRepository()
	r, svc := newRouter(repo)
	result, err := svc.Run(context.Background(), service.RunRequest{
		Mode:   "payables",
		Claims: []reconciler.Claim{{ID: "V-1", CounterpartyName: "Initech", Description: "toner", Amount: decimal.NewFromInt(40)}},
		Settlements: []reconciler.Settlement{
			{ID: "OUT-1", CounterpartyName: "Initech", Description: "toner", Amount: decimal.NewFromInt(40)},
		},
	})
	require.NoError(t, err)

	t.Run("get", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/runs/"+result.RunID, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var detail storage.RunDetail
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&detail))
		assert.Equal(t, "payables", detail.Mode)
		require.Len(t, detail.Matches, 1)
		assert.Equal(t, "OUT-1", detail.Matches[0].SettlementID)
	})

	t.Run("statuses", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/runs/"+result.RunID+"/statuses", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var response dto.StatusesResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Len(t, response.Statuses, 1)
		assert.Equal(t, "Fully Paid", response.Statuses[0].Label)
		assert.Equal(t, 1, response.Summary.FullySettled)
	})

	t.Run("not found", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/runs/missing", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), dto.ErrCodeNotFound)
	})

	t.Run("export csv", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/runs/"+result.RunID+"/export?format=matched.csv", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "matched_payables.csv")
		assert.Contains(t, rec.Body.String(), "InvoiceNo,MatchedWithPaymentID,VendorName,MatchedAmount,MatchScore")
		assert.Contains(t, rec.Body.String(), "V-1,OUT-1,Initech,40.00,100")
	})

	t.Run("export unknown format", func(t *testing.T) {
		rec := do(r, http.MethodGet, "/api/runs/"+result.RunID+"/export?format=docx", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRunsHandler_ListAndStats(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		r, _ := newRouter(storage.NewMockRepository())

		rec := do(r, http.MethodGet, "/api/runs", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var response dto.RunListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Empty(t, response.Runs)
		assert.Equal(t, 0, response.TotalCount)
	})

	t.Run("filters by mode", func(t *testing.T) {
		r, _ := newRouter(storage.NewMockRepository())
		require.Equal(t, http.StatusCreated, postRun(r, createBody).Code)

		rec := do(r, http.MethodGet, "/api/runs?mode=payables", nil)
		var response dto.RunListResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 0, response.TotalCount)

		rec = do(r, http.MethodGet, "/api/runs?mode=receivables&limit=5", nil)
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 1, response.TotalCount)
		assert.Equal(t, 5, response.Limit)
	})

	t.Run("stats", func(t *testing.T) {
		r, _ := newRouter(storage.NewMockRepository())
		require.Equal(t, http.StatusCreated, postRun(r, createBody).Code)

		rec := do(r, http.MethodGet, "/api/stats", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var stats storage.Stats
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
		assert.Equal(t, 1, stats.CompletedRuns)
		assert.Equal(t, "1120.5", stats.MatchedAmount.String())
	})

	t.Run("no storage is 503", func(t *testing.T) {
		r, _ := newRouter(nil)

		rec := do(r, http.MethodGet, "/api/stats", nil)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
