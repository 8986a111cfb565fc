package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eshaffer321/autoreconcile/internal/api"
	"github.com/eshaffer321/autoreconcile/internal/api/dto"
	"github.com/eshaffer321/autoreconcile/internal/application/service"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/config"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/metrics"
	"github.com/eshaffer321/autoreconcile/internal/infrastructure/storage"
)

// These tests run the full stack against a real SQLite file:
// HTTP request -> Router -> Handlers -> Service -> Storage -> SQLite

func init() {
	gin.SetMode(gin.TestMode)
}

func createTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "api_integration.db"))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	svc := service.NewReconcileService(config.Default(), store, metrics.New(reg), nil)

	cfg := api.DefaultConfig()
	cfg.Gatherer = reg
	server := api.NewServer(cfg, svc, nil)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(func() {
		ts.Close()
		_ = store.Close()
	})
	return ts
}

const receivablesRun = `{
	"mode": "receivables",
	"claims": [
		{"id": "INV-1001", "counterparty_name": "Acme Corp", "description": "Website redesign project", "amount": "1500"},
		{"id": "INV-1002", "counterparty_name": "Globex", "description": "Quarterly server hosting", "amount": "300"},
		{"id": "INV-1003", "counterparty_name": "Initech", "description": "Printer maintenance", "amount": "80"}
	],
	"settlements": [
		{"id": "PAY-1", "counterparty_name": "ACME Corporation", "description": "project website redesign", "amount": "1000"},
		{"id": "PAY-2", "counterparty_name": "Globex", "description": "server hosting quarterly", "amount": "300"},
		{"id": "PAY-3", "counterparty_name": "Acme Corp", "description": "redesign website - final", "amount": "500"}
	]
}`

func createRun(t *testing.T, ts *httptest.Server) dto.CreateRunResponse {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/runs", "application/json", strings.NewReader(receivablesRun))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.CreateRunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

func TestAPI_Integration_HealthCheck(t *testing.T) {
	ts := createTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestAPI_Integration_RunLifecycle(t *testing.T) {
	ts := createTestServer(t)

	created := createRun(t, ts)
	assert.Equal(t, 2, created.Summary.FullySettled)
	assert.Equal(t, 1, created.Summary.Unsettled)

	t.Run("get run from sqlite", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/runs/" + created.RunID)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var detail storage.RunDetail
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
		assert.Equal(t, storage.RunStatusCompleted, detail.Status)
		assert.Len(t, detail.Claims, 3)
		assert.Len(t, detail.Matches, 3)
		assert.Equal(t, "1800", detail.MatchedAmount.String())
	})

	t.Run("statuses match the create response", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/runs/" + created.RunID + "/statuses")
		require.NoError(t, err)
		defer resp.Body.Close()

		var statuses dto.StatusesResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&statuses))
		assert.Equal(t, created.Summary, statuses.Summary)
		require.Len(t, statuses.Statuses, 3)
		assert.Equal(t, "Unpaid", statuses.Statuses[2].Label)
	})

	t.Run("xlsx export", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/runs/" + created.RunID + "/export?format=xlsx")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		f, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, []string{"summary", "claims", "matches", "unmatched"}, f.GetSheetList())
	})

	t.Run("list and stats", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/api/runs")
		require.NoError(t, err)
		defer resp.Body.Close()

		var list dto.RunListResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
		require.Len(t, list.Runs, 1)
		assert.Equal(t, created.RunID, list.Runs[0].ID)

		resp2, err := http.Get(ts.URL + "/api/stats")
		require.NoError(t, err)
		defer resp2.Body.Close()

		var stats storage.Stats
		require.NoError(t, json.NewDecoder(resp2.Body).Decode(&stats))
		assert.Equal(t, 1, stats.CompletedRuns)
		assert.Equal(t, 3, stats.TotalClaims)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `reconcile_runs_total{mode="receivables",result="completed"} 1`)
	})
}

func TestAPI_Integration_ValidationFailureIsStored(t *testing.T) {
	ts := createTestServer(t)

	body := `{"mode":"receivables",
		"claims":[{"id":"INV-1","counterparty_name":"A","description":"x","amount":"10"},
		          {"id":"INV-1","counterparty_name":"B","description":"y","amount":"5"}]}`
	resp, err := http.Post(ts.URL+"/api/runs", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	listResp, err := http.Get(ts.URL + "/api/runs?status=failed")
	require.NoError(t, err)
	defer listResp.Body.Close()

	var list dto.RunListResponse
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&list))
	require.Len(t, list.Runs, 1)
	assert.Contains(t, list.Runs[0].ErrorMessage, "INV-1")
}
