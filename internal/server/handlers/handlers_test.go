package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/toolwear/internal/repository/sqlite"
	"github.com/mamadbah2/toolwear/internal/service/dashboard"
	"github.com/mamadbah2/toolwear/internal/service/molds"
	"github.com/mamadbah2/toolwear/internal/service/scrap"
	"github.com/mamadbah2/toolwear/internal/service/tools"
)

var fixedNow = time.Date(2025, time.August, 21, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "http.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(ctx) })

	toolHandler := NewToolHandler(tools.NewService(store, nil, nil), time.UTC, nil)
	moldHandler := NewMoldHandler(molds.NewService(store, nil), scrap.NewService(store, nil, nil), time.UTC, nil)
	dashHandler := NewDashboardHandler(dashboard.NewService(store, nil, nil), time.UTC, nil)
	toolHandler.clock.now = func() time.Time { return fixedNow }
	moldHandler.clock.now = func() time.Time { return fixedNow }
	dashHandler.clock.now = func() time.Time { return fixedNow }

	r := gin.New()
	r.GET("/api/tools", toolHandler.List)
	r.POST("/api/tools", toolHandler.Create)
	r.GET("/api/tools/swap-history", toolHandler.SwapHistory)
	r.PUT("/api/tools/:id/production", toolHandler.RecordProduction)
	r.PUT("/api/tools/:id/swap", toolHandler.Swap)
	r.DELETE("/api/tools/:id", toolHandler.Delete)
	r.POST("/api/tools/mold-comments", moldHandler.AddComment)
	r.GET("/api/tools/mold-comments/:moldId", moldHandler.Comments)
	r.POST("/api/tools/scrap", moldHandler.RecordScrap)
	r.GET("/api/tools/scrap", moldHandler.Scrap)
	r.GET("/api/dashboard", dashHandler.Full)
	r.GET("/api/dashboard/kpis", dashHandler.KPIs)
	r.GET("/api/dashboard/charts", dashHandler.Charts)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createTool(t *testing.T, r http.Handler, moldID, toolID string, life int64) toolResponse {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/api/tools", map[string]any{"moldId": moldID, "toolId": toolID, "usefulLife": life})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[toolResponse](t, rec)
}

func TestToolLifecycle(t *testing.T) {
	r := newTestEngine(t)

	created := createTool(t, r, "MOLDE-A", "T-101", 100000)
	assert.Equal(t, "OK", created.Status)
	assert.Empty(t, created.ProductionHistory)

	rec := do(t, r, http.MethodPut, "/api/tools/"+created.ID+"/production", map[string]any{"pieces": 75000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tool := decode[toolResponse](t, rec)
	assert.Equal(t, "Atenção!", tool.Status)
	assert.True(t, tool.Warning)
	assert.Equal(t, []productionEntryResponse{{Date: "21/08/2025", Pieces: 75000}}, tool.ProductionHistory)

	rec = do(t, r, http.MethodPut, "/api/tools/"+created.ID+"/production", map[string]any{"pieces": 10000, "date": "20/08/2025"})
	require.Equal(t, http.StatusOK, rec.Code)
	tool = decode[toolResponse](t, rec)
	assert.Equal(t, int64(85000), tool.AccumulatedProduction)
	assert.Equal(t, "Trocar Ferramenta (TF)", tool.Status)
	assert.Equal(t, "REPLACE", string(tool.Condition))

	rec = do(t, r, http.MethodPut, "/api/tools/"+created.ID+"/swap", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tool = decode[toolResponse](t, rec)
	assert.Zero(t, tool.AccumulatedProduction)
	assert.False(t, tool.Warning)
	assert.Empty(t, tool.ProductionHistory)

	rec = do(t, r, http.MethodGet, "/api/tools/swap-history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	swaps := decode[[]swapResponse](t, rec)
	require.Len(t, swaps, 1)
	assert.Equal(t, int64(85000), swaps[0].ProductionBeforeSwap)

	rec = do(t, r, http.MethodDelete, "/api/tools/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodDelete, "/api/tools/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/tools", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]toolResponse](t, rec))
}

func TestToolErrors(t *testing.T) {
	r := newTestEngine(t)
	created := createTool(t, r, "MOLDE-A", "T-101", 100000)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "duplicate tool", method: http.MethodPost, path: "/api/tools", body: map[string]any{"moldId": "MOLDE-A", "toolId": "T-101", "usefulLife": 5}, want: http.StatusConflict},
		{name: "zero useful life", method: http.MethodPost, path: "/api/tools", body: map[string]any{"moldId": "MOLDE-A", "toolId": "T-102", "usefulLife": 0}, want: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, path: "/api/tools", body: "{", want: http.StatusBadRequest},
		{name: "zero pieces", method: http.MethodPut, path: "/api/tools/" + created.ID + "/production", body: map[string]any{"pieces": 0}, want: http.StatusBadRequest},
		{name: "bad date", method: http.MethodPut, path: "/api/tools/" + created.ID + "/production", body: map[string]any{"pieces": 1, "date": "2025-08-21"}, want: http.StatusBadRequest},
		{name: "unknown tool production", method: http.MethodPut, path: "/api/tools/missing/production", body: map[string]any{"pieces": 1}, want: http.StatusNotFound},
		{name: "unknown tool swap", method: http.MethodPut, path: "/api/tools/missing/swap", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestMoldCommentsAndScrap(t *testing.T) {
	r := newTestEngine(t)

	rec := do(t, r, http.MethodPost, "/api/tools/mold-comments", map[string]any{"moldId": "MOLDE-A", "comment": "Ajuste de pressão"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodPost, "/api/tools/mold-comments", map[string]any{"moldId": "MOLDE-A", "comment": "Lote novo", "date": "20/08/2025"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodPost, "/api/tools/mold-comments", map[string]any{"moldId": "MOLDE-A"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/tools/mold-comments/MOLDE-A", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string][]string{
		"21/08/2025": {"Ajuste de pressão"},
		"20/08/2025": {"Lote novo"},
	}, decode[map[string][]string](t, rec))

	rec = do(t, r, http.MethodPost, "/api/tools/scrap", map[string]any{"moldId": "MOLDE-A", "monthYear": "08/2025", "quantity": 100})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodPost, "/api/tools/scrap", map[string]any{"moldId": "MOLDE-A", "monthYear": "08/2025", "quantity": 150})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodPost, "/api/tools/scrap", map[string]any{"moldId": "MOLDE-A", "monthYear": "8-2025", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/tools/scrap", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]map[string]int64{"08/2025": {"MOLDE-A": 150}}, decode[map[string]map[string]int64](t, rec))
}

func TestDashboard(t *testing.T) {
	r := newTestEngine(t)

	a := createTool(t, r, "MOLDE-A", "T-101", 100000)
	b := createTool(t, r, "MOLDE-B", "T-201", 100)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPut, "/api/tools/"+a.ID+"/production", map[string]any{"pieces": 1000}).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPut, "/api/tools/"+b.ID+"/production", map[string]any{"pieces": 90, "date": "15/07/2025"}).Code)
	require.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/api/tools/scrap", map[string]any{"moldId": "MOLDE-B", "monthYear": "07/2025", "quantity": 30}).Code)

	rec := do(t, r, http.MethodGet, "/api/dashboard/kpis", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"toolsInAlert":1,"productionThisMonth":1000,"swapsThisMonth":0}`, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/api/dashboard/kpis?ref=01/07/2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"toolsInAlert":1,"productionThisMonth":90,"swapsThisMonth":0}`, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/api/dashboard/kpis?ref=July", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/dashboard/charts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	charts := decode[chartsResponse](t, rec)
	assert.Equal(t, map[string]int{"OK": 1, "Atenção!": 0, "Trocar Ferramenta (TF)": 1}, charts.StatusCounts)
	require.Len(t, charts.Top5ProductionByMold, 2)
	assert.Equal(t, "MOLDE-A", charts.Top5ProductionByMold[0].MoldID)
	assert.Equal(t, int64(30), charts.MaxScrap)

	rec = do(t, r, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	full := decode[dashboardResponse](t, rec)
	assert.Equal(t, "08/2025", full.Month)
	assert.Len(t, full.Tools, 2)
	assert.Empty(t, full.SwapHistory)
	assert.Equal(t, map[string]map[string]int64{"07/2025": {"MOLDE-B": 30}}, full.ScrapData)
}
