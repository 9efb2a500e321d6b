package api

import (
	"bytes"
	"context"
	"delivery-delay-service/internal/adapters/catalog"
	"delivery-delay-service/internal/adapters/csvsource"
	"delivery-delay-service/internal/adapters/elaboration"
	"delivery-delay-service/internal/api/dto"
	"delivery-delay-service/internal/platform/metrics"
	"delivery-delay-service/internal/services"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrders = `Order_ID,Order_Date,Route,Carrier,Priority,Vehicle_ID
O1,2024-01-01,R1,FastCo,Express,V1
O2,2024-01-02,R2,SlowCo,Economy,V2
O3,2024-01-03,R1,SlowCo,Standard,V3
`

const testDelivery = `Order_ID,Scheduled_Arrival,Actual_Arrival,Traffic_Delay_Minutes,Weather_Impact
O1,2024-01-01 10:00,2024-01-01 10:45,5,Light_Rain
O2,,,30,None
O3,,,0,Fog
`

func newTestServer(t *testing.T) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	ctx := context.Background()

	m := metrics.New("test")
	ds, err := services.LoadDataset(ctx, csvsource.NewMemorySource(map[string]string{
		"orders":               testOrders,
		"delivery_performance": testDelivery,
		"routes_distance":      "Route,Distance_KM\nR1,100\nR2,40\n",
	}), m)
	require.NoError(t, err)

	actions, err := catalog.Default()
	require.NoError(t, err)

	el := elaboration.NewStaticElaborator()
	opts := services.DefaultRecommenderOptions()
	opts.Metrics = m
	rec := services.NewRecommender(actions, services.NewFallbackPredictor(ds.History()), el, opts)

	srv := httptest.NewServer(NewRouter(Deps{
		Dataset:     ds,
		Recommender: rec,
		Elaborator:  el.Name(),
		Metrics:     m,
	}))
	t.Cleanup(srv.Close)
	return srv, m
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, "abc-123", resp2.Header.Get("X-Request-ID"))

	resp3 := postJSON(t, srv.URL+"/health", "{}")
	assert.Equal(t, http.StatusMethodNotAllowed, resp3.StatusCode)
	assert.Equal(t, http.MethodGet, resp3.Header.Get("Allow"))
}

func TestDataset(t *testing.T) {
	srv, _ := newTestServer(t)

	var all dto.DatasetResponse
	resp := get(t, srv.URL+"/dataset")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &all)
	assert.Equal(t, 3, all.TotalRows)
	assert.Equal(t, "fallback", all.ModelMode)
	assert.Contains(t, all.Columns, "Reliability_Score")
	assert.NotEmpty(t, all.Warnings)

	var filtered dto.DatasetResponse
	resp = get(t, srv.URL+"/dataset?carrier=slowco&limit=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &filtered)
	assert.Equal(t, 2, filtered.TotalRows)
	assert.Equal(t, 1, filtered.Returned)
	assert.Len(t, filtered.Rows, 1)

	for _, q := range []string{"limit=0", "limit=x", "from=2024-13-01", "from=2024-01-03&to=2024-01-01"} {
		resp := get(t, srv.URL+"/dataset?"+q)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestAnalytics(t *testing.T) {
	srv, _ := newTestServer(t)

	var sum services.Summary
	resp := get(t, srv.URL+"/analytics?weather=fog,none")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &sum)
	assert.Equal(t, 2, sum.Orders)
	assert.InDelta(t, 15.0, sum.AvgDelayMin, 1e-9)
}

func TestPredict(t *testing.T) {
	srv, m := newTestServer(t)

	// R1 mean 22.5, SlowCo mean 15, Heavy_Rain scales by 1.2.
	var res dto.PredictResponse
	resp := postJSON(t, srv.URL+"/predict", `{"route":"R1","carrier":"SlowCo","weather":"Heavy_Rain","distance_km":100}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &res)
	assert.InDelta(t, 23.4, res.PredictedDelayMin, 1e-9)
	assert.Equal(t, "fallback", res.Mode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("fallback")))

	for name, body := range map[string]string{
		"unknown field":         `{"route":"R1","speed":3}`,
		"negative distance":     `{"distance_km":-1}`,
		"reliability too large": `{"historical_reliability":1.5}`,
		"two objects":           `{}{}`,
		"not json":              `route=R1`,
	} {
		resp := postJSON(t, srv.URL+"/predict", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, name)
	}
}

func TestActionsAndExport(t *testing.T) {
	srv, _ := newTestServer(t)

	var res dto.ActionsResponse
	resp := postJSON(t, srv.URL+"/actions", `{"route":"R1","carrier":"SlowCo","weather":"Heavy_Rain","distance_km":100}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &res)

	require.NotEmpty(t, res.Actions)
	ids := make([]string, len(res.Actions))
	for i, a := range res.Actions {
		ids[i] = a.ActionID
		assert.Equal(t, i+1, a.Rank)
		assert.False(t, a.Elaborated)
		assert.LessOrEqual(t, a.EstimatedReductionMin, res.PredictedDelayMin)
	}
	assert.Contains(t, ids, "notify_customer")
	assert.Contains(t, ids, "schedule_shift")

	body, err := json.Marshal(res)
	require.NoError(t, err)
	exp, err := http.Post(srv.URL+"/export/actions.csv", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer exp.Body.Close()
	require.Equal(t, http.StatusOK, exp.StatusCode)
	assert.Contains(t, exp.Header.Get("Content-Disposition"), "actions.csv")

	records, err := csv.NewReader(exp.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, len(res.Actions)+1)
	assert.Equal(t, "Action_ID", records[0][1])
}

func TestExportDataset(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := get(t, srv.URL+"/export/dataset.csv?carrier=FastCo")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "dataset.csv")
	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 2)

	xlsx := get(t, srv.URL+"/export/dataset.xlsx")
	require.Equal(t, http.StatusOK, xlsx.StatusCode)
	assert.Contains(t, xlsx.Header.Get("Content-Type"), "spreadsheetml")
}

func TestModel(t *testing.T) {
	srv, _ := newTestServer(t)

	var res dto.ModelResponse
	resp := get(t, srv.URL+"/model")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &res)
	assert.Equal(t, "fallback", res.Mode)
	assert.Equal(t, "static", res.Elaborator)
	assert.Empty(t, res.ID)
	assert.Nil(t, res.Evaluation)
	assert.Len(t, res.Actions, 6)
}

func TestChartsAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)

	charts := get(t, srv.URL+"/charts")
	require.Equal(t, http.StatusOK, charts.StatusCode)
	assert.Contains(t, charts.Header.Get("Content-Type"), "text/html")
	page, err := io.ReadAll(charts.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Delivery delay insights")
	assert.Contains(t, string(page), "Fuel efficiency vs distance")

	missing := get(t, srv.URL+"/no-such-route")
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	_, _ = io.Copy(io.Discard, missing.Body)

	resp := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `test_http_requests_total{method="GET",path="/charts",status="200"} 1`)
	assert.Contains(t, body, `path="other"`)
	assert.Contains(t, body, "test_dataset_rows 3")
}
