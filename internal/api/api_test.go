package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScanner/internal/collector"
	"StockScanner/internal/metrics"
	"StockScanner/internal/model"
	"StockScanner/internal/recorder"
	"StockScanner/internal/scheduler"
	"StockScanner/internal/strategy"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errScanner struct{ err error }

func (s errScanner) ScanSymbol(context.Context, string) (*scheduler.Result, error) {
	return nil, s.err
}

func newTestServer(t *testing.T, fetcher collector.Fetcher) (*gin.Engine, recorder.Recorder) {
	t.Helper()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	m := metrics.NewMetrics()
	col := collector.NewCollector(fetcher, model.DefaultIndicatorParams(), m)
	sched := scheduler.NewScheduler(context.Background(), col, strategy.NewEngine(strategy.Thresholds{}), nil, rec, m, scheduler.Options{})
	return NewRouter(&Server{Collector: col, Scanner: sched, Recorder: rec, Metrics: m}), rec
}

func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealthz(t *testing.T) {
	r, _ := newTestServer(t, &collector.MockFetcher{})
	w := do(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetIndicators(t *testing.T) {
	r, _ := newTestServer(t, &collector.MockFetcher{Price: 250})

	w := do(r, http.MethodGet, "/api/v1/indicators/spx500?limit=120&rsi=7&sma=10", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report model.IndicatorReport
	decode(t, w, &report)
	assert.Equal(t, "SPX500", report.Symbol)
	assert.Equal(t, model.IntervalDaily, report.Interval)
	assert.Equal(t, 120, report.Bars)
	assert.Equal(t, 7, report.Params.RSI)
	assert.Equal(t, 10, report.Params.SMAFast)
	assert.Equal(t, 50, report.Params.SMASlow)
	assert.Len(t, report.SMAFast, 111)
	assert.Len(t, report.RSI, 112)
}

func TestGetIndicatorsWeekly(t *testing.T) {
	r, _ := newTestServer(t, &collector.MockFetcher{})

	w := do(r, http.MethodGet, "/api/v1/indicators/NDX?interval=1wk&limit=60", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report model.IndicatorReport
	decode(t, w, &report)
	assert.Equal(t, model.IntervalWeekly, report.Interval)
	assert.Equal(t, 60, report.Bars)
}

func TestGetIndicatorsBadParams(t *testing.T) {
	r, _ := newTestServer(t, &collector.MockFetcher{})

	for _, q := range []string{
		"rsi=abc",
		"rsi=0",
		"limit=-3",
		"limit=999999",
		"interval=1h",
		"fast=30&slow=10",
		"sma=501",
		"rsi=50000",
	} {
		t.Run(q, func(t *testing.T) {
			w := do(r, http.MethodGet, "/api/v1/indicators/SPX?"+q, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var body map[string]string
			decode(t, w, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetIndicatorsUpstreamErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("yahoo: %w", collector.ErrUpstream), http.StatusBadGateway},
		{collector.ErrRateLimited, http.StatusBadGateway},
		{collector.ErrNoData, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			r, _ := newTestServer(t, &collector.MockFetcher{Err: tt.err})
			w := do(r, http.MethodGet, "/api/v1/indicators/SPX", "")
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"symbol":"SPX"`)
		})
	}
}

func TestComputeIndicators(t *testing.T) {
	r, _ := newTestServer(t, &collector.MockFetcher{})

	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	payload, err := json.Marshal(map[string]interface{}{"closes": closes, "sma": 5, "rsi": 3})
	require.NoError(t, err)

	w := do(r, http.MethodPost, "/api/v1/indicators", string(payload))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp computeResponse
	decode(t, w, &resp)
	assert.Equal(t, 5, resp.Params.SMAFast)
	assert.Equal(t, 20, resp.Params.EMA)
	require.Len(t, resp.SMA, 36)
	assert.Equal(t, 3.0, resp.SMA[0])
	assert.Len(t, resp.EMA, 21)
	require.Len(t, resp.RSI, 36)
	assert.Equal(t, 100.0, resp.RSI[0])
	assert.Len(t, resp.MACD.MACD, 15)
	assert.Len(t, resp.MACD.Signal, 7)
}

func TestComputeIndicatorsShortSeries(t *testing.T) {
	r, _ := newTestServer(t, &collector.MockFetcher{})

	w := do(r, http.MethodPost, "/api/v1/indicators", `{"closes":[1,2,3]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp computeResponse
	decode(t, w, &resp)
	assert.NotNil(t, resp.SMA)
	assert.Empty(t, resp.SMA)
	assert.Empty(t, resp.RSI)
	assert.Empty(t, resp.MACD.Histogram)
}

func TestComputeIndicatorsBadBody(t *testing.T) {
	r, _ := newTestServer(t, &collector.MockFetcher{})

	for _, body := range []string{
		`not json`,
		`{}`,
		`{"closes":[1,2],"sma":-1}`,
		`{"closes":[1,2],"signal":0}`,
		`{"closes":[1,2],"sma":50000}`,
		`{"closes":[1,2],"rsi":501}`,
		`{"closes":[1,2],"fast":30,"slow":10}`,
		`{"closes":[1,2],"fast":30}`,
	} {
		w := do(r, http.MethodPost, "/api/v1/indicators", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestComputeIndicatorsOversizedPeriod(t *testing.T) {
	r, _ := newTestServer(t, &collector.MockFetcher{})

	closes := make([]float64, maxCloses)
	for i := range closes {
		closes[i] = 100 + float64(i%50)
	}
	payload, err := json.Marshal(map[string]interface{}{"closes": closes, "sma": maxCloses / 2, "rsi": maxCloses / 2})
	require.NoError(t, err)

	w := do(r, http.MethodPost, "/api/v1/indicators", string(payload))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "sma must be an integer in [1, 500]")
}

func TestScanAndHistory(t *testing.T) {
	r, _ := newTestServer(t, &collector.MockFetcher{})

	for i := 0; i < 2; i++ {
		w := do(r, http.MethodGet, "/api/v1/scan/spx500", "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var res scheduler.Result
		decode(t, w, &res)
		assert.NotEmpty(t, res.ID)
		require.NotNil(t, res.Signal)
		assert.Equal(t, "SPX500", res.Signal.Symbol)
		assert.Len(t, res.Signal.Factors, 5)
	}

	w := do(r, http.MethodGet, "/api/v1/history/SPX500?limit=1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Symbol string                `json:"symbol"`
		Scans  []recorder.ScanRecord `json:"scans"`
	}
	decode(t, w, &body)
	assert.Equal(t, "SPX500", body.Symbol)
	assert.Len(t, body.Scans, 1)

	w = do(r, http.MethodGet, "/api/v1/history/NDX", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"symbol":"NDX","scans":[]}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/v1/history/SPX500?limit=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanUpstreamError(t *testing.T) {
	col := collector.NewCollector(&collector.MockFetcher{}, model.DefaultIndicatorParams(), nil)
	r := NewRouter(&Server{
		Collector: col,
		Scanner:   errScanner{err: fmt.Errorf("fetch: %w", collector.ErrRateLimited)},
		Recorder:  recorder.NewNoopRecorder(),
	})

	w := do(r, http.MethodGet, "/api/v1/scan/SPX", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestServer(t, &collector.MockFetcher{})
	require.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/indicators/SPX", "").Code)

	w := do(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.Contains(w.Body.Bytes(), []byte("scanner_indicator_compute_duration_seconds")), w.Body.String())
}
