package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"StockScanner/internal/metrics"
	"StockScanner/internal/model"
)

// APIFetcher implements Fetcher against the market data REST API.
type APIFetcher struct {
	BaseURL string
	APIKey  string

	http *httpClient
}

// NewAPIFetcher creates a new REST API fetcher.
func NewAPIFetcher(baseURL, apiKey string, cfg TransportConfig, m *metrics.Metrics) *APIFetcher {
	return &APIFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		http:    newHTTPClient("api", cfg, m),
	}
}

func (f *APIFetcher) Name() string { return "api" }

// apiBar is the JSON shape of one bar from the REST API.
type apiBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *APIFetcher) header() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	if f.APIKey != "" {
		h.Set("Authorization", "Bearer "+f.APIKey)
	}
	return h
}

func (f *APIFetcher) FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	if !validInterval(interval) {
		return nil, fmt.Errorf("api %q: %w", interval, ErrUnsupportedInterval)
	}

	bars, err := f.fetchBars(ctx, symbol, interval, limit)
	if err == nil || interval != model.IntervalWeekly {
		return bars, err
	}
	if !errors.Is(err, ErrUpstream) && !errors.Is(err, ErrNoData) {
		return nil, err
	}

	// Some deployments only serve daily bars.
	log.WithError(err).Debugf("api: weekly bars unavailable for %s, aggregating daily", symbol)
	daily, dailyErr := f.fetchBars(ctx, symbol, model.IntervalDaily, limit*7)
	if dailyErr != nil {
		return nil, fmt.Errorf("weekly fetch failed: %w; daily fallback also failed: %w", err, dailyErr)
	}
	weekly := AggregateWeekly(daily)
	if len(weekly) == 0 {
		return nil, fmt.Errorf("api %s: %w", symbol, ErrNoData)
	}
	return trimBars(weekly, limit), nil
}

func (f *APIFetcher) fetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("limit", strconv.Itoa(limit))

	body, err := f.http.get(ctx, f.BaseURL+"/api/v1/bars?"+q.Encode(), f.header())
	if err != nil {
		return nil, err
	}

	var raw []apiBar
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("api %s %s: %w", symbol, interval, ErrNoData)
	}

	bars := make([]model.OHLCV, len(raw))
	for i, b := range raw {
		bars[i] = model.OHLCV{
			Time:   time.Unix(b.Timestamp, 0).UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return trimBars(bars, limit), nil
}

func (f *APIFetcher) FetchQuote(ctx context.Context, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	body, err := f.http.get(ctx, f.BaseURL+"/api/v1/quote?"+q.Encode(), f.header())
	if err != nil {
		return 0, err
	}
	var result struct {
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("decode price: %w", err)
	}
	if result.Price <= 0 {
		return 0, fmt.Errorf("api %s price: %w", symbol, ErrNoData)
	}
	return result.Price, nil
}
