package collector

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"StockScanner/internal/model"
)

// mockAnchor is the close time of the last synthetic bar.
var mockAnchor = time.Date(2025, 1, 3, 21, 0, 0, 0, time.UTC)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price      float64
	DailyData  []model.OHLCV
	WeeklyData []model.OHLCV
	Err        error // returned by every call when set

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls returns how many fetches reached the mock.
func (m *MockFetcher) Calls() int64 { return m.calls.Load() }

func (m *MockFetcher) FetchBars(_ context.Context, _ string, interval string, limit int) ([]model.OHLCV, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	switch interval {
	case model.IntervalDaily:
		if m.DailyData != nil {
			return trimBars(m.DailyData, limit), nil
		}
		return generateMockBars(m.basePrice(), limit, 24*time.Hour), nil
	case model.IntervalWeekly:
		if m.WeeklyData != nil {
			return trimBars(m.WeeklyData, limit), nil
		}
		return generateMockBars(m.basePrice(), limit, 7*24*time.Hour), nil
	default:
		return nil, ErrUnsupportedInterval
	}
}

func (m *MockFetcher) FetchQuote(_ context.Context, _ string) (float64, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return 0, m.Err
	}
	if len(m.DailyData) > 0 {
		return m.DailyData[len(m.DailyData)-1].Close, nil
	}
	return m.basePrice(), nil
}

func (m *MockFetcher) basePrice() float64 {
	if m.Price > 0 {
		return m.Price
	}
	return 100
}

// generateMockBars builds a gently trending wave that ends at basePrice.
func generateMockBars(basePrice float64, count int, step time.Duration) []model.OHLCV {
	if count <= 0 {
		return []model.OHLCV{}
	}
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		back := float64(count - 1 - i)
		p := basePrice * (1 - back*0.0005 + 0.03*math.Sin(back/8))
		bars[i] = model.OHLCV{
			Time:   mockAnchor.Add(-time.Duration(count-1-i) * step),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
