package collector

import (
	"context"

	"StockScanner/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns up to limit bars for symbol, ascending by time.
	FetchBars(ctx context.Context, symbol, interval string, limit int) ([]model.OHLCV, error)
	// FetchQuote returns the latest traded price.
	FetchQuote(ctx context.Context, symbol string) (float64, error)
	Name() string
}

func validInterval(interval string) bool {
	return interval == model.IntervalDaily || interval == model.IntervalWeekly
}

// trimBars keeps the most recent limit bars.
func trimBars(bars []model.OHLCV, limit int) []model.OHLCV {
	if limit > 0 && len(bars) > limit {
		return bars[len(bars)-limit:]
	}
	return bars
}
