// Package recorder keeps the history of scans and alerts.
package recorder

import (
	"context"
	"time"

	"StockScanner/internal/model"
)

// ScanSnapshot holds all data for one symbol scan.
type ScanSnapshot struct {
	ID        string // assigned on record when empty
	Timestamp time.Time
	Report    *model.IndicatorReport
	Signal    *model.ScanSignal
}

// AlertEvent records one alert delivery attempt.
type AlertEvent struct {
	ScanID    string
	Symbol    string
	Tier      string
	Delivered bool
	Error     string
}

// ScanRecord is a stored scan row.
type ScanRecord struct {
	ID            string              `json:"id"`
	Timestamp     time.Time           `json:"timestamp"`
	Symbol        string              `json:"symbol"`
	Interval      string              `json:"interval"`
	Price         float64             `json:"price"`
	SMAFast       float64             `json:"sma_fast"`
	SMASlow       float64             `json:"sma_slow"`
	EMA           float64             `json:"ema"`
	RSI           float64             `json:"rsi"`
	MACD          float64             `json:"macd"`
	MACDSignal    float64             `json:"macd_signal"`
	MACDHistogram float64             `json:"macd_histogram"`
	Position52w   float64             `json:"position_52w"`
	TotalScore    float64             `json:"total_score"`
	Tier          string              `json:"tier"`
	Warning       string              `json:"warning,omitempty"`
	Factors       []model.FactorScore `json:"factors"`
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordScan(ctx context.Context, snap *ScanSnapshot) error
	RecordAlert(ctx context.Context, evt *AlertEvent) error
	// RecentScans returns up to limit scans of symbol, newest first.
	RecentScans(ctx context.Context, symbol string, limit int) ([]ScanRecord, error)
	Close() error
}
