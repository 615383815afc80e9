package notifier

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"StockScanner/internal/model"
)

func sampleReport() (*model.IndicatorReport, *model.ScanSignal) {
	r := &model.IndicatorReport{
		Symbol:       "AAPL",
		Interval:     model.IntervalDaily,
		Params:       model.DefaultIndicatorParams(),
		CurrentPrice: 187.3,
		ComputedAt:   time.Date(2025, 3, 4, 21, 5, 0, 0, time.UTC),
		SMAFast:      []float64{185.12},
		SMASlow:      []float64{180.5},
		EMA:          []float64{186.01},
		RSI:          []float64{64.2},
		MACD:         model.MACDSeries{MACD: []float64{1.2345}, Signal: []float64{1.1}, Histogram: []float64{0.1345}},
		Latest: model.LatestIndicators{
			SMAFast: 185.12, SMASlow: 180.5, EMA: 186.01, RSI: 64.2,
			MACD: 1.2345, MACDSignal: 1.1, MACDHistogram: 0.1345,
			High52w: 199.6, Low52w: 164.1, Position52w: 0.65,
		},
	}
	s := &model.ScanSignal{
		Symbol: "AAPL",
		Factors: []model.FactorScore{
			{Name: "RSI(14)", RawScore: -0.5, Weight: 0.3, Weighted: -0.15, Commentary: "RSI=64 strong"},
			{Name: "SMA20/50", RawScore: 1, Weight: 0.2, Weighted: 0.2, Commentary: "fast above slow"},
		},
		TotalScore: 0.55,
		Tier:       model.SignalTier{Label: "Buy"},
		WarningMsg: "P&L <check>",
	}
	return r, s
}

func TestFormatScanReport(t *testing.T) {
	r, s := sampleReport()
	msg := FormatScanReport(r, s)

	assert.Contains(t, msg, "<b>AAPL</b> 1d | 2025-03-04 21:05")
	assert.Contains(t, msg, "Price: 187.30")
	assert.Contains(t, msg, "SMA20: 185.12 | SMA50: 180.50")
	assert.Contains(t, msg, "EMA20: 186.01 | RSI14: 64.20")
	assert.Contains(t, msg, "MACD: 1.2345 | Signal: 1.1000 | Hist: 0.1345")
	assert.Contains(t, msg, "position 65%")
	assert.Contains(t, msg, "RSI(14) (RSI=64 strong): -0.5 (×0.30) = -0.150")
	assert.Contains(t, msg, "Total: +0.550")
	assert.Contains(t, msg, "🟢 <b>Buy</b>")
	assert.Contains(t, msg, "P&amp;L &lt;check&gt;")
}

func TestFormatScanReport_EmptySeries(t *testing.T) {
	r := &model.IndicatorReport{Symbol: "NEW", Params: model.DefaultIndicatorParams()}
	s := &model.ScanSignal{Tier: model.SignalTier{Label: "Neutral", Neutral: true}}
	msg := FormatScanReport(r, s)

	assert.Contains(t, msg, "SMA20: n/a | SMA50: n/a")
	assert.Contains(t, msg, "MACD: n/a")
	assert.Contains(t, msg, "⚪ <b>Neutral</b>")
	assert.NotContains(t, msg, "⚠️")
}

func TestFormatWatchlist(t *testing.T) {
	r, s := sampleReport()
	at := time.Date(2025, 3, 4, 21, 5, 0, 0, time.UTC)
	rows := []WatchlistRow{
		{Symbol: "AAPL", Report: r, Signal: s},
		{Symbol: "BAD<1>", Err: errors.New("upstream error")},
	}
	msg := FormatWatchlist(rows, at)

	lines := strings.Split(strings.TrimSpace(msg), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Watchlist")
	assert.Equal(t, "🟢 <b>AAPL</b> 187.30 RSI 64.2 hist 0.1345 → Buy (+0.55)", lines[2])
	assert.Equal(t, "❌ <b>BAD&lt;1&gt;</b>: upstream error", lines[3])

	assert.Contains(t, FormatWatchlist(nil, at), "(empty)")
}

func TestFormatAlert(t *testing.T) {
	r, s := sampleReport()
	s.Tier = model.SignalTier{Label: "Strong Sell"}
	s.TotalScore = -1.5
	assert.Equal(t, "🔔 <b>AAPL</b> 🔴 Strong Sell at 187.30 (score -1.50)", FormatAlert(r, s))
}

func TestFormatErrorAndHelp(t *testing.T) {
	assert.Equal(t, "❌ <b>Error</b> [scan AAPL]\nno data &amp; more", FormatError("scan AAPL", errors.New("no data & more")))
	help := FormatHelp()
	for _, cmd := range []string{"/scan", "/watchlist", "/help"} {
		assert.Contains(t, help, cmd)
	}
}
