package model

import "time"

// MACDSeries holds the three MACD lines, each aligned by index from its own start.
type MACDSeries struct {
	MACD      []float64 `json:"macd"`
	Signal    []float64 `json:"signal"`
	Histogram []float64 `json:"histogram"`
}

// IndicatorParams selects the periods used for one report.
type IndicatorParams struct {
	SMAFast    int `json:"sma_fast" yaml:"sma_fast"`
	SMASlow    int `json:"sma_slow" yaml:"sma_slow"`
	EMA        int `json:"ema" yaml:"ema"`
	RSI        int `json:"rsi" yaml:"rsi"`
	MACDFast   int `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow   int `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal int `json:"macd_signal" yaml:"macd_signal"`
}

// DefaultIndicatorParams returns the conventional chart periods.
func DefaultIndicatorParams() IndicatorParams {
	return IndicatorParams{
		SMAFast:    20,
		SMASlow:    50,
		EMA:        20,
		RSI:        14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
	}
}

// IndicatorReport holds full indicator series for a symbol plus their latest values.
type IndicatorReport struct {
	Symbol       string          `json:"symbol"`
	Interval     string          `json:"interval"`
	Params       IndicatorParams `json:"params"`
	Bars         int             `json:"bars"`
	CurrentPrice float64         `json:"current_price"`
	ComputedAt   time.Time       `json:"computed_at"`

	SMAFast []float64  `json:"sma_fast"`
	SMASlow []float64  `json:"sma_slow"`
	EMA     []float64  `json:"ema"`
	RSI     []float64  `json:"rsi"`
	MACD    MACDSeries `json:"macd"`

	Latest LatestIndicators `json:"latest"`
}

// LatestIndicators is the summary row shown in watchlists.
// Values are zero when the underlying series is empty.
type LatestIndicators struct {
	SMAFast       float64 `json:"sma_fast"`
	SMASlow       float64 `json:"sma_slow"`
	EMA           float64 `json:"ema"`
	RSI           float64 `json:"rsi"`
	MACD          float64 `json:"macd"`
	MACDSignal    float64 `json:"macd_signal"`
	MACDHistogram float64 `json:"macd_histogram"`
	High52w       float64 `json:"high_52w"`
	Low52w        float64 `json:"low_52w"`
	Position52w   float64 `json:"position_52w"` // 0.0 ~ 1.0
}
