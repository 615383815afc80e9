// Package strategy scores an indicator report into a scan signal.
package strategy

import "StockScanner/internal/model"

// Tier labels.
const (
	TierStrongBuy  = "Strong Buy"
	TierBuy        = "Buy"
	TierNeutral    = "Neutral"
	TierSell       = "Sell"
	TierStrongSell = "Strong Sell"
)

// Tiers maps a weighted total, highest band first.
var Tiers = []struct {
	MinScore float64
	Tier     model.SignalTier
}{
	{1.2, model.SignalTier{Label: TierStrongBuy}},
	{0.5, model.SignalTier{Label: TierBuy}},
	{-0.5, model.SignalTier{Label: TierNeutral, Neutral: true}},
	{-1.2, model.SignalTier{Label: TierSell}},
}

// DefaultTier is the lowest tier for scores < -1.2.
var DefaultTier = model.SignalTier{Label: TierStrongSell}

func mapTier(totalScore float64) model.SignalTier {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Tier
		}
	}
	return DefaultTier
}

// Thresholds tunes the factor bands.
type Thresholds struct {
	RSIOverbought float64 `yaml:"rsi_overbought"`
	RSIOversold   float64 `yaml:"rsi_oversold"`
	// RangeHigh and RangeLow are 52-week positions in 0..1.
	RangeHigh float64 `yaml:"range_high"`
	RangeLow  float64 `yaml:"range_low"`
}

// DefaultThresholds returns the classic 70/30 RSI bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RSIOverbought: 70,
		RSIOversold:   30,
		RangeHigh:     0.95,
		RangeLow:      0.05,
	}
}

// Engine evaluates reports against a set of thresholds.
type Engine struct {
	Thresholds Thresholds
}

// NewEngine creates an Engine. Zero fields fall back to the defaults; build an
// Engine literal when a zero band (rsi_oversold or range_low of 0) is intended.
func NewEngine(th Thresholds) *Engine {
	def := DefaultThresholds()
	if th.RSIOverbought == 0 {
		th.RSIOverbought = def.RSIOverbought
	}
	if th.RSIOversold == 0 {
		th.RSIOversold = def.RSIOversold
	}
	if th.RangeHigh == 0 {
		th.RangeHigh = def.RangeHigh
	}
	if th.RangeLow == 0 {
		th.RangeLow = def.RangeLow
	}
	return &Engine{Thresholds: th}
}

// Evaluate scores r with the default thresholds.
func Evaluate(r *model.IndicatorReport) *model.ScanSignal {
	return NewEngine(DefaultThresholds()).Evaluate(r)
}

// Evaluate computes the full scan signal from an indicator report.
func (e *Engine) Evaluate(r *model.IndicatorReport) *model.ScanSignal {
	fRSI := e.scoreRSI(r)
	fMACD := scoreMACDCross(r)
	fSMA := scoreSMACross(r)
	fTrend := scoreTrend(r)

	// the range factor only reaches its extreme when the others agree
	othersAvg := (fRSI.RawScore + fMACD.RawScore + fSMA.RawScore + fTrend.RawScore) / 4.0
	fRange := e.scoreRangePosition(r, othersAvg)

	factors := []model.FactorScore{fRSI, fMACD, fSMA, fTrend, fRange}

	var total float64
	for _, f := range factors {
		total += f.Weighted
	}

	signal := &model.ScanSignal{
		Symbol:     r.Symbol,
		Factors:    factors,
		TotalScore: total,
		Tier:       mapTier(total),
	}

	if len(r.RSI) > 0 {
		switch {
		case r.Latest.RSI > 85:
			signal.WarningMsg = "RSI above 85: consider taking partial profit"
		case r.Latest.RSI < 15:
			signal.WarningMsg = "RSI below 15: capitulation risk"
		}
	}
	return signal
}
