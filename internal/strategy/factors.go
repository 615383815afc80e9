package strategy

import (
	"fmt"

	"StockScanner/internal/model"
)

const (
	weightRSI   = 0.30
	weightMACD  = 0.25
	weightSMA   = 0.20
	weightTrend = 0.15
	weightRange = 0.10
)

func factor(name string, score, weight float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   score,
		Weight:     weight,
		Weighted:   score * weight,
		Commentary: commentary,
	}
}

// lastTwo returns the final two values of a series.
func lastTwo(series []float64) (prev, cur float64, ok bool) {
	if len(series) < 2 {
		return 0, 0, false
	}
	return series[len(series)-2], series[len(series)-1], true
}

// scoreRSI is contrarian: oversold scores positive, overbought negative.
func (e *Engine) scoreRSI(r *model.IndicatorReport) model.FactorScore {
	name := fmt.Sprintf("RSI(%d)", r.Params.RSI)
	if len(r.RSI) == 0 {
		return factor(name, 0, weightRSI, "RSI unavailable")
	}
	rsi := r.Latest.RSI
	over, under := e.Thresholds.RSIOverbought, e.Thresholds.RSIOversold

	var score float64
	var commentary string
	switch {
	case rsi <= under-10:
		score, commentary = 2.0, "deeply oversold"
	case rsi <= under:
		score, commentary = 1.5, "oversold"
	case rsi <= under+10:
		score, commentary = 0.5, "weak"
	case rsi < over-10:
		score, commentary = 0, "neutral"
	case rsi < over:
		score, commentary = -0.5, "strong"
	case rsi < over+10:
		score, commentary = -1.5, "overbought"
	default:
		score, commentary = -2.0, "deeply overbought"
	}
	return factor(name, score, weightRSI, fmt.Sprintf("RSI=%.0f %s", rsi, commentary))
}

// scoreMACDCross looks for a histogram sign change on the latest bar.
func scoreMACDCross(r *model.IndicatorReport) model.FactorScore {
	const name = "MACD"
	prev, cur, ok := lastTwo(r.MACD.Histogram)
	if !ok {
		return factor(name, 0, weightMACD, "MACD unavailable")
	}

	var score float64
	var commentary string
	switch {
	case prev <= 0 && cur > 0:
		score, commentary = 2.0, "bullish crossover"
	case prev >= 0 && cur < 0:
		score, commentary = -2.0, "bearish crossover"
	case cur > 0 && cur > prev:
		score, commentary = 1.0, "momentum rising"
	case cur > 0:
		score, commentary = 0.5, "above signal"
	case cur < 0 && cur < prev:
		score, commentary = -1.0, "momentum falling"
	case cur < 0:
		score, commentary = -0.5, "below signal"
	default:
		score, commentary = 0, "flat"
	}
	return factor(name, score, weightMACD, fmt.Sprintf("hist=%+.4f %s", cur, commentary))
}

// scoreSMACross compares the fast and slow SMA on the latest two bars.
// Both series end at the last close so their tails line up.
func scoreSMACross(r *model.IndicatorReport) model.FactorScore {
	name := fmt.Sprintf("SMA%d/%d", r.Params.SMAFast, r.Params.SMASlow)
	fPrev, fCur, okF := lastTwo(r.SMAFast)
	sPrev, sCur, okS := lastTwo(r.SMASlow)
	if !okF || !okS {
		return factor(name, 0, weightSMA, "SMA unavailable")
	}

	var score float64
	var commentary string
	switch {
	case fPrev <= sPrev && fCur > sCur:
		score, commentary = 2.0, "golden cross"
	case fPrev >= sPrev && fCur < sCur:
		score, commentary = -2.0, "death cross"
	case fCur > sCur:
		score, commentary = 1.0, "fast above slow"
	case fCur < sCur:
		score, commentary = -1.0, "fast below slow"
	default:
		score, commentary = 0, "converged"
	}
	return factor(name, score, weightSMA, commentary)
}

// scoreTrend measures the price deviation from the slow SMA, in percent.
func scoreTrend(r *model.IndicatorReport) model.FactorScore {
	const name = "Trend"
	slow := r.Latest.SMASlow
	if len(r.SMASlow) == 0 || slow == 0 {
		return factor(name, 0, weightTrend, "slow SMA unavailable")
	}
	deviation := (r.CurrentPrice - slow) / slow * 100

	var score float64
	switch {
	case deviation > 10:
		score = 1.5
	case deviation > 2:
		score = 1.0
	case deviation > -2:
		score = 0
	case deviation > -10:
		score = -1.0
	default:
		score = -1.5
	}
	return factor(name, score, weightTrend, fmt.Sprintf("price %+.1f%% vs SMA%d", deviation, r.Params.SMASlow))
}

// scoreRangePosition is contrarian on the 52-week range.
// Above RangeHigh the score is capped at -1 unless othersAvg < -1.
func (e *Engine) scoreRangePosition(r *model.IndicatorReport, othersAvg float64) model.FactorScore {
	const name = "52w Position"
	pos := r.Latest.Position52w
	hi, lo := e.Thresholds.RangeHigh, e.Thresholds.RangeLow

	var score float64
	switch {
	case pos <= lo:
		score = 2.0
	case pos <= 0.2:
		score = 1.5
	case pos <= 0.4:
		score = 0.5
	case pos <= 0.6:
		score = 0
	case pos <= 0.8:
		score = -0.5
	case pos <= hi:
		score = -1.0
	default:
		if othersAvg < -1 {
			score = -2.0
		} else {
			score = -1.0
		}
	}
	return factor(name, score, weightRange, fmt.Sprintf("position=%.0f%%", pos*100))
}
