package calculator

import "StockScanner/internal/model"

// SMA computes the simple moving average series of closes over period.
// Output has max(0, len(closes)-period+1) values rounded to PricePrecision.
func SMA(closes []float64, period int) []float64 {
	return roundAll(sma(closes, period), PricePrecision)
}

// EMA computes the exponential moving average series of closes over period,
// seeded with the simple mean of the first period closes.
// Output has max(0, len(closes)-period+1) values rounded to PricePrecision.
func EMA(closes []float64, period int) []float64 {
	return roundAll(ema(closes, period), PricePrecision)
}

func sma(closes []float64, period int) []float64 {
	if period < 1 || len(closes) < period {
		return []float64{}
	}
	out := make([]float64, 0, len(closes)-period+1)
	for i := period - 1; i < len(closes); i++ {
		// Each window is summed afresh, left to right.
		sum := 0.0
		for _, c := range closes[i-period+1 : i+1] {
			sum += c
		}
		out = append(out, sum/float64(period))
	}
	return out
}

func ema(closes []float64, period int) []float64 {
	if period < 1 || len(closes) < period {
		return []float64{}
	}
	k := 2.0 / float64(period+1)

	seed := 0.0
	for _, c := range closes[:period] {
		seed += c
	}
	prev := seed / float64(period)

	out := make([]float64, 0, len(closes)-period+1)
	out = append(out, prev)
	for _, c := range closes[period:] {
		prev = c*k + prev*(1-k)
		out = append(out, prev)
	}
	return out
}

// Closes extracts the close prices of bars in order.
func Closes(bars []model.OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// Last returns the final value of series, or 0 and false when it is empty.
func Last(series []float64) (float64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}
