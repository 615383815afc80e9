package calculator

import "StockScanner/internal/model"

// Conventional MACD periods.
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACD computes the MACD line, its signal line and the histogram.
//
// The fast and slow EMA lines have different warm-ups and are paired by index
// from the start of each line, not by bar time: macd[i] = fast[i] - slow[i]
// for i < min(len(fast), len(slow)). The signal line is the EMA of the MACD
// line, and histogram[i] = macd[i] - signal[i] under the same start-index
// pairing. Lines are computed at full precision and every output element is
// rounded to MACDPrecision.
func MACD(closes []float64, fast, slow, signal int) model.MACDSeries {
	fastLine := ema(closes, fast)
	slowLine := ema(closes, slow)

	macdLine := make([]float64, minLen(fastLine, slowLine))
	for i := range macdLine {
		macdLine[i] = fastLine[i] - slowLine[i]
	}

	signalLine := ema(macdLine, signal)

	histogram := make([]float64, minLen(macdLine, signalLine))
	for i := range histogram {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return model.MACDSeries{
		MACD:      roundAll(macdLine, MACDPrecision),
		Signal:    roundAll(signalLine, MACDPrecision),
		Histogram: roundAll(histogram, MACDPrecision),
	}
}

// MACDDefault is MACD with the 12/26/9 periods.
func MACDDefault(closes []float64) model.MACDSeries {
	return MACD(closes, DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
}

func minLen(a, b []float64) int {
	if len(a) < len(b) {
		return len(a)
	}
	return len(b)
}
