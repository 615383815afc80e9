package calculator

// DefaultRSIPeriod is the conventional RSI window.
const DefaultRSIPeriod = 14

// RSI computes the relative strength index of closes using simple (unsmoothed)
// window means of gains and losses, not Wilder smoothing.
//
// Output value j uses gains[j..j+period-1] and losses[j..j+period-1], where
// gains and losses have len(closes)-1 entries. The output has
// max(0, len(closes)-1-period) values rounded to PricePrecision. A window with
// no losses yields exactly 100.
func RSI(closes []float64, period int) []float64 {
	if period < 1 || len(closes) < 2 {
		return []float64{}
	}

	n := len(closes) - 1
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else if delta < 0 {
			losses[i-1] = -delta
		}
	}

	count := n - period
	if count <= 0 {
		return []float64{}
	}

	out := make([]float64, 0, count)
	for j := 0; j < count; j++ {
		var sumGain, sumLoss float64
		for i := j; i < j+period; i++ {
			sumGain += gains[i]
			sumLoss += losses[i]
		}
		avgGain := sumGain / float64(period)
		avgLoss := sumLoss / float64(period)

		if avgLoss == 0 {
			out = append(out, 100)
			continue
		}
		rs := avgGain / avgLoss
		out = append(out, round(100-100/(1+rs), PricePrecision))
	}
	return out
}

// RSIDefault is RSI with DefaultRSIPeriod.
func RSIDefault(closes []float64) []float64 {
	return RSI(closes, DefaultRSIPeriod)
}
