package calculator

import (
	"math"

	"github.com/shopspring/decimal"
)

// Output precisions. Prices round to cents, MACD lines to four places.
const (
	PricePrecision = 2
	MACDPrecision  = 4
)

// round rounds half away from zero on the shortest decimal form of v,
// so 1.005 becomes 1.01 rather than the binary-nearest 1.00.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func roundAll(values []float64, places int32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = round(v, places)
	}
	return out
}
