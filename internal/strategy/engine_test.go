package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScanner/internal/model"
)

// report builds a minimal report whose latest values mirror the series tails.
func report(price float64, rsi, hist, fast, slow []float64, pos float64) *model.IndicatorReport {
	r := &model.IndicatorReport{
		Symbol:       "TEST",
		Params:       model.DefaultIndicatorParams(),
		CurrentPrice: price,
		RSI:          rsi,
		SMAFast:      fast,
		SMASlow:      slow,
		MACD:         model.MACDSeries{Histogram: hist},
	}
	last := func(s []float64) float64 {
		if len(s) == 0 {
			return 0
		}
		return s[len(s)-1]
	}
	r.Latest.RSI = last(rsi)
	r.Latest.MACDHistogram = last(hist)
	r.Latest.SMAFast = last(fast)
	r.Latest.SMASlow = last(slow)
	r.Latest.Position52w = pos
	return r
}

func factorByName(t *testing.T, sig *model.ScanSignal, prefix string) model.FactorScore {
	t.Helper()
	for _, f := range sig.Factors {
		if len(f.Name) >= len(prefix) && f.Name[:len(prefix)] == prefix {
			return f
		}
	}
	t.Fatalf("factor %q not found", prefix)
	return model.FactorScore{}
}

func TestEvaluate_NeutralMarket(t *testing.T) {
	r := report(100, []float64{50, 50}, []float64{0.1, 0.05}, []float64{100.3, 100.5}, []float64{100, 100.2}, 0.5)
	sig := Evaluate(r)

	require.NotNil(t, sig)
	assert.Equal(t, "TEST", sig.Symbol)
	assert.Len(t, sig.Factors, 5)
	assert.Equal(t, TierNeutral, sig.Tier.Label)
	assert.True(t, sig.Tier.Neutral)
	assert.Empty(t, sig.WarningMsg)
}

func TestEvaluate_Oversold(t *testing.T) {
	r := report(115, []float64{25, 18}, []float64{-0.2, 0.1}, []float64{99, 101}, []float64{100, 100}, 0.03)
	sig := Evaluate(r)

	assert.Equal(t, 2.0, factorByName(t, sig, "RSI").RawScore)
	assert.Equal(t, 2.0, factorByName(t, sig, "MACD").RawScore)
	assert.Equal(t, 2.0, factorByName(t, sig, "SMA").RawScore)
	assert.Equal(t, 1.5, factorByName(t, sig, "Trend").RawScore)
	assert.Equal(t, 2.0, factorByName(t, sig, "52w").RawScore)
	assert.InDelta(t, 1.925, sig.TotalScore, 1e-9)
	assert.Equal(t, TierStrongBuy, sig.Tier.Label)
	assert.False(t, sig.Tier.Neutral)
}

func TestEvaluate_Overbought(t *testing.T) {
	r := report(85, []float64{80, 88}, []float64{0.3, -0.1}, []float64{101, 99}, []float64{100, 100}, 0.99)
	sig := Evaluate(r)

	assert.Equal(t, -2.0, factorByName(t, sig, "RSI").RawScore)
	assert.Equal(t, -2.0, factorByName(t, sig, "MACD").RawScore)
	assert.Equal(t, -2.0, factorByName(t, sig, "SMA").RawScore)
	assert.Equal(t, -1.5, factorByName(t, sig, "Trend").RawScore)
	// others average -1.875 < -1 so the range factor reaches -2
	assert.Equal(t, -2.0, factorByName(t, sig, "52w").RawScore)
	assert.Equal(t, TierStrongSell, sig.Tier.Label)
	assert.Contains(t, sig.WarningMsg, "RSI above 85")
}

func TestEvaluate_RangeTopCappedWithoutConfirmation(t *testing.T) {
	r := report(100, []float64{50, 50}, []float64{0.1, 0.1}, []float64{100, 100}, []float64{100, 100}, 0.99)
	sig := Evaluate(r)
	assert.Equal(t, -1.0, factorByName(t, sig, "52w").RawScore)
}

func TestEvaluate_EmptyReport(t *testing.T) {
	r := report(100, []float64{}, []float64{}, []float64{}, []float64{}, 0.5)
	sig := Evaluate(r)

	for _, f := range sig.Factors {
		assert.Zero(t, f.RawScore, f.Name)
	}
	assert.Zero(t, sig.TotalScore)
	assert.Equal(t, TierNeutral, sig.Tier.Label)
	assert.Empty(t, sig.WarningMsg)
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	r := report(100, []float64{60, 62}, nil, nil, nil, 0.5)

	assert.Equal(t, -0.5, factorByName(t, Evaluate(r), "RSI").RawScore)

	strict := NewEngine(Thresholds{RSIOverbought: 60, RSIOversold: 40})
	assert.Equal(t, -1.5, factorByName(t, strict.Evaluate(r), "RSI").RawScore)
}

func TestEngine_ZeroBands(t *testing.T) {
	r := report(100, []float64{8, 5}, nil, nil, nil, 0.03)

	def := Evaluate(r)
	assert.Equal(t, 2.0, factorByName(t, def, "RSI").RawScore)
	assert.Equal(t, 2.0, factorByName(t, def, "52w").RawScore)

	th := DefaultThresholds()
	th.RSIOversold, th.RangeLow = 0, 0
	zero := &Engine{Thresholds: th}
	sig := zero.Evaluate(r)
	assert.Equal(t, 0.5, factorByName(t, sig, "RSI").RawScore)
	assert.Equal(t, 1.5, factorByName(t, sig, "52w").RawScore)
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(Thresholds{})
	assert.Equal(t, DefaultThresholds(), e.Thresholds)
}

func TestMapTier(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{2.0, TierStrongBuy},
		{1.2, TierStrongBuy},
		{1.19, TierBuy},
		{0.5, TierBuy},
		{0.0, TierNeutral},
		{-0.5, TierNeutral},
		{-0.51, TierSell},
		{-1.2, TierSell},
		{-1.21, TierStrongSell},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapTier(tt.score).Label, "score %.2f", tt.score)
	}
}
