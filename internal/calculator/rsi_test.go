package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		period int
		want   []float64
	}{
		{"all gains", []float64{1, 2, 3, 4, 5, 6, 7}, 3, []float64{100, 100, 100}},
		{"all losses", []float64{7, 6, 5, 4, 3, 2, 1}, 3, []float64{0, 0, 0}},
		{"flat series has no losses", []float64{5, 5, 5, 5}, 2, []float64{100}},
		{"alternating", []float64{1, 2, 1, 2, 1, 2}, 2, []float64{50, 50, 50}},
		// gains 2,0,3 losses 0,1,0: rs = (5/3)/(1/3) = 5, rsi = 100-100/6
		{"mixed window", []float64{10, 12, 11, 14, 13}, 3, []float64{83.33}},
		// last window of the gain array is not emitted
		{"exactly period+1 closes", []float64{1, 2, 3, 4}, 3, []float64{}},
		{"single close", []float64{1}, 1, []float64{}},
		{"empty", nil, 14, []float64{}},
		{"zero period", []float64{1, 2, 3, 4}, 0, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RSI(tt.closes, tt.period)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRSI_SimpleAverageNotWilder(t *testing.T) {
	// gains 0,0,4,0,4 and losses 1,1,0,1,0 with period 2 give the windows
	// (0,0|1,1) -> 0, (0,4|1,0) -> 80, (4,0|0,1) -> 80.
	// Wilder smoothing would give 57.14 for the last value.
	got := RSI([]float64{10, 9, 8, 12, 11, 15}, 2)
	assert.Equal(t, []float64{0, 80, 80}, got)
}

func TestRSI_LengthLaw(t *testing.T) {
	for n := 0; n <= 30; n++ {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = float64((i * 37) % 11)
		}
		for p := 1; p <= 10; p++ {
			want := n - 1 - p
			if want < 0 {
				want = 0
			}
			assert.Lenf(t, RSI(closes, p), want, "n=%d p=%d", n, p)
		}
	}
}

func TestRSI_Bounds(t *testing.T) {
	closes := wave(120)
	for _, v := range RSIDefault(closes) {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestRSIDefault(t *testing.T) {
	closes := wave(40)
	assert.Equal(t, RSI(closes, 14), RSIDefault(closes))
	assert.Len(t, RSIDefault(closes), 40-1-14)
}
