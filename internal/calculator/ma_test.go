package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		period int
		want   []float64
	}{
		{"window of three", []float64{1, 2, 3, 4, 5}, 3, []float64{2, 3, 4}},
		{"period one is identity", []float64{10.5, 11, 9.25}, 1, []float64{10.5, 11, 9.25}},
		{"full window", []float64{1, 2, 3, 4}, 4, []float64{2.5}},
		{"rounds to cents", []float64{1, 2, 2}, 3, []float64{1.67}},
		{"too short", []float64{1, 2}, 3, []float64{}},
		{"empty", nil, 3, []float64{}},
		{"zero period", []float64{1, 2, 3}, 0, []float64{}},
		{"negative period", []float64{1, 2, 3}, -2, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SMA(tt.closes, tt.period)
			assert.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEMA(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		period int
		want   []float64
	}{
		{"constant series is a fixed point", []float64{10, 10, 10, 10, 10}, 3, []float64{10, 10, 10}},
		{"linear series", []float64{1, 2, 3, 4, 5}, 3, []float64{2, 3, 4}},
		// seed is mean(2,4)=3, k=2/3: 6*2/3+3/3=5, 8*2/3+5/3=7
		{"seeded with the mean of the first window", []float64{2, 4, 6, 8}, 2, []float64{3, 5, 7}},
		{"period one follows closes", []float64{3, 1, 4, 1, 5}, 1, []float64{3, 1, 4, 1, 5}},
		{"too short", []float64{1, 2}, 3, []float64{}},
		{"empty", []float64{}, 5, []float64{}},
		{"zero period", []float64{1, 2, 3}, 0, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EMA(tt.closes, tt.period)
			assert.NotNil(t, got)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
			assert.Len(t, got, len(tt.want))
		})
	}
}

func TestEMA_NotSeededWithFirstPrice(t *testing.T) {
	got := EMA([]float64{100, 0, 0}, 2)
	// mean(100, 0) = 50, a first-price seed would give 100
	assert.Equal(t, 50.0, got[0])
}

func TestMovingAverages_LengthLaw(t *testing.T) {
	for n := 0; n <= 30; n++ {
		closes := make([]float64, n)
		for i := range closes {
			closes[i] = 100 + float64(i%7) - float64(i%3)
		}
		for p := 1; p <= 10; p++ {
			want := n - p + 1
			if want < 0 {
				want = 0
			}
			assert.Lenf(t, SMA(closes, p), want, "SMA n=%d p=%d", n, p)
			assert.Lenf(t, EMA(closes, p), want, "EMA n=%d p=%d", n, p)
		}
	}
}

func TestCloses(t *testing.T) {
	bars := mockBars([]float64{1.5, 2.5, 3.5})
	assert.Equal(t, []float64{1.5, 2.5, 3.5}, Closes(bars))
	assert.Empty(t, Closes(nil))
}

func TestLast(t *testing.T) {
	v, ok := Last([]float64{1, 2, 3})
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = Last(nil)
	assert.False(t, ok)
	assert.Zero(t, v)
}
