package indicator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

func TestSMA(t *testing.T) {
	testCases := []struct {
		name   string
		series []decimal.Decimal
		period int
		want   float64
		ok     bool
	}{
		{
			name:   "mean of last period only",
			series: series(100, 200, 10, 12, 14),
			period: 3,
			want:   12,
			ok:     true,
		},
		{
			name:   "window of two",
			series: series(10, 10, 10, 12, 14),
			period: 2,
			want:   13,
			ok:     true,
		},
		{
			name:   "full series",
			series: series(1, 2, 3),
			period: 3,
			want:   2,
			ok:     true,
		},
		{
			name:   "insufficient data",
			series: series(1, 2),
			period: 3,
			ok:     false,
		},
		{
			name:   "empty series",
			series: nil,
			period: 1,
			ok:     false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := SMA(tc.series, tc.period)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, got.Equal(decimal.NewFromFloat(tc.want)), "got %s", got)
			}
		})
	}
}

func TestSMA_IgnoresEarlierElements(t *testing.T) {
	a := series(1, 2, 3, 10, 20, 30)
	b := series(999, 999, 999, 10, 20, 30)

	gotA, ok := SMA(a, 3)
	require.True(t, ok)
	gotB, ok := SMA(b, 3)
	require.True(t, ok)
	assert.True(t, gotA.Equal(gotB))
}

func TestEMA(t *testing.T) {
	// period 2, alpha = 2/3: 1 -> 5/3 -> 23/9
	got, ok := EMA(series(1, 2, 3), 2)
	require.True(t, ok)
	assert.InDelta(t, 23.0/9.0, got.InexactFloat64(), 1e-9)

	_, ok = EMA(series(1), 2)
	assert.False(t, ok)
}

func TestEMA_ConstantSeries(t *testing.T) {
	got, ok := EMA(series(5, 5, 5, 5, 5, 5), 3)
	require.True(t, ok)
	assert.True(t, got.Equal(decimal.NewFromInt(5)), "got %s", got)
}

func TestRSI(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		// needs period+1 points
		_, ok := RSI(series(1, 2, 3), 3)
		assert.False(t, ok)
	})

	t.Run("all losses", func(t *testing.T) {
		got, ok := RSI(series(20, 18, 16, 14, 12), 4)
		require.True(t, ok)
		assert.True(t, got.IsZero(), "got %s", got)
	})

	t.Run("zero loss is neutral", func(t *testing.T) {
		got, ok := RSI(series(10, 11, 12, 13, 14), 4)
		require.True(t, ok)
		assert.True(t, got.Equal(decimal.NewFromInt(50)), "got %s", got)
	})

	t.Run("mixed window", func(t *testing.T) {
		// deltas +2, -1: avg gain 1, avg loss 0.5, RS 2, RSI 66.67
		got, ok := RSI(series(1, 3, 2), 2)
		require.True(t, ok)
		assert.InDelta(t, 200.0/3.0, got.InexactFloat64(), 1e-9)
	})

	t.Run("balanced window", func(t *testing.T) {
		got, ok := RSI(series(1, 2, 1), 2)
		require.True(t, ok)
		assert.True(t, got.Equal(decimal.NewFromInt(50)), "got %s", got)
	})
}

func TestMACD(t *testing.T) {
	t.Run("insufficient data", func(t *testing.T) {
		_, _, _, ok := MACD(series(1, 2, 3), 12, 26, 9)
		assert.False(t, ok)
	})

	t.Run("constant series is flat", func(t *testing.T) {
		s := make([]decimal.Decimal, 40)
		for i := range s {
			s[i] = decimal.NewFromInt(5)
		}
		macd, signal, histogram, ok := MACD(s, 12, 26, 9)
		require.True(t, ok)
		assert.True(t, macd.IsZero(), "macd %s", macd)
		assert.True(t, signal.IsZero(), "signal %s", signal)
		assert.True(t, histogram.IsZero(), "histogram %s", histogram)
	})

	t.Run("histogram is macd minus signal", func(t *testing.T) {
		s := make([]decimal.Decimal, 0, 40)
		for i := 0; i < 40; i++ {
			s = append(s, decimal.NewFromInt(int64(100+i)))
		}
		macd, signal, histogram, ok := MACD(s, 12, 26, 9)
		require.True(t, ok)
		assert.True(t, histogram.Equal(macd.Sub(signal)))
		// rising series: fast EMA above slow EMA
		assert.True(t, macd.IsPositive())
	})
}

func TestDeterminism(t *testing.T) {
	s := series(44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42,
		45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00,
		46.03, 46.41, 46.22, 45.64, 46.21, 46.25, 45.71, 46.45,
		45.78, 45.35, 44.03, 44.18, 44.22, 44.57, 43.42, 42.66, 43.13)

	sma1, _ := SMA(s, 21)
	sma2, _ := SMA(s, 21)
	assert.True(t, sma1.Equal(sma2))

	ema1, _ := EMA(s, 12)
	ema2, _ := EMA(s, 12)
	assert.True(t, ema1.Equal(ema2))

	rsi1, _ := RSI(s, 14)
	rsi2, _ := RSI(s, 14)
	assert.True(t, rsi1.Equal(rsi2))

	m1, s1, h1, _ := MACD(s, 12, 26, 5)
	m2, s2, h2, _ := MACD(s, 12, 26, 5)
	assert.True(t, m1.Equal(m2))
	assert.True(t, s1.Equal(s2))
	assert.True(t, h1.Equal(h2))
}
