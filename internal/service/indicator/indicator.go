// Package indicator computes technical indicators over an ordered
// series of closing prices, most-recent last. All functions are pure:
// same input, same output, nothing mutated. A false second return
// means the series is too short, never an error.
package indicator

import (
	"github.com/astrobot-dev/autotrader/pkg/decimalx"
	"github.com/shopspring/decimal"
)

var (
	one     = decimal.NewFromInt(1)
	fifty   = decimal.NewFromInt(50)
	hundred = decimal.NewFromInt(100)
)

// SMA arithmetic mean of the last period closes.
func SMA(series []decimal.Decimal, period int) (decimal.Decimal, bool) {
	if period <= 0 || len(series) < period {
		return decimal.Zero, false
	}
	return decimalx.Avg(series[len(series)-period:]), true
}

// EMA exponential moving average with alpha = 2/(period+1), seeded
// with the first element and smoothed across the whole series.
func EMA(series []decimal.Decimal, period int) (decimal.Decimal, bool) {
	if period <= 0 || len(series) < period {
		return decimal.Zero, false
	}
	smoothed := emaSeries(series, period)
	return smoothed[len(smoothed)-1], true
}

// RSI relative strength index over the last period deltas.
// Returns a neutral 50 when the loss component is exactly zero.
func RSI(series []decimal.Decimal, period int) (decimal.Decimal, bool) {
	if period <= 0 || len(series) < period+1 {
		return decimal.Zero, false
	}

	window := series[len(series)-period-1:]
	gains, losses := decimal.Zero, decimal.Zero
	for i := 1; i < len(window); i++ {
		change := window[i].Sub(window[i-1])
		if change.IsPositive() {
			gains = gains.Add(change)
		} else {
			losses = losses.Add(change.Neg())
		}
	}

	if losses.IsZero() {
		return fifty, true
	}

	n := decimal.NewFromInt(int64(period))
	rs := gains.Div(n).Div(losses.Div(n))
	return hundred.Sub(hundred.Div(one.Add(rs))), true
}

// MACD returns the MACD line (EMA fast − EMA slow), its EMA signal
// line and the histogram (their difference).
func MACD(series []decimal.Decimal, fast, slow, signal int) (macd, signalLine, histogram decimal.Decimal, ok bool) {
	if fast <= 0 || slow <= 0 || signal <= 0 || len(series) < slow+signal {
		return decimal.Zero, decimal.Zero, decimal.Zero, false
	}

	fastEMA := emaSeries(series, fast)
	slowEMA := emaSeries(series, slow)

	line := make([]decimal.Decimal, len(series))
	for i := range series {
		line[i] = fastEMA[i].Sub(slowEMA[i])
	}
	signalEMA := emaSeries(line, signal)

	macd = line[len(line)-1]
	signalLine = signalEMA[len(signalEMA)-1]
	return macd, signalLine, macd.Sub(signalLine), true
}

func emaSeries(series []decimal.Decimal, period int) []decimal.Decimal {
	alpha := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(period) + 1))
	keep := one.Sub(alpha)

	out := make([]decimal.Decimal, len(series))
	out[0] = series[0]
	for i := 1; i < len(series); i++ {
		out[i] = series[i].Mul(alpha).Add(out[i-1].Mul(keep))
	}
	return out
}
