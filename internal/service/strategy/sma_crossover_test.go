package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func series(values ...float64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromFloat(v)
	}
	return out
}

func TestSMACrossover_ShouldBuy(t *testing.T) {
	strat := NewSMACrossover(WithPeriods(2, 3))

	// short SMA over last 2 = 13, long SMA over last 3 = 12
	rising := series(10, 10, 10, 12, 14)

	assert.True(t, strat.ShouldBuy(rising, false))
	assert.False(t, strat.ShouldBuy(rising, true), "no buy on an open position")
	assert.False(t, strat.ShouldSell(rising, true), "short above long is not a sell")
}

func TestSMACrossover_ShouldSell(t *testing.T) {
	strat := NewSMACrossover(WithPeriods(2, 3))

	// short SMA = 8.5, long SMA = 9
	falling := series(14, 12, 10, 9, 8)

	assert.True(t, strat.ShouldSell(falling, true))
	assert.False(t, strat.ShouldSell(falling, false), "nothing to sell when flat")
	assert.False(t, strat.ShouldBuy(falling, false))
}

func TestSMACrossover_InsufficientData(t *testing.T) {
	strat := NewSMACrossover(WithPeriods(2, 3))
	short := series(10, 12)

	assert.False(t, strat.ShouldBuy(short, false))
	assert.False(t, strat.ShouldSell(short, true))
}

func TestSMACrossover_Defaults(t *testing.T) {
	strat := NewSMACrossover()
	assert.Equal(t, "sma_crossover", strat.Name())
	assert.Equal(t, 13, strat.shortPeriod)
	assert.Equal(t, 21, strat.longPeriod)
}

func TestSMACrossover_EqualAveragesHold(t *testing.T) {
	strat := NewSMACrossover(WithPeriods(2, 3))
	flat := series(10, 10, 10, 10, 10)

	assert.False(t, strat.ShouldBuy(flat, false))
	assert.False(t, strat.ShouldSell(flat, true))
}
