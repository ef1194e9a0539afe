package strategy

import (
	"github.com/astrobot-dev/autotrader/internal/service/indicator"
	"github.com/shopspring/decimal"
)

var _ Strategy = (*RSIThreshold)(nil)

// RSIThreshold buys oversold and sells overbought readings.
type RSIThreshold struct {
	period     int
	oversold   decimal.Decimal
	overbought decimal.Decimal
}

type RSIThresholdOption func(s *RSIThreshold)

func WithRSIPeriod(period int) RSIThresholdOption {
	return func(s *RSIThreshold) {
		s.period = period
	}
}

func WithBounds(oversold, overbought decimal.Decimal) RSIThresholdOption {
	return func(s *RSIThreshold) {
		s.oversold = oversold
		s.overbought = overbought
	}
}

func NewRSIThreshold(opts ...RSIThresholdOption) *RSIThreshold {
	s := &RSIThreshold{
		period:     14,
		oversold:   decimal.NewFromInt(30),
		overbought: decimal.NewFromInt(70),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RSIThreshold) Name() string {
	return "rsi_threshold"
}

func (s *RSIThreshold) ShouldBuy(series []decimal.Decimal, positionOpen bool) bool {
	if positionOpen {
		return false
	}
	rsi, ok := indicator.RSI(series, s.period)
	return ok && rsi.LessThan(s.oversold)
}

func (s *RSIThreshold) ShouldSell(series []decimal.Decimal, positionOpen bool) bool {
	if !positionOpen {
		return false
	}
	rsi, ok := indicator.RSI(series, s.period)
	return ok && rsi.GreaterThan(s.overbought)
}
