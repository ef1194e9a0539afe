package strategy

import (
	"github.com/astrobot-dev/autotrader/internal/service/indicator"
	"github.com/shopspring/decimal"
)

var _ Strategy = (*SMACrossover)(nil)

// SMACrossover buys while the short moving average sits above the long
// one and the position is flat, sells on the opposite reading with an
// open position. It is a level comparison, not an edge detector: the
// engine's position flag is what prevents duplicate orders.
type SMACrossover struct {
	shortPeriod int
	longPeriod  int
}

type SMACrossoverOption func(s *SMACrossover)

func WithPeriods(short, long int) SMACrossoverOption {
	return func(s *SMACrossover) {
		s.shortPeriod = short
		s.longPeriod = long
	}
}

func NewSMACrossover(opts ...SMACrossoverOption) *SMACrossover {
	s := &SMACrossover{
		shortPeriod: 13,
		longPeriod:  21,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SMACrossover) Name() string {
	return "sma_crossover"
}

func (s *SMACrossover) ShouldBuy(series []decimal.Decimal, positionOpen bool) bool {
	if positionOpen {
		return false
	}
	short, long, ok := s.averages(series)
	return ok && short.GreaterThan(long)
}

func (s *SMACrossover) ShouldSell(series []decimal.Decimal, positionOpen bool) bool {
	if !positionOpen {
		return false
	}
	short, long, ok := s.averages(series)
	return ok && short.LessThan(long)
}

func (s *SMACrossover) averages(series []decimal.Decimal) (short, long decimal.Decimal, ok bool) {
	short, ok = indicator.SMA(series, s.shortPeriod)
	if !ok {
		return decimal.Zero, decimal.Zero, false
	}
	long, ok = indicator.SMA(series, s.longPeriod)
	if !ok {
		return decimal.Zero, decimal.Zero, false
	}
	return short, long, true
}
