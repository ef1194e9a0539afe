package strategy

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
	None OrderSide = "none"
)

var ErrUnknownStrategy = errors.New("strategy: unknown strategy")

// Strategy decides on a fresh closing-price series whether to buy or
// sell. Implementations never mutate the series and never track their
// own position: positionOpen is supplied by the engine on every call.
type Strategy interface {
	Name() string
	ShouldBuy(series []decimal.Decimal, positionOpen bool) bool
	ShouldSell(series []decimal.Decimal, positionOpen bool) bool
}

var builders = map[string]func() Strategy{
	"sma": func() Strategy { return NewSMACrossover() },
	"rsi": func() Strategy { return NewRSIThreshold() },
}

// New resolves a registry key to a fresh strategy instance so that
// every trading pair owns its own copy.
func New(name string) (Strategy, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return build(), nil
}

// Names lists the registered strategy keys.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	return names
}
