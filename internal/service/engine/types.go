package engine

import (
	"time"

	"github.com/astrobot-dev/autotrader/internal/service/exchange"
	"github.com/astrobot-dev/autotrader/internal/service/strategy"
	"github.com/shopspring/decimal"
)

// ManualStrategy tags ledger entries placed outside the automated loop.
const ManualStrategy = "Manual"

// ActiveTrade is the open-position record for one symbol. It exists
// exactly while the position is open and mirrors the pair's position
// flag at all times.
type ActiveTrade struct {
	Pair       exchange.TradingPair
	Quantity   decimal.Decimal
	EntryPrice decimal.Decimal
	OpenedAt   time.Time
	Strategy   string
}

// TradeRecord is an append-only ledger entry, one per confirmed order.
type TradeRecord struct {
	Pair      exchange.TradingPair
	Side      exchange.Side
	Quantity  decimal.Decimal
	Price     decimal.Decimal
	Timestamp time.Time
	Strategy  string
}

type PairStatus struct {
	Strategy     string
	Quantity     decimal.Decimal
	PositionOpen bool
	LastSignal   strategy.OrderSide
	// CurrentPrice is fetched live while building the status,
	// zero when the venue is unreachable.
	CurrentPrice decimal.Decimal
}

type Status struct {
	Running      bool
	Pairs        map[string]PairStatus
	ActiveTrades int
	TotalTrades  int
}
