package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TradingPair 交易对
type TradingPair struct {
	Base  string
	Quote string
}

// SplitSymbol splits a compact symbol like "BTCUSDT" into base and quote.
func SplitSymbol(s string) TradingPair {
	s = strings.ToUpper(s)
	quotes := []string{"USDT", "BUSD", "USDC", "BTC", "ETH"}
	for _, q := range quotes {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return TradingPair{Base: strings.TrimSuffix(s, q), Quote: q}
		}
	}
	// fallback
	return TradingPair{Base: s}
}

func (p *TradingPair) IsZero() bool {
	return p.Base == "" || p.Quote == ""
}

func (p *TradingPair) ToString() string {
	return fmt.Sprintf("%s%s", p.Base, p.Quote)
}

func (p *TradingPair) ToSlashString() string {
	return fmt.Sprintf("%s/%s", p.Base, p.Quote)
}

type Interval string

func (i Interval) ToString() string {
	return string(i)
}

const (
	Interval1m  Interval = "1m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

type Kline struct {
	OpenTime         time.Time
	CloseTime        time.Time
	Open             decimal.Decimal
	Close            decimal.Decimal
	High             decimal.Decimal
	Low              decimal.Decimal
	Volume           decimal.Decimal
	QuoteAssetVolume decimal.Decimal
}

type AccountBalance struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

func (b AccountBalance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

type PlaceOrderReq struct {
	Pair     TradingPair
	Side     Side
	Quantity decimal.Decimal
}

type OrderResult struct {
	OrderID string
	// ExecutedPrice is taken from the first fill the venue reports.
	// Zero when the response carries no fills.
	ExecutedPrice decimal.Decimal
	ExecutedQty   decimal.Decimal
}

// Client is the engine's view of a trading venue.
// Every error returned wraps one of the sentinel errors in errors.go;
// callers treat any of them as "skip this cycle, try again next one".
type Client interface {
	Ping(ctx context.Context) bool
	GetCandles(ctx context.Context, pair TradingPair, interval Interval, limit int) ([]Kline, error)
	GetAccountBalances(ctx context.Context) ([]AccountBalance, error)
	GetLastPrice(ctx context.Context, pair TradingPair) (decimal.Decimal, error)
	PlaceOrder(ctx context.Context, req PlaceOrderReq) (OrderResult, error)
}
