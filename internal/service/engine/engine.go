package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/astrobot-dev/autotrader/internal/schedule"
	"github.com/astrobot-dev/autotrader/internal/service/exchange"
	"github.com/astrobot-dev/autotrader/internal/service/strategy"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var _ schedule.Task = (*Engine)(nil)

type pairState struct {
	pair         exchange.TradingPair
	strat        strategy.Strategy
	quantity     decimal.Decimal
	positionOpen bool
	lastSignal   strategy.OrderSide
}

// Engine runs automated trading across one or more symbols: a fixed
// interval cycle fetches candles, evaluates each pair's strategy and
// conditionally places orders, tracking open positions and an
// append-only trade ledger. All shared state is guarded by one mutex;
// control calls and the cycle goroutine funnel through it.
type Engine struct {
	cli exchange.Client

	candleInterval exchange.Interval
	candleLimit    int
	cycleInterval  time.Duration
	now            func() time.Time

	mu           sync.Mutex
	pairs        map[string]*pairState
	activeTrades map[string]ActiveTrade
	history      []TradeRecord
	running      bool
	stopLoop     context.CancelFunc
}

type Option func(e *Engine)

func WithCycleInterval(d time.Duration) Option {
	return func(e *Engine) {
		e.cycleInterval = d
	}
}

func WithCandles(interval exchange.Interval, limit int) Option {
	return func(e *Engine) {
		e.candleInterval = interval
		e.candleLimit = limit
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(cli exchange.Client, opts ...Option) *Engine {
	e := &Engine{
		cli:            cli,
		candleInterval: exchange.Interval1m,
		candleLimit:    100,
		cycleInterval:  time.Minute,
		now:            time.Now,
		pairs:          make(map[string]*pairState),
		activeTrades:   make(map[string]ActiveTrade),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string {
	return "auto trading cycle"
}

// StartTrading binds (or rebinds, replacing the prior state entirely)
// a symbol to a strategy and starts the cycle loop if it is not
// already running. Unknown strategy names are rejected synchronously.
func (e *Engine) StartTrading(strategyName, symbol string, quantity decimal.Decimal) error {
	strat, err := strategy.New(strategyName)
	if err != nil {
		slog.Error("cannot start trading", "symbol", symbol, "strategy", strategyName, "error", err)
		return err
	}

	pair := exchange.SplitSymbol(symbol)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.pairs[symbol] = &pairState{
		pair:       pair,
		strat:      strat,
		quantity:   quantity,
		lastSignal: strategy.None,
	}
	// a rebind starts flat
	delete(e.activeTrades, symbol)

	if !e.running {
		e.running = true
		ctx, cancel := context.WithCancel(context.Background())
		e.stopLoop = cancel
		go schedule.NewIntervalRunner(e, e.cycleInterval).Start(ctx)
		slog.Info("trading loop started", "pairs", len(e.pairs))
	}

	slog.Info("auto trading started", "symbol", symbol, "strategy", strategyName, "quantity", quantity)
	return nil
}

// StopTrading with symbols removes those pairs only; without any it
// clears every pair. The loop halts once no pairs remain; a cycle in
// flight completes first.
func (e *Engine) StopTrading(symbols ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(symbols) == 0 {
		e.pairs = make(map[string]*pairState)
		e.activeTrades = make(map[string]ActiveTrade)
		e.haltLocked()
		slog.Info("auto trading fully stopped")
		return
	}

	for _, symbol := range symbols {
		delete(e.pairs, symbol)
		delete(e.activeTrades, symbol)
		slog.Info("auto trading stopped", "symbol", symbol)
	}
	if len(e.pairs) == 0 {
		e.haltLocked()
	}
}

func (e *Engine) haltLocked() {
	if !e.running {
		return
	}
	e.running = false
	e.stopLoop()
	e.stopLoop = nil
}

// Run executes one evaluation cycle over all bound symbols.
// Implements schedule.Task; per-symbol failures are contained and
// never abort the cycle.
func (e *Engine) Run(ctx context.Context) error {
	for _, symbol := range e.boundSymbols() {
		e.processPair(ctx, symbol)
	}
	return nil
}

func (e *Engine) boundSymbols() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	symbols := lo.Keys(e.pairs)
	sort.Strings(symbols)
	return symbols
}

func (e *Engine) processPair(ctx context.Context, symbol string) {
	e.mu.Lock()
	st, ok := e.pairs[symbol]
	if !ok {
		e.mu.Unlock()
		return
	}
	pair, strat, quantity, open := st.pair, st.strat, st.quantity, st.positionOpen
	e.mu.Unlock()

	klines, err := e.cli.GetCandles(ctx, pair, e.candleInterval, e.candleLimit)
	if err != nil {
		slog.Warn("candles unavailable, skipping symbol", "symbol", symbol, "error", err)
		return
	}
	closes := lo.Map(klines, func(k exchange.Kline, _ int) decimal.Decimal {
		return k.Close
	})

	switch {
	case strat.ShouldBuy(closes, open):
		if !e.sufficientBalance(ctx, symbol, pair, quantity) {
			return
		}
		e.execute(ctx, symbol, pair, exchange.SideBuy, quantity, strat.Name())
	case strat.ShouldSell(closes, open):
		e.execute(ctx, symbol, pair, exchange.SideSell, quantity, strat.Name())
	}
}

// sufficientBalance estimates the notional cost from the last traded
// price and checks it against the free quote balance. A heuristic:
// the venue still validates the order itself.
func (e *Engine) sufficientBalance(ctx context.Context, symbol string, pair exchange.TradingPair, quantity decimal.Decimal) bool {
	balances, err := e.cli.GetAccountBalances(ctx)
	if err != nil {
		slog.Warn("balance check unavailable, skipping buy", "symbol", symbol, "error", err)
		return false
	}
	price, err := e.cli.GetLastPrice(ctx, pair)
	if err != nil {
		slog.Warn("last price unavailable, skipping buy", "symbol", symbol, "error", err)
		return false
	}

	cost := price.Mul(quantity)
	quote, found := lo.Find(balances, func(b exchange.AccountBalance) bool {
		return b.Asset == pair.Quote
	})
	if !found || quote.Free.LessThan(cost) {
		slog.Warn("insufficient quote balance",
			"symbol", symbol, "quote", pair.Quote, "required", cost, "available", quote.Free)
		return false
	}
	return true
}

func (e *Engine) execute(ctx context.Context, symbol string, pair exchange.TradingPair, side exchange.Side, quantity decimal.Decimal, strategyName string) {
	res, err := e.cli.PlaceOrder(ctx, exchange.PlaceOrderReq{
		Pair:     pair,
		Side:     side,
		Quantity: quantity,
	})
	if err != nil {
		slog.Error("order failed", "symbol", symbol, "side", side, "error", err)
		return
	}

	ts := e.now()

	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, TradeRecord{
		Pair:      pair,
		Side:      side,
		Quantity:  quantity,
		Price:     res.ExecutedPrice,
		Timestamp: ts,
		Strategy:  strategyName,
	})

	st, ok := e.pairs[symbol]
	if !ok {
		// unbound mid-cycle: the order stands and stays in the ledger,
		// but there is no pair state left to update
		return
	}

	if side == exchange.SideBuy {
		e.activeTrades[symbol] = ActiveTrade{
			Pair:       pair,
			Quantity:   quantity,
			EntryPrice: res.ExecutedPrice,
			OpenedAt:   ts,
			Strategy:   strategyName,
		}
		st.positionOpen = true
		st.lastSignal = strategy.Buy
	} else {
		delete(e.activeTrades, symbol)
		st.positionOpen = false
		st.lastSignal = strategy.Sell
	}

	slog.Info("trade executed",
		"symbol", symbol, "side", side, "quantity", quantity, "price", res.ExecutedPrice, "strategy", strategyName)
}

// ManualTrade submits an order directly, bypassing strategy evaluation
// and the balance pre-check. The ledger entry is tagged Manual; pair
// state and active trades are deliberately untouched.
func (e *Engine) ManualTrade(ctx context.Context, symbol string, side exchange.Side, quantity decimal.Decimal) error {
	pair := exchange.SplitSymbol(symbol)
	res, err := e.cli.PlaceOrder(ctx, exchange.PlaceOrderReq{
		Pair:     pair,
		Side:     side,
		Quantity: quantity,
	})
	if err != nil {
		return fmt.Errorf("manual trade %s %s: %w", side, symbol, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = append(e.history, TradeRecord{
		Pair:      pair,
		Side:      side,
		Quantity:  quantity,
		Price:     res.ExecutedPrice,
		Timestamp: e.now(),
		Strategy:  ManualStrategy,
	})
	return nil
}

// GetStatus reports a consistent snapshot of the engine plus a live
// price per bound symbol.
func (e *Engine) GetStatus(ctx context.Context) Status {
	type pairSnap struct {
		symbol string
		pair   exchange.TradingPair
		status PairStatus
	}

	e.mu.Lock()
	status := Status{
		Running:      e.running,
		Pairs:        make(map[string]PairStatus, len(e.pairs)),
		ActiveTrades: len(e.activeTrades),
		TotalTrades:  len(e.history),
	}
	snaps := make([]pairSnap, 0, len(e.pairs))
	for symbol, st := range e.pairs {
		snaps = append(snaps, pairSnap{
			symbol: symbol,
			pair:   st.pair,
			status: PairStatus{
				Strategy:     st.strat.Name(),
				Quantity:     st.quantity,
				PositionOpen: st.positionOpen,
				LastSignal:   st.lastSignal,
			},
		})
	}
	e.mu.Unlock()

	// price lookups happen outside the lock
	for _, snap := range snaps {
		price, err := e.cli.GetLastPrice(ctx, snap.pair)
		if err != nil {
			slog.Warn("status price unavailable", "symbol", snap.symbol, "error", err)
		}
		snap.status.CurrentPrice = price
		status.Pairs[snap.symbol] = snap.status
	}
	return status
}

// GetAccountBalances passes through to the exchange, keeping only
// assets with a non-zero balance.
func (e *Engine) GetAccountBalances(ctx context.Context) ([]exchange.AccountBalance, error) {
	balances, err := e.cli.GetAccountBalances(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(balances, func(b exchange.AccountBalance, _ int) bool {
		return b.Free.IsPositive() || b.Locked.IsPositive()
	}), nil
}

// History returns a copy of the trade ledger in execution order.
func (e *Engine) History() []TradeRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]TradeRecord(nil), e.history...)
}

// ActiveTrades returns a copy of the open positions keyed by symbol.
func (e *Engine) ActiveTrades() map[string]ActiveTrade {
	e.mu.Lock()
	defer e.mu.Unlock()
	trades := make(map[string]ActiveTrade, len(e.activeTrades))
	for symbol, trade := range e.activeTrades {
		trades[symbol] = trade
	}
	return trades
}
