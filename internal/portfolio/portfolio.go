// Package portfolio owns the simulated cash balance, open positions and
// realized P&L for one trading session. All mutation goes through the
// trading orchestrator; transitions for a pair never interleave, which
// keeps the cash balance non-negative by construction.
package portfolio

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Mode selects between trading a single fixed pair and rotating capital
// across the best-scoring pair.
type Mode string

const (
	SingleCoin Mode = "single"
	MultiCoin  Mode = "multi"
)

var (
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrInsufficientCash     = errors.New("allocated balance exceeds available cash")
	ErrBelowMinOrder        = errors.New("order value below minimum order size")
	ErrNoPosition           = errors.New("no open position for pair")
	ErrInsufficientQuantity = errors.New("sell quantity exceeds held quantity")
)

// Params holds the sizing rules. Deploy fractions are product decisions
// kept configurable.
type Params struct {
	SingleCoinDeploy decimal.Decimal // fraction of cash deployed in single-coin mode
	MultiCoinDeploy  decimal.Decimal // fraction of total value allocated in multi-coin mode
	MinOrderValue    decimal.Decimal // minimum notional for a buy
}

func DefaultParams() Params {
	return Params{
		SingleCoinDeploy: decimal.NewFromFloat(0.95),
		MultiCoinDeploy:  decimal.NewFromFloat(0.80),
		MinOrderValue:    decimal.NewFromFloat(1.0),
	}
}

// Position is an open holding in one pair. Entry price is the
// size-weighted average across buys.
type Position struct {
	Symbol     string
	Quantity   decimal.Decimal
	EntryPrice decimal.Decimal
	Allocated  decimal.Decimal // cash committed when the position was sized
}

// Value returns the position's market value at the given price.
func (p Position) Value(price decimal.Decimal) decimal.Decimal {
	return p.Quantity.Mul(price)
}

// Trade is one realized buy or sell execution.
type Trade struct {
	Time     time.Time
	Symbol   string
	Action   string // "buy" or "sell"
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Value    decimal.Decimal // cost for buys, proceeds for sells
	PnL      decimal.Decimal // realized, sells only
}

// Portfolio is the session account. Safe for concurrent reads; writes
// are serialized per invariant in the engine but guarded here too.
type Portfolio struct {
	mu sync.RWMutex

	mode      Mode
	params    Params
	initial   decimal.Decimal
	cash      decimal.Decimal
	positions map[string]Position
	trades    []Trade
	realized  decimal.Decimal
	startedAt time.Time
}

func New(initialBalance decimal.Decimal, mode Mode, params Params) (*Portfolio, error) {
	if initialBalance.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("initial balance must be positive")
	}
	return &Portfolio{
		mode:      mode,
		params:    params,
		initial:   initialBalance,
		cash:      initialBalance,
		positions: make(map[string]Position),
		trades:    make([]Trade, 0, 64),
		startedAt: time.Now().UTC(),
	}, nil
}

// Buy debits cash and opens or increases the pair's position, spending
// allocatedBalance at the given price. Rejections are sentinel errors;
// a rejected buy leaves the portfolio untouched.
func (pf *Portfolio) Buy(symbol string, price, allocatedBalance decimal.Decimal) (Trade, error) {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	if price.LessThanOrEqual(decimal.Zero) {
		return Trade{}, ErrInvalidPrice
	}
	if allocatedBalance.GreaterThan(pf.cash) {
		return Trade{}, ErrInsufficientCash
	}
	if allocatedBalance.LessThan(pf.params.MinOrderValue) {
		return Trade{}, ErrBelowMinOrder
	}

	// Truncate the quantity so the debited cost never exceeds the
	// allocation; Div rounds half away from zero and could overdraw.
	quantity, _ := allocatedBalance.QuoRem(price, int32(decimal.DivisionPrecision))
	cost := quantity.Mul(price)

	pos, ok := pf.positions[symbol]
	if !ok {
		pos = Position{Symbol: symbol, EntryPrice: price}
	}
	// Size-weighted average entry when adding to an existing position.
	oldValue := pos.Quantity.Mul(pos.EntryPrice)
	newQty := pos.Quantity.Add(quantity)
	pos.EntryPrice = oldValue.Add(cost).Div(newQty)
	pos.Quantity = newQty
	pos.Allocated = pos.Allocated.Add(allocatedBalance)
	pf.positions[symbol] = pos
	pf.cash = pf.cash.Sub(cost)

	trade := Trade{
		Time:     time.Now().UTC(),
		Symbol:   symbol,
		Action:   "buy",
		Price:    price,
		Quantity: quantity,
		Value:    cost,
	}
	pf.trades = append(pf.trades, trade)
	return trade, nil
}

// Sell credits cash at the sale price and reduces or clears the pair's
// position, appending a realized P&L record.
func (pf *Portfolio) Sell(symbol string, price, quantity decimal.Decimal) (Trade, error) {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	return pf.sellLocked(symbol, price, quantity)
}

func (pf *Portfolio) sellLocked(symbol string, price, quantity decimal.Decimal) (Trade, error) {
	if price.LessThanOrEqual(decimal.Zero) {
		return Trade{}, ErrInvalidPrice
	}
	pos, ok := pf.positions[symbol]
	if !ok || pos.Quantity.LessThanOrEqual(decimal.Zero) {
		return Trade{}, ErrNoPosition
	}
	if quantity.GreaterThan(pos.Quantity) {
		return Trade{}, ErrInsufficientQuantity
	}

	proceeds := quantity.Mul(price)
	pnl := price.Sub(pos.EntryPrice).Mul(quantity)

	pos.Quantity = pos.Quantity.Sub(quantity)
	if pos.Quantity.IsZero() {
		delete(pf.positions, symbol)
	} else {
		pf.positions[symbol] = pos
	}
	pf.cash = pf.cash.Add(proceeds)
	pf.realized = pf.realized.Add(pnl)

	trade := Trade{
		Time:     time.Now().UTC(),
		Symbol:   symbol,
		Action:   "sell",
		Price:    price,
		Quantity: quantity,
		Value:    proceeds,
		PnL:      pnl,
	}
	pf.trades = append(pf.trades, trade)
	return trade, nil
}

// Liquidate closes the pair's full position at the given price.
func (pf *Portfolio) Liquidate(symbol string, price decimal.Decimal) (Trade, error) {
	pf.mu.Lock()
	defer pf.mu.Unlock()
	pos, ok := pf.positions[symbol]
	if !ok {
		return Trade{}, ErrNoPosition
	}
	return pf.sellLocked(symbol, price, pos.Quantity)
}

// Reallocate atomically closes the position in fromPair at its market
// price and opens one in toPair, deploying the multi-coin fraction of the
// post-sale cash. No observer can see the intermediate cash state. Used
// only in multi-coin mode when the target switches.
func (pf *Portfolio) Reallocate(fromPair, toPair string, fromPrice, toPrice decimal.Decimal) (closed, opened Trade, err error) {
	pf.mu.Lock()
	defer pf.mu.Unlock()

	// Both prices must be valid before anything mutates; rejecting the
	// target price after the sale would leave the transition half-done.
	if fromPrice.LessThanOrEqual(decimal.Zero) || toPrice.LessThanOrEqual(decimal.Zero) {
		return Trade{}, Trade{}, ErrInvalidPrice
	}

	if pos, ok := pf.positions[fromPair]; ok && pos.Quantity.GreaterThan(decimal.Zero) {
		closed, err = pf.sellLocked(fromPair, fromPrice, pos.Quantity)
		if err != nil {
			return Trade{}, Trade{}, err
		}
	}

	// In multi-coin mode the sole position was just closed, so cash is the
	// whole portfolio value at this point.
	allocatedBalance := pf.cash.Mul(pf.params.MultiCoinDeploy)
	if allocatedBalance.LessThan(pf.params.MinOrderValue) {
		return closed, Trade{}, ErrBelowMinOrder
	}

	quantity, _ := allocatedBalance.QuoRem(toPrice, int32(decimal.DivisionPrecision))
	cost := quantity.Mul(toPrice)
	pf.positions[toPair] = Position{
		Symbol:     toPair,
		Quantity:   quantity,
		EntryPrice: toPrice,
		Allocated:  allocatedBalance,
	}
	pf.cash = pf.cash.Sub(cost)

	opened = Trade{
		Time:     time.Now().UTC(),
		Symbol:   toPair,
		Action:   "buy",
		Price:    toPrice,
		Quantity: quantity,
		Value:    cost,
	}
	pf.trades = append(pf.trades, opened)
	return closed, opened, nil
}

// Allocation returns how much cash a new buy should deploy: 95% of cash
// in single-coin mode, 80% of total portfolio value in multi-coin mode
// (the remainder stays in cash as buffer and switching reserve).
func (pf *Portfolio) Allocation(prices map[string]decimal.Decimal) decimal.Decimal {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	switch pf.mode {
	case MultiCoin:
		alloc := pf.totalValueLocked(prices).Mul(pf.params.MultiCoinDeploy)
		if alloc.GreaterThan(pf.cash) {
			alloc = pf.cash
		}
		return alloc
	default:
		return pf.cash.Mul(pf.params.SingleCoinDeploy)
	}
}

func (pf *Portfolio) totalValueLocked(prices map[string]decimal.Decimal) decimal.Decimal {
	total := pf.cash
	for sym, pos := range pf.positions {
		if price, ok := prices[sym]; ok {
			total = total.Add(pos.Value(price))
		} else {
			// No fresh price: fall back to entry valuation rather than zero.
			total = total.Add(pos.Value(pos.EntryPrice))
		}
	}
	return total
}

// TotalValue returns cash plus the market value of open positions.
func (pf *Portfolio) TotalValue(prices map[string]decimal.Decimal) decimal.Decimal {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.totalValueLocked(prices)
}

// Cash returns the available cash balance.
func (pf *Portfolio) Cash() decimal.Decimal {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	return pf.cash
}

// Position returns the open position for the pair, if any.
func (pf *Portfolio) Position(symbol string) (Position, bool) {
	pf.mu.RLock()
	defer pf.mu.RUnlock()
	pos, ok := pf.positions[symbol]
	return pos, ok
}

// Mode returns the session trading mode.
func (pf *Portfolio) Mode() Mode {
	return pf.mode
}
