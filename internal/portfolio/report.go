package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the read-only view exposed for status display.
type Snapshot struct {
	Mode            Mode
	Cash            decimal.Decimal
	Positions       []Position
	Trades          []Trade
	RealizedPnL     decimal.Decimal
	SessionDuration time.Duration
}

// Summary is the final session report.
type Summary struct {
	TotalTrades  int
	WinningSells int
	WinRate      float64 // percent of trades that realized a profit
	NetPnL       decimal.Decimal
	EndingValue  decimal.Decimal
	Duration     time.Duration
}

// Snapshot returns a consistent copy of the portfolio state.
func (pf *Portfolio) Snapshot() Snapshot {
	pf.mu.RLock()
	defer pf.mu.RUnlock()

	positions := make([]Position, 0, len(pf.positions))
	for _, pos := range pf.positions {
		positions = append(positions, pos)
	}
	trades := make([]Trade, len(pf.trades))
	copy(trades, pf.trades)

	return Snapshot{
		Mode:            pf.mode,
		Cash:            pf.cash,
		Positions:       positions,
		Trades:          trades,
		RealizedPnL:     pf.realized,
		SessionDuration: time.Since(pf.startedAt),
	}
}

// Summarize produces the end-of-session report, valuing any remaining
// positions at the supplied prices.
func (pf *Portfolio) Summarize(prices map[string]decimal.Decimal) Summary {
	pf.mu.RLock()
	defer pf.mu.RUnlock()

	wins := 0
	for _, t := range pf.trades {
		if t.Action == "sell" && t.PnL.GreaterThan(decimal.Zero) {
			wins++
		}
	}
	total := len(pf.trades)
	winRate := 0.0
	if total > 0 {
		winRate = float64(wins) / float64(total) * 100
	}

	return Summary{
		TotalTrades:  total,
		WinningSells: wins,
		WinRate:      winRate,
		NetPnL:       pf.realized,
		EndingValue:  pf.totalValueLocked(prices),
		Duration:     time.Since(pf.startedAt),
	}
}
