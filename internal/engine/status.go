package engine

import (
	"log"
	"time"

	"traider/internal/portfolio"
)

// logStatus prints the portfolio and market state after each analysis
// cycle: top opportunities, active target, open positions and session
// P&L. Stale pairs are flagged rather than silently skipped.
func (e *Engine) logStatus() {
	top := e.table.Top(3)
	if len(top) > 0 {
		log.Println("status | top opportunities:")
		for _, s := range top {
			flag := ""
			if s.Stale {
				flag = " (stale)"
			}
			log.Printf("status |   %s: %d/100 signal=%s%s", s.Symbol, s.Value, s.Signal, flag)
		}
	}

	prices := e.currentPrices()
	snap := e.pf.Snapshot()
	value := e.pf.TotalValue(prices)

	log.Printf("status | session=%s active=%s cash=%s total=%s realized_pnl=%s trades=%d",
		snap.SessionDuration.Round(time.Second), e.switcher.Active(), snap.Cash.StringFixed(2),
		value.StringFixed(2), snap.RealizedPnL.StringFixed(2), len(snap.Trades))

	for _, pos := range snap.Positions {
		if price, ok := prices[pos.Symbol]; ok {
			log.Printf("status |   position %s: qty=%s entry=%s current=%s value=%s",
				pos.Symbol, pos.Quantity.StringFixed(6), pos.EntryPrice.StringFixed(4),
				price.StringFixed(4), pos.Value(price).StringFixed(2))
		} else {
			log.Printf("status |   position %s: qty=%s entry=%s (no fresh price)",
				pos.Symbol, pos.Quantity.StringFixed(6), pos.EntryPrice.StringFixed(4))
		}
	}
}

// Summary produces the final session report valued at the last known
// prices.
func (e *Engine) Summary() portfolio.Summary {
	return e.pf.Summarize(e.currentPrices())
}
