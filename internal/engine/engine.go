// Package engine coordinates the market data stream against two
// independently paced decision loops: a slow analysis cycle that rescores
// every tracked pair and a fast trading cycle that acts on the latest
// signal for the active pair. The engine is the only writer of portfolio
// state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"traider/internal/feed"
	"traider/internal/indicator"
	"traider/internal/journal"
	"traider/internal/market"
	"traider/internal/metrics"
	"traider/internal/notifier"
	"traider/internal/portfolio"
	"traider/internal/scorer"
	"traider/internal/window"
)

// Config holds the engine pacing and selection parameters.
type Config struct {
	Symbols          []string
	AnalysisInterval time.Duration // slow cycle, e.g. 5m
	TradingInterval  time.Duration // fast cycle, e.g. 1s
	SwitchMargin     int           // hysteresis for multi-coin switching
	StaleAfter       time.Duration // tick age after which a window is flagged stale
	TickBuffer       int           // ingest channel capacity
}

func (c *Config) defaults() {
	if c.AnalysisInterval == 0 {
		c.AnalysisInterval = 5 * time.Minute
	}
	if c.TradingInterval == 0 {
		c.TradingInterval = time.Second
	}
	if c.SwitchMargin == 0 {
		c.SwitchMargin = 10
	}
	if c.StaleAfter == 0 {
		c.StaleAfter = 2 * time.Minute
	}
	if c.TickBuffer == 0 {
		c.TickBuffer = 1024
	}
}

type Engine struct {
	cfg       Config
	indParams indicator.Params

	feed     feed.Feed
	windows  *window.Store
	scorer   *scorer.Scorer
	table    *scorer.Table
	pf       *portfolio.Portfolio
	switcher *Switcher
	journal  journal.Journaler
	notifier notifier.Notifier
	metrics  *metrics.Metrics
	health   *metrics.HealthStatus

	// tradeMu serializes buy/sell transitions so no two interleave and
	// the cash-never-negative invariant holds.
	tradeMu sync.Mutex
}

func New(
	cfg Config,
	indParams indicator.Params,
	f feed.Feed,
	windows *window.Store,
	sc *scorer.Scorer,
	pf *portfolio.Portfolio,
	jr journal.Journaler,
	nt notifier.Notifier,
	mt *metrics.Metrics,
	health *metrics.HealthStatus,
) *Engine {
	cfg.defaults()
	return &Engine{
		cfg:       cfg,
		indParams: indParams,
		feed:      f,
		windows:   windows,
		scorer:    sc,
		table:     scorer.NewTable(),
		pf:        pf,
		switcher:  NewSwitcher(cfg.SwitchMargin),
		journal:   jr,
		notifier:  nt,
		metrics:   mt,
		health:    health,
	}
}

// Table exposes the latest score table for status display.
func (e *Engine) Table() *scorer.Table { return e.table }

// Run seeds the windows from feed history, then drives the ingest,
// analysis and trading goroutines until ctx is cancelled. The trading
// cycle always finishes its current iteration before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	if len(e.cfg.Symbols) == 0 {
		return errors.New("no tradable symbols configured")
	}

	e.seedHistory(ctx)

	// In single-coin mode the one tracked pair is active from the start
	// (the portfolio deploys against it directly). Multi-coin starts
	// flat; the first analysis cycle selects a target.
	if e.pf.Mode() == portfolio.SingleCoin {
		e.switcher.SetActive(e.cfg.Symbols[0])
	}

	tickCh := make(chan market.Tick, e.cfg.TickBuffer)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := e.feed.Start(ctx, tickCh); err != nil {
			log.Printf("engine | feed stopped: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.ingestLoop(ctx, tickCh)
	}()

	// Score every pair once before the loops start so the trading cycle
	// never reads an empty table.
	e.runAnalysisCycle()

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.analysisLoop(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		e.tradingLoop(ctx)
	}()

	wg.Wait()
	return nil
}

// seedHistory pre-seeds each pair's window with historical bars. A feed
// without history for a pair is not fatal; the window fills from live
// ticks instead.
func (e *Engine) seedHistory(ctx context.Context) {
	for _, symbol := range e.cfg.Symbols {
		bars, err := e.feed.History(ctx, symbol)
		if err != nil {
			log.Printf("seedHistory | no history for %s: %v", symbol, err)
			continue
		}
		e.windows.Seed(symbol, bars)
		log.Printf("seedHistory | seeded %s with %d bars", symbol, len(bars))
	}
}

// ingestLoop is the single consumer of feed ticks. Within a pair, pushes
// are applied in receipt order.
func (e *Engine) ingestLoop(ctx context.Context, tickCh <-chan market.Tick) {
	for {
		select {
		case <-ctx.Done():
			return
		case tick, ok := <-tickCh:
			if !ok {
				return
			}
			e.windows.Push(tick)
			if e.metrics != nil {
				e.metrics.TicksTotal.Inc()
			}
			if e.health != nil {
				e.health.SetLastTickTime(tick.Timestamp)
			}
		}
	}
}

// analysisLoop recomputes every pair's score on the slow cadence. It can
// be cancelled mid-sleep without consequence: the next run recomputes
// fully.
func (e *Engine) analysisLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.AnalysisInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runAnalysisCycle()
			e.logStatus()
		}
	}
}

// runAnalysisCycle rescores all tracked pairs and, in multi-coin mode,
// reconsiders the active target.
func (e *Engine) runAnalysisCycle() {
	now := time.Now().UTC()
	for _, symbol := range e.cfg.Symbols {
		ticks := e.windows.Snapshot(symbol)
		ind := indicator.Compute(ticks, e.indParams)
		score := e.scorer.Evaluate(symbol, ind)

		lastAt := e.windows.LastTickAt(symbol)
		score.Stale = lastAt.IsZero() || now.Sub(lastAt) > e.cfg.StaleAfter

		e.table.Put(score)
		if e.metrics != nil {
			e.metrics.ScoresComputed.Inc()
			e.metrics.OpportunityGauge.WithLabelValues(symbol).Set(float64(score.Value))
		}
	}
	if e.metrics != nil {
		e.metrics.AnalysisCycles.Inc()
	}

	if e.pf.Mode() == portfolio.MultiCoin {
		if target := e.switcher.Consider(e.table); target != "" {
			e.switchTarget(target)
		}
	}
}

// switchTarget moves the active position to the new pair: the old
// position is liquidated at market and capital reallocated in a single
// portfolio transition.
func (e *Engine) switchTarget(target string) {
	e.tradeMu.Lock()
	defer e.tradeMu.Unlock()

	from := e.switcher.Active()
	if from == "" {
		e.switcher.SetActive(target)
		log.Printf("switchTarget | selected %s as initial trading target", target)
		e.journal.LogEvent(journal.Event{
			Type:        "switch",
			Description: "initial_target_selected",
			Data:        map[string]any{"target": target},
		})
		return
	}

	fromPrice, okFrom := e.lastPrice(from)
	toPrice, okTo := e.lastPrice(target)
	if !okTo {
		log.Printf("switchTarget | no price for %s, staying on %s", target, from)
		return
	}

	// Only reallocate capital when a position is actually open; a flat
	// portfolio just retargets.
	if _, open := e.pf.Position(from); open {
		if !okFrom {
			log.Printf("switchTarget | no price to liquidate %s, staying", from)
			return
		}
		closed, opened, err := e.pf.Reallocate(from, target, fromPrice, toPrice)
		if err != nil {
			log.Printf("switchTarget | reallocate %s -> %s rejected: %v", from, target, err)
			e.rejected("reallocate", err)
			return
		}
		log.Printf("switchTarget | closed %s at %s (pnl %s), opened %s at %s",
			from, closed.Price, closed.PnL, target, opened.Price)
		e.recordTrade(closed)
		e.recordTrade(opened)
	}

	e.switcher.SetActive(target)
	if e.metrics != nil {
		e.metrics.CoinSwitches.Inc()
	}
	e.journal.LogEvent(journal.Event{
		Type:        "switch",
		Description: "target_switched",
		Data:        map[string]any{"from": from, "to": target},
	})
	e.notify(fmt.Sprintf("Switched trading target from %s to %s", from, target))
}

// tradingLoop acts on the latest completed analysis output on the fast
// cadence. Each iteration runs to completion; shutdown waits for it.
func (e *Engine) tradingLoop(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.TradingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.runTradingCycle()
		}
	}
}

// runTradingCycle reads the active pair's latest signal and price and
// issues at most one portfolio transition.
func (e *Engine) runTradingCycle() {
	e.tradeMu.Lock()
	defer e.tradeMu.Unlock()

	active := e.switcher.Active()
	if active == "" {
		return
	}

	score, ok := e.table.Get(active)
	if !ok {
		return
	}

	price, ok := e.lastPrice(active)
	if !ok {
		// No tick ever seen: nothing to price against. Never trade at
		// zero.
		return
	}

	_, holding := e.pf.Position(active)

	switch score.Signal {
	case scorer.Buy:
		if holding {
			return // no duplicate same-direction action
		}
		alloc := e.pf.Allocation(e.currentPrices())
		trade, err := e.pf.Buy(active, price, alloc)
		if err != nil {
			e.rejected("buy", err)
			return
		}
		log.Printf("runTradingCycle | BOUGHT %s %s at %s (cost %s)",
			trade.Quantity, active, trade.Price, trade.Value)
		e.recordTrade(trade)
		e.notify(fmt.Sprintf("BUY %s %s at %s", trade.Quantity, active, trade.Price))

	case scorer.Sell:
		if !holding {
			return
		}
		trade, err := e.pf.Liquidate(active, price)
		if err != nil {
			e.rejected("sell", err)
			return
		}
		log.Printf("runTradingCycle | SOLD %s %s at %s (pnl %s)",
			trade.Quantity, active, trade.Price, trade.PnL)
		e.recordTrade(trade)
		e.notify(fmt.Sprintf("SELL %s %s at %s, pnl %s", trade.Quantity, active, trade.Price, trade.PnL))
	}

	if e.metrics != nil {
		prices := e.currentPrices()
		value, _ := e.pf.TotalValue(prices).Float64()
		cash, _ := e.pf.Cash().Float64()
		e.metrics.PortfolioValue.Set(value)
		e.metrics.CashBalance.Set(cash)
	}
}

// lastPrice returns the most recent tick price for a pair as a decimal.
func (e *Engine) lastPrice(symbol string) (decimal.Decimal, bool) {
	p, ok := e.windows.LastPrice(symbol)
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(p), true
}

// currentPrices collects last known prices for all tracked pairs.
func (e *Engine) currentPrices() map[string]decimal.Decimal {
	prices := make(map[string]decimal.Decimal, len(e.cfg.Symbols))
	for _, symbol := range e.cfg.Symbols {
		if p, ok := e.lastPrice(symbol); ok {
			prices[symbol] = p
		}
	}
	return prices
}

func (e *Engine) recordTrade(t portfolio.Trade) {
	if e.metrics != nil {
		e.metrics.TradesTotal.WithLabelValues(t.Action).Inc()
	}
	e.journal.LogEvent(journal.Event{
		Time:        t.Time,
		Type:        "trade",
		Description: t.Action,
		Data: map[string]any{
			"symbol":   t.Symbol,
			"price":    t.Price.String(),
			"quantity": t.Quantity.String(),
			"value":    t.Value.String(),
			"pnl":      t.PnL.String(),
		},
	})
}

// rejected records a risk-rule rejection. Rejections are no-ops, never
// fatal; the loop continues.
func (e *Engine) rejected(action string, err error) {
	log.Printf("engine | %s rejected: %v", action, err)
	if e.metrics != nil {
		e.metrics.TradesRejected.WithLabelValues(err.Error()).Inc()
	}
	e.journal.LogEvent(journal.Event{
		Type:        "trade",
		Description: action + "_rejected",
		Data:        map[string]any{"reason": err.Error()},
	})
}

func (e *Engine) notify(msg string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.SendWithRetry(msg); err != nil {
		log.Printf("engine | notification failed: %v", err)
	}
}
