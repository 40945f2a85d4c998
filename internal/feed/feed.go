// Package feed provides market data sources for the trading engine. The
// engine only sees the Feed contract: a stream of ticks pushed into a
// channel and bulk history used once at startup to pre-seed windows.
package feed

import (
	"context"

	"traider/internal/market"
)

// Feed is the market data boundary. Start blocks, pushing ticks into
// tickCh until the context is cancelled; History returns ordered OHLCV
// bars for window pre-seeding.
type Feed interface {
	Start(ctx context.Context, tickCh chan<- market.Tick) error
	History(ctx context.Context, symbol string) ([]market.Candle, error)
}
