package feed

import (
	"context"
	"time"

	"traider/internal/market"
)

// Replay is a deterministic in-process feed that plays back a prepared
// tick sequence. Used for paper sessions without connectivity and in
// tests.
type Replay struct {
	Bars     map[string][]market.Candle // served by History
	Ticks    []market.Tick              // streamed in order by Start
	Interval time.Duration              // delay between ticks; zero means as fast as possible
}

// Start pushes the prepared ticks into tickCh in order. Returns nil once
// the sequence is exhausted or the context is cancelled; the engine then
// degrades to stale snapshots rather than stopping.
func (r *Replay) Start(ctx context.Context, tickCh chan<- market.Tick) error {
	for _, tick := range r.Ticks {
		if r.Interval > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(r.Interval):
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case tickCh <- tick:
		}
	}
	<-ctx.Done()
	return nil
}

// History returns the prepared bars for the symbol.
func (r *Replay) History(_ context.Context, symbol string) ([]market.Candle, error) {
	return r.Bars[symbol], nil
}
