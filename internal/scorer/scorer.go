// Package scorer maps indicator snapshots to bounded opportunity scores
// and discrete trading signals.
package scorer

import (
	"time"

	"traider/internal/indicator"
)

// Signal is the discrete trading decision for a pair.
type Signal string

const (
	Buy  Signal = "buy"
	Sell Signal = "sell"
	Hold Signal = "hold"
)

// Params holds the scoring constants. They are product decisions, kept
// configurable so they can be retuned without touching the algorithm.
type Params struct {
	BaseScore        int
	PriceChangeLimit float64 // max +- contribution of recent price change
	PriceChangeScale float64 // score points per percent of price change
	RSIOversold      float64
	RSIOverbought    float64
	RSILimit         float64 // max +- contribution of the RSI component
	TrendBonus       int     // +- contribution of the MA crossover
	SpikeBonus       int
}

func DefaultParams() Params {
	return Params{
		BaseScore:        50,
		PriceChangeLimit: 10,
		PriceChangeScale: 2,
		RSIOversold:      35,
		RSIOverbought:    65,
		RSILimit:         20,
		TrendBonus:       10,
		SpikeBonus:       5,
	}
}

// Score is the per-pair opportunity evaluation. A new value replaces the
// previous one atomically in the Table; it is never partially updated.
type Score struct {
	Symbol     string
	Value      int // clamped to [0, 100]
	Signal     Signal
	Stale      bool // window received no fresh ticks recently
	ComputedAt time.Time
}

type Scorer struct {
	params Params
}

func New(params Params) *Scorer {
	return &Scorer{params: params}
}

// Evaluate computes the opportunity score and signal for one pair. The
// adjustment order is fixed for reproducibility: price change, RSI,
// MA trend, volume spike, final clamp.
func (s *Scorer) Evaluate(symbol string, ind indicator.Snapshot) Score {
	p := s.params
	score := float64(p.BaseScore)

	// Recent price change, clamped to +-PriceChangeLimit.
	change := ind.PriceChangePct * p.PriceChangeScale
	score += clamp(change, -p.PriceChangeLimit, p.PriceChangeLimit)

	// RSI: oversold is an opportunity, overbought drags. NaN contributes
	// nothing because its comparisons are false.
	if ind.RSI < p.RSIOversold {
		score += clamp((p.RSIOversold-ind.RSI)/p.RSIOversold*p.RSILimit, 0, p.RSILimit)
	} else if ind.RSI > p.RSIOverbought {
		score -= clamp((ind.RSI-p.RSIOverbought)/(100-p.RSIOverbought)*p.RSILimit, 0, p.RSILimit)
	}

	if ind.ShortMA > ind.LongMA {
		score += float64(p.TrendBonus)
	} else if ind.ShortMA < ind.LongMA {
		score -= float64(p.TrendBonus)
	}

	if ind.VolumeSpike {
		score += float64(p.SpikeBonus)
	}

	return Score{
		Symbol:     symbol,
		Value:      int(clamp(score, 0, 100)),
		Signal:     s.signal(ind),
		ComputedAt: time.Now().UTC(),
	}
}

// signal derives the discrete decision directly from the indicators,
// independent of the numeric score. An undefined RSI makes every
// directional condition false, so incomplete data always holds.
func (s *Scorer) signal(ind indicator.Snapshot) Signal {
	p := s.params
	if ind.RSI < p.RSIOversold || (ind.ShortMA > ind.LongMA && ind.RSI < p.RSIOverbought) {
		return Buy
	}
	if ind.RSI > p.RSIOverbought || (ind.ShortMA < ind.LongMA && ind.RSI > p.RSIOversold) {
		return Sell
	}
	return Hold
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
