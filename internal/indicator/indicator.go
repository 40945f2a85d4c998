// Package indicator derives technical indicators from a window snapshot.
// Undefined values (insufficient data) are signaled as NaN and propagate
// to the scorer as neutral inputs.
package indicator

import (
	"math"

	"traider/internal/market"
)

// Params holds the indicator periods. Zero values fall back to defaults.
type Params struct {
	RSIPeriod     int
	ShortMAPeriod int
	LongMAPeriod  int
	MinMAPeriod   int
	SpikeFactor   float64
}

func DefaultParams() Params {
	return Params{
		RSIPeriod:     14,
		ShortMAPeriod: 5,
		LongMAPeriod:  20,
		MinMAPeriod:   5,
		SpikeFactor:   1.5,
	}
}

// Snapshot is the per-pair indicator state derived from one window
// snapshot. It is recomputed each analysis cycle, never persisted.
type Snapshot struct {
	RSI            float64 // NaN when fewer than RSIPeriod+1 prices
	ShortMA        float64 // NaN when fewer than MinMAPeriod prices
	LongMA         float64 // NaN when fewer than MinMAPeriod prices
	LastPrice      float64
	PriceChangePct float64 // last price vs previous, in percent
	LastVolume     float64
	AvgVolume      float64 // mean of the preceding volumes
	VolumeSpike    bool
}

// Defined reports whether v carries a value (NaN marks missing data).
func Defined(v float64) bool { return !math.IsNaN(v) }

// Compute derives a Snapshot from a window snapshot. Pure function: no
// side effects, no errors, only NaN markers for insufficient data.
func Compute(ticks []market.Tick, p Params) Snapshot {
	snap := Snapshot{
		RSI:     math.NaN(),
		ShortMA: math.NaN(),
		LongMA:  math.NaN(),
	}
	if len(ticks) == 0 {
		return snap
	}

	prices := make([]float64, len(ticks))
	volumes := make([]float64, len(ticks))
	for i, t := range ticks {
		prices[i] = t.Price
		volumes[i] = t.Volume
	}

	snap.LastPrice = prices[len(prices)-1]
	if len(prices) >= 2 {
		prev := prices[len(prices)-2]
		if prev > 0 {
			snap.PriceChangePct = (snap.LastPrice/prev - 1) * 100
		}
	}

	if rsi, err := CalculateLastRSI(prices, p.RSIPeriod); err == nil {
		snap.RSI = rsi
	}

	if len(prices) >= p.MinMAPeriod {
		snap.ShortMA = mean(tail(prices, p.ShortMAPeriod))
		// Long MA uses up to LongMAPeriod closes, or all available.
		snap.LongMA = mean(tail(prices, p.LongMAPeriod))
	}

	snap.LastVolume = volumes[len(volumes)-1]
	if len(volumes) >= 2 {
		preceding := volumes[:len(volumes)-1]
		snap.AvgVolume = mean(preceding)
		snap.VolumeSpike = snap.AvgVolume > 0 && snap.LastVolume > snap.AvgVolume*p.SpikeFactor
	}

	return snap
}

func tail(values []float64, n int) []float64 {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
