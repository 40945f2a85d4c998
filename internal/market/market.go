// Package market
package market

import (
	"errors"
	"strings"
	"time"
)

// Tick represents a trade tick for a trading pair. Ticks are immutable
// once received; the feed does not guarantee timestamp ordering.
type Tick struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// Validate checks if a tick has usable data.
func (t *Tick) Validate() error {
	if t.Symbol == "" {
		return errors.New("tick symbol cannot be empty")
	}
	if t.Price <= 0 {
		return errors.New("tick price must be positive")
	}
	if t.Volume < 0 {
		return errors.New("tick volume cannot be negative")
	}
	if t.Timestamp.IsZero() {
		return errors.New("tick timestamp is zero")
	}
	return nil
}

// Candle represents an OHLCV bar, used to pre-seed windows at startup.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Symbol    string    `json:"symbol"`
}

// Tick converts a candle into the tick the window stores: close price,
// bar volume, bar timestamp.
func (c *Candle) Tick() Tick {
	return Tick{
		Symbol:    c.Symbol,
		Price:     c.Close,
		Volume:    c.Volume,
		Timestamp: c.Timestamp,
	}
}

// Validate checks if a candle has valid data.
func (c *Candle) Validate() error {
	if c.Timestamp.IsZero() {
		return errors.New("candle timestamp is zero")
	}
	if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
		return errors.New("candle prices must be positive")
	}
	if c.High < c.Low {
		return errors.New("candle high cannot be less than low")
	}
	if c.Volume < 0 {
		return errors.New("candle volume cannot be negative")
	}
	if c.Symbol == "" {
		return errors.New("candle symbol cannot be empty")
	}
	return nil
}

// stableCoins are base assets that never move against the quote currency
// enough to trade. Pairs based on them are dropped at startup.
var stableCoins = map[string]struct{}{
	"USDT": {}, "USDC": {}, "DAI": {}, "BUSD": {}, "UST": {},
	"EURT": {}, "TUSD": {}, "GUSD": {}, "PAX": {}, "HUSD": {}, "EURS": {},
}

// FilterTradable drops malformed symbols and stablecoin-based pairs.
// Symbols are expected in BASE/QUOTE form, e.g. "BTC/USDT".
func FilterTradable(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		base, _, ok := strings.Cut(s, "/")
		if !ok {
			continue
		}
		if _, stable := stableCoins[base]; stable {
			continue
		}
		out = append(out, s)
	}
	return out
}
