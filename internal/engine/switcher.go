package engine

import "traider/internal/scorer"

// Switcher owns the coin-selection state for multi-coin mode: the
// current target and the hysteresis margin a candidate must clear before
// the active position moves. The margin prevents thrashing on noisy
// scores.
type Switcher struct {
	active string
	margin int
}

func NewSwitcher(margin int) *Switcher {
	return &Switcher{margin: margin}
}

// Active returns the currently selected pair, empty when flat.
func (s *Switcher) Active() string { return s.active }

// SetActive records a completed switch.
func (s *Switcher) SetActive(symbol string) { s.active = symbol }

// Consider returns the pair to switch to, or "" to stay. With no active
// pair the best-scoring candidate is always taken; otherwise the
// candidate must beat the active pair's score by at least the margin.
func (s *Switcher) Consider(table *scorer.Table) string {
	best, ok := table.Best()
	if !ok {
		return ""
	}
	if s.active == "" {
		return best.Symbol
	}
	if best.Symbol == s.active {
		return ""
	}
	current, ok := table.Get(s.active)
	if !ok {
		return best.Symbol
	}
	if best.Value-current.Value >= s.margin {
		return best.Symbol
	}
	return ""
}
