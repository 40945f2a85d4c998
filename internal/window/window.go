// Package window
package window

import (
	"sync"
	"time"

	"traider/internal/market"
)

// DefaultSize is the per-pair rolling window capacity.
const DefaultSize = 50

// ring is a fixed-capacity FIFO of ticks. Once full, each push evicts the
// oldest entry.
type ring struct {
	ticks  []market.Tick
	size   int
	index  int
	filled bool
}

func newRing(size int) *ring {
	return &ring{
		ticks: make([]market.Tick, size),
		size:  size,
	}
}

func (r *ring) push(t market.Tick) {
	r.ticks[r.index] = t
	r.index = (r.index + 1) % r.size
	if r.index == 0 {
		r.filled = true
	}
}

func (r *ring) len() int {
	if r.filled {
		return r.size
	}
	return r.index
}

// values returns the ticks oldest-first.
func (r *ring) values() []market.Tick {
	length := r.len()
	result := make([]market.Tick, 0, length)
	if length == 0 {
		return result
	}
	if r.filled {
		result = append(result, r.ticks[r.index:]...)
	}
	result = append(result, r.ticks[:r.index]...)
	return result
}

// Store holds one rolling window per trading pair. A single feed consumer
// pushes; the analysis cycle reads consistent point-in-time snapshots.
type Store struct {
	mu      sync.RWMutex
	size    int
	windows map[string]*ring
	lastAt  map[string]time.Time
}

func NewStore(size int) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	return &Store{
		size:    size,
		windows: make(map[string]*ring),
		lastAt:  make(map[string]time.Time),
	}
}

// Push appends a tick to the pair's window, evicting the oldest once at
// capacity. Unknown pairs start with an empty window. Late ticks are
// accepted in receipt order; the window never rewinds.
func (s *Store) Push(t market.Tick) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.windows[t.Symbol]
	if !ok {
		r = newRing(s.size)
		s.windows[t.Symbol] = r
	}
	r.push(t)
	if t.Timestamp.After(s.lastAt[t.Symbol]) {
		s.lastAt[t.Symbol] = t.Timestamp
	}
}

// Seed loads historical candles into the pair's window, oldest-first.
func (s *Store) Seed(symbol string, candles []market.Candle) {
	for i := range candles {
		c := candles[i]
		c.Symbol = symbol
		s.Push(c.Tick())
	}
}

// Snapshot returns an immutable copy of the pair's window, oldest-first.
// Unseen pairs yield an empty slice.
func (s *Store) Snapshot(symbol string) []market.Tick {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.windows[symbol]
	if !ok {
		return []market.Tick{}
	}
	return r.values()
}

// Len reports how many ticks the pair's window currently holds.
func (s *Store) Len(symbol string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.windows[symbol]; ok {
		return r.len()
	}
	return 0
}

// LastPrice returns the most recently pushed price for the pair.
func (s *Store) LastPrice(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.windows[symbol]
	if !ok || r.len() == 0 {
		return 0, false
	}
	last := (r.index - 1 + r.size) % r.size
	return r.ticks[last].Price, true
}

// LastTickAt returns the newest tick timestamp seen for the pair. Used to
// flag stale feeds; a zero time means the pair has never ticked.
func (s *Store) LastTickAt(symbol string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAt[symbol]
}
