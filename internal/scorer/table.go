package scorer

import (
	"sort"
	"sync"
)

// Table holds the latest Score per pair. Writes swap the whole entry so
// readers never observe a partially updated score; the trading cycle
// always acts on the most recently completed analysis cycle's output.
type Table struct {
	mu     sync.RWMutex
	scores map[string]Score
}

func NewTable() *Table {
	return &Table{scores: make(map[string]Score)}
}

// Put atomically replaces the pair's score.
func (t *Table) Put(s Score) {
	t.mu.Lock()
	t.scores[s.Symbol] = s
	t.mu.Unlock()
}

// Get returns the latest score for the pair.
func (t *Table) Get(symbol string) (Score, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.scores[symbol]
	return s, ok
}

// All returns a copy of every pair's latest score.
func (t *Table) All() map[string]Score {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Score, len(t.scores))
	for sym, s := range t.scores {
		out[sym] = s
	}
	return out
}

// Top returns the n highest-scoring pairs, best first. Ties break by
// symbol so the ranking is deterministic.
func (t *Table) Top(n int) []Score {
	t.mu.RLock()
	ranked := make([]Score, 0, len(t.scores))
	for _, s := range t.scores {
		ranked = append(ranked, s)
	}
	t.mu.RUnlock()

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Value != ranked[j].Value {
			return ranked[i].Value > ranked[j].Value
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// Best returns the single highest-scoring pair.
func (t *Table) Best() (Score, bool) {
	top := t.Top(1)
	if len(top) == 0 {
		return Score{}, false
	}
	return top[0], true
}
