package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"traider/internal/scorer"
)

func tableWith(scores ...scorer.Score) *scorer.Table {
	table := scorer.NewTable()
	for _, s := range scores {
		table.Put(s)
	}
	return table
}

func TestSwitcher_EmptyTableStays(t *testing.T) {
	sw := NewSwitcher(10)
	assert.Equal(t, "", sw.Consider(scorer.NewTable()))
}

func TestSwitcher_NoActiveTakesBest(t *testing.T) {
	sw := NewSwitcher(10)
	table := tableWith(
		scorer.Score{Symbol: "BTC/USDT", Value: 55},
		scorer.Score{Symbol: "ETH/USDT", Value: 62},
	)
	assert.Equal(t, "ETH/USDT", sw.Consider(table))
}

func TestSwitcher_Hysteresis(t *testing.T) {
	tests := []struct {
		name   string
		active int
		rival  int
		want   string
	}{
		{"rival below margin stays", 60, 68, ""},
		{"rival just under margin stays", 60, 69, ""},
		{"rival at margin switches", 60, 70, "ETH/USDT"},
		{"rival above margin switches", 60, 71, "ETH/USDT"},
		{"rival below active stays", 60, 40, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw := NewSwitcher(10)
			sw.SetActive("BTC/USDT")
			table := tableWith(
				scorer.Score{Symbol: "BTC/USDT", Value: tt.active},
				scorer.Score{Symbol: "ETH/USDT", Value: tt.rival},
			)
			assert.Equal(t, tt.want, sw.Consider(table))
		})
	}
}

func TestSwitcher_BestIsActiveStays(t *testing.T) {
	sw := NewSwitcher(10)
	sw.SetActive("BTC/USDT")
	table := tableWith(
		scorer.Score{Symbol: "BTC/USDT", Value: 80},
		scorer.Score{Symbol: "ETH/USDT", Value: 75},
	)
	assert.Equal(t, "", sw.Consider(table))
}

func TestSwitcher_ActiveScoreMissingSwitches(t *testing.T) {
	// The active pair dropped out of the table (e.g. filtered at startup
	// of a new cycle); take the best candidate rather than staying blind.
	sw := NewSwitcher(10)
	sw.SetActive("DOGE/USDT")
	table := tableWith(scorer.Score{Symbol: "ETH/USDT", Value: 51})
	assert.Equal(t, "ETH/USDT", sw.Consider(table))
}
