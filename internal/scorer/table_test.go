package scorer

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_PutReplacesWholeScore(t *testing.T) {
	table := NewTable()

	table.Put(Score{Symbol: "BTC/USDT", Value: 40, Signal: Hold})
	table.Put(Score{Symbol: "BTC/USDT", Value: 72, Signal: Buy, Stale: true})

	got, ok := table.Get("BTC/USDT")
	require.True(t, ok)
	assert.Equal(t, 72, got.Value)
	assert.Equal(t, Buy, got.Signal)
	assert.True(t, got.Stale)
}

func TestTable_GetMissing(t *testing.T) {
	table := NewTable()

	_, ok := table.Get("ETH/USDT")
	assert.False(t, ok)
}

func TestTable_Top(t *testing.T) {
	table := NewTable()
	table.Put(Score{Symbol: "BTC/USDT", Value: 60})
	table.Put(Score{Symbol: "ETH/USDT", Value: 71})
	table.Put(Score{Symbol: "SOL/USDT", Value: 45})

	top := table.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, "ETH/USDT", top[0].Symbol)
	assert.Equal(t, "BTC/USDT", top[1].Symbol)

	// Asking for more than exists returns everything, still ranked.
	all := table.Top(10)
	require.Len(t, all, 3)
	assert.Equal(t, "SOL/USDT", all[2].Symbol)
}

func TestTable_TopTieBreaksBySymbol(t *testing.T) {
	table := NewTable()
	table.Put(Score{Symbol: "ETH/USDT", Value: 60})
	table.Put(Score{Symbol: "ADA/USDT", Value: 60})
	table.Put(Score{Symbol: "BTC/USDT", Value: 60})

	top := table.Top(3)
	require.Len(t, top, 3)
	assert.Equal(t, "ADA/USDT", top[0].Symbol)
	assert.Equal(t, "BTC/USDT", top[1].Symbol)
	assert.Equal(t, "ETH/USDT", top[2].Symbol)
}

func TestTable_Best(t *testing.T) {
	table := NewTable()

	_, ok := table.Best()
	assert.False(t, ok)

	table.Put(Score{Symbol: "BTC/USDT", Value: 55})
	table.Put(Score{Symbol: "ETH/USDT", Value: 68})

	best, ok := table.Best()
	require.True(t, ok)
	assert.Equal(t, "ETH/USDT", best.Symbol)
}

func TestTable_AllIsACopy(t *testing.T) {
	table := NewTable()
	table.Put(Score{Symbol: "BTC/USDT", Value: 55})

	all := table.All()
	all["BTC/USDT"] = Score{Symbol: "BTC/USDT", Value: 1}

	got, _ := table.Get("BTC/USDT")
	assert.Equal(t, 55, got.Value)
}

func TestTable_ConcurrentAccess(t *testing.T) {
	table := NewTable()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				table.Put(Score{Symbol: fmt.Sprintf("C%d/USDT", n), Value: j % 101})
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				table.Top(3)
				table.Best()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, table.All(), 8)
}
