package scorer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"traider/internal/indicator"
)

func undefinedSnapshot() indicator.Snapshot {
	return indicator.Snapshot{
		RSI:     math.NaN(),
		ShortMA: math.NaN(),
		LongMA:  math.NaN(),
	}
}

func TestEvaluate_NeutralBase(t *testing.T) {
	s := New(DefaultParams())
	score := s.Evaluate("BTC/USDT", undefinedSnapshot())

	assert.Equal(t, 50, score.Value)
	assert.Equal(t, Hold, score.Signal)
	assert.Equal(t, "BTC/USDT", score.Symbol)
}

func TestEvaluate_Adjustments(t *testing.T) {
	tests := []struct {
		name string
		ind  indicator.Snapshot
		want int
	}{
		{
			name: "oversold RSI adds up to twenty",
			ind: indicator.Snapshot{
				RSI: 0, ShortMA: math.NaN(), LongMA: math.NaN(),
			},
			want: 70,
		},
		{
			name: "mildly oversold adds proportionally",
			ind: indicator.Snapshot{
				RSI: 30, ShortMA: math.NaN(), LongMA: math.NaN(),
			},
			want: 52, // 50 + (35-30)/35*20 = 52.857, truncated
		},
		{
			name: "overbought RSI subtracts up to twenty",
			ind: indicator.Snapshot{
				RSI: 100, ShortMA: math.NaN(), LongMA: math.NaN(),
			},
			want: 30,
		},
		{
			name: "uptrend adds ten",
			ind: indicator.Snapshot{
				RSI: math.NaN(), ShortMA: 11, LongMA: 10,
			},
			want: 60,
		},
		{
			name: "downtrend subtracts ten",
			ind: indicator.Snapshot{
				RSI: math.NaN(), ShortMA: 10, LongMA: 11,
			},
			want: 40,
		},
		{
			name: "volume spike adds five",
			ind: indicator.Snapshot{
				RSI: math.NaN(), ShortMA: math.NaN(), LongMA: math.NaN(),
				VolumeSpike: true,
			},
			want: 55,
		},
		{
			name: "price change contribution is clamped to ten",
			ind: indicator.Snapshot{
				RSI: math.NaN(), ShortMA: math.NaN(), LongMA: math.NaN(),
				PriceChangePct: 50,
			},
			want: 60,
		},
		{
			name: "negative price change is clamped too",
			ind: indicator.Snapshot{
				RSI: math.NaN(), ShortMA: math.NaN(), LongMA: math.NaN(),
				PriceChangePct: -50,
			},
			want: 40,
		},
		{
			name: "everything bullish",
			ind: indicator.Snapshot{
				RSI: 0, ShortMA: 11, LongMA: 10,
				PriceChangePct: 50, VolumeSpike: true,
			},
			want: 95, // 50 + 10 + 20 + 10 + 5
		},
		{
			name: "everything bearish",
			ind: indicator.Snapshot{
				RSI: 100, ShortMA: 10, LongMA: 11,
				PriceChangePct: -50,
			},
			want: 10, // 50 - 10 - 20 - 10
		},
	}

	s := New(DefaultParams())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Evaluate("X/USDT", tt.ind).Value)
		})
	}
}

func TestEvaluate_ClampLaw(t *testing.T) {
	// Inflated contributions must still land inside [0, 100].
	params := DefaultParams()
	params.RSILimit = 80
	params.PriceChangeLimit = 60
	s := New(params)

	high := s.Evaluate("X/USDT", indicator.Snapshot{
		RSI: 0, ShortMA: 11, LongMA: 10, PriceChangePct: 100, VolumeSpike: true,
	})
	assert.Equal(t, 100, high.Value)

	low := s.Evaluate("X/USDT", indicator.Snapshot{
		RSI: 100, ShortMA: 10, LongMA: 11, PriceChangePct: -100,
	})
	assert.Equal(t, 0, low.Value)
}

func TestSignal_Rules(t *testing.T) {
	tests := []struct {
		name string
		ind  indicator.Snapshot
		want Signal
	}{
		{
			name: "oversold buys",
			ind:  indicator.Snapshot{RSI: 30, ShortMA: math.NaN(), LongMA: math.NaN()},
			want: Buy,
		},
		{
			name: "uptrend with moderate RSI buys",
			ind:  indicator.Snapshot{RSI: 50, ShortMA: 11, LongMA: 10},
			want: Buy,
		},
		{
			name: "uptrend with overbought RSI sells",
			ind:  indicator.Snapshot{RSI: 70, ShortMA: 11, LongMA: 10},
			want: Sell,
		},
		{
			name: "overbought sells",
			ind:  indicator.Snapshot{RSI: 70, ShortMA: math.NaN(), LongMA: math.NaN()},
			want: Sell,
		},
		{
			name: "downtrend with moderate RSI sells",
			ind:  indicator.Snapshot{RSI: 50, ShortMA: 10, LongMA: 11},
			want: Sell,
		},
		{
			name: "downtrend with oversold RSI buys",
			ind:  indicator.Snapshot{RSI: 30, ShortMA: 10, LongMA: 11},
			want: Buy,
		},
		{
			name: "neutral holds",
			ind:  indicator.Snapshot{RSI: 50, ShortMA: 10, LongMA: 10},
			want: Hold,
		},
		{
			name: "undefined RSI holds even in uptrend",
			ind:  indicator.Snapshot{RSI: math.NaN(), ShortMA: 11, LongMA: 10},
			want: Hold,
		},
		{
			name: "undefined RSI holds even in downtrend",
			ind:  indicator.Snapshot{RSI: math.NaN(), ShortMA: 10, LongMA: 11},
			want: Hold,
		},
		{
			name: "everything undefined holds",
			ind:  undefinedSnapshot(),
			want: Hold,
		},
	}

	s := New(DefaultParams())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Evaluate("X/USDT", tt.ind).Signal)
		})
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	s := New(DefaultParams())
	ind := indicator.Snapshot{RSI: 28, ShortMA: 10.5, LongMA: 10, PriceChangePct: 1.2, VolumeSpike: true}

	first := s.Evaluate("X/USDT", ind)
	second := s.Evaluate("X/USDT", ind)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, first.Signal, second.Signal)
}
