package indicator

import (
	"errors"
	"math"
)

// CalculateRSI computes the Wilder-smoothed RSI series for the given
// period. The first period-1 elements are NaN (warmup).
func CalculateRSI(prices []float64, period int) []float64 {
	if len(prices) <= period || period <= 0 {
		return nil
	}
	rsi := make([]float64, len(prices))
	for i := 0; i < period; i++ {
		rsi[i] = math.NaN()
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gain += change
		} else {
			loss += -change
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	if avgLoss == 0 {
		rsi[period] = 100
	} else {
		rs := avgGain / avgLoss
		rsi[period] = 100 - (100 / (1 + rs))
	}
	for i := period + 1; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gain = change
			loss = 0
		} else {
			gain = 0
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		if avgLoss == 0 {
			rsi[i] = 100
		} else {
			rs := avgGain / avgLoss
			rsi[i] = 100 - (100 / (1 + rs))
		}
	}
	return rsi
}

// CalculateLastRSI returns only the most recent RSI value. It needs at
// least period+1 prices (period deltas).
func CalculateLastRSI(prices []float64, period int) (float64, error) {
	rsi := CalculateRSI(prices, period)
	if rsi == nil {
		return 0, errors.New("not enough data for RSI")
	}
	return rsi[len(rsi)-1], nil
}
