package indicators

import (
	"fmt"
	"math"
)

// LossEpsilon replaces a zero average loss in the RSI denominator so a
// loss-free window saturates near 100 instead of dividing by zero.
const LossEpsilon = 1e-9

// RSI computes the Relative Strength Index across the supplied prices. Gains
// and losses are averaged with a simple rolling mean of period differences,
// so the first defined value sits at index period.
func RSI(prices Series, period int) ([]float64, error) {
	n := len(prices)
	if period <= 0 || period >= n {
		return nil, fmt.Errorf("%w: rsi period %d over %d samples", ErrInvalidWindow, period, n)
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := prices[i] - prices[i-1]
		gains[i] = math.Max(change, 0)
		losses[i] = math.Max(-change, 0)
	}

	avgGain := rollingMean(gains, period, 1)
	avgLoss := rollingMean(losses, period, 1)

	rsi := undefined(n)
	for i := period; i < n; i++ {
		rsi[i] = computeRSI(avgGain[i], avgLoss[i])
	}
	return rsi, nil
}

func computeRSI(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		avgLoss = LossEpsilon
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}
