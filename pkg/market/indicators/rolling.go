package indicators

import (
	"fmt"
	"math"
)

// Series is an ordered run of samples, oldest first. Index i lines up with
// the i-th candle the series was derived from.
type Series []float64

// Last returns the final element of values, or NaN when values is empty.
func Last(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return values[len(values)-1]
}

// SMA produces the simple moving average for the supplied prices. Positions
// before period-1 are NaN.
func SMA(prices Series, period int) ([]float64, error) {
	if err := checkWindow(len(prices), period); err != nil {
		return nil, err
	}
	return rollingMean(prices, period, 0), nil
}

// EMA produces the exponential moving average for the supplied prices using
// alpha = 2/(period+1), seeded with the first sample so every index is defined.
// The update is written as a step toward the price so a flat run holds exactly.
func EMA(prices Series, period int) ([]float64, error) {
	if err := checkWindow(len(prices), period); err != nil {
		return nil, err
	}
	alpha := 2.0 / float64(period+1)
	result := make([]float64, len(prices))
	result[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		result[i] = result[i-1] + alpha*(prices[i]-result[i-1])
	}
	return result, nil
}

// rollingMean averages values[i-window+1..i] over the samples from start
// onward. Everything before start+window-1 stays NaN. Each window is summed
// afresh, and a window of identical samples yields that sample exactly.
func rollingMean(values []float64, window, start int) []float64 {
	result := undefined(len(values))
	run := 0
	for i := start; i < len(values); i++ {
		if i > start && values[i] == values[i-1] {
			run++
		} else {
			run = 1
		}
		if i-start < window-1 {
			continue
		}
		if run >= window {
			result[i] = values[i]
			continue
		}
		result[i] = windowSum(values[i-window+1:i+1]) / float64(window)
	}
	return result
}

// windowSum is a compensated (Neumaier) sum.
func windowSum(values []float64) float64 {
	var sum, comp float64
	for _, v := range values {
		t := sum + v
		if math.Abs(sum) >= math.Abs(v) {
			comp += (sum - t) + v
		} else {
			comp += (v - t) + sum
		}
		sum = t
	}
	return sum + comp
}

func undefined(n int) []float64 {
	result := make([]float64, n)
	for i := range result {
		result[i] = math.NaN()
	}
	return result
}

func checkWindow(n, window int) error {
	if window <= 0 || window > n {
		return fmt.Errorf("%w: window %d over %d samples", ErrInvalidWindow, window, n)
	}
	return nil
}
