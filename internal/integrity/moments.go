package integrity

import (
	"math"

	"github.com/montanaflynn/stats"
)

// mean returns NaN for empty input instead of an error; the interval checks
// treat NaN as not computable
func mean(data []float64) float64 {
	m, err := stats.Mean(data)
	if err != nil {
		return math.NaN()
	}
	return m
}

// stdPop is the population standard deviation
func stdPop(data []float64) float64 {
	sd, err := stats.StandardDeviation(data)
	if err != nil {
		return math.NaN()
	}
	return sd
}

// skewness is the third standardized moment without bias correction.
// A zero standard deviation degenerates to NaN.
func skewness(data []float64, mean, std float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range data {
		d := (x - mean) / std
		sum += d * d * d
	}
	return sum / float64(len(data))
}

// kurtosis is the fourth standardized moment without bias correction,
// so a normal distribution scores 3 rather than 0
func kurtosis(data []float64, mean, std float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, x := range data {
		d := (x - mean) / std
		sum += d * d * d * d
	}
	return sum / float64(len(data))
}
