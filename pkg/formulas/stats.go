package formulas

import (
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// ZScore measures how many standard deviations a value sits from the mean of
// its series. Returns 0 for a degenerate (constant or empty) series.
func ZScore(value float64, data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	sd := stat.StdDev(data, nil)
	if sd == 0 {
		return 0
	}
	return (value - stat.Mean(data, nil)) / sd
}
