package formulas

import (
	"github.com/markcheno/go-talib"
)

// Sma returns the latest simple moving average of a series, or nil if the
// series is shorter than the window.
func Sma(values []float64, window int) *float64 {
	if window < 1 || len(values) < window {
		return nil
	}

	out := talib.Sma(values, window)
	if len(out) > 0 && !isNaN(out[len(out)-1]) {
		result := out[len(out)-1]
		return &result
	}
	return nil
}

// Ema returns the latest exponential moving average of a series, or nil if
// the series is shorter than the window.
func Ema(values []float64, window int) *float64 {
	if window < 1 || len(values) < window {
		return nil
	}

	out := talib.Ema(values, window)
	if len(out) > 0 && !isNaN(out[len(out)-1]) {
		result := out[len(out)-1]
		return &result
	}
	return nil
}

// isNaN checks if a float64 is NaN
func isNaN(f float64) bool {
	return f != f
}
