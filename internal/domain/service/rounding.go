package service

import "math"

// round3 rounds to 3 decimal places, the reporting precision for
// scores, volumes and percentages.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// round6 rounds to 6 decimal places, used for native balances where
// 3 decimals would erase dust-level holdings.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// clamp01 clamps a normalized value into [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// safeDiv returns a/b, or 0 when the denominator is 0.
func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
