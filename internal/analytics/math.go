package analytics

import (
	"math"
	"strconv"
)

// safeDiv returns 0 when the denominator is zero.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }

// percent1 formats a ratio as a percentage string with one decimal.
func percent1(num, den int) string {
	return strconv.FormatFloat(round1(safeDiv(float64(num), float64(den))*100), 'f', 1, 64)
}
