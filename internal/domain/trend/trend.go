// Package trend classifies period-over-period movement of a scalar metric.
package trend

import (
	"math"

	"github.com/okian/tally/internal/domain/types"
)

// Classify compares current against previous with exact equality.
// Callers round both values to the precision at which "stable" matters.
func Classify(current, previous float64) types.Trend {
	switch {
	case current > previous:
		return types.TrendUp
	case current < previous:
		return types.TrendDown
	default:
		return types.TrendStable
	}
}

// Round rounds x half away from zero to the given number of decimal places.
func Round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(x*scale) / scale
}

// ClassifyRounded rounds both values to places before classifying.
func ClassifyRounded(current, previous float64, places int) types.Trend {
	return Classify(Round(current, places), Round(previous, places))
}
