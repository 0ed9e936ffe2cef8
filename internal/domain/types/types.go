// Package types contains common types used across the application
package types

// Trend is the period-over-period direction of a scalar metric.
type Trend string

// Trend values.
const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Metric names the aggregate a leaderboard is ordered by.
type Metric string

// Supported leaderboard metrics.
const (
	MetricPoints Metric = "points"
	MetricProfit Metric = "profit"
	MetricQty    Metric = "qty"
)

// Valid reports whether m is a known leaderboard metric.
func (m Metric) Valid() bool {
	switch m {
	case MetricPoints, MetricProfit, MetricQty:
		return true
	}
	return false
}
