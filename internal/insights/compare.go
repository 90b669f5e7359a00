package insights

import "github.com/stocklens/stocklens/internal/analytics"

// MetricDelta describes one tracked metric across two periods.
type MetricDelta struct {
	Current          float64 `json:"current"`
	Previous         float64 `json:"previous"`
	Change           float64 `json:"change"`
	PercentageChange float64 `json:"percentage_change"`
}

// Comparison is the full diff between two period summaries.
type Comparison struct {
	TotalStockValue MetricDelta `json:"total_stock_value"`
	AvgTurnoverRate MetricDelta `json:"avg_turnover_rate"`
	LowStock        MetricDelta `json:"low_stock_products"`
	OutOfStock      MetricDelta `json:"out_of_stock_products"`
	TotalProducts   MetricDelta `json:"total_products"`
}

// Compare diffs the current summary against the previous one. The caller
// resolves what "previous" means.
func Compare(current, previous analytics.PeriodSummary) Comparison {
	return Comparison{
		TotalStockValue: delta(current.TotalStockValue, previous.TotalStockValue),
		AvgTurnoverRate: delta(current.AvgTurnoverRate, previous.AvgTurnoverRate),
		LowStock:        delta(float64(current.LowStockProducts), float64(previous.LowStockProducts)),
		OutOfStock:      delta(float64(current.OutOfStockProducts), float64(previous.OutOfStockProducts)),
		TotalProducts:   delta(float64(current.TotalProducts), float64(previous.TotalProducts)),
	}
}

// delta applies the zero-previous sentinel rule: 0 -> 0 yields 0%, 0 -> x
// yields 100%, never NaN or Inf.
func delta(current, previous float64) MetricDelta {
	d := MetricDelta{Current: current, Previous: previous, Change: current - previous}
	switch {
	case previous == 0 && current == 0:
		d.PercentageChange = 0
	case previous == 0:
		d.PercentageChange = 100
	default:
		d.PercentageChange = d.Change / previous * 100
	}
	return d
}
