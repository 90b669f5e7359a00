package analytics

import (
	"github.com/stocklens/stocklens/internal/classify"
	"github.com/stocklens/stocklens/internal/shared"
)

// BuildSummary folds metrics into the single period aggregate. Every count
// equals the number of metrics satisfying the matching predicate, which keeps
// the summary consistent with the metric list by construction.
func BuildSummary(metrics []ProductMetric, period shared.Period) PeriodSummary {
	summary := PeriodSummary{
		PeriodStart:   period.Start,
		PeriodEnd:     period.End,
		TotalProducts: len(metrics),
	}
	for _, m := range metrics {
		summary.TotalStockValue += m.StockValue
		summary.AvgTurnoverRate += m.TurnoverRate
		summary.TotalPotentialLoss += m.PotentialLoss
		switch m.StockStatus {
		case classify.StockLowStock:
			summary.LowStockProducts++
		case classify.StockOutOfStock:
			summary.OutOfStockProducts++
		case classify.StockOverstocked:
			summary.OverstockedProducts++
		}
		switch m.Turnover {
		case classify.TurnoverFast:
			summary.FastMovingProducts++
		case classify.TurnoverSlow:
			summary.SlowMovingProducts++
		case classify.TurnoverDead:
			summary.DeadStockProducts++
		}
		switch m.AgeCategory {
		case classify.AgingAging:
			summary.AgingProducts++
		case classify.AgingOld:
			summary.OldProducts++
		case classify.AgingVeryOld:
			summary.VeryOldProducts++
		}
	}
	if summary.TotalProducts > 0 {
		summary.AvgTurnoverRate /= float64(summary.TotalProducts)
	}
	return summary
}
