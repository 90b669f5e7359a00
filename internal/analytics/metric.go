package analytics

import (
	"math"
	"time"

	"github.com/stocklens/stocklens/internal/classify"
)

// DaysToSellNever is the serialisable sentinel emitted for products that never
// sell, instead of a computed infinity.
const DaysToSellNever = 999

const daysPerYear = 365.0

// ComputeProductMetric derives the full metric record for one product from
// its snapshot and period sales activity. Every numeric input maps to a
// defined output; the division-by-zero guards below are contract, not errors.
func ComputeProductMetric(snap ProductSnapshot, activity SalesActivity, th Thresholds, periodDays int, now time.Time) ProductMetric {
	if periodDays < 1 {
		periodDays = 1
	}
	periodYears := float64(periodDays) / daysPerYear

	var turnoverRate float64
	if snap.CurrentStock > 0 {
		turnoverRate = (activity.UnitsSold / periodYears) / snap.CurrentStock
	}

	daysToSell := float64(DaysToSellNever)
	if turnoverRate > 0 {
		daysToSell = daysPerYear / turnoverRate
	}

	anchor := activity.LastSold
	if anchor.IsZero() {
		anchor = snap.CreatedAt
	}
	daysInStock := int(math.Ceil(now.Sub(anchor).Hours() / 24))
	if daysInStock < 0 {
		daysInStock = 0
	}

	stockValue := snap.CurrentStock * snap.UnitCost
	var potentialLoss float64
	switch {
	case daysInStock > 365:
		potentialLoss = stockValue * 0.5
	case daysInStock > 180:
		potentialLoss = stockValue * 0.2
	}

	return ProductMetric{
		ProductID:     snap.ProductID,
		SKU:           snap.SKU,
		Name:          snap.Name,
		CategoryID:    snap.CategoryID,
		CategoryName:  snap.CategoryName,
		SupplierID:    snap.SupplierID,
		SupplierName:  snap.SupplierName,
		CurrentStock:  snap.CurrentStock,
		StockStatus:   classify.Stock(snap.CurrentStock, snap.ReorderPoint),
		Turnover:      classify.Turnover(turnoverRate, th.FastTurnover, th.SlowTurnover),
		AgeCategory:   classify.Aging(daysInStock, th.AgingDays, th.OldDays, th.VeryOldDays),
		TurnoverRate:  turnoverRate,
		DaysToSell:    daysToSell,
		DaysInStock:   daysInStock,
		StockValue:    stockValue,
		PotentialLoss: potentialLoss,
	}
}

// ComputeMetrics runs ComputeProductMetric over an ordered snapshot list,
// joining each snapshot with its activity by product id.
func ComputeMetrics(snaps []ProductSnapshot, activity map[int64]SalesActivity, th Thresholds, periodDays int, now time.Time) []ProductMetric {
	metrics := make([]ProductMetric, 0, len(snaps))
	for _, snap := range snaps {
		metrics = append(metrics, ComputeProductMetric(snap, activity[snap.ProductID], th, periodDays, now))
	}
	return metrics
}
