package analytics

import (
	"fmt"
	"sort"

	"github.com/stocklens/stocklens/internal/classify"
)

// Dimension selects the grouping key for rollups.
type Dimension int

const (
	// DimensionCategory groups metrics by category.
	DimensionCategory Dimension = iota
	// DimensionSupplier groups metrics by supplier.
	DimensionSupplier
)

// RankMetrics stable-sorts metrics with the supplied ordering and assigns
// contiguous 1-based ranks. Ties keep insertion order.
func RankMetrics(metrics []ProductMetric, less func(a, b ProductMetric) bool) []ProductMetric {
	ranked := make([]ProductMetric, len(metrics))
	copy(ranked, metrics)
	sort.SliceStable(ranked, func(i, j int) bool { return less(ranked[i], ranked[j]) })
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	assertContiguousRanks(len(ranked), func(i int) int { return ranked[i].Rank })
	return ranked
}

// ByStockValueDesc orders metrics by descending stock value.
func ByStockValueDesc(a, b ProductMetric) bool { return a.StockValue > b.StockValue }

// ByTurnoverDesc orders metrics by descending turnover rate.
func ByTurnoverDesc(a, b ProductMetric) bool { return a.TurnoverRate > b.TurnoverRate }

// ByDaysInStockDesc orders metrics by descending days in stock.
func ByDaysInStockDesc(a, b ProductMetric) bool { return a.DaysInStock > b.DaysInStock }

// RollupByStockValueDesc orders rollups by descending stock value.
func RollupByStockValueDesc(a, b Rollup) bool { return a.StockValue > b.StockValue }

// RollupByCountDesc orders rollups by descending product count.
func RollupByCountDesc(a, b Rollup) bool { return a.Count > b.Count }

// BuildRollups aggregates metrics along a dimension. Each product contributes
// to exactly one group; rollups are ranked with the supplied ordering, ties
// keeping first-seen order.
func BuildRollups(metrics []ProductMetric, dim Dimension, less func(a, b Rollup) bool) []Rollup {
	groups := make(map[int64]*Rollup)
	order := make([]int64, 0)
	for _, m := range metrics {
		id, name := m.CategoryID, m.CategoryName
		if dim == DimensionSupplier {
			id, name = m.SupplierID, m.SupplierName
		}
		group, ok := groups[id]
		if !ok {
			group = &Rollup{DimensionID: id, DimensionName: name}
			groups[id] = group
			order = append(order, id)
		}
		group.Count++
		group.StockValue += m.StockValue
		group.AvgTurnover += m.TurnoverRate
		switch m.StockStatus {
		case classify.StockLowStock:
			group.LowStock++
		case classify.StockOutOfStock:
			group.OutOfStock++
		case classify.StockOverstocked:
			group.Overstocked++
		}
		switch m.Turnover {
		case classify.TurnoverFast:
			group.FastMoving++
		case classify.TurnoverSlow:
			group.SlowMoving++
		case classify.TurnoverDead:
			group.DeadStock++
		}
		switch m.AgeCategory {
		case classify.AgingAging:
			group.Aging++
		case classify.AgingOld:
			group.Old++
		case classify.AgingVeryOld:
			group.VeryOld++
		}
	}

	rollups := make([]Rollup, 0, len(order))
	for _, id := range order {
		group := groups[id]
		if group.Count > 0 {
			group.AvgTurnover /= float64(group.Count)
		}
		rollups = append(rollups, *group)
	}
	sort.SliceStable(rollups, func(i, j int) bool { return less(rollups[i], rollups[j]) })
	for i := range rollups {
		rollups[i].Rank = i + 1
	}
	assertContiguousRanks(len(rollups), func(i int) int { return rollups[i].Rank })
	return rollups
}

// assertContiguousRanks panics when a rank list is not exactly 1..N. A breach
// is a programming defect, not a recoverable condition.
func assertContiguousRanks(n int, rank func(i int) int) {
	for i := 0; i < n; i++ {
		if rank(i) != i+1 {
			panic(fmt.Sprintf("analytics: rank list broken at index %d: got %d want %d", i, rank(i), i+1))
		}
	}
}
