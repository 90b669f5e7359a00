// Package analytics computes per-product inventory metrics and their rollups.
// The computation stages are pure: all I/O happens in the Repository before a
// pipeline run starts, and every derived value is a deterministic function of
// the inputs and the supplied clock.
package analytics

import (
	"time"

	"github.com/stocklens/stocklens/internal/classify"
	"github.com/stocklens/stocklens/internal/shared"
)

// ProductSnapshot is the immutable point-in-time view of a product supplied by
// the data source for one evaluation.
type ProductSnapshot struct {
	ProductID    int64
	SKU          string
	Name         string
	CategoryID   int64
	CategoryName string
	SupplierID   int64
	SupplierName string
	CurrentStock float64
	MinQuantity  float64
	MaxQuantity  float64
	ReorderPoint float64
	UnitCost     float64
	CreatedAt    time.Time
}

// SalesActivity aggregates a product's sales inside the queried period.
type SalesActivity struct {
	ProductID int64
	UnitsSold float64
	LastSold  time.Time
}

// ProductMetric is the derived record for one product in one report. It is
// created fresh per evaluation and never mutated afterwards.
type ProductMetric struct {
	ProductID     int64                     `json:"product_id"`
	SKU           string                    `json:"sku"`
	Name          string                    `json:"name"`
	CategoryID    int64                     `json:"category_id"`
	CategoryName  string                    `json:"category_name"`
	SupplierID    int64                     `json:"supplier_id"`
	SupplierName  string                    `json:"supplier_name"`
	CurrentStock  float64                   `json:"current_stock"`
	StockStatus   classify.StockStatus      `json:"stock_status"`
	Turnover      classify.TurnoverCategory `json:"turnover_category"`
	AgeCategory   classify.AgingCategory    `json:"aging_category"`
	TurnoverRate  float64                   `json:"turnover_rate"`
	DaysToSell    float64                   `json:"days_to_sell"`
	DaysInStock   int                       `json:"days_in_stock"`
	StockValue    float64                   `json:"stock_value"`
	PotentialLoss float64                   `json:"potential_loss"`
	Rank          int                       `json:"rank"`
}

// Rollup aggregates product metrics sharing a dimension key (category or
// supplier).
type Rollup struct {
	DimensionID   int64   `json:"dimension_id"`
	DimensionName string  `json:"dimension_name"`
	Count         int     `json:"count"`
	StockValue    float64 `json:"stock_value"`
	AvgTurnover   float64 `json:"avg_turnover_rate"`
	LowStock      int     `json:"low_stock"`
	OutOfStock    int     `json:"out_of_stock"`
	Overstocked   int     `json:"overstocked"`
	FastMoving    int     `json:"fast_moving"`
	SlowMoving    int     `json:"slow_moving"`
	DeadStock     int     `json:"dead_stock"`
	Aging         int     `json:"aging"`
	Old           int     `json:"old"`
	VeryOld       int     `json:"very_old"`
	Rank          int     `json:"rank"`
}

// PeriodSummary is the single aggregate record for one report period. It is
// the unit diffed by the comparison engine.
type PeriodSummary struct {
	PeriodStart         time.Time `json:"period_start"`
	PeriodEnd           time.Time `json:"period_end"`
	TotalProducts       int       `json:"total_products"`
	TotalStockValue     float64   `json:"total_stock_value"`
	AvgTurnoverRate     float64   `json:"avg_turnover_rate"`
	LowStockProducts    int       `json:"low_stock_products"`
	OutOfStockProducts  int       `json:"out_of_stock_products"`
	OverstockedProducts int       `json:"overstocked_products"`
	FastMovingProducts  int       `json:"fast_moving_products"`
	SlowMovingProducts  int       `json:"slow_moving_products"`
	DeadStockProducts   int       `json:"dead_stock_products"`
	AgingProducts       int       `json:"aging_products"`
	OldProducts         int       `json:"old_products"`
	VeryOldProducts     int       `json:"very_old_products"`
	TotalPotentialLoss  float64   `json:"total_potential_loss"`
}

// SnapshotFilter scopes which products enter an evaluation. The id lists
// narrow the snapshot fetch; the classification lists are post-classification
// predicates applied to computed metrics before ranking, rollups, and the
// summary.
type SnapshotFilter struct {
	CategoryIDs        []int64
	SupplierIDs        []int64
	StockStatuses      []classify.StockStatus
	TurnoverCategories []classify.TurnoverCategory
	AgingCategories    []classify.AgingCategory
}

// Validate rejects unknown classification values before any computation.
func (f SnapshotFilter) Validate() error {
	for _, status := range f.StockStatuses {
		if !status.Valid() {
			return shared.InvalidConfigf("unknown stock status %q", status)
		}
	}
	for _, cat := range f.TurnoverCategories {
		if !cat.Valid() {
			return shared.InvalidConfigf("unknown turnover category %q", cat)
		}
	}
	for _, cat := range f.AgingCategories {
		if !cat.Valid() {
			return shared.InvalidConfigf("unknown aging category %q", cat)
		}
	}
	return nil
}

// Match reports whether a metric passes every populated classification list.
// An empty list never excludes.
func (f SnapshotFilter) Match(m ProductMetric) bool {
	if len(f.StockStatuses) > 0 && !containsStockStatus(f.StockStatuses, m.StockStatus) {
		return false
	}
	if len(f.TurnoverCategories) > 0 && !containsTurnover(f.TurnoverCategories, m.Turnover) {
		return false
	}
	if len(f.AgingCategories) > 0 && !containsAging(f.AgingCategories, m.AgeCategory) {
		return false
	}
	return true
}

// FilterMetrics keeps only the metrics passing the filter's classification
// lists. Ranks are assigned after filtering, never before.
func FilterMetrics(metrics []ProductMetric, f SnapshotFilter) []ProductMetric {
	if len(f.StockStatuses) == 0 && len(f.TurnoverCategories) == 0 && len(f.AgingCategories) == 0 {
		return metrics
	}
	out := make([]ProductMetric, 0, len(metrics))
	for _, m := range metrics {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

func containsStockStatus(list []classify.StockStatus, v classify.StockStatus) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsTurnover(list []classify.TurnoverCategory, v classify.TurnoverCategory) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func containsAging(list []classify.AgingCategory, v classify.AgingCategory) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Evaluation is the complete in-memory output of one pipeline run.
type Evaluation struct {
	Metrics         []ProductMetric `json:"metrics"`
	CategoryRollups []Rollup        `json:"category_rollups"`
	SupplierRollups []Rollup        `json:"supplier_rollups"`
	Summary         PeriodSummary   `json:"summary"`
}
