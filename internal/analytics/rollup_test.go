package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stocklens/stocklens/internal/classify"
	"github.com/stocklens/stocklens/internal/shared"
)

func testMetrics() []ProductMetric {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	snaps := []ProductSnapshot{
		{ProductID: 1, CategoryID: 10, CategoryName: "Tools", SupplierID: 100, SupplierName: "Acme", CurrentStock: 0, ReorderPoint: 10, UnitCost: 5, CreatedAt: now.AddDate(0, 0, -30)},
		{ProductID: 2, CategoryID: 10, CategoryName: "Tools", SupplierID: 101, SupplierName: "Bolt", CurrentStock: 4, ReorderPoint: 10, UnitCost: 2, CreatedAt: now.AddDate(0, 0, -60)},
		{ProductID: 3, CategoryID: 11, CategoryName: "Paint", SupplierID: 100, SupplierName: "Acme", CurrentStock: 50, ReorderPoint: 10, UnitCost: 9, CreatedAt: now.AddDate(-2, 0, 0)},
	}
	activity := map[int64]SalesActivity{
		2: {ProductID: 2, UnitsSold: 30, LastSold: now.AddDate(0, 0, -2)},
		3: {ProductID: 3, UnitsSold: 1, LastSold: now.AddDate(0, 0, -400)},
	}
	return ComputeMetrics(snaps, activity, DefaultThresholds(), 30, now)
}

func TestRankMetricsContiguous(t *testing.T) {
	ranked := RankMetrics(testMetrics(), ByStockValueDesc)
	for i, m := range ranked {
		if m.Rank != i+1 {
			t.Fatalf("rank at %d = %d, want %d", i, m.Rank, i+1)
		}
	}
	if ranked[0].ProductID != 3 {
		t.Fatalf("expected highest stock value first, got product %d", ranked[0].ProductID)
	}
}

func TestRankMetricsStableTies(t *testing.T) {
	metrics := []ProductMetric{
		{ProductID: 1, StockValue: 10},
		{ProductID: 2, StockValue: 10},
		{ProductID: 3, StockValue: 10},
	}
	ranked := RankMetrics(metrics, ByStockValueDesc)
	for i, m := range ranked {
		if m.ProductID != int64(i+1) {
			t.Fatalf("tie order broken at %d: product %d", i, m.ProductID)
		}
	}
}

func TestBuildRollupsConsistency(t *testing.T) {
	metrics := testMetrics()
	for _, dim := range []Dimension{DimensionCategory, DimensionSupplier} {
		rollups := BuildRollups(metrics, dim, RollupByStockValueDesc)
		total := 0
		for _, roll := range rollups {
			total += roll.Count
		}
		if total != len(metrics) {
			t.Fatalf("dimension %d: rollup counts sum to %d, want %d", dim, total, len(metrics))
		}
		for i, roll := range rollups {
			if roll.Rank != i+1 {
				t.Fatalf("rollup rank at %d = %d", i, roll.Rank)
			}
		}
	}
}

func TestBuildRollupsHonorsOrdering(t *testing.T) {
	metrics := testMetrics()

	byValue := BuildRollups(metrics, DimensionCategory, RollupByStockValueDesc)
	if byValue[0].DimensionName != "Paint" {
		t.Fatalf("by value: expected Paint first, got %s", byValue[0].DimensionName)
	}

	// Tools holds two products against Paint's one, so ordering by count
	// inverts the ranking.
	byCount := BuildRollups(metrics, DimensionCategory, RollupByCountDesc)
	if byCount[0].DimensionName != "Tools" {
		t.Fatalf("by count: expected Tools first, got %s", byCount[0].DimensionName)
	}
	for i, roll := range byCount {
		if roll.Rank != i+1 {
			t.Fatalf("by count: rank at %d = %d", i, roll.Rank)
		}
	}
}

func TestFilterMetricsClassificationLists(t *testing.T) {
	metrics := testMetrics()

	out := FilterMetrics(metrics, SnapshotFilter{StockStatuses: []classify.StockStatus{classify.StockOutOfStock}})
	if len(out) != 1 || out[0].ProductID != 1 {
		t.Fatalf("stock status filter: got %+v", out)
	}

	out = FilterMetrics(metrics, SnapshotFilter{AgingCategories: []classify.AgingCategory{classify.AgingVeryOld}})
	if len(out) != 1 || out[0].ProductID != 3 {
		t.Fatalf("aging filter: got %+v", out)
	}

	// Lists combine conjunctively: product 3 is very old but not dead.
	out = FilterMetrics(metrics, SnapshotFilter{
		AgingCategories:    []classify.AgingCategory{classify.AgingVeryOld},
		TurnoverCategories: []classify.TurnoverCategory{classify.TurnoverDead},
	})
	if len(out) != 0 {
		t.Fatalf("conjunctive filter: got %+v", out)
	}

	if got := FilterMetrics(metrics, SnapshotFilter{}); len(got) != len(metrics) {
		t.Fatalf("empty filter dropped metrics: %d", len(got))
	}
}

func TestSnapshotFilterValidate(t *testing.T) {
	bad := SnapshotFilter{StockStatuses: []classify.StockStatus{"plentiful"}}
	if err := bad.Validate(); !errors.Is(err, shared.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	ok := SnapshotFilter{
		StockStatuses:      []classify.StockStatus{classify.StockLowStock},
		TurnoverCategories: []classify.TurnoverCategory{classify.TurnoverDead},
		AgingCategories:    []classify.AgingCategory{classify.AgingOld},
	}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid filter rejected: %v", err)
	}
}

func TestBuildSummaryMatchesPredicates(t *testing.T) {
	metrics := testMetrics()
	period := shared.Period{Start: time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), End: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)}
	summary := BuildSummary(metrics, period)

	if summary.TotalProducts != len(metrics) {
		t.Fatalf("total products = %d", summary.TotalProducts)
	}
	if summary.OutOfStockProducts != 1 {
		t.Fatalf("out of stock = %d, want 1", summary.OutOfStockProducts)
	}
	if summary.LowStockProducts != 1 {
		t.Fatalf("low stock = %d, want 1", summary.LowStockProducts)
	}
	if summary.OverstockedProducts != 1 {
		t.Fatalf("overstocked = %d, want 1", summary.OverstockedProducts)
	}
	if summary.VeryOldProducts != 1 {
		t.Fatalf("very old = %d, want 1", summary.VeryOldProducts)
	}
	var wantValue, wantLoss float64
	for _, m := range metrics {
		wantValue += m.StockValue
		wantLoss += m.PotentialLoss
	}
	if summary.TotalStockValue != wantValue {
		t.Fatalf("total stock value = %.2f, want %.2f", summary.TotalStockValue, wantValue)
	}
	if summary.TotalPotentialLoss != wantLoss {
		t.Fatalf("total potential loss = %.2f, want %.2f", summary.TotalPotentialLoss, wantLoss)
	}
}
