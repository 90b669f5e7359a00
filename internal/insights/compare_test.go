package insights

import (
	"testing"

	"github.com/stocklens/stocklens/internal/analytics"
)

func TestCompareZeroPreviousSentinels(t *testing.T) {
	current := analytics.PeriodSummary{TotalStockValue: 500}
	previous := analytics.PeriodSummary{}
	cmp := Compare(current, previous)

	if cmp.TotalStockValue.Change != 500 {
		t.Fatalf("change = %.2f, want 500", cmp.TotalStockValue.Change)
	}
	if cmp.TotalStockValue.PercentageChange != 100 {
		t.Fatalf("percentage = %.2f, want sentinel 100", cmp.TotalStockValue.PercentageChange)
	}
	if cmp.LowStock.PercentageChange != 0 {
		t.Fatalf("zero-to-zero percentage = %.2f, want 0", cmp.LowStock.PercentageChange)
	}
}

func TestCompareRegularChange(t *testing.T) {
	current := analytics.PeriodSummary{TotalStockValue: 150, TotalProducts: 12, LowStockProducts: 3}
	previous := analytics.PeriodSummary{TotalStockValue: 100, TotalProducts: 10, LowStockProducts: 6}
	cmp := Compare(current, previous)

	if cmp.TotalStockValue.PercentageChange != 50 {
		t.Fatalf("stock value percentage = %.2f, want 50", cmp.TotalStockValue.PercentageChange)
	}
	if cmp.TotalProducts.PercentageChange != 20 {
		t.Fatalf("product count percentage = %.2f, want 20", cmp.TotalProducts.PercentageChange)
	}
	if cmp.LowStock.Change != -3 || cmp.LowStock.PercentageChange != -50 {
		t.Fatalf("low stock delta = %+v", cmp.LowStock)
	}
}
