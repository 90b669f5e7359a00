// Package insights turns a completed period summary into human-readable
// findings and diffs summaries across periods.
package insights

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stocklens/stocklens/internal/analytics"
)

// Insight severities.
const (
	TypeWarning     = "warning"
	TypeAlert       = "alert"
	TypeOpportunity = "opportunity"
)

// Insight categories, matching report types.
const (
	CategoryStockLevels = "stock_levels"
	CategoryTurnover    = "turnover_rates"
	CategoryAging       = "aging_analysis"
	CategoryOverall     = "overall"
)

// Insight is a rule-derived finding surfaced to end users.
type Insight struct {
	Type             string   `json:"type"`
	Category         string   `json:"category"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Impact           string   `json:"impact"`
	Actionable       bool     `json:"actionable"`
	SuggestedActions []string `json:"suggested_actions"`
}

var printer = message.NewPrinter(language.English)

// Generate evaluates the fixed rule list against a summary. Rules fire
// independently, in fixed order: stock levels first, then turnover, then
// aging, then overall. An all-zero summary yields an empty list.
func Generate(s analytics.PeriodSummary) []Insight {
	var out []Insight

	if s.LowStockProducts > 0 {
		out = append(out, Insight{
			Type:        TypeWarning,
			Category:    CategoryStockLevels,
			Title:       "Low Stock Alert",
			Description: printer.Sprintf("%d product(s) are at or below their reorder point.", s.LowStockProducts),
			Impact:      "high",
			Actionable:  true,
			SuggestedActions: []string{
				"Review reorder points for the affected products",
				"Raise purchase orders with the linked suppliers",
			},
		})
	}
	if s.OutOfStockProducts > 0 {
		out = append(out, Insight{
			Type:        TypeAlert,
			Category:    CategoryStockLevels,
			Title:       "Out of Stock Alert",
			Description: printer.Sprintf("%d product(s) are completely out of stock.", s.OutOfStockProducts),
			Impact:      "critical",
			Actionable:  true,
			SuggestedActions: []string{
				"Expedite replenishment for out-of-stock products",
				"Check open purchase orders for delivery delays",
			},
		})
	}
	if s.OverstockedProducts > 0 {
		out = append(out, Insight{
			Type:        TypeWarning,
			Category:    CategoryStockLevels,
			Title:       "Overstock Warning",
			Description: printer.Sprintf("%d product(s) hold more than three times their reorder point.", s.OverstockedProducts),
			Impact:      "medium",
			Actionable:  true,
			SuggestedActions: []string{
				"Pause replenishment for overstocked products",
				"Consider promotions to reduce excess stock",
			},
		})
	}

	if s.DeadStockProducts > 0 {
		out = append(out, Insight{
			Type:        TypeAlert,
			Category:    CategoryTurnover,
			Title:       "Dead Stock Detected",
			Description: printer.Sprintf("%d product(s) recorded no sales in the period.", s.DeadStockProducts),
			Impact:      "high",
			Actionable:  true,
			SuggestedActions: []string{
				"Evaluate discontinuation or liquidation for dead stock",
				"Verify the products are still listed on active sales channels",
			},
		})
	}
	if s.SlowMovingProducts > 0 {
		out = append(out, Insight{
			Type:        TypeWarning,
			Category:    CategoryTurnover,
			Title:       "Slow Moving Stock",
			Description: printer.Sprintf("%d product(s) are turning over below the slow threshold.", s.SlowMovingProducts),
			Impact:      "medium",
			Actionable:  true,
			SuggestedActions: []string{
				"Review pricing for slow movers",
				"Reduce future order quantities",
			},
		})
	}
	if s.FastMovingProducts > 0 {
		out = append(out, Insight{
			Type:        TypeOpportunity,
			Category:    CategoryTurnover,
			Title:       "Fast Movers",
			Description: printer.Sprintf("%d product(s) are selling above the fast turnover threshold.", s.FastMovingProducts),
			Impact:      "positive",
			Actionable:  true,
			SuggestedActions: []string{
				"Increase safety stock for fast movers",
				"Negotiate volume pricing with suppliers",
			},
		})
	}

	if s.VeryOldProducts > 0 || s.OldProducts > 0 {
		out = append(out, Insight{
			Type:        TypeAlert,
			Category:    CategoryAging,
			Title:       "Aging Inventory Risk",
			Description: printer.Sprintf("%d product(s) are old and %d very old; estimated markdown exposure is %.2f.", s.OldProducts, s.VeryOldProducts, s.TotalPotentialLoss),
			Impact:      "high",
			Actionable:  true,
			SuggestedActions: []string{
				"Plan markdowns for very old stock",
				"Audit storage for obsolete items",
			},
		})
	}

	if s.TotalPotentialLoss > 0 {
		out = append(out, Insight{
			Type:        TypeWarning,
			Category:    CategoryOverall,
			Title:       "Potential Write-Down Exposure",
			Description: printer.Sprintf("Total markdown exposure across the portfolio is %.2f against stock value %.2f.", s.TotalPotentialLoss, s.TotalStockValue),
			Impact:      "medium",
			Actionable:  false,
			SuggestedActions: []string{
				"Track exposure trend across the next reporting periods",
			},
		})
	}

	return out
}
