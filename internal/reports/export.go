package reports

import (
	"fmt"

	"github.com/stocklens/stocklens/internal/analytics"
)

// ExportMetricRows formats product metrics into CSV-ready strings.
func ExportMetricRows(metrics []analytics.ProductMetric) [][]string {
	out := make([][]string, 0, len(metrics)+1)
	header := []string{"Rank", "SKU", "Name", "Stock", "Status", "Turnover", "Rate", "Days To Sell", "Days In Stock", "Stock Value", "Potential Loss"}
	out = append(out, header)
	for _, m := range metrics {
		out = append(out, []string{
			fmt.Sprintf("%d", m.Rank),
			m.SKU,
			m.Name,
			fmt.Sprintf("%.2f", m.CurrentStock),
			string(m.StockStatus),
			string(m.Turnover),
			fmt.Sprintf("%.2f", m.TurnoverRate),
			fmt.Sprintf("%.1f", m.DaysToSell),
			fmt.Sprintf("%d", m.DaysInStock),
			fmt.Sprintf("%.2f", m.StockValue),
			fmt.Sprintf("%.2f", m.PotentialLoss),
		})
	}
	return out
}
