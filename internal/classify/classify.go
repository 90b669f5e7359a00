// Package classify holds the pure classification rules that turn raw stock
// numbers into categorical labels. It has no dependencies and no state so the
// same inputs always yield the same label.
package classify

// StockStatus labels current stock relative to the reorder point.
type StockStatus string

const (
	// StockInStock means stock sits between the reorder point and the overstock ceiling.
	StockInStock StockStatus = "in_stock"
	// StockLowStock means stock is positive but at or under the reorder point.
	StockLowStock StockStatus = "low_stock"
	// StockOutOfStock means nothing is on hand.
	StockOutOfStock StockStatus = "out_of_stock"
	// StockOverstocked means stock exceeds the overstock ceiling.
	StockOverstocked StockStatus = "overstocked"
)

// TurnoverCategory labels annualised sales velocity.
type TurnoverCategory string

const (
	// TurnoverFast indicates velocity at or above the fast threshold.
	TurnoverFast TurnoverCategory = "fast"
	// TurnoverMedium indicates velocity between slow and fast thresholds.
	TurnoverMedium TurnoverCategory = "medium"
	// TurnoverSlow indicates positive velocity at or below the slow threshold.
	TurnoverSlow TurnoverCategory = "slow"
	// TurnoverDead indicates no sales in the period.
	TurnoverDead TurnoverCategory = "dead"
)

// AgingCategory labels how long stock has been sitting.
type AgingCategory string

const (
	// AgingNew is stock within the aging threshold.
	AgingNew AgingCategory = "new"
	// AgingAging is stock past the aging threshold.
	AgingAging AgingCategory = "aging"
	// AgingOld is stock past the old threshold.
	AgingOld AgingCategory = "old"
	// AgingVeryOld is stock past the very-old threshold.
	AgingVeryOld AgingCategory = "very_old"
)

// Valid reports whether the value is one of the defined stock statuses.
func (s StockStatus) Valid() bool {
	switch s {
	case StockInStock, StockLowStock, StockOutOfStock, StockOverstocked:
		return true
	}
	return false
}

// Valid reports whether the value is one of the defined turnover categories.
func (c TurnoverCategory) Valid() bool {
	switch c {
	case TurnoverFast, TurnoverMedium, TurnoverSlow, TurnoverDead:
		return true
	}
	return false
}

// Valid reports whether the value is one of the defined aging categories.
func (c AgingCategory) Valid() bool {
	switch c {
	case AgingNew, AgingAging, AgingOld, AgingVeryOld:
		return true
	}
	return false
}

// OverstockMultiplier is the fixed ceiling factor applied to the reorder point.
const OverstockMultiplier = 3

// Stock maps current stock against the reorder point. Zero stock always wins,
// regardless of the reorder point.
func Stock(currentStock, reorderPoint float64) StockStatus {
	switch {
	case currentStock == 0:
		return StockOutOfStock
	case currentStock <= reorderPoint:
		return StockLowStock
	case currentStock > reorderPoint*OverstockMultiplier:
		return StockOverstocked
	default:
		return StockInStock
	}
}

// Turnover maps an annualised turnover rate to a velocity category. The fast
// check runs before the slow check; crossed thresholds are rejected as invalid
// configuration before classification ever runs.
func Turnover(rate, fast, slow float64) TurnoverCategory {
	switch {
	case rate == 0:
		return TurnoverDead
	case rate >= fast:
		return TurnoverFast
	case rate <= slow:
		return TurnoverSlow
	default:
		return TurnoverMedium
	}
}

// Aging maps days-in-stock to an age bucket using strictly descending checks.
func Aging(daysInStock, aging, old, veryOld int) AgingCategory {
	switch {
	case daysInStock > veryOld:
		return AgingVeryOld
	case daysInStock > old:
		return AgingOld
	case daysInStock > aging:
		return AgingAging
	default:
		return AgingNew
	}
}
