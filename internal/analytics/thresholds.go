package analytics

import "github.com/stocklens/stocklens/internal/shared"

// Default threshold values applied when a request leaves a field unset.
const (
	DefaultLowStock     = 10.0
	DefaultOverstock    = 100.0
	DefaultFastTurnover = 12.0
	DefaultSlowTurnover = 2.0
	DefaultAgingDays    = 90
	DefaultOldDays      = 180
	DefaultVeryOldDays  = 365
)

// Thresholds carries the caller-supplied classification boundaries. Pure
// input: it has no lifecycle and is never mutated by the pipeline.
type Thresholds struct {
	LowStock     float64 `json:"low_stock"`
	Overstock    float64 `json:"overstock"`
	FastTurnover float64 `json:"fast_turnover"`
	SlowTurnover float64 `json:"slow_turnover"`
	AgingDays    int     `json:"aging_days"`
	OldDays      int     `json:"old_days"`
	VeryOldDays  int     `json:"very_old_days"`
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowStock:     DefaultLowStock,
		Overstock:    DefaultOverstock,
		FastTurnover: DefaultFastTurnover,
		SlowTurnover: DefaultSlowTurnover,
		AgingDays:    DefaultAgingDays,
		OldDays:      DefaultOldDays,
		VeryOldDays:  DefaultVeryOldDays,
	}
}

// ApplyDefaults fills unset fields at the boundary so computation never deals
// with ad-hoc fallbacks.
func (t Thresholds) ApplyDefaults() Thresholds {
	d := DefaultThresholds()
	if t.LowStock == 0 {
		t.LowStock = d.LowStock
	}
	if t.Overstock == 0 {
		t.Overstock = d.Overstock
	}
	if t.FastTurnover == 0 {
		t.FastTurnover = d.FastTurnover
	}
	if t.SlowTurnover == 0 {
		t.SlowTurnover = d.SlowTurnover
	}
	if t.AgingDays == 0 {
		t.AgingDays = d.AgingDays
	}
	if t.OldDays == 0 {
		t.OldDays = d.OldDays
	}
	if t.VeryOldDays == 0 {
		t.VeryOldDays = d.VeryOldDays
	}
	return t
}

// Validate rejects negative boundaries and crossed turnover thresholds before
// any computation starts.
func (t Thresholds) Validate() error {
	if t.LowStock < 0 || t.Overstock < 0 || t.FastTurnover < 0 || t.SlowTurnover < 0 ||
		t.AgingDays < 0 || t.OldDays < 0 || t.VeryOldDays < 0 {
		return shared.InvalidConfigf("thresholds must not be negative")
	}
	if t.FastTurnover <= t.SlowTurnover {
		return shared.InvalidConfigf("fast turnover threshold %.2f must exceed slow threshold %.2f", t.FastTurnover, t.SlowTurnover)
	}
	if t.AgingDays > t.OldDays || t.OldDays > t.VeryOldDays {
		return shared.InvalidConfigf("aging thresholds must be ascending")
	}
	return nil
}
