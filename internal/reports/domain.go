// Package reports owns the report aggregate: its request surface, lifecycle,
// and the asynchronous generation flow around the analytics pipeline.
package reports

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/insights"
	"github.com/stocklens/stocklens/internal/shared"
)

// Status enumerates the report lifecycle.
type Status string

const (
	// StatusGenerating is the initial state while the pipeline runs.
	StatusGenerating Status = "generating"
	// StatusCompleted indicates the payload is ready for consumption.
	StatusCompleted Status = "completed"
	// StatusFailed indicates generation failed; no partial metrics are kept.
	StatusFailed Status = "failed"
	// StatusArchived marks a completed report retired from listings.
	StatusArchived Status = "archived"
)

// Type enumerates supported report types.
type Type string

const (
	TypeStockLevels   Type = "stock_levels"
	TypeTurnoverRates Type = "turnover_rates"
	TypeAgingAnalysis Type = "aging_analysis"
	TypeComprehensive Type = "comprehensive"
	TypeCustom        Type = "custom"
)

var reportTypes = map[Type]bool{
	TypeStockLevels:   true,
	TypeTurnoverRates: true,
	TypeAgingAnalysis: true,
	TypeComprehensive: true,
	TypeCustom:        true,
}

// IncludeMetrics selects which metric lists a custom report carries.
// Non-custom types derive their selection from the report type.
type IncludeMetrics struct {
	StockLevels   bool `json:"stock_levels"`
	TurnoverRates bool `json:"turnover_rates"`
	AgingAnalysis bool `json:"aging_analysis"`
	Rollups       bool `json:"rollups"`
	Comparison    bool `json:"comparison"`
}

// Request is the configuration surface for one report generation.
type Request struct {
	Type        Type                     `json:"report_type"`
	PeriodType  string                   `json:"period_type"`
	StartDate   time.Time                `json:"start_date,omitempty"`
	EndDate     time.Time                `json:"end_date,omitempty"`
	Filter      analytics.SnapshotFilter `json:"filter"`
	Thresholds  analytics.Thresholds     `json:"thresholds"`
	Include     IncludeMetrics           `json:"include_metrics"`
	GeneratedBy int64                    `json:"generated_by"`
}

// Validate fails fast, before any computation, on unknown enums, bad custom
// date ranges, and negative thresholds.
func (r Request) Validate(now time.Time) error {
	if !reportTypes[r.Type] {
		return shared.InvalidConfigf("unknown report type %q", r.Type)
	}
	if _, err := shared.ResolvePeriod(r.PeriodType, r.StartDate, r.EndDate, now); err != nil {
		return err
	}
	if err := r.Filter.Validate(); err != nil {
		return err
	}
	return r.Thresholds.ApplyDefaults().Validate()
}

// Includes resolves the effective metric selection for the report type.
func (r Request) Includes() IncludeMetrics {
	switch r.Type {
	case TypeStockLevels:
		return IncludeMetrics{StockLevels: true, Rollups: true, Comparison: true}
	case TypeTurnoverRates:
		return IncludeMetrics{TurnoverRates: true, Rollups: true, Comparison: true}
	case TypeAgingAnalysis:
		return IncludeMetrics{AgingAnalysis: true, Rollups: true, Comparison: true}
	case TypeComprehensive:
		return IncludeMetrics{StockLevels: true, TurnoverRates: true, AgingAnalysis: true, Rollups: true, Comparison: true}
	default:
		return r.Include
	}
}

// Payload is the complete computed content of one report. It is written once
// at completion and never mutated; view counts and export logs live on the
// enclosing Report.
type Payload struct {
	Summary         analytics.PeriodSummary   `json:"summary"`
	StockMetrics    []analytics.ProductMetric `json:"stock_metrics,omitempty"`
	TurnoverMetrics []analytics.ProductMetric `json:"turnover_metrics,omitempty"`
	AgingMetrics    []analytics.ProductMetric `json:"aging_metrics,omitempty"`
	CategoryRollups []analytics.Rollup        `json:"category_rollups,omitempty"`
	SupplierRollups []analytics.Rollup        `json:"supplier_rollups,omitempty"`
	Insights        []insights.Insight        `json:"insights"`
	Comparison      *insights.Comparison      `json:"comparison,omitempty"`
}

// ExportEntry records one export of a completed report.
type ExportEntry struct {
	Format  string    `json:"format"`
	ActorID int64     `json:"actor_id"`
	At      time.Time `json:"at"`
}

// Report is the enclosing aggregate for one generation.
type Report struct {
	ID            uuid.UUID
	Status        Status
	Request       Request
	Period        shared.Period
	GeneratedBy   int64
	GeneratedAt   *time.Time
	FailureReason string
	ViewCount     int
	Favorite      bool
	ExportLog     []ExportEntry
	Payload       *Payload
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ListFilters scopes report listings.
type ListFilters struct {
	Status  Status
	Type    Type
	Page    int
	PerPage int
}

// ErrReportNotFound occurs when a report id resolves to nothing.
var ErrReportNotFound = fmt.Errorf("reports: report not found: %w", shared.ErrNotFound)

// ErrReportNotCompleted occurs when an operation needs a completed payload.
var ErrReportNotCompleted = errors.New("reports: report not completed")
