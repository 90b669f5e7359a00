package reports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/insights"
	"github.com/stocklens/stocklens/internal/shared"
)

// Service coordinates report lifecycle and pipeline execution.
type Service struct {
	store     ReportStore
	analytics *analytics.Service
	now       func() time.Time
}

// NewService builds the service.
func NewService(store ReportStore, analyticsSvc *analytics.Service) *Service {
	return &Service{store: store, analytics: analyticsSvc, now: func() time.Time { return time.Now().UTC() }}
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Create validates the request and inserts a report in the generating state.
// The caller enqueues the generation task with the returned id.
func (s *Service) Create(ctx context.Context, req Request) (Report, error) {
	now := s.now()
	if err := req.Validate(now); err != nil {
		return Report{}, err
	}
	period, err := shared.ResolvePeriod(req.PeriodType, req.StartDate, req.EndDate, now)
	if err != nil {
		return Report{}, err
	}
	report := Report{
		ID:          uuid.New(),
		Status:      StatusGenerating,
		Request:     req,
		Period:      period,
		GeneratedBy: req.GeneratedBy,
	}
	return s.store.Insert(ctx, report)
}

// Process runs the pipeline for a queued report and stores the outcome.
// Invalid configuration and unavailable data mark the report failed with the
// reason; invariant breaches inside the computation stages panic and are
// deliberately not converted into a failed report.
func (s *Service) Process(ctx context.Context, id uuid.UUID) error {
	report, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if report.Status != StatusGenerating {
		return nil
	}

	payload, err := s.generate(ctx, report)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidConfiguration) || errors.Is(err, shared.ErrDataUnavailable) {
			if failErr := s.store.Fail(ctx, id, err.Error()); failErr != nil && !errors.Is(failErr, ErrReportNotFound) {
				return failErr
			}
		}
		return err
	}
	return s.store.Complete(ctx, id, payload, s.now())
}

func (s *Service) generate(ctx context.Context, report Report) (Payload, error) {
	evalReq := analytics.EvaluationRequest{
		Filter:     report.Request.Filter,
		Thresholds: report.Request.Thresholds,
		Period:     report.Period,
		Now:        s.now(),
	}
	eval, err := s.analytics.Evaluate(ctx, evalReq)
	if err != nil {
		return Payload{}, err
	}

	include := report.Request.Includes()
	payload := Payload{
		Summary:  eval.Summary,
		Insights: insights.Generate(eval.Summary),
	}
	if include.StockLevels {
		payload.StockMetrics = eval.Metrics
	}
	if include.TurnoverRates {
		payload.TurnoverMetrics = analytics.RankMetrics(eval.Metrics, analytics.ByTurnoverDesc)
	}
	if include.AgingAnalysis {
		payload.AgingMetrics = analytics.RankMetrics(eval.Metrics, analytics.ByDaysInStockDesc)
	}
	if include.Rollups {
		payload.CategoryRollups = eval.CategoryRollups
		payload.SupplierRollups = eval.SupplierRollups
	}
	if include.Comparison {
		prevReq := evalReq
		prevReq.Period = report.Period.Previous()
		prev, err := s.analytics.Evaluate(ctx, prevReq)
		if err != nil {
			return Payload{}, err
		}
		cmp := insights.Compare(eval.Summary, prev.Summary)
		payload.Comparison = &cmp
	}
	return payload, nil
}

// Get loads a report without side effects.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Report, error) {
	return s.store.Get(ctx, id)
}

// View loads a report and records the view as an explicit mutation command.
func (s *Service) View(ctx context.Context, id uuid.UUID) (Report, error) {
	report, err := s.store.Get(ctx, id)
	if err != nil {
		return Report{}, err
	}
	if err := s.store.IncrementViewCount(ctx, id); err != nil {
		return Report{}, err
	}
	report.ViewCount++
	return report, nil
}

// List enumerates reports with pagination metadata.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Report, shared.Pagination, error) {
	items, total, err := s.store.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(filters.Page, filters.PerPage, total), nil
}

// RecordExport appends to the export log of a completed report.
func (s *Service) RecordExport(ctx context.Context, id uuid.UUID, format string, actorID int64) error {
	report, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if report.Status != StatusCompleted {
		return ErrReportNotCompleted
	}
	return s.store.AppendExport(ctx, id, ExportEntry{Format: format, ActorID: actorID, At: s.now()})
}

// SetFavorite flips the favorite flag.
func (s *Service) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error {
	return s.store.SetFavorite(ctx, id, favorite)
}

// Archive retires a completed report.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) error {
	return s.store.Archive(ctx, id)
}
