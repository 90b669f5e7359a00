package analytics

import (
	"context"
	"time"

	"github.com/stocklens/stocklens/internal/shared"
)

// EvaluationRequest scopes one pipeline run. Now is supplied by the caller so
// identical requests produce identical output.
type EvaluationRequest struct {
	Filter     SnapshotFilter
	Thresholds Thresholds
	Period     shared.Period
	Now        time.Time
}

// Service coordinates pipeline execution with the cache layer.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Evaluate fetches the period inputs and runs the complete pipeline: metrics,
// rollups, summary. Each stage consumes the full in-memory output of the
// previous one; nothing here blocks on I/O after the two fetches.
func (s *Service) Evaluate(ctx context.Context, req EvaluationRequest) (Evaluation, error) {
	th := req.Thresholds.ApplyDefaults()
	if err := th.Validate(); err != nil {
		return Evaluation{}, err
	}
	if err := req.Filter.Validate(); err != nil {
		return Evaluation{}, err
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var snaps []ProductSnapshot
	var activity map[int64]SalesActivity
	fetch := func(repo Repository) error {
		var err error
		snaps, err = repo.FetchProductSnapshots(ctx, req.Filter, now)
		if err != nil {
			return err
		}
		ids := make([]int64, len(snaps))
		for i, snap := range snaps {
			ids[i] = snap.ProductID
		}
		activity, err = repo.FetchSalesActivity(ctx, ids, req.Period.Start, req.Period.End)
		return err
	}

	// Both fetches run against one consistent view when the repository can
	// provide it.
	var err error
	if runner, ok := s.repo.(SnapshotRunner); ok {
		err = runner.RunInSnapshot(ctx, fetch)
	} else {
		err = fetch(s.repo)
	}
	if err != nil {
		return Evaluation{}, err
	}

	metrics := FilterMetrics(ComputeMetrics(snaps, activity, th, req.Period.Days(), now), req.Filter)
	ranked := RankMetrics(metrics, ByStockValueDesc)
	return Evaluation{
		Metrics:         ranked,
		CategoryRollups: BuildRollups(ranked, DimensionCategory, RollupByStockValueDesc),
		SupplierRollups: BuildRollups(ranked, DimensionSupplier, RollupByStockValueDesc),
		Summary:         BuildSummary(ranked, req.Period),
	}, nil
}

// GetSummary resolves the period summary through the versioned cache.
func (s *Service) GetSummary(ctx context.Context, req EvaluationRequest) (PeriodSummary, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		eval, err := s.Evaluate(ctx, req)
		if err != nil {
			return PeriodSummary{}, err
		}
		return eval.Summary, nil
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return PeriodSummary{}, err
		}
		return value.(PeriodSummary), nil
	}
	key, err := s.cache.BuildKey(ctx, keySummary(req.Filter, req.Period.Start, req.Period.End)...)
	if err != nil {
		return PeriodSummary{}, err
	}
	var summary PeriodSummary
	if err := s.cache.FetchJSON(ctx, key, &summary, loader); err != nil {
		return PeriodSummary{}, err
	}
	return summary, nil
}

// GetAgingRollups resolves category rollups ranked by stock value, cached per
// filter scope and period window.
func (s *Service) GetAgingRollups(ctx context.Context, req EvaluationRequest) ([]Rollup, error) {
	loader := func(ctx context.Context) (interface{}, error) {
		eval, err := s.Evaluate(ctx, req)
		if err != nil {
			return nil, err
		}
		return eval.CategoryRollups, nil
	}
	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		return value.([]Rollup), nil
	}
	key, err := s.cache.BuildKey(ctx, keyAgingRollup(req.Filter, req.Period.Start, req.Period.End)...)
	if err != nil {
		return nil, err
	}
	var rollups []Rollup
	if err := s.cache.FetchJSON(ctx, key, &rollups, loader); err != nil {
		return nil, err
	}
	return rollups, nil
}
