package reports

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/classify"
	"github.com/stocklens/stocklens/internal/shared"
)

type memoryStore struct {
	reports map[uuid.UUID]Report
}

func newMemoryStore() *memoryStore {
	return &memoryStore{reports: make(map[uuid.UUID]Report)}
}

func (s *memoryStore) Insert(ctx context.Context, report Report) (Report, error) {
	report.CreatedAt = time.Now().UTC()
	report.UpdatedAt = report.CreatedAt
	s.reports[report.ID] = report
	return report, nil
}

func (s *memoryStore) Get(ctx context.Context, id uuid.UUID) (Report, error) {
	report, ok := s.reports[id]
	if !ok {
		return Report{}, ErrReportNotFound
	}
	return report, nil
}

func (s *memoryStore) List(ctx context.Context, filters ListFilters) ([]Report, int, error) {
	out := make([]Report, 0, len(s.reports))
	for _, report := range s.reports {
		if filters.Status != "" && report.Status != filters.Status {
			continue
		}
		if filters.Type != "" && report.Request.Type != filters.Type {
			continue
		}
		out = append(out, report)
	}
	return out, len(out), nil
}

func (s *memoryStore) Complete(ctx context.Context, id uuid.UUID, payload Payload, generatedAt time.Time) error {
	report, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	report.Status = StatusCompleted
	report.Payload = &payload
	report.GeneratedAt = &generatedAt
	s.reports[id] = report
	return nil
}

func (s *memoryStore) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	report, ok := s.reports[id]
	if !ok || report.Status != StatusGenerating {
		return ErrReportNotFound
	}
	report.Status = StatusFailed
	report.FailureReason = reason
	report.Payload = nil
	s.reports[id] = report
	return nil
}

func (s *memoryStore) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	report, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	report.ViewCount++
	s.reports[id] = report
	return nil
}

func (s *memoryStore) AppendExport(ctx context.Context, id uuid.UUID, entry ExportEntry) error {
	report, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	report.ExportLog = append(report.ExportLog, entry)
	s.reports[id] = report
	return nil
}

func (s *memoryStore) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error {
	report, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	report.Favorite = favorite
	s.reports[id] = report
	return nil
}

func (s *memoryStore) Archive(ctx context.Context, id uuid.UUID) error {
	report, ok := s.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	if report.Status != StatusCompleted {
		return ErrReportNotCompleted
	}
	report.Status = StatusArchived
	s.reports[id] = report
	return nil
}

type stubAnalyticsRepo struct {
	snaps    []analytics.ProductSnapshot
	activity map[int64]analytics.SalesActivity
	err      error
}

func (s *stubAnalyticsRepo) FetchProductSnapshots(ctx context.Context, filter analytics.SnapshotFilter, asOf time.Time) ([]analytics.ProductSnapshot, error) {
	return s.snaps, s.err
}

func (s *stubAnalyticsRepo) FetchSalesActivity(ctx context.Context, productIDs []int64, start, end time.Time) (map[int64]analytics.SalesActivity, error) {
	return s.activity, nil
}

var testNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store ReportStore, repo analytics.Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	analyticsSvc := analytics.NewService(repo, analytics.NewCache(client, time.Minute))
	svc := NewService(store, analyticsSvc)
	svc.WithNow(func() time.Time { return testNow })
	return svc
}

func monthlyRequest() Request {
	return Request{
		Type:        TypeComprehensive,
		PeriodType:  shared.PeriodMonthly,
		GeneratedBy: 7,
	}
}

func healthyAnalyticsRepo() *stubAnalyticsRepo {
	return &stubAnalyticsRepo{
		snaps: []analytics.ProductSnapshot{
			{ProductID: 1, SKU: "SKU-1", CategoryID: 10, SupplierID: 100, CurrentStock: 20, ReorderPoint: 10, UnitCost: 3, CreatedAt: testNow.AddDate(0, 0, -45)},
			{ProductID: 2, SKU: "SKU-2", CategoryID: 11, SupplierID: 100, CurrentStock: 0, ReorderPoint: 5, UnitCost: 8, CreatedAt: testNow.AddDate(0, 0, -400)},
		},
		activity: map[int64]analytics.SalesActivity{
			1: {ProductID: 1, UnitsSold: 24, LastSold: testNow.AddDate(0, 0, -2)},
		},
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), healthyAnalyticsRepo())

	req := monthlyRequest()
	req.Type = Type("quarterly_digest")

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrInvalidConfiguration)
}

func TestCreateRejectsUnknownFilterValue(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), healthyAnalyticsRepo())

	req := monthlyRequest()
	req.Filter.StockStatuses = []classify.StockStatus{"plentiful"}

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrInvalidConfiguration)
}

func TestCreateRejectsCustomWithoutDates(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), healthyAnalyticsRepo())

	req := monthlyRequest()
	req.PeriodType = shared.PeriodCustom

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, shared.ErrInvalidConfiguration)
}

func TestCreateInsertsGenerating(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, healthyAnalyticsRepo())

	report, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)
	require.Equal(t, StatusGenerating, report.Status)
	require.NotEqual(t, uuid.Nil, report.ID)
	require.Equal(t, testNow, report.Period.End)

	stored, err := store.Get(context.Background(), report.ID)
	require.NoError(t, err)
	require.Equal(t, StatusGenerating, stored.Status)
}

func TestProcessCompletesReport(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, healthyAnalyticsRepo())

	report, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Process(context.Background(), report.ID))

	stored, err := store.Get(context.Background(), report.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, stored.Status)
	require.NotNil(t, stored.Payload)
	require.NotNil(t, stored.GeneratedAt)

	// Comprehensive reports carry every metric list plus the comparison.
	require.Len(t, stored.Payload.StockMetrics, 2)
	require.Len(t, stored.Payload.TurnoverMetrics, 2)
	require.Len(t, stored.Payload.AgingMetrics, 2)
	require.NotEmpty(t, stored.Payload.CategoryRollups)
	require.NotNil(t, stored.Payload.Comparison)
	require.Equal(t, 2, stored.Payload.Summary.TotalProducts)
}

func TestProcessReordersPerList(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, healthyAnalyticsRepo())

	report, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Process(context.Background(), report.ID))

	stored, err := store.Get(context.Background(), report.ID)
	require.NoError(t, err)

	turnover := stored.Payload.TurnoverMetrics
	require.Equal(t, 1, turnover[0].Rank)
	require.Equal(t, int64(1), turnover[0].ProductID, "fastest mover ranks first")

	aging := stored.Payload.AgingMetrics
	require.Equal(t, int64(2), aging[0].ProductID, "oldest stock ranks first")
}

func TestProcessFailsClosedOnBadThresholds(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, healthyAnalyticsRepo())

	req := monthlyRequest()
	report, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	// Corrupt the stored request to simulate thresholds going invalid between
	// creation and processing.
	stored := store.reports[report.ID]
	stored.Request.Thresholds = analytics.Thresholds{FastTurnover: 1, SlowTurnover: 5}
	store.reports[report.ID] = stored

	err = svc.Process(context.Background(), report.ID)
	require.ErrorIs(t, err, shared.ErrInvalidConfiguration)

	failed, getErr := store.Get(context.Background(), report.ID)
	require.NoError(t, getErr)
	require.Equal(t, StatusFailed, failed.Status)
	require.NotEmpty(t, failed.FailureReason)
	require.Nil(t, failed.Payload)
}

func TestProcessFailsClosedOnUnavailableData(t *testing.T) {
	store := newMemoryStore()
	repo := healthyAnalyticsRepo()
	repo.err = shared.DataUnavailablef("products view unreachable")
	svc := newTestService(t, store, repo)

	report, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	err = svc.Process(context.Background(), report.ID)
	require.ErrorIs(t, err, shared.ErrDataUnavailable)

	failed, getErr := store.Get(context.Background(), report.ID)
	require.NoError(t, getErr)
	require.Equal(t, StatusFailed, failed.Status)
}

func TestFailCannotOverwriteCompleted(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, healthyAnalyticsRepo())

	report, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Process(context.Background(), report.ID))

	// A late duplicate delivery failing after completion must leave the
	// completed payload untouched.
	err = store.Fail(context.Background(), report.ID, "stale worker")
	require.ErrorIs(t, err, ErrReportNotFound)

	stored, err := store.Get(context.Background(), report.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, stored.Status)
	require.NotNil(t, stored.Payload)
	require.Empty(t, stored.FailureReason)
}

func TestProcessSkipsNonGenerating(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, healthyAnalyticsRepo())

	report, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Process(context.Background(), report.ID))

	completed := store.reports[report.ID]
	require.NoError(t, svc.Process(context.Background(), report.ID))
	require.Equal(t, completed.GeneratedAt, store.reports[report.ID].GeneratedAt)
}

func TestViewIncrementsCount(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, healthyAnalyticsRepo())

	report, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	viewed, err := svc.View(context.Background(), report.ID)
	require.NoError(t, err)
	require.Equal(t, 1, viewed.ViewCount)

	viewed, err = svc.View(context.Background(), report.ID)
	require.NoError(t, err)
	require.Equal(t, 2, viewed.ViewCount)
}

func TestRecordExportRequiresCompleted(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, healthyAnalyticsRepo())

	report, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	err = svc.RecordExport(context.Background(), report.ID, "csv", 7)
	require.ErrorIs(t, err, ErrReportNotCompleted)

	require.NoError(t, svc.Process(context.Background(), report.ID))
	require.NoError(t, svc.RecordExport(context.Background(), report.ID, "csv", 7))

	stored := store.reports[report.ID]
	require.Len(t, stored.ExportLog, 1)
	require.Equal(t, "csv", stored.ExportLog[0].Format)
	require.Equal(t, int64(7), stored.ExportLog[0].ActorID)
}

func TestArchiveOnlyCompleted(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, healthyAnalyticsRepo())

	report, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	require.ErrorIs(t, svc.Archive(context.Background(), report.ID), ErrReportNotCompleted)

	require.NoError(t, svc.Process(context.Background(), report.ID))
	require.NoError(t, svc.Archive(context.Background(), report.ID))
	require.Equal(t, StatusArchived, store.reports[report.ID].Status)
}

func TestGetUnknownReport(t *testing.T) {
	svc := newTestService(t, newMemoryStore(), healthyAnalyticsRepo())

	_, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrReportNotFound)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(t, store, healthyAnalyticsRepo())

	first, err := svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Process(context.Background(), first.ID))

	_, err = svc.Create(context.Background(), monthlyRequest())
	require.NoError(t, err)

	items, pagination, err := svc.List(context.Background(), ListFilters{Status: StatusCompleted, Page: 1, PerPage: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, pagination.Total)
}
