package analyticshttp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/classify"
)

type stubAnalytics struct {
	lastReq analytics.EvaluationRequest
}

func (s *stubAnalytics) GetSummary(ctx context.Context, req analytics.EvaluationRequest) (analytics.PeriodSummary, error) {
	s.lastReq = req
	return analytics.PeriodSummary{}, nil
}

func (s *stubAnalytics) GetAgingRollups(ctx context.Context, req analytics.EvaluationRequest) ([]analytics.Rollup, error) {
	s.lastReq = req
	return nil, nil
}

func newTestRouter(svc *stubAnalytics) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, svc)
	handler.WithNow(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) })
	r := chi.NewRouter()
	r.Route("/analytics", handler.MountRoutes)
	return r
}

func TestSummaryParsesClassificationFilters(t *testing.T) {
	svc := &stubAnalytics{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/analytics/summary?stock_statuses=out_of_stock,low_stock&turnover_categories=dead&aging_categories=very_old", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	filter := svc.lastReq.Filter
	require.Equal(t, []classify.StockStatus{classify.StockOutOfStock, classify.StockLowStock}, filter.StockStatuses)
	require.Equal(t, []classify.TurnoverCategory{classify.TurnoverDead}, filter.TurnoverCategories)
	require.Equal(t, []classify.AgingCategory{classify.AgingVeryOld}, filter.AgingCategories)
}

func TestSummaryRejectsUnknownStockStatus(t *testing.T) {
	router := newTestRouter(&stubAnalytics{})

	req := httptest.NewRequest(http.MethodGet, "/analytics/summary?stock_statuses=plentiful", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "plentiful")
}

func TestSummaryRejectsMalformedCategoryIDs(t *testing.T) {
	router := newTestRouter(&stubAnalytics{})

	req := httptest.NewRequest(http.MethodGet, "/analytics/summary?category_ids=ten", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
