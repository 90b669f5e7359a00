// Package analyticshttp exposes the analytics pipeline over a JSON API.
package analyticshttp

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/classify"
	"github.com/stocklens/stocklens/internal/platform/httpx"
	"github.com/stocklens/stocklens/internal/shared"
)

const requestTimeout = 10 * time.Second

// AnalyticsService defines the pipeline contract used by the handler.
type AnalyticsService interface {
	GetSummary(ctx context.Context, req analytics.EvaluationRequest) (analytics.PeriodSummary, error)
	GetAgingRollups(ctx context.Context, req analytics.EvaluationRequest) ([]analytics.Rollup, error)
}

// Handler coordinates HTTP requests for on-demand analytics reads.
type Handler struct {
	logger  *slog.Logger
	service AnalyticsService
	now     func() time.Time
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service AnalyticsService) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// MountRoutes registers analytics endpoints on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.handleSummary)
	r.Get("/aging", h.handleAging)
	r.Get("/dashboard", h.handleDashboard)
}

type dashboardResponse struct {
	Summary analytics.PeriodSummary `json:"summary"`
	Aging   []analytics.Rollup      `json:"aging"`
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	summary, err := h.service.GetSummary(ctx, req)
	if err != nil {
		h.logger.Error("load summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) handleAging(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	rollups, err := h.service.GetAgingRollups(ctx, req)
	if err != nil {
		h.logger.Error("load aging rollups", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rollups)
}

// handleDashboard loads the summary and the aging rollups concurrently.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRequest(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var resp dashboardResponse
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := h.service.GetSummary(ctx, req)
		if err != nil {
			return err
		}
		resp.Summary = summary
		return nil
	})

	g.Go(func() error {
		rollups, err := h.service.GetAgingRollups(ctx, req)
		if err != nil {
			return err
		}
		resp.Aging = rollups
		return nil
	})

	if err := g.Wait(); err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) parseRequest(r *http.Request) (analytics.EvaluationRequest, error) {
	q := r.URL.Query()

	periodType := q.Get("period")
	if periodType == "" {
		periodType = shared.PeriodMonthly
	}

	now := h.now().UTC()

	var start, end time.Time
	if raw := q.Get("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return analytics.EvaluationRequest{}, shared.InvalidConfigf("start_date must be YYYY-MM-DD")
		}
		start = parsed
	}
	if raw := q.Get("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return analytics.EvaluationRequest{}, shared.InvalidConfigf("end_date must be YYYY-MM-DD")
		}
		end = parsed
	}

	period, err := shared.ResolvePeriod(periodType, start, end, now)
	if err != nil {
		return analytics.EvaluationRequest{}, err
	}

	catIDs, err := parseIDList(q.Get("category_ids"))
	if err != nil {
		return analytics.EvaluationRequest{}, shared.InvalidConfigf("category_ids must be a comma separated list of ids")
	}
	supIDs, err := parseIDList(q.Get("supplier_ids"))
	if err != nil {
		return analytics.EvaluationRequest{}, shared.InvalidConfigf("supplier_ids must be a comma separated list of ids")
	}

	filter := analytics.SnapshotFilter{
		CategoryIDs: catIDs,
		SupplierIDs: supIDs,
	}
	for _, v := range splitList(q.Get("stock_statuses")) {
		filter.StockStatuses = append(filter.StockStatuses, classify.StockStatus(v))
	}
	for _, v := range splitList(q.Get("turnover_categories")) {
		filter.TurnoverCategories = append(filter.TurnoverCategories, classify.TurnoverCategory(v))
	}
	for _, v := range splitList(q.Get("aging_categories")) {
		filter.AgingCategories = append(filter.AgingCategories, classify.AgingCategory(v))
	}
	if err := filter.Validate(); err != nil {
		return analytics.EvaluationRequest{}, err
	}

	return analytics.EvaluationRequest{
		Filter:     filter,
		Thresholds: analytics.DefaultThresholds(),
		Period:     period,
		Now:        now,
	}, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
