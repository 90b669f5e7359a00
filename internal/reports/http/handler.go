// Package reportshttp wires HTTP endpoints for the report lifecycle.
package reportshttp

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/stocklens/stocklens/internal/analytics"
	"github.com/stocklens/stocklens/internal/classify"
	"github.com/stocklens/stocklens/internal/platform/httpx"
	"github.com/stocklens/stocklens/internal/reports"
	"github.com/stocklens/stocklens/internal/shared"
)

// ReportService defines the lifecycle contract used by the handler.
type ReportService interface {
	Create(ctx context.Context, req reports.Request) (reports.Report, error)
	Get(ctx context.Context, id uuid.UUID) (reports.Report, error)
	View(ctx context.Context, id uuid.UUID) (reports.Report, error)
	List(ctx context.Context, filters reports.ListFilters) ([]reports.Report, shared.Pagination, error)
	RecordExport(ctx context.Context, id uuid.UUID, format string, actorID int64) error
	SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error
	Archive(ctx context.Context, id uuid.UUID) error
}

// Enqueuer schedules asynchronous report generation.
type Enqueuer interface {
	EnqueueReportGenerate(ctx context.Context, reportID string) (*asynq.TaskInfo, error)
}

// Handler wires HTTP endpoints for report management.
type Handler struct {
	logger    *slog.Logger
	service   ReportService
	enqueuer  Enqueuer
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service ReportService, enqueuer Enqueuer) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		enqueuer:  enqueuer,
		validator: validator.New(),
	}
}

// MountRoutes registers report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.handleCreate)
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
	r.Get("/{id}/export", h.handleExport)
	r.Post("/{id}/favorite", h.handleFavorite)
	r.Post("/{id}/archive", h.handleArchive)
}

type createReportRequest struct {
	ReportType string  `json:"report_type" validate:"required,oneof=stock_levels turnover_rates aging_analysis comprehensive custom"`
	PeriodType string  `json:"period_type" validate:"required,oneof=daily weekly monthly quarterly yearly custom"`
	StartDate  string  `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Categories []int64 `json:"category_ids"`
	Suppliers  []int64 `json:"supplier_ids"`

	StockStatuses      []string `json:"stock_statuses" validate:"omitempty,dive,oneof=in_stock low_stock out_of_stock overstocked"`
	TurnoverCategories []string `json:"turnover_categories" validate:"omitempty,dive,oneof=fast medium slow dead"`
	AgingCategories    []string `json:"aging_categories" validate:"omitempty,dive,oneof=new aging old very_old"`

	Thresholds struct {
		LowStock     float64 `json:"low_stock" validate:"gte=0"`
		Overstock    float64 `json:"overstock" validate:"gte=0"`
		FastTurnover float64 `json:"fast_turnover" validate:"gte=0"`
		SlowTurnover float64 `json:"slow_turnover" validate:"gte=0"`
		AgingDays    int     `json:"aging_days" validate:"gte=0"`
		OldDays      int     `json:"old_days" validate:"gte=0"`
		VeryOldDays  int     `json:"very_old_days" validate:"gte=0"`
	} `json:"thresholds"`

	Include struct {
		StockLevels   bool `json:"stock_levels"`
		TurnoverRates bool `json:"turnover_rates"`
		AgingAnalysis bool `json:"aging_analysis"`
		Rollups       bool `json:"rollups"`
		Comparison    bool `json:"comparison"`
	} `json:"include_metrics"`

	GeneratedBy int64 `json:"generated_by" validate:"required,gt=0"`
}

type reportResponse struct {
	ID            string                `json:"id"`
	Status        reports.Status        `json:"status"`
	Request       reports.Request       `json:"request"`
	PeriodStart   time.Time             `json:"period_start"`
	PeriodEnd     time.Time             `json:"period_end"`
	GeneratedBy   int64                 `json:"generated_by"`
	GeneratedAt   *time.Time            `json:"generated_at,omitempty"`
	FailureReason string                `json:"failure_reason,omitempty"`
	ViewCount     int                   `json:"view_count"`
	Favorite      bool                  `json:"favorite"`
	ExportLog     []reports.ExportEntry `json:"export_log,omitempty"`
	Payload       *reports.Payload      `json:"payload,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func toResponse(r reports.Report) reportResponse {
	return reportResponse{
		ID:            r.ID.String(),
		Status:        r.Status,
		Request:       r.Request,
		PeriodStart:   r.Period.Start,
		PeriodEnd:     r.Period.End,
		GeneratedBy:   r.GeneratedBy,
		GeneratedAt:   r.GeneratedAt,
		FailureReason: r.FailureReason,
		ViewCount:     r.ViewCount,
		Favorite:      r.Favorite,
		ExportLog:     r.ExportLog,
		Payload:       r.Payload,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body createReportRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	req := reports.Request{
		Type:       reports.Type(body.ReportType),
		PeriodType: body.PeriodType,
		Filter: analytics.SnapshotFilter{
			CategoryIDs:        body.Categories,
			SupplierIDs:        body.Suppliers,
			StockStatuses:      toStockStatuses(body.StockStatuses),
			TurnoverCategories: toTurnoverCategories(body.TurnoverCategories),
			AgingCategories:    toAgingCategories(body.AgingCategories),
		},
		Thresholds: analytics.Thresholds{
			LowStock:     body.Thresholds.LowStock,
			Overstock:    body.Thresholds.Overstock,
			FastTurnover: body.Thresholds.FastTurnover,
			SlowTurnover: body.Thresholds.SlowTurnover,
			AgingDays:    body.Thresholds.AgingDays,
			OldDays:      body.Thresholds.OldDays,
			VeryOldDays:  body.Thresholds.VeryOldDays,
		},
		Include: reports.IncludeMetrics{
			StockLevels:   body.Include.StockLevels,
			TurnoverRates: body.Include.TurnoverRates,
			AgingAnalysis: body.Include.AgingAnalysis,
			Rollups:       body.Include.Rollups,
			Comparison:    body.Include.Comparison,
		},
		GeneratedBy: body.GeneratedBy,
	}
	if body.StartDate != "" {
		req.StartDate, _ = time.Parse("2006-01-02", body.StartDate)
	}
	if body.EndDate != "" {
		req.EndDate, _ = time.Parse("2006-01-02", body.EndDate)
	}

	report, err := h.service.Create(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	if _, err := h.enqueuer.EnqueueReportGenerate(r.Context(), report.ID.String()); err != nil {
		h.logger.Error("enqueue report generation", slog.Any("error", err), slog.String("report_id", report.ID.String()))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "report created but generation could not be scheduled")
		return
	}

	httpx.JSON(w, http.StatusAccepted, toResponse(report))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	filters := reports.ListFilters{
		Status:  reports.Status(q.Get("status")),
		Type:    reports.Type(q.Get("report_type")),
		Page:    page,
		PerPage: perPage,
	}

	items, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	resp := struct {
		Items      []reportResponse  `json:"items"`
		Pagination shared.Pagination `json:"pagination"`
	}{
		Items:      make([]reportResponse, 0, len(items)),
		Pagination: pagination,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toResponse(item))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	report, err := h.service.View(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(report))
}

// handleExport streams the report's metric lists as CSV and records the
// export on the report.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	actorID, _ := strconv.ParseInt(r.URL.Query().Get("actor_id"), 10, 64)

	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if report.Status != reports.StatusCompleted || report.Payload == nil {
		httpx.Problem(w, http.StatusConflict, "Report Not Completed", "only completed reports can be exported")
		return
	}

	if err := h.service.RecordExport(r.Context(), id, "csv", actorID); err != nil {
		httpx.RespondError(w, err)
		return
	}

	metrics := report.Payload.StockMetrics
	if len(metrics) == 0 {
		metrics = report.Payload.TurnoverMetrics
	}
	if len(metrics) == 0 {
		metrics = report.Payload.AgingMetrics
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=report-%s.csv", id))
	writer := csv.NewWriter(w)
	for _, row := range reports.ExportMetricRows(metrics) {
		if err := writer.Write(row); err != nil {
			h.logger.Error("write csv row", slog.Any("error", err))
			return
		}
	}
	writer.Flush()
}

type favoriteRequest struct {
	Favorite bool `json:"favorite"`
}

func (h *Handler) handleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var body favoriteRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "request body must be valid JSON")
		return
	}
	if err := h.service.SetFavorite(r.Context(), id, body.Favorite); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"favorite": body.Favorite})
}

func (h *Handler) handleArchive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Archive(r.Context(), id); err != nil {
		if errors.Is(err, reports.ErrReportNotCompleted) {
			httpx.Problem(w, http.StatusConflict, "Report Not Completed", err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": string(reports.StatusArchived)})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "report id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func toStockStatuses(values []string) []classify.StockStatus {
	out := make([]classify.StockStatus, 0, len(values))
	for _, v := range values {
		out = append(out, classify.StockStatus(v))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toTurnoverCategories(values []string) []classify.TurnoverCategory {
	out := make([]classify.TurnoverCategory, 0, len(values))
	for _, v := range values {
		out = append(out, classify.TurnoverCategory(v))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toAgingCategories(values []string) []classify.AgingCategory {
	out := make([]classify.AgingCategory, 0, len(values))
	for _, v := range values {
		out = append(out, classify.AgingCategory(v))
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func validationDetail(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return strings.Join(parts, "; ")
}
