package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists report aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repo.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const reportColumns = `id, status, request, period_start, period_end, generated_by, generated_at,
	failure_reason, view_count, favorite, export_log, payload, created_at, updated_at`

// Insert stores a new report in the generating state.
func (r *Repository) Insert(ctx context.Context, report Report) (Report, error) {
	request, err := json.Marshal(report.Request)
	if err != nil {
		return Report{}, fmt.Errorf("reports: marshal request: %w", err)
	}
	row := r.pool.QueryRow(ctx, `INSERT INTO reports
		(id, status, request, period_start, period_end, generated_by, export_log)
		VALUES ($1, $2, $3, $4, $5, $6, '[]'::jsonb)
		RETURNING `+reportColumns,
		report.ID, report.Status, request, report.Period.Start, report.Period.End, report.GeneratedBy)
	return scanReport(row)
}

// Get loads a report by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Report, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Report{}, ErrReportNotFound
		}
		return Report{}, err
	}
	return report, nil
}

// List returns reports matching the filters, newest first.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]Report, int, error) {
	if filters.PerPage <= 0 {
		filters.PerPage = 20
	}
	if filters.Page <= 0 {
		filters.Page = 1
	}
	where := "WHERE 1=1"
	args := []interface{}{}
	argPos := 1
	if filters.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filters.Status)
		argPos++
	}
	if filters.Type != "" {
		where += fmt.Sprintf(" AND request->>'report_type' = $%d", argPos)
		args = append(args, string(filters.Type))
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT `+reportColumns+` FROM reports %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		where, argPos, argPos+1)
	args = append(args, filters.PerPage, (filters.Page-1)*filters.PerPage)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Report, 0)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Complete stores the payload and transitions the report to completed.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID, payload Payload, generatedAt time.Time) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("reports: marshal payload: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `UPDATE reports
		SET status = $2, payload = $3, generated_at = $4, failure_reason = '', updated_at = NOW()
		WHERE id = $1 AND status = $5`,
		id, StatusCompleted, raw, generatedAt, StatusGenerating)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// Fail marks the report failed with the stored reason; no partial payload is
// kept. Only a generating report can fail: duplicate task deliveries must not
// overwrite a report another worker already completed.
func (r *Repository) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reports
		SET status = $2, payload = NULL, failure_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`, id, StatusFailed, reason, StatusGenerating)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// IncrementViewCount records one view.
func (r *Repository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reports SET view_count = view_count + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// AppendExport appends one entry to the export log.
func (r *Repository) AppendExport(ctx context.Context, id uuid.UUID, entry ExportEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE reports
		SET export_log = export_log || $2::jsonb, updated_at = NOW()
		WHERE id = $1`, id, raw)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// SetFavorite toggles the favorite flag.
func (r *Repository) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reports SET favorite = $2, updated_at = NOW() WHERE id = $1`, id, favorite)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// Archive retires a completed report.
func (r *Repository) Archive(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reports SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, StatusArchived, StatusCompleted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotCompleted
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (Report, error) {
	var report Report
	var request, exportLog []byte
	var payload []byte
	var generatedAt pgtype.Timestamptz
	if err := row.Scan(&report.ID, &report.Status, &request, &report.Period.Start, &report.Period.End,
		&report.GeneratedBy, &generatedAt, &report.FailureReason, &report.ViewCount, &report.Favorite,
		&exportLog, &payload, &report.CreatedAt, &report.UpdatedAt); err != nil {
		return Report{}, err
	}
	if err := json.Unmarshal(request, &report.Request); err != nil {
		return Report{}, fmt.Errorf("reports: unmarshal request: %w", err)
	}
	if len(exportLog) > 0 {
		if err := json.Unmarshal(exportLog, &report.ExportLog); err != nil {
			return Report{}, fmt.Errorf("reports: unmarshal export log: %w", err)
		}
	}
	if len(payload) > 0 {
		report.Payload = new(Payload)
		if err := json.Unmarshal(payload, report.Payload); err != nil {
			return Report{}, fmt.Errorf("reports: unmarshal payload: %w", err)
		}
	}
	if generatedAt.Valid {
		t := generatedAt.Time
		report.GeneratedAt = &t
	}
	return report, nil
}

// ReportStore is the persistence contract the service depends on; the pgx
// Repository satisfies it and tests substitute an in-memory stub.
type ReportStore interface {
	Insert(ctx context.Context, report Report) (Report, error)
	Get(ctx context.Context, id uuid.UUID) (Report, error)
	List(ctx context.Context, filters ListFilters) ([]Report, int, error)
	Complete(ctx context.Context, id uuid.UUID, payload Payload, generatedAt time.Time) error
	Fail(ctx context.Context, id uuid.UUID, reason string) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	AppendExport(ctx context.Context, id uuid.UUID, entry ExportEntry) error
	SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error
	Archive(ctx context.Context, id uuid.UUID) error
}

var _ ReportStore = (*Repository)(nil)
