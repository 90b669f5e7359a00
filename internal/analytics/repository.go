package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocklens/stocklens/internal/platform/db"
	"github.com/stocklens/stocklens/internal/shared"
)

// Repository supplies the raw inputs for a pipeline run: static point-in-time
// data, never live cursors. Snapshot-read discipline is enforced here, not in
// the computation stages.
type Repository interface {
	FetchProductSnapshots(ctx context.Context, filter SnapshotFilter, asOf time.Time) ([]ProductSnapshot, error)
	FetchSalesActivity(ctx context.Context, productIDs []int64, start, end time.Time) (map[int64]SalesActivity, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// SnapshotRunner executes fn against a consistent point-in-time view of the
// data, so the two fetches of one evaluation cannot observe different states.
type SnapshotRunner interface {
	RunInSnapshot(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// RunInSnapshot runs fn inside a RepeatableRead transaction.
func (r *repository) RunInSnapshot(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&repository{db: tx})
	})
	if err != nil && !shared.IsDomainError(err) {
		return shared.DataUnavailablef("snapshot read: %v", err)
	}
	return err
}

func (r *repository) FetchProductSnapshots(ctx context.Context, filter SnapshotFilter, asOf time.Time) ([]ProductSnapshot, error) {
	var conditions []string
	var args []interface{}
	argPos := 1

	conditions = append(conditions, fmt.Sprintf("p.created_at <= $%d", argPos))
	args = append(args, asOf)
	argPos++

	if len(filter.CategoryIDs) > 0 {
		if err := r.ensureExist(ctx, "categories", filter.CategoryIDs); err != nil {
			return nil, err
		}
		conditions = append(conditions, fmt.Sprintf("p.category_id = ANY($%d)", argPos))
		args = append(args, filter.CategoryIDs)
		argPos++
	}
	if len(filter.SupplierIDs) > 0 {
		if err := r.ensureExist(ctx, "suppliers", filter.SupplierIDs); err != nil {
			return nil, err
		}
		conditions = append(conditions, fmt.Sprintf("p.supplier_id = ANY($%d)", argPos))
		args = append(args, filter.SupplierIDs)
	}

	query := `SELECT p.id, p.sku, p.name, p.category_id, COALESCE(c.name, ''), p.supplier_id, COALESCE(s.name, ''),
		p.current_stock, p.min_quantity, p.max_quantity, p.reorder_point, p.unit_cost, p.created_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		LEFT JOIN suppliers s ON s.id = p.supplier_id
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY p.id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.DataUnavailablef("query product snapshots: %v", err)
	}
	defer rows.Close()

	snaps := make([]ProductSnapshot, 0)
	for rows.Next() {
		var snap ProductSnapshot
		if err := rows.Scan(&snap.ProductID, &snap.SKU, &snap.Name, &snap.CategoryID, &snap.CategoryName,
			&snap.SupplierID, &snap.SupplierName, &snap.CurrentStock, &snap.MinQuantity, &snap.MaxQuantity,
			&snap.ReorderPoint, &snap.UnitCost, &snap.CreatedAt); err != nil {
			return nil, shared.DataUnavailablef("scan product snapshot: %v", err)
		}
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.DataUnavailablef("read product snapshots: %v", err)
	}
	return snaps, nil
}

func (r *repository) FetchSalesActivity(ctx context.Context, productIDs []int64, start, end time.Time) (map[int64]SalesActivity, error) {
	activity := make(map[int64]SalesActivity, len(productIDs))
	if len(productIDs) == 0 {
		return activity, nil
	}
	rows, err := r.db.Query(ctx, `SELECT sl.product_id, COALESCE(SUM(sl.quantity), 0), MAX(sl.sold_at)
		FROM sales_lines sl
		WHERE sl.product_id = ANY($1) AND sl.sold_at >= $2 AND sl.sold_at < $3
		GROUP BY sl.product_id`, productIDs, start, end)
	if err != nil {
		return nil, shared.DataUnavailablef("query sales activity: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var act SalesActivity
		var lastSold *time.Time
		if err := rows.Scan(&act.ProductID, &act.UnitsSold, &lastSold); err != nil {
			return nil, shared.DataUnavailablef("scan sales activity: %v", err)
		}
		if lastSold != nil {
			act.LastSold = *lastSold
		}
		activity[act.ProductID] = act
	}
	if err := rows.Err(); err != nil {
		return nil, shared.DataUnavailablef("read sales activity: %v", err)
	}
	return activity, nil
}

// ensureExist fails the run when a referenced filter id is missing, rather
// than silently evaluating an empty scope. Filter ids may repeat, so the
// matched count is compared against the distinct set.
func (r *repository) ensureExist(ctx context.Context, table string, ids []int64) error {
	distinct := uniqueIDs(ids)
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id = ANY($1)", table)
	if err := r.db.QueryRow(ctx, query, distinct).Scan(&count); err != nil {
		return shared.DataUnavailablef("resolve %s filter: %v", table, err)
	}
	if count != len(distinct) {
		return shared.DataUnavailablef("%s filter references %d unknown id(s)", table, len(distinct)-count)
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
