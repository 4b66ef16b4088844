package forecast

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-erp/vantage-erp/internal/platform/db"
)

// Repository persists the forecast registry and runs the aggregate queries
// over the collaborator tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional registry mutations.
type TxRepository interface {
	InsertLine(ctx context.Context, productID int64, monthsHistory, forecastMonths int) (int64, error)
	DeleteByProducts(ctx context.Context, productIDs []int64) (int64, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const lineColumns = `f.id, f.product_id, p.name, COALESCE(p.code,''), f.months_history, f.forecast_months,
f.total_sold, f.monthly_average, f.current_stock, f.incoming_stock, f.total_available_stock,
f.coverage_months, f.need_reorder, f.reorder_warning, f.refreshed_at`

func scanLine(row pgx.Row) (Line, error) {
	var line Line
	err := row.Scan(&line.ID, &line.ProductID, &line.ProductName, &line.ProductCode,
		&line.MonthsHistory, &line.ForecastMonths,
		&line.TotalSold, &line.MonthlyAverage, &line.CurrentStock, &line.IncomingStock,
		&line.TotalAvailableStock, &line.CoverageMonths, &line.NeedReorder, &line.ReorderWarning,
		&line.RefreshedAt)
	return line, err
}

func (r *Repository) collectLines(ctx context.Context, query string, args ...any) ([]Line, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// LineByID fetches one registry row.
func (r *Repository) LineByID(ctx context.Context, id int64) (Line, error) {
	line, err := scanLine(r.pool.QueryRow(ctx, `SELECT `+lineColumns+`
FROM forecast_lines f JOIN products p ON p.id = f.product_id WHERE f.id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Line{}, ErrLineNotFound
		}
		return Line{}, err
	}
	return line, nil
}

// ListLines returns the whole registry sorted by coverage ascending so the
// shortest-covered products surface first.
func (r *Repository) ListLines(ctx context.Context) ([]Line, error) {
	return r.collectLines(ctx, `SELECT `+lineColumns+`
FROM forecast_lines f JOIN products p ON p.id = f.product_id
ORDER BY f.coverage_months, p.name`)
}

// LinesByIDs fetches the given registry rows.
func (r *Repository) LinesByIDs(ctx context.Context, ids []int64) ([]Line, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.collectLines(ctx, `SELECT `+lineColumns+`
FROM forecast_lines f JOIN products p ON p.id = f.product_id
WHERE f.id = ANY($1) ORDER BY f.id`, ids)
}

// LinesByProducts fetches the registry rows of the given products.
func (r *Repository) LinesByProducts(ctx context.Context, productIDs []int64) ([]Line, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	return r.collectLines(ctx, `SELECT `+lineColumns+`
FROM forecast_lines f JOIN products p ON p.id = f.product_id
WHERE f.product_id = ANY($1) ORDER BY f.id`, productIDs)
}

// TrackedProductIDs reports which of the candidate products already have a
// line.
func (r *Repository) TrackedProductIDs(ctx context.Context, candidateIDs []int64) ([]int64, error) {
	if len(candidateIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT product_id FROM forecast_lines WHERE product_id = ANY($1)`, candidateIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountNeedReorder counts lines currently flagged for reorder.
func (r *Repository) CountNeedReorder(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM forecast_lines WHERE need_reorder`).Scan(&n)
	return n, err
}

// SalesTotal sums confirmed sales quantity for a product inside the window.
func (r *Repository) SalesTotal(ctx context.Context, productID int64, from, to time.Time) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(l.qty), 0)
FROM sales_order_lines l
JOIN sales_orders o ON o.id = l.order_id
WHERE l.product_id=$1 AND o.status IN ('CONFIRMED','DONE') AND o.ordered_at >= $2 AND o.ordered_at <= $3`,
		productID, from, to).Scan(&total)
	return total, err
}

// OnHand sums stock quants at internal locations.
func (r *Repository) OnHand(ctx context.Context, productID int64) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(qty), 0)
FROM stock_quants WHERE product_id=$1 AND location_kind='INTERNAL'`, productID).Scan(&total)
	return total, err
}

const incomingMoveJoin = `FROM stock_moves m
JOIN receipts r ON r.id = m.receipt_id
WHERE m.product_id=$1 AND m.state = ANY($2)
  AND r.direction='INCOMING' AND r.scheduled_at IS NOT NULL
  AND r.scheduled_at >= $3 AND r.scheduled_at <= $4`

func moveStateStrings(states []MoveState) []string {
	out := make([]string, len(states))
	for i, s := range states {
		out[i] = string(s)
	}
	return out
}

// IncomingTotal sums expected quantity across moves matched by the shared
// filter.
func (r *Repository) IncomingTotal(ctx context.Context, filter MovementFilter) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(m.expected_qty), 0) `+incomingMoveJoin,
		filter.ProductID, moveStateStrings(filter.States), filter.From, filter.To).Scan(&total)
	return total, err
}

// IncomingMoves lists the moves matched by the shared filter for display,
// ordered by receipt then product.
func (r *Repository) IncomingMoves(ctx context.Context, filter MovementFilter) ([]IncomingMove, error) {
	rows, err := r.pool.Query(ctx, `SELECT m.id, r.id, r.name, m.product_id, p.name, m.expected_qty, m.state, r.scheduled_at
FROM stock_moves m
JOIN receipts r ON r.id = m.receipt_id
JOIN products p ON p.id = m.product_id
WHERE m.product_id=$1 AND m.state = ANY($2)
  AND r.direction='INCOMING' AND r.scheduled_at IS NOT NULL
  AND r.scheduled_at >= $3 AND r.scheduled_at <= $4
ORDER BY r.scheduled_at, r.id, p.name`,
		filter.ProductID, moveStateStrings(filter.States), filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var moves []IncomingMove
	for rows.Next() {
		var mv IncomingMove
		if err := rows.Scan(&mv.MoveID, &mv.ReceiptID, &mv.ReceiptName, &mv.ProductID, &mv.ProductName,
			&mv.ExpectedQty, &mv.State, &mv.ScheduledAt); err != nil {
			return nil, err
		}
		moves = append(moves, mv)
	}
	return moves, rows.Err()
}

// StoreDerived overwrites the cached derived columns of one line.
func (r *Repository) StoreDerived(ctx context.Context, lineID int64, d Derived, refreshedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE forecast_lines SET
total_sold=$1, monthly_average=$2, current_stock=$3, incoming_stock=$4,
total_available_stock=$5, coverage_months=$6, need_reorder=$7, reorder_warning=$8, refreshed_at=$9
WHERE id=$10`,
		d.TotalSold, d.MonthlyAverage, d.CurrentStock, d.IncomingStock,
		d.TotalAvailableStock, d.CoverageMonths, d.NeedReorder, d.ReorderWarning, refreshedAt, lineID)
	return err
}

func (tx *txRepo) InsertLine(ctx context.Context, productID int64, monthsHistory, forecastMonths int) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO forecast_lines (product_id, months_history, forecast_months, refreshed_at, created_at)
VALUES ($1,$2,$3,NOW(),NOW()) RETURNING id`, productID, monthsHistory, forecastMonths).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, ErrDuplicateLine
		}
		return 0, err
	}
	return id, nil
}

func (tx *txRepo) DeleteByProducts(ctx context.Context, productIDs []int64) (int64, error) {
	tag, err := tx.tx.Exec(ctx, `DELETE FROM forecast_lines WHERE product_id = ANY($1)`, productIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
