package purchasing

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-erp/vantage-erp/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreateOrder(ctx context.Context, order Order) (int64, error)
	InsertLine(ctx context.Context, line OrderLine) error
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

// Order returns one order header.
func (r *Repository) Order(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `SELECT id, number, supplier_id, status, ordered_at FROM purchase_orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Number, &o.SupplierID, &o.Status, &o.OrderedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

// Lines returns the lines of an order ordered by insertion.
func (r *Repository) Lines(ctx context.Context, orderID int64) ([]OrderLine, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, order_id, product_id, description, qty, unit_price, planned_at, uom
FROM purchase_order_lines WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []OrderLine
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ProductID, &line.Description, &line.Qty, &line.UnitPrice, &line.PlannedAt, &line.UoM); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// ProductIDs returns the distinct products on an order.
func (r *Repository) ProductIDs(ctx context.Context, orderID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT product_id FROM purchase_order_lines WHERE order_id=$1 ORDER BY product_id`, orderID)
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

// UpdateStatus moves an order to a new lifecycle state.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	_, err := r.pool.Exec(ctx, `UPDATE purchase_orders SET status=$1 WHERE id=$2`, status, id)
	return err
}

func (tx *txRepo) CreateOrder(ctx context.Context, order Order) (int64, error) {
	var id int64
	err := tx.tx.QueryRow(ctx, `INSERT INTO purchase_orders (number, supplier_id, status, ordered_at, created_at)
VALUES ($1,$2,$3,$4,NOW()) RETURNING id`, order.Number, order.SupplierID, order.Status, order.OrderedAt).Scan(&id)
	return id, err
}

func (tx *txRepo) InsertLine(ctx context.Context, line OrderLine) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO purchase_order_lines (order_id, product_id, description, qty, unit_price, planned_at, uom)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, line.OrderID, line.ProductID, line.Description, line.Qty, line.UnitPrice, line.PlannedAt, line.UoM)
	return err
}
