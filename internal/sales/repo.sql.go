package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Order returns one order header.
func (r *Repository) Order(ctx context.Context, id int64) (Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `SELECT id, number, customer_id, status, ordered_at FROM sales_orders WHERE id=$1`, id).
		Scan(&o.ID, &o.Number, &o.CustomerID, &o.Status, &o.OrderedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

// ProductIDs returns the distinct products on an order.
func (r *Repository) ProductIDs(ctx context.Context, orderID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT product_id FROM sales_order_lines WHERE order_id=$1 ORDER BY product_id`, orderID)
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
	_, err := r.pool.Exec(ctx, `UPDATE sales_orders SET status=$1 WHERE id=$2`, status, id)
	return err
}
