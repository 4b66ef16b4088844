package receiving

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
	SetReceiptState(ctx context.Context, id int64, state State) error
	SetMoveState(ctx context.Context, id int64, state State) error
	AddToQuant(ctx context.Context, productID int64, qty float64) error
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

// Receipt returns one receipt header.
func (r *Repository) Receipt(ctx context.Context, id int64) (Receipt, error) {
	var rec Receipt
	err := r.pool.QueryRow(ctx, `SELECT id, number, direction, state, scheduled_at FROM receipts WHERE id=$1`, id).
		Scan(&rec.ID, &rec.Number, &rec.Direction, &rec.State, &rec.ScheduledAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Receipt{}, ErrNotFound
		}
		return Receipt{}, err
	}
	return rec, nil
}

// Moves returns the moves of a receipt ordered by insertion.
func (r *Repository) Moves(ctx context.Context, receiptID int64) ([]Move, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, receipt_id, product_id, expected_qty, state
FROM stock_moves WHERE receipt_id=$1 ORDER BY id`, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var moves []Move
	for rows.Next() {
		var move Move
		if err := rows.Scan(&move.ID, &move.ReceiptID, &move.ProductID, &move.ExpectedQty, &move.State); err != nil {
			return nil, err
		}
		moves = append(moves, move)
	}
	return moves, rows.Err()
}

func (tx *txRepo) SetReceiptState(ctx context.Context, id int64, state State) error {
	_, err := tx.tx.Exec(ctx, `UPDATE receipts SET state=$1 WHERE id=$2`, state, id)
	return err
}

func (tx *txRepo) SetMoveState(ctx context.Context, id int64, state State) error {
	_, err := tx.tx.Exec(ctx, `UPDATE stock_moves SET state=$1 WHERE id=$2`, state, id)
	return err
}

func (tx *txRepo) AddToQuant(ctx context.Context, productID int64, qty float64) error {
	_, err := tx.tx.Exec(ctx, `INSERT INTO stock_quants (product_id, location_kind, qty)
VALUES ($1,'INTERNAL',$2)
ON CONFLICT (product_id, location_kind) DO UPDATE SET qty = stock_quants.qty + EXCLUDED.qty`, productID, qty)
	return err
}
