package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed catalog lookups.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Product fetches a single variant.
func (r *Repository) Product(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `SELECT id, template_id, name, COALESCE(code,''), type, uom, COALESCE(purchase_uom,'')
FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.TemplateID, &p.Name, &p.Code, &p.Type, &p.UoM, &p.PurchaseUoM)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// VariantIDs returns all variants sharing the template of the given product,
// the given product included.
func (r *Repository) VariantIDs(ctx context.Context, productID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM products
WHERE template_id = (SELECT template_id FROM products WHERE id=$1) ORDER BY id`, productID)
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
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	return ids, nil
}

// StockableProductIDs lists every stockable variant in the catalog.
func (r *Repository) StockableProductIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM products WHERE type=$1 ORDER BY id`, ProductStockable)
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

// Suppliers returns the product's supplier price list ordered by position.
func (r *Repository) Suppliers(ctx context.Context, productID int64) ([]SupplierInfo, error) {
	rows, err := r.pool.Query(ctx, `SELECT ps.supplier_id, s.name, ps.price, ps.position
FROM product_suppliers ps
JOIN suppliers s ON s.id = ps.supplier_id
WHERE ps.product_id=$1
ORDER BY ps.position, ps.id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var infos []SupplierInfo
	for rows.Next() {
		var info SupplierInfo
		if err := rows.Scan(&info.SupplierID, &info.SupplierName, &info.Price, &info.Position); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
