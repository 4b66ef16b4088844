package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type memRepo struct {
	products  map[int64]Product
	suppliers map[int64][]SupplierInfo
}

func (r memRepo) Product(_ context.Context, id int64) (Product, error) {
	product, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return product, nil
}

func (r memRepo) VariantIDs(_ context.Context, productID int64) ([]int64, error) {
	return []int64{productID}, nil
}

func (r memRepo) StockableProductIDs(context.Context) ([]int64, error) {
	var ids []int64
	for id, product := range r.products {
		if product.Type == ProductStockable {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r memRepo) Suppliers(_ context.Context, productID int64) ([]SupplierInfo, error) {
	return r.suppliers[productID], nil
}

func TestSupplierPrice(t *testing.T) {
	svc := NewService(memRepo{suppliers: map[int64][]SupplierInfo{
		7: {{SupplierID: 21, Price: 4.5}, {SupplierID: 22, Price: 4.0}},
	}})

	price, err := svc.SupplierPrice(context.Background(), 7, 22)
	require.NoError(t, err)
	require.InDelta(t, 4.0, price, 1e-9)
}

func TestSupplierPriceMissingEntryIsZero(t *testing.T) {
	svc := NewService(memRepo{suppliers: map[int64][]SupplierInfo{
		7: {{SupplierID: 21, Price: 4.5}},
	}})

	price, err := svc.SupplierPrice(context.Background(), 7, 99)
	require.NoError(t, err)
	require.Zero(t, price)

	price, err = svc.SupplierPrice(context.Background(), 8, 21)
	require.NoError(t, err)
	require.Zero(t, price)
}

func TestOrderUoMFallsBackToBaseUnit(t *testing.T) {
	require.Equal(t, "box", Product{UoM: "unit", PurchaseUoM: "box"}.OrderUoM())
	require.Equal(t, "unit", Product{UoM: "unit"}.OrderUoM())
}
