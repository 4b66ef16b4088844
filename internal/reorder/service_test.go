package reorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/catalog"
	"github.com/vantage-erp/vantage-erp/internal/forecast"
	"github.com/vantage-erp/vantage-erp/internal/purchasing"
	"github.com/vantage-erp/vantage-erp/internal/shared"
)

type stubForecast struct {
	lines map[int64]forecast.Line
}

func (s stubForecast) LinesByIDs(_ context.Context, ids []int64) ([]forecast.Line, error) {
	var lines []forecast.Line
	for _, id := range ids {
		if line, ok := s.lines[id]; ok {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

type stubCatalog struct {
	products  map[int64]catalog.Product
	suppliers map[int64][]catalog.SupplierInfo
}

func (s stubCatalog) Product(_ context.Context, id int64) (catalog.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return product, nil
}

func (s stubCatalog) Suppliers(_ context.Context, productID int64) ([]catalog.SupplierInfo, error) {
	return s.suppliers[productID], nil
}

func (s stubCatalog) SupplierPrice(_ context.Context, productID, supplierID int64) (float64, error) {
	for _, info := range s.suppliers[productID] {
		if info.SupplierID == supplierID {
			return info.Price, nil
		}
	}
	return 0, nil
}

type stubPurchasing struct {
	created [][]purchasing.DraftOrder
	nextID  int64
	fail    error
}

func (s *stubPurchasing) CreateDraftOrders(_ context.Context, orders []purchasing.DraftOrder) ([]int64, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	s.created = append(s.created, orders)
	ids := make([]int64, len(orders))
	for i := range orders {
		s.nextID++
		ids[i] = s.nextID
	}
	return ids, nil
}

func fixedClock() shared.Clock {
	return shared.FixedClock{T: time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)}
}

func forecastLine(id, productID int64, name string, monthlyAverage, available float64) forecast.Line {
	line := forecast.Line{ID: id, ProductID: productID, ProductName: name, ForecastMonths: 3}
	line.MonthlyAverage = monthlyAverage
	line.TotalAvailableStock = available
	return line
}

func TestQuantityToOrderClampsAtZero(t *testing.T) {
	require.InDelta(t, 30.0, QuantityToOrder(30, 3, 60), 1e-9)
	require.Zero(t, QuantityToOrder(10, 3, 60), "covered lines order nothing")
	require.Zero(t, QuantityToOrder(0, 3, 0))
}

func TestLaunchPlansQuantitiesAndDefaultSupplier(t *testing.T) {
	svc := NewService(
		stubForecast{lines: map[int64]forecast.Line{
			1: forecastLine(1, 7, "Widget", 30, 60),
			2: forecastLine(2, 8, "Gadget", 5, 100),
		}},
		stubCatalog{suppliers: map[int64][]catalog.SupplierInfo{
			7: {{SupplierID: 21, SupplierName: "Acme", Price: 4.5, Position: 1}, {SupplierID: 22, SupplierName: "Globex", Price: 4.0, Position: 2}},
		}},
		&stubPurchasing{},
		fixedClock(),
	)

	wizard, err := svc.Launch(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, wizard.Lines, 2)

	require.InDelta(t, 30.0, wizard.Lines[0].QuantityToOrder, 1e-9)
	require.Equal(t, int64(21), wizard.Lines[0].SupplierID, "first registered supplier wins")
	require.Len(t, wizard.Lines[0].Candidates, 2)

	// Covered line stays visible with zero quantity and no supplier.
	require.Zero(t, wizard.Lines[1].QuantityToOrder)
	require.Zero(t, wizard.Lines[1].SupplierID)
}

func TestLaunchEmptySelection(t *testing.T) {
	svc := NewService(stubForecast{}, stubCatalog{}, &stubPurchasing{}, fixedClock())

	_, err := svc.Launch(context.Background(), nil)
	require.True(t, shared.IsValidation(err))

	_, err = svc.Launch(context.Background(), []int64{99})
	require.True(t, shared.IsValidation(err), "unknown ids resolve to an empty selection")
}

func TestLaunchAllLinesCovered(t *testing.T) {
	svc := NewService(
		stubForecast{lines: map[int64]forecast.Line{1: forecastLine(1, 7, "Widget", 5, 100)}},
		stubCatalog{},
		&stubPurchasing{},
		fixedClock(),
	)
	_, err := svc.Launch(context.Background(), []int64{1})
	require.True(t, shared.IsValidation(err))
}

func TestGenerateGroupsBySupplier(t *testing.T) {
	pur := &stubPurchasing{}
	svc := NewService(
		stubForecast{lines: map[int64]forecast.Line{
			1: forecastLine(1, 7, "Widget", 30, 60),
			2: forecastLine(2, 8, "Gadget", 20, 0),
		}},
		stubCatalog{
			products: map[int64]catalog.Product{
				7: {ID: 7, Name: "Widget", UoM: "unit", PurchaseUoM: "box"},
				8: {ID: 8, Name: "Gadget", UoM: "unit"},
			},
			suppliers: map[int64][]catalog.SupplierInfo{
				7: {{SupplierID: 21, SupplierName: "Acme", Price: 4.5}},
				8: {{SupplierID: 21, SupplierName: "Acme", Price: 9.0}},
			},
		},
		pur,
		fixedClock(),
	)

	wizard, err := svc.Launch(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	ids, err := svc.Generate(context.Background(), wizard.ID, nil)
	require.NoError(t, err)
	require.Len(t, ids, 1, "same supplier collapses into one order")

	require.Len(t, pur.created, 1)
	orders := pur.created[0]
	require.Len(t, orders, 1)
	require.Equal(t, int64(21), orders[0].SupplierID)
	require.Len(t, orders[0].Lines, 2)
	require.Equal(t, "Widget", orders[0].Lines[0].Description)
	require.Equal(t, "box", orders[0].Lines[0].UoM, "purchase unit wins over base unit")
	require.Equal(t, "unit", orders[0].Lines[1].UoM)
	require.InDelta(t, 4.5, orders[0].Lines[0].UnitPrice, 1e-9)
	require.InDelta(t, 60.0, orders[0].Lines[1].Qty, 1e-9)

	// The wizard is consumed.
	_, err = svc.Generate(context.Background(), wizard.ID, nil)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGenerateMissingSupplierNamesProduct(t *testing.T) {
	svc := NewService(
		stubForecast{lines: map[int64]forecast.Line{1: forecastLine(1, 7, "Widget", 30, 0)}},
		stubCatalog{products: map[int64]catalog.Product{7: {ID: 7, Name: "Widget", UoM: "unit"}}},
		&stubPurchasing{},
		fixedClock(),
	)

	wizard, err := svc.Launch(context.Background(), []int64{1})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), wizard.ID, nil)
	require.True(t, shared.IsValidation(err))
	require.Contains(t, err.Error(), "Widget")
}

func TestGenerateAppliesOverrides(t *testing.T) {
	pur := &stubPurchasing{}
	svc := NewService(
		stubForecast{lines: map[int64]forecast.Line{1: forecastLine(1, 7, "Widget", 30, 60)}},
		stubCatalog{
			products: map[int64]catalog.Product{7: {ID: 7, Name: "Widget", UoM: "unit"}},
			suppliers: map[int64][]catalog.SupplierInfo{
				7: {{SupplierID: 21, Price: 4.5}, {SupplierID: 22, Price: 4.0}},
			},
		},
		pur,
		fixedClock(),
	)

	wizard, err := svc.Launch(context.Background(), []int64{1})
	require.NoError(t, err)

	qty := 42.0
	_, err = svc.Generate(context.Background(), wizard.ID, []LineChoice{{ProductID: 7, SupplierID: 22, Qty: &qty}})
	require.NoError(t, err)

	orders := pur.created[0]
	require.Equal(t, int64(22), orders[0].SupplierID)
	require.InDelta(t, 42.0, orders[0].Lines[0].Qty, 1e-9)
	require.InDelta(t, 4.0, orders[0].Lines[0].UnitPrice, 1e-9)
}

func TestGenerateKeepsWizardOnFailure(t *testing.T) {
	pur := &stubPurchasing{fail: errors.New("postgres down")}
	svc := NewService(
		stubForecast{lines: map[int64]forecast.Line{1: forecastLine(1, 7, "Widget", 30, 0)}},
		stubCatalog{
			products:  map[int64]catalog.Product{7: {ID: 7, Name: "Widget", UoM: "unit"}},
			suppliers: map[int64][]catalog.SupplierInfo{7: {{SupplierID: 21, Price: 4.5}}},
		},
		pur,
		fixedClock(),
	)

	wizard, err := svc.Launch(context.Background(), []int64{1})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), wizard.ID, nil)
	require.Error(t, err)

	// Retry after the failure is cleared.
	pur.fail = nil
	ids, err := svc.Generate(context.Background(), wizard.ID, nil)
	require.NoError(t, err)
	require.Len(t, ids, 1)
}
