package reorder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vantage-erp/vantage-erp/internal/catalog"
	"github.com/vantage-erp/vantage-erp/internal/forecast"
	"github.com/vantage-erp/vantage-erp/internal/purchasing"
	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// ForecastPort exposes the registry reads used by the planner.
type ForecastPort interface {
	LinesByIDs(ctx context.Context, ids []int64) ([]forecast.Line, error)
}

// CatalogPort exposes product and supplier price list lookups.
type CatalogPort interface {
	Product(ctx context.Context, id int64) (catalog.Product, error)
	Suppliers(ctx context.Context, productID int64) ([]catalog.SupplierInfo, error)
	SupplierPrice(ctx context.Context, productID, supplierID int64) (float64, error)
}

// PurchasingPort persists the orders emitted by the grouper. The whole
// batch is written in a single transaction so a failure never leaves a
// partial set of orders behind.
type PurchasingPort interface {
	CreateDraftOrders(ctx context.Context, orders []purchasing.DraftOrder) ([]int64, error)
}

// Service implements the reorder wizard: quantity planning over selected
// forecast lines and supplier-grouped purchase order generation.
type Service struct {
	forecast   ForecastPort
	catalog    CatalogPort
	purchasing PurchasingPort
	clock      shared.Clock

	mu      sync.Mutex
	wizards map[string]*Wizard
}

// NewService builds Service.
func NewService(forecastPort ForecastPort, catalogPort CatalogPort, purchasingPort PurchasingPort, clock shared.Clock) *Service {
	if clock == nil {
		clock = shared.SystemClock()
	}
	return &Service{
		forecast:   forecastPort,
		catalog:    catalogPort,
		purchasing: purchasingPort,
		clock:      clock,
		wizards:    make(map[string]*Wizard),
	}
}

// Launch plans quantities for the selected forecast lines and returns the
// wizard document. Zero-quantity lines are kept so the operator sees the
// whole selection.
func (s *Service) Launch(ctx context.Context, lineIDs []int64) (*Wizard, error) {
	if len(lineIDs) == 0 {
		return nil, shared.Validationf("no forecast lines selected")
	}
	lines, err := s.forecast.LinesByIDs(ctx, lineIDs)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.Validationf("no forecast lines selected")
	}
	wizard := &Wizard{ID: uuid.NewString(), CreatedAt: s.clock.Now()}
	anyPositive := false
	for _, line := range lines {
		qty := QuantityToOrder(line.MonthlyAverage, line.ForecastMonths, line.TotalAvailableStock)
		if qty > 0 {
			anyPositive = true
		}
		candidates, err := s.catalog.Suppliers(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		wl := WizardLine{
			ForecastLineID:  line.ID,
			ProductID:       line.ProductID,
			ProductName:     line.ProductName,
			QuantityToOrder: qty,
			Candidates:      candidates,
		}
		if len(candidates) > 0 {
			wl.SupplierID = candidates[0].SupplierID
		}
		wizard.Lines = append(wizard.Lines, wl)
	}
	if !anyPositive {
		return nil, shared.Validationf("nothing to order: every selected line is already covered")
	}
	s.mu.Lock()
	s.wizards[wizard.ID] = wizard
	s.mu.Unlock()
	return wizard, nil
}

// LineChoice is an operator override applied before generation: a supplier
// pick or an adjusted quantity for one wizard line.
type LineChoice struct {
	ProductID  int64
	SupplierID int64
	Qty        *float64
}

// Generate groups the wizard lines by supplier and emits one draft
// purchase order per supplier. The wizard is discarded only after the
// orders were persisted, so the operator can fix a rejected submission and
// retry.
func (s *Service) Generate(ctx context.Context, wizardID string, choices []LineChoice) ([]int64, error) {
	s.mu.Lock()
	wizard, ok := s.wizards[wizardID]
	s.mu.Unlock()
	if !ok {
		return nil, shared.ErrNotFound
	}

	overrides := make(map[int64]LineChoice, len(choices))
	for _, choice := range choices {
		overrides[choice.ProductID] = choice
	}

	now := s.clock.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var supplierOrder []int64
	bySupplier := make(map[int64]*purchasing.DraftOrder)
	for _, line := range wizard.Lines {
		supplierID := line.SupplierID
		qty := line.QuantityToOrder
		if choice, ok := overrides[line.ProductID]; ok {
			if choice.SupplierID != 0 {
				supplierID = choice.SupplierID
			}
			if choice.Qty != nil && *choice.Qty >= 0 {
				qty = *choice.Qty
			}
		}
		if supplierID == 0 {
			return nil, shared.Validationf("select a supplier for product %q", line.ProductName)
		}
		product, err := s.catalog.Product(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		price, err := s.catalog.SupplierPrice(ctx, line.ProductID, supplierID)
		if err != nil {
			return nil, err
		}
		order, ok := bySupplier[supplierID]
		if !ok {
			order = &purchasing.DraftOrder{SupplierID: supplierID, OrderedAt: now}
			bySupplier[supplierID] = order
			supplierOrder = append(supplierOrder, supplierID)
		}
		order.Lines = append(order.Lines, purchasing.DraftLine{
			ProductID:   line.ProductID,
			Description: product.Name,
			Qty:         qty,
			UnitPrice:   price,
			PlannedAt:   today,
			UoM:         product.OrderUoM(),
		})
	}
	if len(supplierOrder) == 0 {
		return nil, shared.Validationf("no purchase orders to create")
	}

	orders := make([]purchasing.DraftOrder, 0, len(supplierOrder))
	for _, supplierID := range supplierOrder {
		orders = append(orders, *bySupplier[supplierID])
	}
	ids, err := s.purchasing.CreateDraftOrders(ctx, orders)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.wizards, wizardID)
	s.mu.Unlock()
	return ids, nil
}
