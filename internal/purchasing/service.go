package purchasing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vantage-erp/vantage-erp/internal/forecast"
	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Order(ctx context.Context, id int64) (Order, error)
	Lines(ctx context.Context, orderID int64) ([]OrderLine, error)
	ProductIDs(ctx context.Context, orderID int64) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// Service orchestrates the purchase order workflow.
type Service struct {
	repo    RepositoryPort
	refresh forecast.RefreshTrigger
	clock   shared.Clock
	logger  *slog.Logger
}

// NewService constructs purchasing service.
func NewService(repo RepositoryPort, refresh forecast.RefreshTrigger, clock shared.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = shared.SystemClock()
	}
	return &Service{repo: repo, refresh: refresh, clock: clock, logger: logger}
}

// CreateDraftOrders persists the whole batch in one transaction: either
// every draft order lands or none do.
func (s *Service) CreateDraftOrders(ctx context.Context, drafts []DraftOrder) ([]int64, error) {
	if len(drafts) == 0 {
		return nil, shared.Validationf("no draft orders to create")
	}
	ids := make([]int64, 0, len(drafts))
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, draft := range drafts {
			if draft.SupplierID == 0 {
				return shared.Validationf("draft order without supplier")
			}
			order := Order{
				Number:     s.generateNumber("PO"),
				SupplierID: draft.SupplierID,
				Status:     StatusDraft,
				OrderedAt:  draft.OrderedAt,
			}
			orderID, err := tx.CreateOrder(ctx, order)
			if err != nil {
				return err
			}
			for _, line := range draft.Lines {
				insert := OrderLine{
					OrderID:     orderID,
					ProductID:   line.ProductID,
					Description: line.Description,
					Qty:         line.Qty,
					UnitPrice:   line.UnitPrice,
					PlannedAt:   line.PlannedAt,
					UoM:         line.UoM,
				}
				if err := tx.InsertLine(ctx, insert); err != nil {
					return err
				}
			}
			ids = append(ids, orderID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Order returns an order with its lines.
func (s *Service) Order(ctx context.Context, id int64) (Order, []OrderLine, error) {
	order, err := s.repo.Order(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	lines, err := s.repo.Lines(ctx, id)
	if err != nil {
		return Order{}, nil, err
	}
	return order, lines, nil
}

// Confirm transitions a draft order to CONFIRMED and refreshes the forecast
// lines of the ordered products, since confirmation changes their incoming
// stock. The refresh is best effort.
func (s *Service) Confirm(ctx context.Context, orderID int64) (Order, error) {
	order, err := s.repo.Order(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if order.Status != StatusDraft {
		return Order{}, ErrInvalidState
	}
	if err := s.repo.UpdateStatus(ctx, orderID, StatusConfirmed); err != nil {
		return Order{}, err
	}
	order.Status = StatusConfirmed

	productIDs, err := s.repo.ProductIDs(ctx, orderID)
	if err != nil {
		s.logger.Error("load order products for forecast refresh", slog.Any("error", err), slog.Int64("order_id", orderID))
		return order, nil
	}
	if s.refresh != nil && len(productIDs) > 0 {
		if err := s.refresh.Refresh(ctx, productIDs); err != nil {
			s.logger.Error("forecast refresh after purchase confirm", slog.Any("error", err), slog.Int64("order_id", orderID))
		}
	}
	return order, nil
}

func (s *Service) generateNumber(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, s.clock.Now().UnixNano())
}
