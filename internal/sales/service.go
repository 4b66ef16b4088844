package sales

import (
	"context"
	"log/slog"

	"github.com/vantage-erp/vantage-erp/internal/forecast"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	Order(ctx context.Context, id int64) (Order, error)
	ProductIDs(ctx context.Context, orderID int64) ([]int64, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
}

// Service orchestrates the sales order workflow.
type Service struct {
	repo    RepositoryPort
	refresh forecast.RefreshTrigger
	logger  *slog.Logger
}

// NewService constructs sales service.
func NewService(repo RepositoryPort, refresh forecast.RefreshTrigger, logger *slog.Logger) *Service {
	return &Service{repo: repo, refresh: refresh, logger: logger}
}

// Confirm transitions a draft order to CONFIRMED and refreshes the forecast
// lines of the products it sells. The refresh is best effort: the forecast
// cache self-corrects on the next recompute, so a failure there never rolls
// back a confirmed order.
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
			s.logger.Error("forecast refresh after sales confirm", slog.Any("error", err), slog.Int64("order_id", orderID))
		}
	}
	return order, nil
}
