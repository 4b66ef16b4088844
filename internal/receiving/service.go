package receiving

import (
	"context"
	"log/slog"

	"github.com/vantage-erp/vantage-erp/internal/forecast"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Receipt(ctx context.Context, id int64) (Receipt, error)
	Moves(ctx context.Context, receiptID int64) ([]Move, error)
}

// Service orchestrates receipt validation.
type Service struct {
	repo    RepositoryPort
	refresh forecast.RefreshTrigger
	logger  *slog.Logger
}

// NewService constructs receiving service.
func NewService(repo RepositoryPort, refresh forecast.RefreshTrigger, logger *slog.Logger) *Service {
	return &Service{repo: repo, refresh: refresh, logger: logger}
}

// Validate completes an incoming receipt: every pending move lands in
// internal stock and the whole receipt flips to DONE in one transaction.
// Forecast lines of the received products are refreshed afterwards because
// validation converts incoming stock into on-hand stock; the refresh is
// best effort.
func (s *Service) Validate(ctx context.Context, receiptID int64) (Receipt, error) {
	receipt, err := s.repo.Receipt(ctx, receiptID)
	if err != nil {
		return Receipt{}, err
	}
	if receipt.Direction != DirectionIncoming {
		return Receipt{}, ErrInvalidState
	}
	if receipt.State == StateDone || receipt.State == StateCancelled {
		return Receipt{}, ErrInvalidState
	}
	moves, err := s.repo.Moves(ctx, receiptID)
	if err != nil {
		return Receipt{}, err
	}

	productSet := make(map[int64]struct{})
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, move := range moves {
			if move.State == StateDone || move.State == StateCancelled {
				continue
			}
			if err := tx.AddToQuant(ctx, move.ProductID, move.ExpectedQty); err != nil {
				return err
			}
			if err := tx.SetMoveState(ctx, move.ID, StateDone); err != nil {
				return err
			}
			productSet[move.ProductID] = struct{}{}
		}
		return tx.SetReceiptState(ctx, receiptID, StateDone)
	})
	if err != nil {
		return Receipt{}, err
	}
	receipt.State = StateDone

	if s.refresh != nil && len(productSet) > 0 {
		productIDs := make([]int64, 0, len(productSet))
		for id := range productSet {
			productIDs = append(productIDs, id)
		}
		if err := s.refresh.Refresh(ctx, productIDs); err != nil {
			s.logger.Error("forecast refresh after receipt validation", slog.Any("error", err), slog.Int64("receipt_id", receiptID))
		}
	}
	return receipt, nil
}
