package forecast

import (
	"context"
	"log/slog"
	"time"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// RepositoryPort abstracts registry persistence and aggregate queries for
// the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	LineByID(ctx context.Context, id int64) (Line, error)
	ListLines(ctx context.Context) ([]Line, error)
	LinesByIDs(ctx context.Context, ids []int64) ([]Line, error)
	LinesByProducts(ctx context.Context, productIDs []int64) ([]Line, error)
	TrackedProductIDs(ctx context.Context, candidateIDs []int64) ([]int64, error)
	CountNeedReorder(ctx context.Context) (int, error)
	SalesTotal(ctx context.Context, productID int64, from, to time.Time) (float64, error)
	OnHand(ctx context.Context, productID int64) (float64, error)
	IncomingTotal(ctx context.Context, filter MovementFilter) (float64, error)
	IncomingMoves(ctx context.Context, filter MovementFilter) ([]IncomingMove, error)
	StoreDerived(ctx context.Context, lineID int64, d Derived, refreshedAt time.Time) error
}

// CatalogPort exposes the catalog reads needed by the registry.
type CatalogPort interface {
	VariantIDs(ctx context.Context, productID int64) ([]int64, error)
	StockableProductIDs(ctx context.Context) ([]int64, error)
}

// MetricsPort receives registry gauges. Optional.
type MetricsPort interface {
	SetReorderLines(n int)
	ObserveRefresh(n int)
}

// Service is the forecast line registry. It owns line lifecycle and the
// recomputation of all derived values.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	cache   *Cache
	clock   shared.Clock
	logger  *slog.Logger
	metrics MetricsPort
}

// NewService builds Service. Cache and metrics may be nil.
func NewService(repo RepositoryPort, catalog CatalogPort, cache *Cache, clock shared.Clock, logger *slog.Logger, metrics MetricsPort) *Service {
	if clock == nil {
		clock = shared.SystemClock()
	}
	return &Service{repo: repo, catalog: catalog, cache: cache, clock: clock, logger: logger, metrics: metrics}
}

// SetTracking creates or removes the forecast lines for every variant of
// the given product. Both directions are idempotent.
func (s *Service) SetTracking(ctx context.Context, productID int64, tracked bool) (int, error) {
	if tracked {
		return s.Track(ctx, productID)
	}
	return s.Untrack(ctx, productID)
}

// Track creates a line for each untracked variant of the product and
// returns the number of lines created.
func (s *Service) Track(ctx context.Context, productID int64) (int, error) {
	variants, err := s.catalog.VariantIDs(ctx, productID)
	if err != nil {
		return 0, err
	}
	created, err := s.createMissing(ctx, variants)
	if err != nil {
		return 0, err
	}
	if len(created) > 0 {
		if err := s.Refresh(ctx, created); err != nil {
			return len(created), err
		}
	}
	return len(created), nil
}

// Untrack deletes the lines of every variant of the product.
func (s *Service) Untrack(ctx context.Context, productID int64) (int, error) {
	variants, err := s.catalog.VariantIDs(ctx, productID)
	if err != nil {
		return 0, err
	}
	var deleted int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		n, err := tx.DeleteByProducts(ctx, variants)
		deleted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	s.bumpCache(ctx)
	return int(deleted), nil
}

// Populate creates a line for every stockable product lacking one and
// returns the number of lines created. Running it twice creates nothing the
// second time.
func (s *Service) Populate(ctx context.Context) (int, error) {
	products, err := s.catalog.StockableProductIDs(ctx)
	if err != nil {
		return 0, err
	}
	created, err := s.createMissing(ctx, products)
	if err != nil {
		return 0, err
	}
	if len(created) > 0 {
		if err := s.Refresh(ctx, created); err != nil {
			return len(created), err
		}
	}
	return len(created), nil
}

// createMissing inserts default lines for candidates without one. The
// untracked set is computed first so re-tracking is a no-op; the unique
// constraint still backs the check against concurrent inserts.
func (s *Service) createMissing(ctx context.Context, candidateIDs []int64) ([]int64, error) {
	tracked, err := s.repo.TrackedProductIDs(ctx, candidateIDs)
	if err != nil {
		return nil, err
	}
	trackedSet := make(map[int64]struct{}, len(tracked))
	for _, id := range tracked {
		trackedSet[id] = struct{}{}
	}
	var missing []int64
	for _, id := range candidateIDs {
		if _, ok := trackedSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, productID := range missing {
			if _, err := tx.InsertLine(ctx, productID, DefaultMonthsHistory, DefaultForecastMonths); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.bumpCache(ctx)
	return missing, nil
}

// Refresh recomputes the lines of the given products. Used by the business
// event triggers, scoped to the products the event touched.
func (s *Service) Refresh(ctx context.Context, productIDs []int64) error {
	lines, err := s.repo.LinesByProducts(ctx, productIDs)
	if err != nil {
		return err
	}
	_, err = s.refreshLines(ctx, lines)
	return err
}

// RefreshLines recomputes the given registry rows (operator manual refresh)
// and returns the number refreshed.
func (s *Service) RefreshLines(ctx context.Context, lineIDs []int64) (int, error) {
	lines, err := s.repo.LinesByIDs(ctx, lineIDs)
	if err != nil {
		return 0, err
	}
	return s.refreshLines(ctx, lines)
}

// RefreshAll recomputes the whole registry.
func (s *Service) RefreshAll(ctx context.Context) (int, error) {
	lines, err := s.repo.ListLines(ctx)
	if err != nil {
		return 0, err
	}
	return s.refreshLines(ctx, lines)
}

func (s *Service) refreshLines(ctx context.Context, lines []Line) (int, error) {
	now := s.clock.Now()
	for _, line := range lines {
		derived, err := s.computeLine(ctx, line, now)
		if err != nil {
			return 0, err
		}
		if err := s.repo.StoreDerived(ctx, line.ID, derived, now); err != nil {
			return 0, err
		}
	}
	if len(lines) == 0 {
		return 0, nil
	}
	s.bumpCache(ctx)
	if s.metrics != nil {
		s.metrics.ObserveRefresh(len(lines))
		if n, err := s.repo.CountNeedReorder(ctx); err == nil {
			s.metrics.SetReorderLines(n)
		}
	}
	return len(lines), nil
}

// computeLine runs the three aggregates and the coverage calculator for one
// line at the given instant.
func (s *Service) computeLine(ctx context.Context, line Line, now time.Time) (Derived, error) {
	var totalSold float64
	if line.MonthsHistory > 0 {
		from, to := SalesWindow(now, line.MonthsHistory)
		sold, err := s.repo.SalesTotal(ctx, line.ProductID, from, to)
		if err != nil {
			return Derived{}, err
		}
		totalSold = sold
	}
	onHand, err := s.repo.OnHand(ctx, line.ProductID)
	if err != nil {
		return Derived{}, err
	}
	var incoming float64
	if filter, ok := IncomingMovementsFilter(line.ProductID, line.ForecastMonths, now); ok {
		incoming, err = s.repo.IncomingTotal(ctx, filter)
		if err != nil {
			return Derived{}, err
		}
	}
	return Recompute(RecomputeInput{
		TotalSold:      totalSold,
		CurrentStock:   onHand,
		IncomingStock:  incoming,
		MonthsHistory:  line.MonthsHistory,
		ForecastMonths: line.ForecastMonths,
	}), nil
}

// List returns the forecast overview sorted by coverage ascending, served
// from the snapshot cache when available.
func (s *Service) List(ctx context.Context) ([]Line, error) {
	if s.cache == nil {
		return s.repo.ListLines(ctx)
	}
	var lines []Line
	err := s.cache.FetchJSON(ctx, "lines", &lines, func(ctx context.Context) (any, error) {
		return s.repo.ListLines(ctx)
	})
	if err != nil {
		s.logger.Warn("forecast cache read failed, serving from database", slog.Any("error", err))
		return s.repo.ListLines(ctx)
	}
	return lines, nil
}

// LinesByIDs exposes registry rows to the reorder wizard.
func (s *Service) LinesByIDs(ctx context.Context, ids []int64) ([]Line, error) {
	return s.repo.LinesByIDs(ctx, ids)
}

// IncomingMovements returns the moves counted by the incoming aggregate of
// one line, grouped by receipt.
func (s *Service) IncomingMovements(ctx context.Context, lineID int64) ([]ReceiptGroup, error) {
	line, err := s.repo.LineByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	filter, ok := IncomingMovementsFilter(line.ProductID, line.ForecastMonths, s.clock.Now())
	if !ok {
		return nil, nil
	}
	moves, err := s.repo.IncomingMoves(ctx, filter)
	if err != nil {
		return nil, err
	}
	return groupByReceipt(moves), nil
}

func groupByReceipt(moves []IncomingMove) []ReceiptGroup {
	var groups []ReceiptGroup
	index := make(map[int64]int)
	for _, mv := range moves {
		i, ok := index[mv.ReceiptID]
		if !ok {
			i = len(groups)
			index[mv.ReceiptID] = i
			groups = append(groups, ReceiptGroup{
				ReceiptID:   mv.ReceiptID,
				ReceiptName: mv.ReceiptName,
				ScheduledAt: mv.ScheduledAt,
			})
		}
		groups[i].Moves = append(groups[i].Moves, mv)
	}
	return groups
}

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("forecast cache bump failed", slog.Any("error", err))
	}
}
