package purchasing

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

type memRepo struct {
	orders   map[int64]*Order
	lines    map[int64][]OrderLine
	nextID   int64
	failTx   error
	inserted int
}

func newMemRepo() *memRepo {
	return &memRepo{orders: make(map[int64]*Order), lines: make(map[int64][]OrderLine)}
}

type memTx struct {
	repo *memRepo
}

func (r *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r.failTx != nil {
		return r.failTx
	}
	return fn(ctx, memTx{repo: r})
}

func (tx memTx) CreateOrder(_ context.Context, order Order) (int64, error) {
	tx.repo.nextID++
	order.ID = tx.repo.nextID
	tx.repo.orders[order.ID] = &order
	return order.ID, nil
}

func (tx memTx) InsertLine(_ context.Context, line OrderLine) error {
	tx.repo.lines[line.OrderID] = append(tx.repo.lines[line.OrderID], line)
	tx.repo.inserted++
	return nil
}

func (r *memRepo) Order(_ context.Context, id int64) (Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return *order, nil
}

func (r *memRepo) Lines(_ context.Context, orderID int64) ([]OrderLine, error) {
	return r.lines[orderID], nil
}

func (r *memRepo) ProductIDs(_ context.Context, orderID int64) ([]int64, error) {
	var ids []int64
	for _, line := range r.lines[orderID] {
		ids = append(ids, line.ProductID)
	}
	return ids, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id int64, status Status) error {
	r.orders[id].Status = status
	return nil
}

type refreshRecorder struct {
	calls [][]int64
}

func (r *refreshRecorder) Refresh(_ context.Context, productIDs []int64) error {
	r.calls = append(r.calls, productIDs)
	return nil
}

func newTestService(repo *memRepo, recorder *refreshRecorder) *Service {
	clock := shared.FixedClock{T: time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, recorder, clock, logger)
}

func TestCreateDraftOrders(t *testing.T) {
	repo := newMemRepo()
	svc := newTestService(repo, &refreshRecorder{})

	orderedAt := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	ids, err := svc.CreateDraftOrders(context.Background(), []DraftOrder{
		{SupplierID: 21, OrderedAt: orderedAt, Lines: []DraftLine{
			{ProductID: 7, Description: "Widget", Qty: 30, UnitPrice: 4.5, UoM: "box"},
			{ProductID: 8, Description: "Gadget", Qty: 60, UnitPrice: 9, UoM: "unit"},
		}},
		{SupplierID: 22, OrderedAt: orderedAt, Lines: []DraftLine{
			{ProductID: 9, Description: "Sprocket", Qty: 5, UnitPrice: 1.25, UoM: "unit"},
		}},
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	require.Equal(t, 3, repo.inserted)

	first := repo.orders[ids[0]]
	require.Equal(t, StatusDraft, first.Status)
	require.Equal(t, int64(21), first.SupplierID)
	require.NotEmpty(t, first.Number)
	require.Len(t, repo.lines[ids[0]], 2)
}

func TestCreateDraftOrdersRejectsEmptyBatch(t *testing.T) {
	svc := newTestService(newMemRepo(), &refreshRecorder{})
	_, err := svc.CreateDraftOrders(context.Background(), nil)
	require.True(t, shared.IsValidation(err))
}

func TestCreateDraftOrdersRequiresSupplier(t *testing.T) {
	svc := newTestService(newMemRepo(), &refreshRecorder{})
	_, err := svc.CreateDraftOrders(context.Background(), []DraftOrder{{SupplierID: 0}})
	require.True(t, shared.IsValidation(err))
}

func TestConfirmRefreshesOrderedProducts(t *testing.T) {
	repo := newMemRepo()
	repo.orders[1] = &Order{ID: 1, Status: StatusDraft}
	repo.lines[1] = []OrderLine{{OrderID: 1, ProductID: 7}, {OrderID: 1, ProductID: 8}}
	recorder := &refreshRecorder{}
	svc := newTestService(repo, recorder)

	order, err := svc.Confirm(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, order.Status)
	require.Len(t, recorder.calls, 1)
	require.ElementsMatch(t, []int64{7, 8}, recorder.calls[0])
}

func TestConfirmRejectsNonDraft(t *testing.T) {
	repo := newMemRepo()
	repo.orders[1] = &Order{ID: 1, Status: StatusCancelled}
	svc := newTestService(repo, &refreshRecorder{})

	_, err := svc.Confirm(context.Background(), 1)
	require.ErrorIs(t, err, ErrInvalidState)
}
