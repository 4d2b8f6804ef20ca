package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"marketplace/internal/apperrors"
	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingLinesTxManager runs real transactions whose order line insert always fails.
type failingLinesTxManager struct {
	repositories.TransactionManager
}

func (m failingLinesTxManager) WithinTx(ctx context.Context, fn func(r repositories.TxRepos) error) error {
	return m.TransactionManager.WithinTx(ctx, func(r repositories.TxRepos) error {
		return fn(failingLinesRepos{r})
	})
}

type failingLinesRepos struct {
	repositories.TxRepos
}

func (r failingLinesRepos) Orders() repositories.OrderRepository {
	return failingLinesOrders{r.TxRepos.Orders()}
}

type failingLinesOrders struct {
	repositories.OrderRepository
}

func (failingLinesOrders) CreateLines(context.Context, []models.OrderLine) error {
	return errors.New("insert order lines: connection reset")
}

func fillCart(t *testing.T, store testStore, owner string, c testCatalog) {
	t.Helper()
	ctx := context.Background()
	cartSvc := store.cartService()

	_, err := cartSvc.AddItem(ctx, owner, services.AddItemInput{ServiceID: c.Service.ID, PackageID: &c.Package.ID, AddonID: &c.Addon.ID, Quantity: 2})
	require.NoError(t, err)
	_, err = cartSvc.AddItem(ctx, owner, services.AddItemInput{ServiceID: c.PlainService.ID, Quantity: 1})
	require.NoError(t, err)
}

func TestOrderService_CreateOrder(t *testing.T) {
	store := newTestStore(t)
	c := seedCatalog(t, store.db)
	publisher := &recordingPublisher{}
	svc := store.orderService(nil, publisher)
	ctx := context.Background()

	fillCart(t, store, "user-1", c)

	order, err := svc.CreateOrder(ctx, "user-1", services.CreateOrderInput{AddressID: strPtr("addr-1")})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCreated, order.Status)
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, "2501.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, []string{services.EventOrderCreated}, publisher.Events())

	stored, err := svc.GetOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, "2501.00", stored.TotalAmount.StringFixed(2))
	assert.Equal(t, "addr-1", *stored.AddressID)
	require.Len(t, stored.Lines, 2)
	sum := price("0")
	for _, l := range stored.Lines {
		sum = sum.Add(l.Price)
	}
	assert.True(t, sum.Equal(stored.TotalAmount), "total equals the sum of line prices")

	view, err := store.cartService().GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, view.Lines, "cart is cleared")

	_, err = svc.CreateOrder(ctx, "user-1", services.CreateOrderInput{})
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
}

func TestOrderService_CreateOrderWithoutCart(t *testing.T) {
	store := newTestStore(t)
	svc := store.orderService(nil, nil)

	_, err := svc.CreateOrder(context.Background(), "nobody", services.CreateOrderInput{})
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
	assert.Zero(t, store.countOrders(t))
}

func TestOrderService_CreateOrderRollsBack(t *testing.T) {
	store := newTestStore(t)
	c := seedCatalog(t, store.db)
	publisher := &recordingPublisher{}
	svc := store.orderService(failingLinesTxManager{store.txManager}, publisher)
	ctx := context.Background()

	fillCart(t, store, "user-1", c)

	_, err := svc.CreateOrder(ctx, "user-1", services.CreateOrderInput{})
	require.Error(t, err)

	assert.Zero(t, store.countOrders(t), "order header is rolled back")
	view, err := store.cartService().GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2, "cart is untouched")
	assert.Empty(t, publisher.Events())
}

func TestOrderService_CreateOrderDanglingReference(t *testing.T) {
	store := newTestStore(t)
	c := seedCatalog(t, store.db)
	svc := store.orderService(nil, nil)
	ctx := context.Background()

	fillCart(t, store, "user-1", c)
	require.NoError(t, store.db.Delete(&models.ServiceAddon{}, "id = ?", c.Addon.ID).Error)

	_, err := svc.CreateOrder(ctx, "user-1", services.CreateOrderInput{})
	assert.ErrorIs(t, err, apperrors.ErrCatalogReference)
	assert.Zero(t, store.countOrders(t))

	view, err := store.cartService().GetCart(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
}

func TestOrderService_CreateOrderUsesCatalogPrice(t *testing.T) {
	store := newTestStore(t)
	c := seedCatalog(t, store.db)
	svc := store.orderService(nil, nil)
	ctx := context.Background()

	bogus := price("1.00")
	_, err := store.cartService().AddItem(ctx, "user-1", services.AddItemInput{ServiceID: c.Service.ID, PackageID: &c.Package.ID, Quantity: 1, UnitPrice: &bogus})
	require.NoError(t, err)

	order, err := svc.CreateOrder(ctx, "user-1", services.CreateOrderInput{})
	require.NoError(t, err)
	assert.Equal(t, "1000.00", order.TotalAmount.StringFixed(2), "cart price hints never price an order")
}

func TestOrderService_PriceSnapshotIsImmutable(t *testing.T) {
	store := newTestStore(t)
	c := seedCatalog(t, store.db)
	svc := store.orderService(nil, nil)
	ctx := context.Background()

	fillCart(t, store, "user-1", c)
	order, err := svc.CreateOrder(ctx, "user-1", services.CreateOrderInput{})
	require.NoError(t, err)

	require.NoError(t, store.db.Model(&models.ServicePackage{}).Where("id = ?", c.Package.ID).Update("price", price("5000.00")).Error)

	stored, err := svc.GetOrder(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, "2501.00", stored.TotalAmount.StringFixed(2))
}

func TestOrderService_ConcurrentCheckoutCreatesOneOrder(t *testing.T) {
	store := newTestStore(t)
	c := seedCatalog(t, store.db)
	svc := store.orderService(nil, nil)
	ctx := context.Background()

	fillCart(t, store, "user-1", c)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateOrder(ctx, "user-1", services.CreateOrderInput{})
		}(i)
	}
	wg.Wait()

	var succeeded, empty int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, apperrors.ErrEmptyCart):
			empty++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, empty)
	assert.Equal(t, int64(1), store.countOrders(t))
}

func TestOrderService_GetAndListOrders(t *testing.T) {
	store := newTestStore(t)
	c := seedCatalog(t, store.db)
	svc := store.orderService(nil, nil)
	ctx := context.Background()

	fillCart(t, store, "user-1", c)
	order, err := svc.CreateOrder(ctx, "user-1", services.CreateOrderInput{})
	require.NoError(t, err)

	_, err = svc.GetOrder(ctx, "user-2", order.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.GetOrder(ctx, "user-1", "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	orders, err := svc.ListOrders(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	orders, err = svc.ListOrders(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, orders)

	payments, err := svc.ListPayments(ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	_, err = svc.ListPayments(ctx, "user-2", order.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
