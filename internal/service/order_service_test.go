package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/ledger"
	"github.com/libreriarexy/libreriarexy/internal/repository"
)

type sentMail struct {
	to, subject, body string
}

// recordingMailer captures notifications instead of sending them.
type recordingMailer struct {
	sent []sentMail
}

func (m *recordingMailer) Send(to, subject, htmlBody string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func newTestStore() *repository.MemoryStore {
	store := repository.NewMemoryStore(0)
	store.Seed([]entity.Product{
		{ID: "p1", Name: "Cuaderno Premium A4", Price: 4500, Cost: 2500, Stock: 50, Active: true},
		{ID: "p2", Name: "Bolígrafo Gel Negro", Price: 1200, Cost: 600, Stock: 5, Active: true},
	}, nil)
	return store
}

func newOrderService(store *repository.MemoryStore, mailer *recordingMailer) *OrderService {
	if mailer == nil {
		return NewOrderService(store, ledger.New(store), nil, nil, nil)
	}
	return NewOrderService(store, ledger.New(store), mailer, nil, nil)
}

func productStock(t *testing.T, store *repository.MemoryStore, id string) int {
	t.Helper()
	p, err := store.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func TestPlaceOrderDeductsStockAndSnapshotsProfit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	mailer := &recordingMailer{}
	svc := newOrderService(store, mailer)

	id, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:    "u1",
		UserEmail: "cliente@demo.com",
		Total:     13500,
		Items: []entity.OrderItem{
			{ProductID: "p1", ProductName: "Cuaderno Premium A4", Quantity: 3, PriceAtPurchase: 4500},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Equal(t, 47, productStock(t, store, "p1"))

	orders, err := store.GetOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	o := orders[0]
	require.Equal(t, id, o.ID)
	require.Equal(t, entity.StatusPending, o.Status)
	require.Equal(t, 13500.0, o.Total)
	require.Equal(t, 6000.0, o.Profit) // (4500-2500) * 3
	require.Equal(t, 2500.0, o.Items[0].CostAtPurchase, "cost is snapshotted from the catalog")

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "cliente@demo.com", mailer.sent[0].to)
	require.True(t, strings.HasPrefix(mailer.sent[0].subject, "Confirmación de Pedido #"))
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := newOrderService(store, nil)

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID: "u1",
		Items: []entity.OrderItem{
			{ProductID: "p1", ProductName: "Cuaderno Premium A4", Quantity: 51, PriceAtPurchase: 4500},
		},
	})
	var stockErr *ledger.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "Cuaderno Premium A4", stockErr.ProductName)

	require.Equal(t, 50, productStock(t, store, "p1"), "a refused order must not touch stock")
	orders, err := store.GetOrders(ctx)
	require.NoError(t, err)
	require.Empty(t, orders, "a refused order must not be persisted")
}

func TestPlaceOrderPartialFailureRestoresEarlierLines(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := newOrderService(store, nil)

	_, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID: "u1",
		Items: []entity.OrderItem{
			{ProductID: "p1", ProductName: "Cuaderno Premium A4", Quantity: 2, PriceAtPurchase: 4500},
			{ProductID: "p2", ProductName: "Bolígrafo Gel Negro", Quantity: 6, PriceAtPurchase: 1200},
		},
	})
	var stockErr *ledger.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "Bolígrafo Gel Negro", stockErr.ProductName)

	require.Equal(t, 50, productStock(t, store, "p1"))
	require.Equal(t, 5, productStock(t, store, "p2"))
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	svc := newOrderService(newTestStore(), nil)
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		UserID: "u1",
		Items: []entity.OrderItem{
			{ProductID: "ghost", ProductName: "Producto Fantasma", Quantity: 1, PriceAtPurchase: 100},
		},
	})
	var stockErr *ledger.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "Producto Fantasma", stockErr.ProductName)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc := newOrderService(newTestStore(), nil)
	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{UserID: "u1"})
	require.ErrorIs(t, err, ErrEmptyOrder)
}

func TestRecordQuoteLeavesStockUntouched(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := newOrderService(store, nil)

	id, err := svc.RecordQuote(ctx, PlaceOrderInput{
		UserID: "u1",
		Total:  4500,
		Items: []entity.OrderItem{
			{ProductID: "p1", ProductName: "Cuaderno Premium A4", Quantity: 1, PriceAtPurchase: 4500},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Equal(t, 50, productStock(t, store, "p1"))
	orders, err := store.GetOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
}

func TestCancelRestoresStock(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	mailer := &recordingMailer{}
	svc := newOrderService(store, mailer)

	id, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID:    "u1",
		UserEmail: "cliente@demo.com",
		Total:     13500,
		Items: []entity.OrderItem{
			{ProductID: "p1", ProductName: "Cuaderno Premium A4", Quantity: 3, PriceAtPurchase: 4500},
		},
	})
	require.NoError(t, err)
	require.Equal(t, 47, productStock(t, store, "p1"))

	require.NoError(t, svc.SetStatus(ctx, id, entity.StatusCancelled))
	require.Equal(t, 50, productStock(t, store, "p1"))

	orders, err := store.GetOrders(ctx)
	require.NoError(t, err)
	require.Equal(t, entity.StatusCancelled, orders[0].Status)
	require.True(t, strings.HasPrefix(mailer.sent[len(mailer.sent)-1].subject, "Actualización de Pedido #"))
}

func TestRecancelIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := newOrderService(store, nil)

	id, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID: "u1",
		Items: []entity.OrderItem{
			{ProductID: "p1", ProductName: "Cuaderno Premium A4", Quantity: 3, PriceAtPurchase: 4500},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, id, entity.StatusCancelled))
	require.Equal(t, 50, productStock(t, store, "p1"))

	// Cancelling again must not restore stock a second time.
	require.NoError(t, svc.SetStatus(ctx, id, entity.StatusCancelled))
	require.Equal(t, 50, productStock(t, store, "p1"))
}

func TestInvalidTransitionRejected(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := newOrderService(store, nil)

	id, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID: "u1",
		Items: []entity.OrderItem{
			{ProductID: "p1", ProductName: "Cuaderno Premium A4", Quantity: 1, PriceAtPurchase: 4500},
		},
	})
	require.NoError(t, err)

	err = svc.SetStatus(ctx, id, entity.StatusDelivered)
	var trErr *TransitionError
	require.ErrorAs(t, err, &trErr)
	require.Equal(t, entity.StatusPending, trErr.From)
	require.Equal(t, entity.StatusDelivered, trErr.To)

	// CANCELLED is terminal.
	require.NoError(t, svc.SetStatus(ctx, id, entity.StatusCancelled))
	err = svc.SetStatus(ctx, id, entity.StatusPending)
	require.ErrorAs(t, err, &trErr)
}

func TestFullLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()
	svc := newOrderService(store, nil)

	id, err := svc.PlaceOrder(ctx, PlaceOrderInput{
		UserID: "u1",
		Items: []entity.OrderItem{
			{ProductID: "p1", ProductName: "Cuaderno Premium A4", Quantity: 2, PriceAtPurchase: 4500},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, id, entity.StatusPrepared))
	require.NoError(t, svc.SetStatus(ctx, id, entity.StatusDelivered))
	require.Equal(t, 48, productStock(t, store, "p1"), "forward transitions never move stock")

	require.NoError(t, svc.SetStatus(ctx, id, entity.StatusCancelled))
	require.Equal(t, 50, productStock(t, store, "p1"), "cancelling a delivered order still restores stock")
}

func TestSetStatusUnknownOrder(t *testing.T) {
	svc := newOrderService(newTestStore(), nil)
	err := svc.SetStatus(context.Background(), "missing", entity.StatusPrepared)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
