package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/events"
	"github.com/libreriarexy/libreriarexy/internal/ledger"
	"github.com/libreriarexy/libreriarexy/internal/notify"
	"github.com/libreriarexy/libreriarexy/internal/repository"
)

var (
	ErrEmptyOrder     = errors.New("order has no items")
	ErrDuplicateOrder = errors.New("duplicate order submission")
)

// TransitionError reports a status change the lifecycle does not allow.
type TransitionError struct {
	From, To entity.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// OrderService is the order engine plus the lifecycle state machine. Mailer,
// event publisher and redis client are optional collaborators: notifications
// and cache invalidation are best effort and never fail the order.
type OrderService struct {
	store  repository.Store
	ledger *ledger.Ledger
	mailer notify.Mailer
	events *events.Publisher
	rdb    *redis.Client
}

func NewOrderService(store repository.Store, ldg *ledger.Ledger, mailer notify.Mailer, pub *events.Publisher, rdb *redis.Client) *OrderService {
	return &OrderService{store: store, ledger: ldg, mailer: mailer, events: pub, rdb: rdb}
}

type PlaceOrderInput struct {
	Items     []entity.OrderItem
	Total     float64
	UserID    string
	UserEmail string
	// IdempotencyKey guards against double submission when set.
	IdempotencyKey string
}

// PlaceOrder validates the cart, deducts stock all-or-nothing and persists
// the order as PENDING. The returned id identifies the new order.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlaceOrderInput) (string, error) {
	return s.place(ctx, in, true)
}

// RecordQuote persists an order without touching stock. Used by the POS for
// PRESUPUESTO documents: a quote reserves nothing.
func (s *OrderService) RecordQuote(ctx context.Context, in PlaceOrderInput) (string, error) {
	return s.place(ctx, in, false)
}

func (s *OrderService) place(ctx context.Context, in PlaceOrderInput, deductStock bool) (string, error) {
	if len(in.Items) == 0 {
		return "", ErrEmptyOrder
	}
	if err := s.claimIdempotencyKey(ctx, in.IdempotencyKey); err != nil {
		return "", err
	}

	// Validate every line and snapshot the cost before anything is deducted.
	// The stock read here is a fast fail only; AdjustStock re-checks.
	items := make([]entity.OrderItem, len(in.Items))
	copy(items, in.Items)

	var profit float64
	lines := make([]ledger.Line, 0, len(items))
	for i := range items {
		p, err := s.store.GetProduct(ctx, items[i].ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", &ledger.InsufficientStockError{ProductName: items[i].ProductName}
			}
			return "", fmt.Errorf("get product %s: %w", items[i].ProductID, err)
		}
		if deductStock && p.Stock < items[i].Quantity {
			return "", &ledger.InsufficientStockError{ProductName: p.Name}
		}
		items[i].CostAtPurchase = p.Cost
		profit += (items[i].PriceAtPurchase - p.Cost) * float64(items[i].Quantity)
		lines = append(lines, ledger.Line{
			ProductID:   items[i].ProductID,
			ProductName: p.Name,
			Quantity:    items[i].Quantity,
		})
	}

	if deductStock {
		if err := s.ledger.ReserveAll(ctx, lines); err != nil {
			return "", err
		}
	}

	now := time.Now()
	order := &entity.Order{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		UserEmail: in.UserEmail,
		Items:     items,
		Total:     in.Total,
		Profit:    profit,
		Status:    entity.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.store.CreateOrder(ctx, order); err != nil {
		if deductStock {
			s.ledger.ReleaseAll(ctx, lines)
		}
		return "", fmt.Errorf("create order: %w", err)
	}

	s.sendMail(order.UserEmail,
		fmt.Sprintf("Confirmación de Pedido #%s", shortID(order.ID)),
		fmt.Sprintf("<h1>Gracias por su compra</h1><p>Hemos recibido su pedido por un total de <strong>$%.2f</strong>.</p><p>Queda pendiente de preparación.</p>", order.Total))
	s.publish(ctx, order, "created")
	s.invalidate(ctx, productsCacheKey, ordersCacheKey)

	return order.ID, nil
}

// SetStatus moves an order through the lifecycle. Setting the status an order
// already has is a no-op, so re-cancelling never double-restores stock. On a
// transition to CANCELLED stock is restored before the status is persisted: a
// crash in between leaves restored stock with a stale status, which a retry
// fixes, instead of an unrecoverable oversell the other way around.
func (s *OrderService) SetStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	// Always re-read from the adapter; no in-process copy spans calls.
	orders, err := s.store.GetOrders(ctx)
	if err != nil {
		return fmt.Errorf("get orders: %w", err)
	}
	var order *entity.Order
	for i := range orders {
		if orders[i].ID == orderID {
			order = &orders[i]
			break
		}
	}
	if order == nil {
		return fmt.Errorf("order %s: %w", orderID, repository.ErrNotFound)
	}

	if order.Status == status {
		return nil
	}
	if !entity.CanTransition(order.Status, status) {
		return &TransitionError{From: order.Status, To: status}
	}

	if status == entity.StatusCancelled {
		for _, it := range order.Items {
			err := s.ledger.Restore(ctx, ledger.Line{
				ProductID:   it.ProductID,
				ProductName: it.ProductName,
				Quantity:    it.Quantity,
			})
			if err != nil {
				return err
			}
		}
	}

	if err := s.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if order.UserEmail != "" {
		s.sendMail(order.UserEmail,
			fmt.Sprintf("Actualización de Pedido #%s", shortID(order.ID)),
			fmt.Sprintf("<h1>Su pedido ha cambiado de estado</h1><p>El estado de su pedido es ahora: <strong>%s</strong></p>", status))
	}
	event := "updated"
	if status == entity.StatusCancelled {
		event = "cancelled"
	}
	order.Status = status
	s.publish(ctx, order, event)
	s.invalidate(ctx, productsCacheKey, ordersCacheKey)

	return nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]entity.Order, error) {
	return s.store.GetOrders(ctx)
}

func (s *OrderService) ListOrdersByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	return s.store.GetOrdersByUser(ctx, userID)
}

func (s *OrderService) claimIdempotencyKey(ctx context.Context, key string) error {
	if s.rdb == nil || key == "" {
		return nil
	}
	ok, err := s.rdb.SetNX(ctx, "idempotent-key:"+key, "1", 24*time.Hour).Result()
	if err != nil {
		logger.Error().Err(err).Msg("idempotency key check failed")
		return nil
	}
	if !ok {
		return ErrDuplicateOrder
	}
	return nil
}

func (s *OrderService) invalidate(ctx context.Context, keys ...string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		logger.Error().Err(err).Msg("cache invalidation failed")
	}
}

func (s *OrderService) publish(ctx context.Context, order *entity.Order, event string) {
	if err := s.events.PublishOrder(ctx, order, event); err != nil {
		logger.Error().Err(err).Str("order_id", order.ID).Msg("publish order event failed")
	}
}

func (s *OrderService) sendMail(to, subject, body string) {
	if s.mailer == nil || to == "" {
		return
	}
	if err := s.mailer.Send(to, subject, body); err != nil {
		logger.Error().Err(err).Str("to", to).Msg("send mail failed")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
