package repository

import (
	"context"
	"errors"

	"github.com/libreriarexy/libreriarexy/internal/entity"
)

// ErrNotFound is returned when a product, user or order id is unknown.
var ErrNotFound = errors.New("not found")

// Store is the uniform storage contract shared by every backend. The engine
// and the state machine only ever talk to this interface; which backend is
// used gets decided once at startup and injected into the constructors.
type Store interface {
	// Products
	GetProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	// AdjustStock atomically adds delta to a product's stock. It returns
	// false without mutating anything when the product does not exist or
	// when a negative delta would drive stock below zero. A delta down to
	// exactly zero stock is accepted, as is any non-negative delta.
	AdjustStock(ctx context.Context, productID string, delta int) (bool, error)

	// Users
	GetUsers(ctx context.Context) ([]entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) error
	// UpdateUser replaces the stored user matching user.ID.
	UpdateUser(ctx context.Context, user *entity.User) error
	AdjustUserBalance(ctx context.Context, userID string, delta float64) error
	// SetUserApproval flips the approval flag. Role and approval are coupled:
	// approving makes the user a CLIENT, unapproving makes them PENDING.
	SetUserApproval(ctx context.Context, userID string, approved bool) error

	// Orders
	GetOrders(ctx context.Context) ([]entity.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]entity.Order, error)
	CreateOrder(ctx context.Context, order *entity.Order) (string, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) error
}
