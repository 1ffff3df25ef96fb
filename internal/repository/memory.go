package repository

import (
	"context"
	"sync"
	"time"

	"github.com/libreriarexy/libreriarexy/internal/entity"
)

// MemoryStore keeps everything in process memory. A configurable artificial
// latency per call makes it behave a bit more like the remote backends during
// development and testing.
type MemoryStore struct {
	mu       sync.Mutex
	latency  time.Duration
	products []entity.Product
	users    []entity.User
	orders   []entity.Order
}

func NewMemoryStore(latency time.Duration) *MemoryStore {
	return &MemoryStore{latency: latency}
}

// Seed loads initial catalog and account data. Products are created outside
// the order flow, so this is the only way product rows enter this backend.
func (m *MemoryStore) Seed(products []entity.Product, users []entity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, products...)
	m.users = append(m.users, users...)
}

func (m *MemoryStore) sleep() {
	if m.latency > 0 {
		time.Sleep(m.latency)
	}
}

func (m *MemoryStore) GetProducts(ctx context.Context) ([]entity.Product, error) {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *MemoryStore) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) AdjustStock(ctx context.Context, productID string, delta int) (bool, error) {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID != productID {
			continue
		}
		if delta < 0 && m.products[i].Stock+delta < 0 {
			return false, nil
		}
		m.products[i].Stock += delta
		return true, nil
	}
	return false, nil
}

func (m *MemoryStore) GetUsers(ctx context.Context) ([]entity.User, error) {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.User, len(m.users))
	copy(out, m.users)
	return out, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *entity.User) error {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, *user)
	return nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *entity.User) error {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == user.ID {
			m.users[i] = *user
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) AdjustUserBalance(ctx context.Context, userID string, delta float64) error {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == userID {
			m.users[i].Balance += delta
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) SetUserApproval(ctx context.Context, userID string, approved bool) error {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].ID == userID {
			m.users[i].Approved = approved
			if approved {
				m.users[i].Role = entity.RoleClient
			} else {
				m.users[i].Role = entity.RolePending
			}
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) GetOrders(ctx context.Context) ([]entity.Order, error) {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *MemoryStore) GetOrdersByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateOrder(ctx context.Context, order *entity.Order) (string, error) {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *order
	cp.Items = make([]entity.OrderItem, len(order.Items))
	copy(cp.Items, order.Items)
	m.orders = append(m.orders, cp)
	return order.ID, nil
}

func (m *MemoryStore) UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].ID == orderID {
			m.orders[i].Status = status
			m.orders[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}
