package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/libreriarexy/libreriarexy/internal/entity"
)

// SQLStore is the MySQL-backed implementation of Store. Stock deduction uses
// a conditional UPDATE so the non-negativity invariant holds even when two
// checkouts race on the same product row.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Migrate creates the schema if it does not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT,
			price DOUBLE NOT NULL,
			cost DOUBLE NOT NULL,
			stock INT NOT NULL,
			category VARCHAR(100),
			images TEXT,
			details TEXT,
			active BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(64) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL,
			balance DOUBLE NOT NULL DEFAULT 0,
			approved BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME NOT NULL,
			address VARCHAR(255),
			phone VARCHAR(50),
			password VARCHAR(255) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			user_email VARCHAR(255) NOT NULL,
			total DOUBLE NOT NULL,
			profit DOUBLE NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id VARCHAR(64) NOT NULL,
			product_id VARCHAR(64) NOT NULL,
			product_name VARCHAR(255) NOT NULL,
			quantity INT NOT NULL,
			price_at_purchase DOUBLE NOT NULL,
			cost_at_purchase DOUBLE NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		)`,
	}
	for _, q := range queries {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func splitImages(raw string, p *entity.Product) {
	var images []string
	for _, img := range strings.Split(raw, ",") {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	if len(images) > 0 {
		p.ImageURL = images[0]
		p.Images = images[1:]
	}
}

func (s *SQLStore) GetProducts(ctx context.Context) ([]entity.Product, error) {
	query := `SELECT id, name, description, price, cost, stock, category, images, details, active FROM products`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		var images string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Cost, &p.Stock, &p.Category, &images, &p.Details, &p.Active); err != nil {
			return nil, err
		}
		splitImages(images, &p)
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *SQLStore) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT id, name, description, price, cost, stock, category, images, details, active FROM products WHERE id = ?`
	var p entity.Product
	var images string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Cost, &p.Stock, &p.Category, &images, &p.Details, &p.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	splitImages(images, &p)
	return &p, nil
}

func (s *SQLStore) AdjustStock(ctx context.Context, productID string, delta int) (bool, error) {
	query := `UPDATE products SET stock = stock + ? WHERE id = ? AND stock + ? >= 0`
	res, err := s.db.ExecContext(ctx, query, delta, productID, delta)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLStore) GetUsers(ctx context.Context) ([]entity.User, error) {
	query := `SELECT id, email, name, role, balance, approved, created_at, address, phone, password FROM users`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Balance, &u.Approved, &u.CreatedAt, &u.Address, &u.Phone, &u.Password); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT id, email, name, role, balance, approved, created_at, address, phone, password FROM users WHERE email = ?`
	var u entity.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Balance, &u.Approved, &u.CreatedAt, &u.Address, &u.Phone, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLStore) CreateUser(ctx context.Context, user *entity.User) error {
	query := `INSERT INTO users (id, email, name, role, balance, approved, created_at, address, phone, password) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Email, user.Name, user.Role, user.Balance, user.Approved, user.CreatedAt, user.Address, user.Phone, user.Password)
	return err
}

func (s *SQLStore) UpdateUser(ctx context.Context, user *entity.User) error {
	query := `UPDATE users SET email = ?, name = ?, role = ?, balance = ?, approved = ?, address = ?, phone = ?, password = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, query, user.Email, user.Name, user.Role, user.Balance, user.Approved, user.Address, user.Phone, user.Password, user.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) AdjustUserBalance(ctx context.Context, userID string, delta float64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET balance = balance + ? WHERE id = ?`, delta, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) SetUserApproval(ctx context.Context, userID string, approved bool) error {
	role := entity.RolePending
	if approved {
		role = entity.RoleClient
	}
	res, err := s.db.ExecContext(ctx, `UPDATE users SET approved = ?, role = ? WHERE id = ?`, approved, role, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) getOrderItems(ctx context.Context, orderID string) ([]entity.OrderItem, error) {
	query := `SELECT product_id, product_name, quantity, price_at_purchase, cost_at_purchase FROM order_items WHERE order_id = ?`
	rows, err := s.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &it.PriceAtPurchase, &it.CostAtPurchase); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *SQLStore) queryOrders(ctx context.Context, query string, args ...interface{}) ([]entity.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.UserEmail, &o.Total, &o.Profit, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		items, err := s.getOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (s *SQLStore) GetOrders(ctx context.Context) ([]entity.Order, error) {
	return s.queryOrders(ctx, `SELECT id, user_id, user_email, total, profit, status, created_at, updated_at FROM orders`)
}

func (s *SQLStore) GetOrdersByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	return s.queryOrders(ctx, `SELECT id, user_id, user_email, total, profit, status, created_at, updated_at FROM orders WHERE user_id = ?`, userID)
}

func (s *SQLStore) CreateOrder(ctx context.Context, order *entity.Order) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}

	orderQuery := `INSERT INTO orders (id, user_id, user_email, total, profit, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, orderQuery, order.ID, order.UserID, order.UserEmail, order.Total, order.Profit, order.Status, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		tx.Rollback()
		return "", err
	}

	if len(order.Items) > 0 {
		itemQuery := `INSERT INTO order_items (order_id, product_id, product_name, quantity, price_at_purchase, cost_at_purchase) VALUES `
		var values []interface{}
		for _, it := range order.Items {
			itemQuery += "(?, ?, ?, ?, ?, ?),"
			values = append(values, order.ID, it.ProductID, it.ProductName, it.Quantity, it.PriceAtPurchase, it.CostAtPurchase)
		}
		itemQuery = itemQuery[:len(itemQuery)-1]
		if _, err := tx.ExecContext(ctx, itemQuery, values...); err != nil {
			tx.Rollback()
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return order.ID, nil
}

func (s *SQLStore) UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`, status, time.Now(), orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
