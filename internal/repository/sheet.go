package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"

	"github.com/libreriarexy/libreriarexy/internal/entity"
)

// Fixed workbook layout. Each entity type maps to one sheet with a fixed
// column schema; data rows start right below the single header row.
//
//	Productos: A id, B nombre, C descripcion, D precio, E stock,
//	           F categoria, G imagenes (comma joined, first is primary),
//	           H activo (TRUE/FALSE), I detalle
//	Usuarios:  A id, B email, C nombre, D rol, E saldo,
//	           F aprobado (TRUE/FALSE), G creado, H direccion, I telefono,
//	           J password
//	Pedidos:   A id, B usuario id, C usuario email, D total, E estado,
//	           F creado, G items (JSON)
const (
	productSheet = "Productos"
	userSheet    = "Usuarios"
	orderSheet   = "Pedidos"

	headerRows = 1
)

// SheetStore persists everything in a spreadsheet workbook. Rows are
// re-scanned on every call and writes address single cells or whole rows by
// row number, so rows must never be reordered outside this system. There are
// no transactions here: the mutex serializes writers within this process
// only, concurrent external editors can still lose updates.
type SheetStore struct {
	mu   sync.Mutex
	path string
}

func NewSheetStore(path string) (*SheetStore, error) {
	s := &SheetStore{path: path}
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		if err := s.createWorkbook(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *SheetStore) createWorkbook() error {
	f := excelize.NewFile()
	f.NewSheet(productSheet)
	f.NewSheet(userSheet)
	f.NewSheet(orderSheet)
	f.DeleteSheet("Sheet1")

	writeRow(f, productSheet, 1, []interface{}{
		"ID", "Nombre", "Descripcion", "Precio", "Stock", "Categoria", "Imagenes", "Activo", "Detalle",
	})
	writeRow(f, userSheet, 1, []interface{}{
		"ID", "Email", "Nombre", "Rol", "Saldo", "Aprobado", "Creado", "Direccion", "Telefono", "Password",
	})
	writeRow(f, orderSheet, 1, []interface{}{
		"ID", "UsuarioID", "UsuarioEmail", "Total", "Estado", "Creado", "Items",
	})
	return f.SaveAs(s.path)
}

func (s *SheetStore) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return f, nil
}

var sheetCols = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

func axis(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	for i, v := range values {
		f.SetCellValue(sheet, axis(sheetCols[i], row), v)
	}
}

// cell is tolerant of short rows; the sheet API drops trailing empty cells.
func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func cellFloat(row []string, i int) float64 {
	v, _ := strconv.ParseFloat(cell(row, i), 64)
	return v
}

func cellInt(row []string, i int) int {
	v, _ := strconv.Atoi(cell(row, i))
	return v
}

func cellTime(row []string, i int) time.Time {
	t, _ := time.Parse(time.RFC3339, cell(row, i))
	return t
}

// rowIndex maps entity ids to their 1-based sheet row, keeping the offset
// arithmetic out of every caller. Rebuilt on each call, never cached.
func rowIndex(rows [][]string) map[string]int {
	idx := make(map[string]int, len(rows))
	for i, row := range rows {
		if i < headerRows {
			continue
		}
		if id := cell(row, 0); id != "" {
			idx[id] = i + 1
		}
	}
	return idx
}

func parseProductRow(row []string) entity.Product {
	images := []string{}
	for _, img := range strings.Split(cell(row, 6), ",") {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	p := entity.Product{
		ID:          cell(row, 0),
		Name:        cell(row, 1),
		Description: cell(row, 2),
		Price:       cellFloat(row, 3),
		Stock:       cellInt(row, 4),
		Category:    cell(row, 5),
		Active:      cell(row, 7) == "TRUE",
		Details:     cell(row, 8),
	}
	if len(images) > 0 {
		p.ImageURL = images[0]
		p.Images = images[1:]
	}
	return p
}

func parseUserRow(row []string) entity.User {
	return entity.User{
		ID:        cell(row, 0),
		Email:     cell(row, 1),
		Name:      cell(row, 2),
		Role:      entity.Role(cell(row, 3)),
		Balance:   cellFloat(row, 4),
		Approved:  cell(row, 5) == "TRUE",
		CreatedAt: cellTime(row, 6),
		Address:   cell(row, 7),
		Phone:     cell(row, 8),
		Password:  cell(row, 9),
	}
}

func parseOrderRow(row []string) entity.Order {
	var items []entity.OrderItem
	raw := cell(row, 6)
	if raw == "" {
		raw = "[]"
	}
	_ = json.Unmarshal([]byte(raw), &items)
	o := entity.Order{
		ID:        cell(row, 0),
		UserID:    cell(row, 1),
		UserEmail: cell(row, 2),
		Total:     cellFloat(row, 3),
		Status:    entity.OrderStatus(cell(row, 4)),
		CreatedAt: cellTime(row, 5),
		UpdatedAt: cellTime(row, 5),
		Items:     items,
	}
	// the workbook has no profit column, the item snapshots carry it
	o.Profit = o.ItemProfit()
	return o
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func userRowValues(u *entity.User) []interface{} {
	return []interface{}{
		u.ID, u.Email, u.Name, string(u.Role), u.Balance,
		boolCell(u.Approved), u.CreatedAt.Format(time.RFC3339),
		u.Address, u.Phone, u.Password,
	}
}

func (s *SheetStore) GetProducts(ctx context.Context) ([]entity.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	rows := f.GetRows(productSheet)
	var out []entity.Product
	for i, row := range rows {
		if i < headerRows || cell(row, 0) == "" {
			continue
		}
		out = append(out, parseProductRow(row))
	}
	return out, nil
}

func (s *SheetStore) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	products, err := s.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *SheetStore) AdjustStock(ctx context.Context, productID string, delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return false, err
	}
	rows := f.GetRows(productSheet)
	rowNum, ok := rowIndex(rows)[productID]
	if !ok {
		return false, nil
	}
	stock := cellInt(rows[rowNum-1], 4)
	if delta < 0 && stock+delta < 0 {
		return false, nil
	}
	f.SetCellValue(productSheet, axis("E", rowNum), stock+delta)
	return true, f.Save()
}

func (s *SheetStore) GetUsers(ctx context.Context) ([]entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getUsers()
}

func (s *SheetStore) getUsers() ([]entity.User, error) {
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	rows := f.GetRows(userSheet)
	var out []entity.User
	for i, row := range rows {
		if i < headerRows || cell(row, 0) == "" {
			continue
		}
		out = append(out, parseUserRow(row))
	}
	return out, nil
}

func (s *SheetStore) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	users, err := s.GetUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *SheetStore) CreateUser(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return err
	}
	rows := f.GetRows(userSheet)
	writeRow(f, userSheet, len(rows)+1, userRowValues(user))
	return f.Save()
}

func (s *SheetStore) UpdateUser(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return err
	}
	rowNum, ok := rowIndex(f.GetRows(userSheet))[user.ID]
	if !ok {
		return ErrNotFound
	}
	writeRow(f, userSheet, rowNum, userRowValues(user))
	return f.Save()
}

func (s *SheetStore) AdjustUserBalance(ctx context.Context, userID string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return err
	}
	rows := f.GetRows(userSheet)
	rowNum, ok := rowIndex(rows)[userID]
	if !ok {
		return ErrNotFound
	}
	balance := cellFloat(rows[rowNum-1], 4)
	f.SetCellValue(userSheet, axis("E", rowNum), balance+delta)
	return f.Save()
}

func (s *SheetStore) SetUserApproval(ctx context.Context, userID string, approved bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return err
	}
	rowNum, ok := rowIndex(f.GetRows(userSheet))[userID]
	if !ok {
		return ErrNotFound
	}
	role := entity.RolePending
	if approved {
		role = entity.RoleClient
	}
	f.SetCellValue(userSheet, axis("F", rowNum), boolCell(approved))
	f.SetCellValue(userSheet, axis("D", rowNum), string(role))
	return f.Save()
}

func (s *SheetStore) GetOrders(ctx context.Context) ([]entity.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return nil, err
	}
	rows := f.GetRows(orderSheet)
	var out []entity.Order
	for i, row := range rows {
		if i < headerRows || cell(row, 0) == "" {
			continue
		}
		out = append(out, parseOrderRow(row))
	}
	return out, nil
}

func (s *SheetStore) GetOrdersByUser(ctx context.Context, userID string) ([]entity.Order, error) {
	orders, err := s.GetOrders(ctx)
	if err != nil {
		return nil, err
	}
	var out []entity.Order
	for _, o := range orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *SheetStore) CreateOrder(ctx context.Context, order *entity.Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return "", err
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return "", err
	}
	rows := f.GetRows(orderSheet)
	writeRow(f, orderSheet, len(rows)+1, []interface{}{
		order.ID, order.UserID, order.UserEmail, order.Total,
		string(order.Status), order.CreatedAt.Format(time.RFC3339), string(items),
	})
	if err := f.Save(); err != nil {
		return "", err
	}
	return order.ID, nil
}

func (s *SheetStore) UpdateOrderStatus(ctx context.Context, orderID string, status entity.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open()
	if err != nil {
		return err
	}
	rowNum, ok := rowIndex(f.GetRows(orderSheet))[orderID]
	if !ok {
		return ErrNotFound
	}
	f.SetCellValue(orderSheet, axis("E", rowNum), string(status))
	return f.Save()
}
