package api

import (
	"github.com/labstack/echo/v4"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/service"
)

// AdminHandler is the back office: order management, user approval, the
// dashboard and the point-of-sale terminal.
type AdminHandler struct {
	orders    *service.OrderService
	users     *service.UserService
	dashboard *service.DashboardService
	pos       *service.POSService
}

func NewAdminHandler(orders *service.OrderService, users *service.UserService, dashboard *service.DashboardService, pos *service.POSService) *AdminHandler {
	return &AdminHandler{orders: orders, users: users, dashboard: dashboard, pos: pos}
}

// ListOrders --> GET /admin/orders
func (h *AdminHandler) ListOrders(c echo.Context) error {
	orders, err := h.orders.ListOrders(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, orders)
}

// UpdateOrderStatus --> PUT /admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c echo.Context) error {
	var in struct {
		Status entity.OrderStatus `json:"status"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "invalid request payload"})
	}
	if err := h.orders.SetStatus(c.Request().Context(), c.Param("id"), in.Status); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "status updated"})
}

// ListUsers --> GET /admin/users
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, users)
}

// SetApproval --> PUT /admin/users/:id/approval
func (h *AdminHandler) SetApproval(c echo.Context) error {
	var in struct {
		Approved bool `json:"approved"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "invalid request payload"})
	}
	if err := h.users.SetApproval(c.Request().Context(), c.Param("id"), in.Approved); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "approval updated"})
}

// AdjustBalance --> PUT /admin/users/:id/balance
func (h *AdminHandler) AdjustBalance(c echo.Context) error {
	var in struct {
		Delta float64 `json:"delta"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "invalid request payload"})
	}
	if err := h.users.AdjustBalance(c.Request().Context(), c.Param("id"), in.Delta); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"message": "balance updated"})
}

// Dashboard --> GET /admin/dashboard
func (h *AdminHandler) Dashboard(c echo.Context) error {
	summary, err := h.dashboard.Summary(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, summary)
}

// ProcessSale runs the POS terminal --> POST /admin/pos
func (h *AdminHandler) ProcessSale(c echo.Context) error {
	var in service.SaleInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "invalid request payload"})
	}
	orderID, summary, err := h.pos.Process(c.Request().Context(), in)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, map[string]interface{}{
		"order_id": orderID,
		"summary":  summary,
	})
}
