package api

import (
	"github.com/labstack/echo/v4"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// PlaceOrder checks out the cart --> POST /orders
func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	cl := claims(c)
	if cl == nil {
		return c.JSON(401, map[string]string{"error": "unauthorized"})
	}
	if !cl.Approved {
		return c.JSON(403, map[string]string{"error": "account pending approval"})
	}

	var in struct {
		Items []entity.OrderItem `json:"items"`
		Total float64            `json:"total"`
	}
	if err := c.Bind(&in); err != nil {
		return c.JSON(400, map[string]string{"error": "invalid request payload"})
	}

	orderID, err := h.orders.PlaceOrder(c.Request().Context(), service.PlaceOrderInput{
		Items:          in.Items,
		Total:          in.Total,
		UserID:         cl.UserID,
		UserEmail:      cl.Email,
		IdempotencyKey: c.Request().Header.Get("Idempotent-Key"),
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, map[string]string{"order_id": orderID})
}

// MyOrders lists the caller's own orders --> GET /orders/mine
func (h *OrderHandler) MyOrders(c echo.Context) error {
	cl := claims(c)
	if cl == nil {
		return c.JSON(401, map[string]string{"error": "unauthorized"})
	}
	orders, err := h.orders.ListOrdersByUser(c.Request().Context(), cl.UserID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, orders)
}
