package entity

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPrepared  OrderStatus = "PREPARED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:   {StatusPrepared: true, StatusCancelled: true},
	StatusPrepared:  {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {StatusCancelled: true},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
// CANCELLED is terminal; there is no un-cancel path.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// OrderItem snapshots the product at purchase time so later catalog edits
// never change historical orders. Quantity is negative on credit notes.
type OrderItem struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
	CostAtPurchase  float64 `json:"cost_at_purchase"`
}

type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	UserEmail string      `json:"user_email"` // denormalized for backends without joins
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Profit    float64     `json:"profit"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ItemProfit recomputes profit from the item snapshots. Total and Profit are
// fixed at creation; this exists for backends that do not persist profit.
func (o *Order) ItemProfit() float64 {
	var p float64
	for _, it := range o.Items {
		p += (it.PriceAtPurchase - it.CostAtPurchase) * float64(it.Quantity)
	}
	return p
}
