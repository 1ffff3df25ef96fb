package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/repository"
)

// DocumentType is the kind of point-of-sale document being issued.
type DocumentType string

const (
	// DocRemito is a normal walk-in sale and deducts stock.
	DocRemito DocumentType = "REMITO"
	// DocCreditNote reverses a sale: quantities are negated, stock goes
	// back up and the recorded order has a negative total.
	DocCreditNote DocumentType = "NOTA_CREDITO"
	// DocQuote is a price quote. It records an order but leaves stock
	// untouched; nothing is reserved until the quote becomes a sale.
	DocQuote DocumentType = "PRESUPUESTO"
)

// Walk-in sales without a registered customer get attributed to a fixed
// anonymous account.
const (
	walkInUserID = "CONSUMIDOR_FINAL_LOCAL"
	walkInEmail  = ""
)

var (
	ErrInvalidDiscount = errors.New("discount must be between 0 and 100")
	ErrUnknownDocType  = errors.New("unknown document type")
)

type SaleLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type SaleInput struct {
	DocType DocumentType `json:"doc_type"`
	Lines   []SaleLine   `json:"lines"`
	// DiscountPercent is an order-level discount (0-100) applied to the
	// subtotal before the total is persisted.
	DiscountPercent float64 `json:"discount_percent"`
	UserID          string  `json:"user_id"`
	UserEmail       string  `json:"user_email"`
}

// SaleSummary breaks a sale down for the terminal display. GrossProfit
// ignores the discount, NetProfit is what the sale actually earns; only the
// (post-discount) Total ends up on the persisted order.
type SaleSummary struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	Total          float64 `json:"total"`
	GrossProfit    float64 `json:"gross_profit"`
	NetProfit      float64 `json:"net_profit"`
}

// POSService is the in-person sales front end to the order engine. Prices and
// costs are always taken from the catalog, never from the terminal.
type POSService struct {
	store  repository.Store
	orders *OrderService
}

func NewPOSService(store repository.Store, orders *OrderService) *POSService {
	return &POSService{store: store, orders: orders}
}

func summarize(items []entity.OrderItem, discountPercent float64) SaleSummary {
	var subtotal, cost float64
	for _, it := range items {
		subtotal += it.PriceAtPurchase * float64(it.Quantity)
		cost += it.CostAtPurchase * float64(it.Quantity)
	}
	discount := subtotal * discountPercent / 100
	total := subtotal - discount
	return SaleSummary{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          total,
		GrossProfit:    subtotal - cost,
		NetProfit:      total - cost,
	}
}

// Process issues a POS document. The resulting order id and the sale
// breakdown are returned for printing.
func (s *POSService) Process(ctx context.Context, in SaleInput) (string, SaleSummary, error) {
	if in.DiscountPercent < 0 || in.DiscountPercent > 100 {
		return "", SaleSummary{}, ErrInvalidDiscount
	}
	switch in.DocType {
	case DocRemito, DocCreditNote, DocQuote:
	default:
		return "", SaleSummary{}, fmt.Errorf("%w: %q", ErrUnknownDocType, in.DocType)
	}
	if len(in.Lines) == 0 {
		return "", SaleSummary{}, ErrEmptyOrder
	}

	items := make([]entity.OrderItem, 0, len(in.Lines))
	for _, line := range in.Lines {
		p, err := s.store.GetProduct(ctx, line.ProductID)
		if err != nil {
			return "", SaleSummary{}, fmt.Errorf("product %s: %w", line.ProductID, err)
		}
		qty := line.Quantity
		if in.DocType == DocCreditNote {
			qty = -qty
		}
		items = append(items, entity.OrderItem{
			ProductID:       p.ID,
			ProductName:     p.Name,
			Quantity:        qty,
			PriceAtPurchase: p.Price,
			CostAtPurchase:  p.Cost,
		})
	}

	summary := summarize(items, in.DiscountPercent)

	userID, userEmail := in.UserID, in.UserEmail
	if userID == "" {
		userID, userEmail = walkInUserID, walkInEmail
	}
	orderInput := PlaceOrderInput{
		Items:     items,
		Total:     summary.Total,
		UserID:    userID,
		UserEmail: userEmail,
	}

	var (
		orderID string
		err     error
	)
	if in.DocType == DocQuote {
		orderID, err = s.orders.RecordQuote(ctx, orderInput)
	} else {
		orderID, err = s.orders.PlaceOrder(ctx, orderInput)
	}
	if err != nil {
		return "", SaleSummary{}, err
	}
	return orderID, summary, nil
}
