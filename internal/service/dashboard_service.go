package service

import (
	"context"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/repository"
)

// DashboardSummary is the admin landing view. Cancelled orders are excluded
// from revenue and profit.
type DashboardSummary struct {
	PendingOrders int     `json:"pending_orders"`
	OutOfStock    int     `json:"out_of_stock"`
	PendingUsers  int     `json:"pending_users"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalProfit   float64 `json:"total_profit"`
}

type DashboardService struct {
	store repository.Store
}

func NewDashboardService(store repository.Store) *DashboardService {
	return &DashboardService{store: store}
}

func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	orders, err := s.store.GetOrders(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.store.GetProducts(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.store.GetUsers(ctx)
	if err != nil {
		return nil, err
	}

	sum := &DashboardSummary{}
	for _, o := range orders {
		if o.Status == entity.StatusPending {
			sum.PendingOrders++
		}
		if o.Status != entity.StatusCancelled {
			sum.TotalRevenue += o.Total
			sum.TotalProfit += o.Profit
		}
	}
	for _, p := range products {
		if p.Stock <= 0 {
			sum.OutOfStock++
		}
	}
	for _, u := range users {
		if !u.Approved {
			sum.PendingUsers++
		}
	}
	return sum, nil
}
