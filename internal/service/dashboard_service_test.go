package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/libreriarexy/libreriarexy/internal/entity"
	"github.com/libreriarexy/libreriarexy/internal/repository"
)

func TestDashboardSummary(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore(0)
	store.Seed([]entity.Product{
		{ID: "p1", Name: "Cuaderno", Stock: 50},
		{ID: "p2", Name: "Bolígrafo", Stock: 0},
	}, []entity.User{
		{ID: "u1", Email: "admin@example.com", Approved: true},
		{ID: "u2", Email: "ana@example.com", Approved: false},
	})
	_, err := store.CreateOrder(ctx, &entity.Order{ID: "o1", Total: 9000, Profit: 4000, Status: entity.StatusPending})
	require.NoError(t, err)
	_, err = store.CreateOrder(ctx, &entity.Order{ID: "o2", Total: 4500, Profit: 2000, Status: entity.StatusDelivered})
	require.NoError(t, err)
	_, err = store.CreateOrder(ctx, &entity.Order{ID: "o3", Total: 1200, Profit: 600, Status: entity.StatusCancelled})
	require.NoError(t, err)

	sum, err := NewDashboardService(store).Summary(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, sum.PendingOrders)
	require.Equal(t, 1, sum.OutOfStock)
	require.Equal(t, 1, sum.PendingUsers)
	require.Equal(t, 13500.0, sum.TotalRevenue, "cancelled orders do not count")
	require.Equal(t, 6000.0, sum.TotalProfit)
}

func TestCatalogListActiveHidesInactive(t *testing.T) {
	store := repository.NewMemoryStore(0)
	store.Seed([]entity.Product{
		{ID: "p1", Name: "Cuaderno", Active: true},
		{ID: "p2", Name: "Descontinuado", Active: false},
	}, nil)

	products, err := NewCatalogService(store, nil).ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "p1", products[0].ID)
}
