package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		ok       bool
	}{
		{StatusPending, StatusPrepared, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusDelivered, false},
		{StatusPrepared, StatusDelivered, true},
		{StatusPrepared, StatusCancelled, true},
		{StatusPrepared, StatusPending, false},
		{StatusDelivered, StatusCancelled, true},
		{StatusDelivered, StatusPending, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusPrepared, false},
		{StatusCancelled, StatusDelivered, false},
	}
	for _, c := range cases {
		require.Equal(t, c.ok, CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestItemProfit(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Quantity: 3, PriceAtPurchase: 4500, CostAtPurchase: 2500},
		{Quantity: 2, PriceAtPurchase: 1200, CostAtPurchase: 600},
	}}
	require.Equal(t, 3*2000.0+2*600.0, o.ItemProfit())
}

func TestItemProfitNegativeQuantity(t *testing.T) {
	o := Order{Items: []OrderItem{
		{Quantity: -2, PriceAtPurchase: 1000, CostAtPurchase: 400},
	}}
	require.Equal(t, -1200.0, o.ItemProfit())
}
