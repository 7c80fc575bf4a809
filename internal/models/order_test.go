package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipping, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusShipping, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusDelivered, false},
		{StatusShipping, StatusDelivered, true},
		{StatusShipping, StatusCancelled, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, c := range cases {
		require.Equal(t, c.want, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestParseOrderStatus(t *testing.T) {
	s, err := ParseOrderStatus("shipping")
	require.NoError(t, err)
	require.Equal(t, StatusShipping, s)

	s, err = ParseOrderStatus("PENDING")
	require.NoError(t, err)
	require.Equal(t, StatusPending, s)

	_, err = ParseOrderStatus("teleported")
	require.Error(t, err)
}

func TestOrderItemLineTotal(t *testing.T) {
	i := OrderItem{Quantity: 3, UnitPrice: decimal.NewFromFloat(12.50)}
	require.True(t, i.LineTotal().Equal(decimal.NewFromFloat(37.50)))
}
