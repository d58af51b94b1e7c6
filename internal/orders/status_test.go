package orders_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ecobazaar/internal/apperr"
	"ecobazaar/internal/orders"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to orders.Status
		ok       bool
	}{
		{orders.StatusPending, orders.StatusConfirmed, true},
		{orders.StatusPending, orders.StatusDelivered, true},
		{orders.StatusPending, orders.StatusCancelled, true},
		{orders.StatusConfirmed, orders.StatusShipped, true},
		{orders.StatusShipped, orders.StatusDelivered, true},
		{orders.StatusDelivered, orders.StatusPending, false},
		{orders.StatusDelivered, orders.StatusCancelled, false},
		{orders.StatusCancelled, orders.StatusConfirmed, false},
		{orders.StatusShipped, orders.StatusPending, false},
		{orders.StatusConfirmed, orders.StatusPending, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, orders.CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusValid(t *testing.T) {
	assert.True(t, orders.StatusPending.Valid())
	assert.True(t, orders.StatusCancelled.Valid())
	assert.False(t, orders.Status("LOST").Valid())
}

func deliveredOrder(deliveredAgo time.Duration, now time.Time) *orders.Order {
	d := now.Add(-deliveredAgo)
	return &orders.Order{
		Status:        orders.StatusDelivered,
		ReturnStatus:  orders.ReturnNone,
		DeliveredDate: &d,
	}
}

func TestValidateReturnRequest(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("inside window", func(t *testing.T) {
		assert.NoError(t, orders.ValidateReturnRequest(deliveredOrder(3*24*time.Hour, now), now))
	})

	t.Run("window expired after 8 days", func(t *testing.T) {
		err := orders.ValidateReturnRequest(deliveredOrder(8*24*time.Hour, now), now)
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
		assert.Contains(t, err.Error(), "window expired")
	})

	t.Run("not delivered", func(t *testing.T) {
		o := &orders.Order{Status: orders.StatusShipped, ReturnStatus: orders.ReturnNone}
		assert.ErrorIs(t, orders.ValidateReturnRequest(o, now), apperr.ErrInvalidState)
	})

	t.Run("double request", func(t *testing.T) {
		o := deliveredOrder(time.Hour, now)
		o.ReturnStatus = orders.ReturnPending
		assert.ErrorIs(t, orders.ValidateReturnRequest(o, now), apperr.ErrInvalidState)
	})

	t.Run("already resolved", func(t *testing.T) {
		o := deliveredOrder(time.Hour, now)
		o.ReturnStatus = orders.ReturnRejected
		assert.ErrorIs(t, orders.ValidateReturnRequest(o, now), apperr.ErrInvalidState)
	})
}

func TestContainsSeller(t *testing.T) {
	o := &orders.Order{Items: []orders.OrderItem{
		{SellerID: "s1"}, {SellerID: "s2"},
	}}
	assert.True(t, o.ContainsSeller("s1"))
	assert.True(t, o.ContainsSeller("s2"))
	assert.False(t, o.ContainsSeller("s3"))
}
