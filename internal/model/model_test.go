package model_test

import (
	"testing"

	"flight-booking/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatusTransitions(t *testing.T) {
	cases := []struct {
		from    model.TicketStatus
		to      model.TicketStatus
		allowed bool
	}{
		{model.TicketStatusQueued, model.TicketStatusConfirmed, true},
		{model.TicketStatusQueued, model.TicketStatusCancelled, true},
		{model.TicketStatusConfirmed, model.TicketStatusCancelled, true},
		{model.TicketStatusConfirmed, model.TicketStatusQueued, false},
		{model.TicketStatusCancelled, model.TicketStatusQueued, false},
		{model.TicketStatusCancelled, model.TicketStatusConfirmed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    model.OrderStatus
		to      model.OrderStatus
		allowed bool
	}{
		{model.OrderStatusPending, model.OrderStatusProcessing, true},
		{model.OrderStatusPending, model.OrderStatusCanceled, true},
		{model.OrderStatusPending, model.OrderStatusCompleted, false},
		{model.OrderStatusProcessing, model.OrderStatusCompleted, true},
		{model.OrderStatusProcessing, model.OrderStatusCanceled, true},
		{model.OrderStatusCompleted, model.OrderStatusCanceled, false},
		{model.OrderStatusCanceled, model.OrderStatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOrderStatusIsFinal(t *testing.T) {
	assert.False(t, model.OrderStatusPending.IsFinal())
	assert.False(t, model.OrderStatusProcessing.IsFinal())
	assert.True(t, model.OrderStatusCompleted.IsFinal())
	assert.True(t, model.OrderStatusCanceled.IsFinal())
}

func TestTicketPassengerCount(t *testing.T) {
	ticket := &model.Ticket{AdultCount: 2, ChildCount: 1}
	assert.Equal(t, 3, ticket.PassengerCount())

	solo := &model.Ticket{AdultCount: 1}
	assert.Equal(t, 1, solo.PassengerCount())
}

func TestIdentityCanAccess(t *testing.T) {
	user := model.Identity{UserID: 5, Role: model.RoleUser}
	assert.True(t, user.CanAccess(5))
	assert.False(t, user.CanAccess(6))
	assert.False(t, user.IsAdmin())

	admin := model.Identity{UserID: 1, Role: model.RoleAdmin}
	assert.True(t, admin.CanAccess(5))
	assert.True(t, admin.IsAdmin())
}

func TestNewPagination(t *testing.T) {
	p := model.NewPagination(2, 10, 25)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 3, p.TotalPages)

	empty := model.NewPagination(1, 10, 0)
	assert.Equal(t, 0, empty.TotalPages)

	exact := model.NewPagination(1, 10, 30)
	assert.Equal(t, 3, exact.TotalPages)
}

func TestPaymentMethodIsValid(t *testing.T) {
	assert.True(t, model.PaymentMethodMoMo.IsValid())
	assert.True(t, model.PaymentMethodVNPay.IsValid())
	assert.True(t, model.PaymentMethodCash.IsValid())
	assert.False(t, model.PaymentMethod("Barter").IsValid())
}
