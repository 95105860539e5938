package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{"pending to ordered", StatusPending, StatusOrdered, true},
		{"pending payment to ordered", StatusPendingPayment, StatusOrdered, true},
		{"ordered to processing", StatusOrdered, StatusProcessing, true},
		{"processing to shipped", StatusProcessing, StatusShipped, true},
		{"shipped to out for delivery", StatusShipped, StatusOutForDelivery, true},
		{"out for delivery to delivered", StatusOutForDelivery, StatusDelivered, true},
		{"processing to cancelled", StatusProcessing, StatusCancelled, true},
		{"ordered twice", StatusOrdered, StatusOrdered, false},
		{"shipped to cancelled", StatusShipped, StatusCancelled, false},
		{"delivered to cancelled", StatusDelivered, StatusCancelled, false},
		{"cancelled to ordered", StatusCancelled, StatusOrdered, false},
		{"skip ahead", StatusOrdered, StatusDelivered, false},
		{"backwards", StatusShipped, StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTransition(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	o := &Order{ID: "order_1", Status: StatusPendingPayment}
	require.NoError(t, Transition(o, StatusOrdered, at))
	assert.Equal(t, StatusOrdered, o.Status)
	assert.Equal(t, at, o.UpdatedAt)

	delivered := &Order{ID: "order_2", Status: StatusDelivered}
	err := Transition(delivered, StatusCancelled, at)
	assert.True(t, errors.Is(err, ErrIllegalTransition))
	assert.Equal(t, StatusDelivered, delivered.Status)
	assert.True(t, delivered.UpdatedAt.IsZero())

	err = Transition(&Order{Status: StatusPending}, OrderStatus("Lost"), at)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestSourcesOf(t *testing.T) {
	assert.Equal(t, []OrderStatus{StatusPending, StatusPendingPayment}, SourcesOf(StatusOrdered))
	assert.Equal(t,
		[]OrderStatus{StatusPending, StatusPendingPayment, StatusOrdered, StatusProcessing},
		SourcesOf(StatusCancelled))
	assert.Empty(t, SourcesOf(StatusPending))
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus("out for delivery")
	require.NoError(t, err)
	assert.Equal(t, StatusOutForDelivery, st)

	_, err = ParseOrderStatus("returned")
	assert.Error(t, err)

	assert.True(t, StatusDelivered.Terminal())
	assert.False(t, StatusShipped.Terminal())
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(49999), MinorUnits(decimal.RequireFromString("499.99")))
	assert.Equal(t, int64(100), MinorUnits(decimal.RequireFromString("1")))
	assert.Equal(t, int64(1235), MinorUnits(decimal.RequireFromString("12.345")))
}

func TestAddress_Lines(t *testing.T) {
	a := Address{
		Name:       "Asha Rao",
		Line1:      "12 MG Road",
		Line2:      "  ",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
		Phone:      "9999999999",
	}
	assert.Equal(t, []string{"Asha Rao", "12 MG Road", "Bengaluru, KA - 560001", "9999999999"}, a.Lines())
	assert.Empty(t, Address{}.Lines())
}
