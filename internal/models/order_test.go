package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to OrderStatus }{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusProcessing},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusProcessing},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
	}

	for _, edge := range allowed {
		assert.Truef(t, CanTransition(edge.from, edge.to), "%s -> %s should be allowed", edge.from, edge.to)
	}

	all := []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	}

	isAllowed := func(from, to OrderStatus) bool {
		for _, edge := range allowed {
			if edge.from == from && edge.to == to {
				return true
			}
		}
		return false
	}

	// Every edge not in the table is rejected, including self-transitions
	// and anything out of a terminal state.
	for _, from := range all {
		for _, to := range all {
			if isAllowed(from, to) {
				continue
			}
			assert.Falsef(t, CanTransition(from, to), "%s -> %s should be rejected", from, to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, OrderStatusDelivered.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusPending.IsTerminal())
	assert.False(t, OrderStatusShipped.IsTerminal())
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentMethodVNPay))
	assert.True(t, ValidPaymentMethod(PaymentMethodCOD))
	assert.True(t, ValidPaymentMethod(PaymentMethodBankTransfer))
	assert.False(t, ValidPaymentMethod("PAYPAL"))
	assert.False(t, ValidPaymentMethod(""))
}
