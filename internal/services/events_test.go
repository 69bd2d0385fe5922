package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopcore/internal/models"
)

func TestInProcBusDeliversToAllSubscribers(t *testing.T) {
	bus := NewInProcBus()

	first := make(chan Event, 1)
	second := make(chan Event, 1)
	bus.Subscribe(func(e Event) { first <- e })
	bus.Subscribe(func(e Event) { second <- e })

	published := Event{
		Type:    EventOrderCreated,
		OrderID: uuid.New(),
		Number:  42,
		Status:  models.OrderStatusPending,
		Amount:  150000,
	}
	bus.Publish(published)

	for _, ch := range []chan Event{first, second} {
		select {
		case got := <-ch:
			assert.Equal(t, published, got)
		case <-time.After(time.Second):
			require.Fail(t, "subscriber did not receive the event")
		}
	}
}

func TestInProcBusNoSubscribers(t *testing.T) {
	bus := NewInProcBus()
	// Publishing into the void must not panic or block.
	bus.Publish(Event{Type: EventPaymentCompleted})
}
