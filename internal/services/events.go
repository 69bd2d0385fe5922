package services

import (
	"sync"

	"github.com/google/uuid"

	"github.com/example/shopcore/internal/models"
)

// EventType names a domain event published by the ledgers.
type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventPaymentCompleted   EventType = "payment.completed"
)

// Event is the payload delivered to subscribers. Delivery is fire-and-forget:
// a slow or failing subscriber never affects the publishing operation.
type Event struct {
	Type    EventType
	OrderID uuid.UUID
	Number  int64
	UserID  uuid.UUID
	Status  models.OrderStatus
	Amount  int64
}

// EventBus decouples the order pipeline from whatever transports want to
// observe it (notifications, live updates). Ledgers publish; subscribers are
// registered at startup.
type EventBus interface {
	Publish(e Event)
	Subscribe(fn func(Event))
}

// InProcBus is the in-process EventBus used by the server. Each subscriber
// runs on its own goroutine per event.
type InProcBus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewInProcBus() *InProcBus {
	return &InProcBus{}
}

func (b *InProcBus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *InProcBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, fn := range b.subs {
		go fn(e)
	}
}
