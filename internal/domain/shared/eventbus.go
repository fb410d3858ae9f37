package shared

import "context"

// EventHandler consumes domain events delivered by the bus.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error

	// EventTypes lists the event types the handler wants. An empty
	// list subscribes it to everything.
	EventTypes() []string
}

// EventPublisher is the sending half of the bus.
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventBus delivers domain events to in-process subscribers. Start and
// Stop bracket any background machinery an implementation needs.
type EventBus interface {
	EventPublisher
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// OutboxEventSaver persists domain events into the outbox inside the
// same transaction as the aggregate change, so neither can commit
// without the other. txProvider is the *gorm.DB of that transaction.
type OutboxEventSaver interface {
	SaveEvents(ctx context.Context, txProvider interface{}, events ...DomainEvent) error
}
