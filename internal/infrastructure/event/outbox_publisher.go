package event

import (
	"context"
	"fmt"

	"github.com/rinkpass/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// OutboxPublisher writes domain events into the outbox table inside the
// caller's transaction, so an aggregate change and its events commit or
// roll back together.
type OutboxPublisher struct {
	serializer *EventSerializer
}

func NewOutboxPublisher(serializer *EventSerializer) *OutboxPublisher {
	return &OutboxPublisher{serializer: serializer}
}

// SaveEvents serializes the events and appends them to the outbox using
// the supplied transaction handle. The handle must be the *gorm.DB of
// the transaction that is persisting the aggregate.
func (p *OutboxPublisher) SaveEvents(ctx context.Context, txProvider interface{}, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, ok := txProvider.(*gorm.DB)
	if !ok {
		return fmt.Errorf("outbox publisher needs a *gorm.DB transaction, got %T", txProvider)
	}

	entries := make([]*shared.OutboxEntry, len(events))
	for i, ev := range events {
		payload, err := p.serializer.Serialize(ev)
		if err != nil {
			return fmt.Errorf("serialize %s event: %w", ev.EventType(), err)
		}
		entries[i] = shared.NewOutboxEntry(ev, payload)
	}

	return NewGormOutboxRepository(tx).Save(ctx, entries...)
}

var _ shared.OutboxEventSaver = (*OutboxPublisher)(nil)
