package event

import (
	"context"
	"sync"

	"github.com/rinkpass/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus fans events out to subscribed handlers in-process.
// Dispatch is synchronous and best-effort: a failing handler is logged
// and the remaining handlers still run. Durable delivery comes from the
// outbox processor replaying entries, not from the bus itself.
type InMemoryEventBus struct {
	mu       sync.RWMutex
	byType   map[string][]shared.EventHandler
	catchAll []shared.EventHandler
	logger   *zap.Logger
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		byType: make(map[string][]shared.EventHandler),
		logger: logger,
	}
}

// Subscribe registers a handler. With no explicit event types the
// handler's own EventTypes() decides; a handler reporting none becomes
// a catch-all and sees every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(eventTypes) == 0 {
		b.catchAll = append(b.catchAll, handler)
	} else {
		for _, et := range eventTypes {
			b.byType[et] = append(b.byType[et], handler)
		}
	}

	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe detaches a handler from every event type.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.catchAll = without(b.catchAll, handler)
	for et, hs := range b.byType {
		if remaining := without(hs, handler); len(remaining) > 0 {
			b.byType[et] = remaining
		} else {
			delete(b.byType, et)
		}
	}
}

// Publish dispatches each event to its subscribers in order. Handler
// errors and panics are contained so one subscriber cannot starve the
// others.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, ev := range events {
		for _, h := range b.subscribers(ev.EventType()) {
			if err := b.dispatch(ctx, h, ev); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.String("event_id", ev.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.logger.Info("event bus started")
	return nil
}

func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.logger.Info("event bus stopped")
	return nil
}

func (b *InMemoryEventBus) subscribers(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]shared.EventHandler, 0, len(b.byType[eventType])+len(b.catchAll))
	out = append(out, b.byType[eventType]...)
	out = append(out, b.catchAll...)
	return out
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, ev shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return handler.Handle(ctx, ev)
}

func without(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	kept := handlers[:0:0]
	for _, h := range handlers {
		if h != target {
			kept = append(kept, h)
		}
	}
	return kept
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
