package event

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rinkpass/backend/internal/domain/shared"
)

// EventFactory allocates an empty event instance for unmarshalling.
type EventFactory func() shared.DomainEvent

// EventSerializer maps outbox payloads back to concrete event types.
// Every event type that flows through the outbox must be registered
// before the processor starts, otherwise replay fails.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]EventFactory
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: make(map[string]EventFactory)}
}

// Register binds an event type name, as reported by EventType(), to a
// factory producing a zero value of the matching concrete type.
func (s *EventSerializer) Register(eventType string, factory EventFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[eventType] = factory
}

// Serialize encodes an event for storage in the outbox payload column.
func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// Deserialize rebuilds the concrete event from an outbox payload.
func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	factory, ok := s.factories[eventType]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unregistered event type %q", eventType)
	}

	event := factory()
	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("unmarshal %s event: %w", eventType, err)
	}
	return event, nil
}

// IsRegistered reports whether a factory exists for the event type.
func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[eventType]
	return ok
}
