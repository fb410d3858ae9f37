package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rinkpass/backend/internal/domain/accounting"
	"github.com/rinkpass/backend/internal/domain/membership"
	"github.com/rinkpass/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHandler struct {
	types   []string
	seen    []string
	err     error
	panicky bool
}

func (h *recordingHandler) Handle(_ context.Context, ev shared.DomainEvent) error {
	if h.panicky {
		panic("boom")
	}
	h.seen = append(h.seen, ev.EventType())
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func testEvent(eventType string) shared.DomainEvent {
	return &struct {
		shared.BaseDomainEvent
	}{shared.NewBaseDomainEvent(eventType, "Test", uuid.New())}
}

func TestInMemoryEventBusRoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	paid := &recordingHandler{types: []string{"RegistrationPaid"}}
	all := &recordingHandler{}

	bus.Subscribe(paid)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(),
		testEvent("RegistrationPaid"), testEvent("PaymentFailed"))
	require.NoError(t, err)

	assert.Equal(t, []string{"RegistrationPaid"}, paid.seen)
	assert.Equal(t, []string{"RegistrationPaid", "PaymentFailed"}, all.seen)
}

func TestInMemoryEventBusIsolatesFailingHandlers(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	failing := &recordingHandler{types: []string{"RegistrationPaid"}, err: errors.New("handler down")}
	panicking := &recordingHandler{types: []string{"RegistrationPaid"}, panicky: true}
	healthy := &recordingHandler{types: []string{"RegistrationPaid"}}

	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), testEvent("RegistrationPaid"))
	require.NoError(t, err)
	assert.Len(t, healthy.seen, 1)
}

func TestInMemoryEventBusUnsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	h := &recordingHandler{types: []string{"RegistrationPaid"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), testEvent("RegistrationPaid")))
	assert.Empty(t, h.seen)
}

func TestEventSerializerRoundTrip(t *testing.T) {
	s := NewEventSerializer()
	RegisterAllEvents(s)

	reg, err := membership.NewRegistration("REG-2026-00042", uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	original := membership.NewRegistrationPaidEvent(reg)

	payload, err := s.Serialize(original)
	require.NoError(t, err)

	restored, err := s.Deserialize("RegistrationPaid", payload)
	require.NoError(t, err)

	paid, ok := restored.(*membership.RegistrationPaidEvent)
	require.True(t, ok)
	assert.Equal(t, original.EventID(), paid.EventID())
	assert.Equal(t, reg.ID, paid.AggregateID())
}

func TestEventSerializerUnknownType(t *testing.T) {
	s := NewEventSerializer()

	_, err := s.Deserialize("Unheard", []byte(`{}`))
	assert.Error(t, err)
	assert.False(t, s.IsRegistered("Unheard"))
}

func TestRegisterAllEventsCoversOutboxTypes(t *testing.T) {
	s := NewEventSerializer()
	RegisterAllEvents(s)

	for _, et := range []string{
		"RegistrationPaid", "PaymentFailed", "RefundCompleted",
		"InvoiceStagingCreated", "PaymentStagingCreated", "StagingSyncExhausted",
	} {
		assert.True(t, s.IsRegistered(et), et)
	}

	row, err := s.Deserialize("StagingSyncExhausted", []byte(`{"retry_count":5}`))
	require.NoError(t, err)
	assert.IsType(t, &accounting.StagingSyncExhaustedEvent{}, row)
}
