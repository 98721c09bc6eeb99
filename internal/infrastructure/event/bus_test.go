package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopadmin/scan-gateway/internal/domain/shared"
)

type recordingHandler struct {
	eventTypes []string
	received   []shared.DomainEvent
	failWith   error
	panics     bool
}

func (h *recordingHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.panics {
		panic("handler exploded")
	}
	h.received = append(h.received, event)
	return h.failWith
}

func (h *recordingHandler) EventTypes() []string {
	return h.eventTypes
}

func newTestEvent(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New(), uuid.New())
	return &e
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches to matching handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{eventTypes: []string{"ThingHappened"}}
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("ThingHappened")))
		require.NoError(t, bus.Publish(ctx, newTestEvent("OtherThing")))

		assert.Len(t, h.received, 1)
		assert.Equal(t, "ThingHappened", h.received[0].EventType())
	})

	t.Run("wildcard handlers receive all events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := &recordingHandler{}
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))

		assert.Len(t, h.received, 2)
	})

	t.Run("handler failure does not block other handlers", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &recordingHandler{eventTypes: []string{"X"}, failWith: errors.New("boom")}
		healthy := &recordingHandler{eventTypes: []string{"X"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("X")))

		assert.Len(t, healthy.received, 1)
	})

	t.Run("handler panic is contained", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		panicking := &recordingHandler{eventTypes: []string{"X"}, panics: true}
		healthy := &recordingHandler{eventTypes: []string{"X"}}
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		assert.NotPanics(t, func() {
			_ = bus.Publish(ctx, newTestEvent("X"))
		})
		assert.Len(t, healthy.received, 1)
	})
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{eventTypes: []string{"X"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("X")))

	assert.Empty(t, h.received)
}
