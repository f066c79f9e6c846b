package eventbus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testsmith-ai/testsmith/pkg/channels/gochannel"
	"github.com/testsmith-ai/testsmith/pkg/eventbus"
	"github.com/testsmith-ai/testsmith/pkg/events"
	"github.com/testsmith-ai/testsmith/pkg/log"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

func newTestBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	logger := log.WithModule("test")
	channel := gochannel.CreateTestChannel(logger)

	bus := eventbus.NewWatermillEventBus(logger, channel, channel)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.SessionCreated, 1)

	bus.Handle(events.SessionCreatedEvent, func(_ context.Context, event any) error {
		created, ok := event.(*events.SessionCreated)
		if ok {
			received <- created
		}

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	event := events.SessionCreated{
		BaseEvent: events.NewBaseEvent(events.SessionCreatedEvent, "session-1"),
		RawInput:  "Test the login flow",
		Framework: models.FrameworkUIE2E,
	}

	require.NoError(t, bus.Publish(ctx, "session-1", event))

	select {
	case got := <-received:
		assert.Equal(t, "session-1", got.SessionID)
		assert.Equal(t, "Test the login flow", got.RawInput)
		assert.Equal(t, models.FrameworkUIE2E, got.Framework)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_DispatchesByType(t *testing.T) {
	bus := newTestBus(t)

	completed := make(chan *events.SessionCompleted, 1)
	failed := make(chan *events.SessionFailed, 1)

	bus.Handle(events.SessionCompletedEvent, func(_ context.Context, event any) error {
		completed <- event.(*events.SessionCompleted)

		return nil
	})
	bus.Handle(events.SessionFailedEvent, func(_ context.Context, event any) error {
		failed <- event.(*events.SessionFailed)

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "session-2", events.SessionCompleted{
		BaseEvent:      events.NewBaseEvent(events.SessionCompletedEvent, "session-2"),
		ScriptFilename: "test_login.py",
		CostUSD:        0.42,
	}))

	select {
	case got := <-completed:
		assert.Equal(t, "test_login.py", got.ScriptFilename)
		assert.InDelta(t, 0.42, got.CostUSD, 0.0001)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completed event")
	}

	select {
	case <-failed:
		t.Fatal("failed handler should not receive completed events")
	default:
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
