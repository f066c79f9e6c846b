package eventbus

import (
	"context"
	"log/slog"

	"github.com/testsmith-ai/testsmith/pkg/events"
)

var auditEventTypes = []events.EventType{
	events.SessionCreatedEvent,
	events.SessionSuspendedEvent,
	events.SessionResumedEvent,
	events.SessionCompletedEvent,
	events.SessionFailedEvent,
	events.SessionAbandonedEvent,
	events.StageCompletedEvent,
}

// RegisterAuditLog attaches a logging consumer for every session lifecycle
// event and starts consumption. It gives deployments with an event transport
// an append-only trail without running a dedicated consumer service.
func RegisterAuditLog(ctx context.Context, bus EventBus, logger *slog.Logger) error {
	handler := func(_ context.Context, event any) error {
		typed, ok := event.(Event)
		if !ok {
			return nil
		}

		sessionID := ""
		if carrier, ok := event.(interface{ GetSessionID() string }); ok {
			sessionID = carrier.GetSessionID()
		}

		logger.Info("Event observed",
			"event_type", string(typed.GetType()), "session_id", sessionID)

		return nil
	}

	for _, eventType := range auditEventTypes {
		bus.Handle(eventType, handler)
	}

	return bus.Subscribe(ctx)
}
