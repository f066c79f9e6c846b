package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/testsmith-ai/testsmith/pkg/events"
)

// WatermillEventBus implements EventBus using watermill publishers and
// subscribers, so the same bus code runs over gochannel in tests and Kafka in
// production.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handlers   map[events.EventType][]EventHandler
	logger     *slog.Logger
}

func NewWatermillEventBus(logger *slog.Logger, publisher message.Publisher, subscriber message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:  publisher,
		subscriber: subscriber,
		handlers:   make(map[events.EventType][]EventHandler),
		logger:     logger.With("module", "eventbus"),
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(ctx context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))
	msg.SetContext(ctx)

	if err := eb.publisher.Publish(events.Topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.GetType(), err)
	}

	return nil
}

func (eb *WatermillEventBus) Handle(eventType events.EventType, handler EventHandler) {
	eb.handlers[eventType] = append(eb.handlers[eventType], handler)
}

func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", events.Topic, err)
	}

	go eb.processMessages(ctx, messages)

	return nil
}

func (eb *WatermillEventBus) processMessages(ctx context.Context, messages <-chan *message.Message) {
	for msg := range messages {
		eventType := events.EventType(msg.Metadata.Get(events.EventTypeMetadataKey))

		event, err := eb.decodeEvent(eventType, msg.Payload)
		if err != nil {
			eb.logger.Error("Failed to decode event", "event_type", eventType, "error", err)
			msg.Nack()

			continue
		}

		if err := eb.dispatch(ctx, eventType, event); err != nil {
			eb.logger.Error("Event handler failed", "event_type", eventType, "error", err)
			msg.Nack()

			continue
		}

		msg.Ack()
	}
}

func (eb *WatermillEventBus) decodeEvent(eventType events.EventType, payload []byte) (any, error) {
	var event any

	switch eventType {
	case events.SessionCreatedEvent:
		event = &events.SessionCreated{}
	case events.SessionSuspendedEvent:
		event = &events.SessionSuspended{}
	case events.SessionResumedEvent:
		event = &events.SessionResumed{}
	case events.SessionCompletedEvent:
		event = &events.SessionCompleted{}
	case events.SessionFailedEvent:
		event = &events.SessionFailed{}
	case events.SessionAbandonedEvent:
		event = &events.SessionAbandoned{}
	case events.StageCompletedEvent:
		event = &events.StageCompleted{}
	default:
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return event, nil
}

func (eb *WatermillEventBus) dispatch(ctx context.Context, eventType events.EventType, event any) error {
	for _, handler := range eb.handlers[eventType] {
		if err := handler(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return fmt.Errorf("failed to close publisher: %w", err)
	}

	if eb.subscriber != nil {
		if err := eb.subscriber.Close(); err != nil {
			return fmt.Errorf("failed to close subscriber: %w", err)
		}
	}

	return nil
}
