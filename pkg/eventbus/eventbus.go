// Package eventbus provides event publishing and subscription over a message
// transport for session lifecycle events.
package eventbus

import (
	"context"

	"github.com/testsmith-ai/testsmith/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventHandler func(ctx context.Context, event any) error

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
	GenerateID() string
	Close() error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler)
	Subscribe(ctx context.Context) error
	Close() error
}

type EventBus interface {
	EventPublisher
	EventSubscriber
}
