package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/testsmith-ai/testsmith/pkg/channels/gochannel"
	"github.com/testsmith-ai/testsmith/pkg/channels/kafka"
	"github.com/testsmith-ai/testsmith/pkg/eventbus"
)

// NewEventBus creates the event bus for a binary. An empty provider disables
// event publishing entirely.
func NewEventBus(logger *slog.Logger, provider, serviceName, brokers string) (eventbus.EventBus, error) {
	switch provider {
	case "":
		return nil, nil
	case "gochannel":
		channel := gochannel.CreateChannel(logger)

		return eventbus.NewWatermillEventBus(logger, channel, channel), nil
	case "kafka":
		pub, sub, err := kafka.CreateChannel(logger, serviceName, strings.Split(brokers, ","))
		if err != nil {
			return nil, fmt.Errorf("failed to create kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(logger, pub, sub), nil
	}

	return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
}
