package eventbus_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testsmith-ai/testsmith/pkg/eventbus"
	"github.com/testsmith-ai/testsmith/pkg/events"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func TestRegisterAuditLogObservesEvents(t *testing.T) {
	bus := newTestBus(t)

	out := &syncBuffer{}
	logger := slog.New(slog.NewTextHandler(out, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, eventbus.RegisterAuditLog(ctx, bus, logger))

	completed := events.SessionCompleted{
		BaseEvent:      events.NewBaseEvent(events.SessionCompletedEvent, "session-1"),
		ScriptFilename: "test_login_flow.py",
	}
	require.NoError(t, bus.Publish(ctx, "session-1", completed))

	abandoned := events.SessionAbandoned{
		BaseEvent: events.NewBaseEvent(events.SessionAbandonedEvent, "session-2"),
	}
	require.NoError(t, bus.Publish(ctx, "session-2", abandoned))

	assert.Eventually(t, func() bool {
		logged := out.String()

		return strings.Contains(logged, string(events.SessionCompletedEvent)) &&
			strings.Contains(logged, "session-1") &&
			strings.Contains(logged, string(events.SessionAbandonedEvent)) &&
			strings.Contains(logged, "session-2")
	}, 5*time.Second, 10*time.Millisecond)
}
