// Package events defines event types and structures for session lifecycle
// notifications.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

type EventType string

const Topic = "testsmith.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	SessionCreatedEvent   EventType = "session.created"
	SessionSuspendedEvent EventType = "session.suspended"
	SessionResumedEvent   EventType = "session.resumed"
	SessionCompletedEvent EventType = "session.completed"
	SessionFailedEvent    EventType = "session.failed"
	SessionAbandonedEvent EventType = "session.abandoned"
	StageCompletedEvent   EventType = "stage.completed"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func (e BaseEvent) GetSessionID() string {
	return e.SessionID
}

func NewBaseEvent(eventType EventType, sessionID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Metadata:  make(map[string]any),
	}
}

type SessionCreated struct {
	BaseEvent

	RawInput  string               `json:"raw_input"`
	Framework models.FrameworkType `json:"framework"`
}

func (e SessionCreated) GetType() EventType {
	return SessionCreatedEvent
}

type SessionSuspended struct {
	BaseEvent

	Stage models.Stage          `json:"stage"`
	Kind  models.SuspensionKind `json:"kind"`
}

func (e SessionSuspended) GetType() EventType {
	return SessionSuspendedEvent
}

type SessionResumed struct {
	BaseEvent

	Stage models.Stage `json:"stage"`
}

func (e SessionResumed) GetType() EventType {
	return SessionResumedEvent
}

type SessionCompleted struct {
	BaseEvent

	ScriptFilename string        `json:"script_filename"`
	CostUSD        float64       `json:"cost_usd"`
	Duration       time.Duration `json:"duration"`
}

func (e SessionCompleted) GetType() EventType {
	return SessionCompletedEvent
}

type SessionFailed struct {
	BaseEvent

	Stage models.Stage `json:"stage"`
	Error string       `json:"error"`
}

func (e SessionFailed) GetType() EventType {
	return SessionFailedEvent
}

type SessionAbandoned struct {
	BaseEvent
}

func (e SessionAbandoned) GetType() EventType {
	return SessionAbandonedEvent
}

type StageCompleted struct {
	BaseEvent

	Stage     models.Stage `json:"stage"`
	NextStage models.Stage `json:"next_stage"`
	CostUSD   float64      `json:"cost_usd"`
}

func (e StageCompleted) GetType() EventType {
	return StageCompletedEvent
}
