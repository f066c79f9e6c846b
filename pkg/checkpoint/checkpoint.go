// Package checkpoint provides the storage abstraction for suspended and
// running pipeline sessions. A checkpoint is the full session snapshot: the
// workflow state plus the pending suspension, if any.
package checkpoint

import (
	"context"
	"time"

	"github.com/testsmith-ai/testsmith/pkg/models"
)

// Checkpoint is one durable session snapshot. It is written after every node
// merge so a crash or suspension can resume from the last completed node.
type Checkpoint struct {
	SessionID  string               `json:"session_id"`
	State      models.WorkflowState `json:"state"`
	Suspension *models.Suspension   `json:"suspension,omitempty"`
	SavedAt    time.Time            `json:"saved_at"`
}

type Store interface {
	Save(ctx context.Context, cp *Checkpoint) error
	Load(ctx context.Context, sessionID string) (*Checkpoint, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)

	// CleanupExpired removes checkpoints last saved before cutoff and
	// returns how many were removed.
	CleanupExpired(ctx context.Context, cutoff time.Time) (int, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
