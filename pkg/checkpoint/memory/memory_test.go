package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

func newCheckpoint(t *testing.T) *checkpoint.Checkpoint {
	t.Helper()

	state := models.NewWorkflowState("Test the login page", models.TeamContext{}, 0.8)

	return &checkpoint.Checkpoint{
		SessionID: state.ID,
		State:     state,
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	cp := newCheckpoint(t)
	require.NoError(t, store.Save(ctx, cp))

	loaded, err := store.Load(ctx, cp.SessionID)
	require.NoError(t, err)

	assert.Equal(t, cp.SessionID, loaded.SessionID)
	assert.Equal(t, "Test the login page", loaded.State.RawInput)
	assert.False(t, loaded.SavedAt.IsZero())
}

func TestLoadMissingSession(t *testing.T) {
	store := NewStore()

	_, err := store.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, checkpoint.IsSessionNotFound(err))
}

func TestSaveRejectsEmptyID(t *testing.T) {
	store := NewStore()

	err := store.Save(context.Background(), &checkpoint.Checkpoint{})
	require.Error(t, err)
	assert.ErrorIs(t, err, checkpoint.ErrInvalidSessionID)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	cp := newCheckpoint(t)
	require.NoError(t, store.Save(ctx, cp))
	require.NoError(t, store.Delete(ctx, cp.SessionID))

	_, err := store.Load(ctx, cp.SessionID)
	assert.True(t, checkpoint.IsSessionNotFound(err))

	err = store.Delete(ctx, cp.SessionID)
	assert.True(t, checkpoint.IsSessionNotFound(err))
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first := newCheckpoint(t)
	second := newCheckpoint(t)
	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.SessionID, second.SessionID}, ids)
}

func TestCleanupExpired(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	stale := newCheckpoint(t)
	require.NoError(t, store.Save(ctx, stale))

	fresh := newCheckpoint(t)
	require.NoError(t, store.Save(ctx, fresh))

	// Age the first checkpoint past the cutoff.
	store.mu.Lock()
	store.checkpoints[stale.SessionID].SavedAt = time.Now().UTC().Add(-48 * time.Hour)
	store.mu.Unlock()

	removed, err := store.CleanupExpired(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Load(ctx, stale.SessionID)
	assert.True(t, checkpoint.IsSessionNotFound(err))

	_, err = store.Load(ctx, fresh.SessionID)
	assert.NoError(t, err)
}
