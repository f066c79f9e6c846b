package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
	})

	return NewStoreWithClient(client), mr
}

func newCheckpoint(t *testing.T) *checkpoint.Checkpoint {
	t.Helper()

	state := models.NewWorkflowState("Test the payments API", models.TeamContext{}, 0.8)

	return &checkpoint.Checkpoint{
		SessionID: state.ID,
		State:     state,
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	cp := newCheckpoint(t)
	require.NoError(t, store.Save(ctx, cp))

	loaded, err := store.Load(ctx, cp.SessionID)
	require.NoError(t, err)

	assert.Equal(t, cp.SessionID, loaded.SessionID)
	assert.Equal(t, "Test the payments API", loaded.State.RawInput)
	assert.False(t, loaded.SavedAt.IsZero())
}

func TestLoadMissingSession(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, checkpoint.IsSessionNotFound(err))
}

func TestDeleteRemovesKeyAndIndex(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	cp := newCheckpoint(t)
	require.NoError(t, store.Save(ctx, cp))
	require.NoError(t, store.Delete(ctx, cp.SessionID))

	assert.False(t, mr.Exists(sessionKey(cp.SessionID)))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	err = store.Delete(ctx, cp.SessionID)
	assert.True(t, checkpoint.IsSessionNotFound(err))
}

func TestList(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

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
	store, mr := newTestStore(t)

	stale := newCheckpoint(t)
	require.NoError(t, store.Save(ctx, stale))

	// Backdate the index entry so the sweep sees an old checkpoint.
	staleScore := float64(time.Now().UTC().Add(-48 * time.Hour).Unix())
	mr.ZAdd(indexKey, staleScore, stale.SessionID)

	fresh := newCheckpoint(t)
	require.NoError(t, store.Save(ctx, fresh))

	removed, err := store.CleanupExpired(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Load(ctx, stale.SessionID)
	assert.True(t, checkpoint.IsSessionNotFound(err))

	_, err = store.Load(ctx, fresh.SessionID)
	assert.NoError(t, err)
}

func TestHealthCheck(t *testing.T) {
	store, mr := newTestStore(t)
	assert.NoError(t, store.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, store.HealthCheck(context.Background()))
}
