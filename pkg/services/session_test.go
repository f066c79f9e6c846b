package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
	"github.com/testsmith-ai/testsmith/pkg/checkpoint/memory"
	"github.com/testsmith-ai/testsmith/pkg/engine"
	"github.com/testsmith-ai/testsmith/pkg/knowledge"
	"github.com/testsmith-ai/testsmith/pkg/mocks"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

func newTestSession(t *testing.T) (*Session, checkpoint.Store) {
	t.Helper()

	client := &mocks.MockLLMClient{}

	router, err := engine.NewPipelineRouter(client, testLogger())
	require.NoError(t, err)

	store := memory.NewStore()
	runner := engine.NewRunner(router, store, nil, testLogger())

	return NewSession(runner, knowledge.NewFetcher(), store, testLogger()), store
}

func TestSessionCreate(t *testing.T) {
	service, store := newTestSession(t)

	dir := t.TempDir()
	contextPath := filepath.Join(dir, "tech.md")
	require.NoError(t, os.WriteFile(contextPath, []byte("We test with playwright in the browser."), 0o600))

	state, err := service.Create(context.Background(), CreateSessionRequest{
		RawInput:         "Test the login flow",
		TeamID:           "team-web",
		TechContextPaths: []string{contextPath},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, state.ID)
	assert.Equal(t, models.StatusRunning, state.Status)
	assert.Equal(t, models.StageClarification, state.CurrentStage)
	assert.Equal(t, models.FrameworkUIE2E, state.Context.Framework)
	assert.InDelta(t, DefaultConfidenceThreshold, state.QAConfidenceThreshold, 0.0001)

	cp, err := store.Load(context.Background(), state.ID)
	require.NoError(t, err)
	assert.Equal(t, state.ID, cp.State.ID)
}

func TestSessionCreateValidation(t *testing.T) {
	service, _ := newTestSession(t)

	_, err := service.Create(context.Background(), CreateSessionRequest{RawInput: "", TeamID: "team-web"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = service.Create(context.Background(), CreateSessionRequest{RawInput: "Test login", TeamID: ""})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	// Whitespace-only input sneaks past tag validation but is still empty.
	_, err = service.Create(context.Background(), CreateSessionRequest{RawInput: "   ", TeamID: "team-web"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyRawInput)

	_, err = service.Create(context.Background(), CreateSessionRequest{
		RawInput: "Test login", TeamID: "team-web", ConfidenceThreshold: 1.5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidThreshold)
}

func TestSessionResumeRequiresInput(t *testing.T) {
	service, _ := newTestSession(t)

	_, err := service.Resume(context.Background(), "some-session", models.ResumeInput{})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestSessionGetNotFound(t *testing.T) {
	service, _ := newTestSession(t)

	_, err := service.Get(context.Background(), "missing")
	assert.True(t, checkpoint.IsSessionNotFound(err))
}

func TestSessionHealthCheck(t *testing.T) {
	service, _ := newTestSession(t)

	message, healthy := service.HealthCheck(context.Background())
	assert.True(t, healthy)
	assert.NotEmpty(t, message)
}
