package web_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/testsmith-ai/testsmith/pkg/checkpoint/memory"
	"github.com/testsmith-ai/testsmith/pkg/engine"
	"github.com/testsmith-ai/testsmith/pkg/knowledge"
	"github.com/testsmith-ai/testsmith/pkg/llm"
	"github.com/testsmith-ai/testsmith/pkg/mocks"
	"github.com/testsmith-ai/testsmith/pkg/models"
	"github.com/testsmith-ai/testsmith/pkg/services"
	"github.com/testsmith-ai/testsmith/pkg/web"
)

// stubStage registers a canned response for one pipeline stage.
func stubStage(client *mocks.MockLLMClient, stage models.Stage, content string) {
	client.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Stage == string(stage)
	})).Return(&llm.Response{Content: content, CostUSD: 0.01, Stage: string(stage)}, nil)
}

func confidentClarification(t *testing.T) string {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"ai_confidence":  0.95,
		"can_proceed":    true,
		"framework_type": "UI_E2E",
		"questions":      []any{},
	})
	require.NoError(t, err)

	return string(payload)
}

func passingEvaluation(t *testing.T) string {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"score":           90,
		"result":          "PASS",
		"feedback":        "good",
		"issues":          []any{},
		"recommendations": []any{},
	})
	require.NoError(t, err)

	return string(payload)
}

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	client := &mocks.MockLLMClient{}
	stubStage(client, models.StageClarification, confidentClarification(t))
	stubStage(client, models.StageRequirements, "# Requirements")
	stubStage(client, models.StageJudgeRequirements, passingEvaluation(t))

	// Stages past the first gate are unreachable in these tests; make any
	// accidental call an explicit backend failure instead of a mock panic.
	client.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Stage == string(models.StageStrategy)
	})).Return(nil, errors.New("strategy backend not stubbed"))

	router, err := engine.NewPipelineRouter(client, slog.Default())
	require.NoError(t, err)

	store := memory.NewStore()
	runner := engine.NewRunner(router, store, nil, slog.Default())
	sessionService := services.NewSession(runner, knowledge.NewFetcher(), store, slog.Default())

	handlers := web.NewAPIHandlers(sessionService, validator.New(validator.WithRequiredStructEnabled()), slog.Default())

	app := fiber.New()

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/:id", handlers.GetSession)
	s.Post("/:id/resume", handlers.ResumeSession)
	s.Delete("/:id", handlers.AbandonSession)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func createSession(t *testing.T, app *fiber.App) web.SessionResponse {
	t.Helper()

	body, err := json.Marshal(web.CreateSessionRequest{
		RawInput: "Test the login flow",
		TeamID:   "team-web",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/sessions/", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var session web.SessionResponse
	require.NoError(t, json.Unmarshal(raw, &session))

	return session
}

func TestCreateSessionRunsToFirstGate(t *testing.T) {
	app := setupTestApp(t)

	session := createSession(t, app)

	assert.NotEmpty(t, session.SessionID)
	assert.Equal(t, string(engine.OutcomeSuspended), session.Outcome)
	assert.Equal(t, models.StatusWaitingApproval, session.Status)
	assert.Equal(t, models.StageReviewSpec, session.CurrentStage)
	require.NotNil(t, session.SuspendedAt)
	assert.Equal(t, models.SuspendGate, session.SuspendedAt.Kind)
	assert.Equal(t, models.GateSpec, session.SuspendedAt.Gate.Gate)
	assert.Equal(t, 1, session.Artifacts[models.ArtifactRequirements].Version)
}

func TestCreateSessionValidation(t *testing.T) {
	app := setupTestApp(t)

	body := []byte(`{"raw_input": "", "team_id": "team-web"}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions/", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSession(t *testing.T) {
	app := setupTestApp(t)
	session := createSession(t, app)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+session.SessionID, nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got web.SessionResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, session.SessionID, got.SessionID)
	assert.Equal(t, models.StageReviewSpec, got.CurrentStage)
	require.NotNil(t, got.SuspendedAt)
}

func TestGetSessionNotFound(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/does-not-exist", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var problem struct {
		Type   string `json:"type"`
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(raw, &problem))
	assert.Equal(t, "not_found", problem.Type)
	assert.Equal(t, "session not found", problem.Detail)
}

func TestResumeSessionGateApproval(t *testing.T) {
	app := setupTestApp(t)
	session := createSession(t, app)

	body := []byte(`{"decision": {"decision": "APPROVE"}}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.SessionID+"/resume", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	// Strategy generation is stubbed to fail, so the pipeline stops after
	// the gate; what matters here is that the approval was applied.
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got web.SessionResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, models.GateApproved, got.Gates[models.GateSpec].Status)
}

func TestResumeSessionRequiresInput(t *testing.T) {
	app := setupTestApp(t)
	session := createSession(t, app)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.SessionID+"/resume", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResumeSessionRejectsBadDecision(t *testing.T) {
	app := setupTestApp(t)
	session := createSession(t, app)

	body := []byte(`{"decision": {"decision": "MAYBE"}}`)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+session.SessionID+"/resume", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAbandonSession(t *testing.T) {
	app := setupTestApp(t)
	session := createSession(t, app)

	req := httptest.NewRequest(http.MethodDelete, "/sessions/"+session.SessionID, nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getReq := httptest.NewRequest(http.MethodGet, "/sessions/"+session.SessionID, nil)

	getResp, err := app.Test(getReq)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
