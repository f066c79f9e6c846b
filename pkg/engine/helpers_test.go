package engine

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/testsmith-ai/testsmith/pkg/llm"
	"github.com/testsmith-ai/testsmith/pkg/mocks"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func testState() models.WorkflowState {
	return models.NewWorkflowState("Test login", models.TeamContext{
		TechContext: "pytest with playwright",
		CodebaseMap: "tests/utils/login_helpers.py",
		Framework:   models.FrameworkUIE2E,
	}, 0.85)
}

func textResponse(stage, content string) *llm.Response {
	return &llm.Response{Content: content, CostUSD: 0.01, Stage: stage, Model: "test-model"}
}

func onStage(client *mocks.MockLLMClient, stage models.Stage) *mock.Call {
	return client.On("Generate", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Stage == string(stage)
	}))
}

type issueSpec struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

func evaluationJSON(t *testing.T, score float64, result models.JudgeResult, feedback string, issues ...issueSpec) string {
	t.Helper()

	if issues == nil {
		issues = []issueSpec{}
	}

	payload, err := json.Marshal(map[string]any{
		"score":           score,
		"result":          string(result),
		"feedback":        feedback,
		"issues":          issues,
		"recommendations": []string{},
	})
	require.NoError(t, err)

	return string(payload)
}

func clarificationJSON(t *testing.T, confidence float64, canProceed bool, questions ...models.Question) string {
	t.Helper()

	qs := make([]map[string]any, 0, len(questions))
	for _, q := range questions {
		qs = append(qs, map[string]any{
			"id":          q.ID,
			"text":        q.Text,
			"category":    q.Category,
			"is_required": q.Required,
		})
	}

	payload, err := json.Marshal(map[string]any{
		"ai_confidence":  confidence,
		"can_proceed":    canProceed,
		"framework_type": "UI_E2E",
		"questions":      qs,
	})
	require.NoError(t, err)

	return string(payload)
}
