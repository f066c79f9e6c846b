package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testsmith-ai/testsmith/pkg/mocks"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

const validGherkin = `Feature: Login flow

  Scenario: Successful login
    Given the user is on the login page
    When they submit valid credentials
    Then the dashboard is shown
`

func TestGenerativeVersionMonotonicity(t *testing.T) {
	client := &mocks.MockLLMClient{}
	node := newRequirementsNode(client, testLogger())
	state := testState()

	for i := 1; i <= 3; i++ {
		onStage(client, models.StageRequirements).
			Return(textResponse("requirements", fmt.Sprintf("# Requirements v%d", i)), nil).Once()

		result, err := node.Run(context.Background(), state, nil)
		require.NoError(t, err)

		state = models.Apply(state, result.Patch)

		assert.Equal(t, i, state.Requirements.Version)
		require.Len(t, state.Requirements.History, i)
		assert.Equal(t, i, state.Requirements.History[i-1].Version)
		assert.Equal(t, models.StageJudgeRequirements, state.CurrentStage)
	}

	for i := 1; i < len(state.Requirements.History); i++ {
		assert.Greater(t, state.Requirements.History[i].Version, state.Requirements.History[i-1].Version)
	}
}

func TestGenerativeRetryInjectsFeedback(t *testing.T) {
	artifact := models.Artifact{Iterations: 1, Evaluation: &models.JudgeEvaluation{Feedback: "add edge cases"}}

	assert.Equal(t, "add edge cases", retryFeedback(artifact, ""))
	assert.Equal(t, firstAttemptFeedback, retryFeedback(models.Artifact{}, ""))
	assert.Contains(t, retryFeedback(models.Artifact{}, "too verbose"), "Human reviewer feedback: too verbose")
}

func TestGenerativeClearsStaleEvaluation(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageRequirements).
		Return(textResponse("requirements", "# Requirements v2"), nil)

	node := newRequirementsNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements v1", 1)
	state.Requirements.Evaluation = &models.JudgeEvaluation{Result: models.JudgeFail, Feedback: "redo"}

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Nil(t, next.Requirements.Evaluation)
	assert.Equal(t, "# Requirements v2", next.Requirements.Content)
}

func TestTestCasesNodeValidFirstTry(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageTestCases).
		Return(textResponse("test_cases", validGherkin), nil)

	node := NewTestCasesNode(client, testLogger())
	state := testState()

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.True(t, next.TestCasesValid)
	assert.Equal(t, models.StageJudgeTestCases, next.CurrentStage)
	assert.Equal(t, 1, next.TestCases.Version)
	client.AssertNumberOfCalls(t, "Generate", 1)
}

func TestTestCasesNodeRepairsInvalidGherkin(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageTestCases).
		Return(textResponse("test_cases", "Scenario without a feature"), nil).Once()
	onStage(client, models.StageTestCases).
		Return(textResponse("test_cases", validGherkin), nil).Once()

	node := NewTestCasesNode(client, testLogger())
	state := testState()

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.True(t, next.TestCasesValid)
	assert.Equal(t, validGherkin, next.TestCases.Content)
	assert.Equal(t, 1, next.TestCases.Version)
	assert.InDelta(t, 0.02, result.Patch.CostDelta, 0.0001)
	client.AssertNumberOfCalls(t, "Generate", 2)
}

func TestTestCasesNodeProceedsInvalidAfterRepair(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageTestCases).
		Return(textResponse("test_cases", "still not gherkin"), nil)

	node := NewTestCasesNode(client, testLogger())
	state := testState()

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.False(t, next.TestCasesValid)
	assert.Equal(t, models.StageJudgeTestCases, next.CurrentStage)
	client.AssertNumberOfCalls(t, "Generate", 2)
}

func TestScriptingNodeDerivesFilename(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageScripting).
		Return(textResponse("scripting", "def test_login(): pass"), nil)

	node := NewScriptingNode(client, testLogger())
	state := testState()
	state.TestCases.Content = validGherkin

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, "test_login_flow.py", next.ScriptFilename)
	assert.Equal(t, models.StageJudgeCode, next.CurrentStage)
}

func TestScriptFilenameFallback(t *testing.T) {
	assert.Equal(t, "test_generated.py", scriptFilename("not gherkin at all"))
	assert.Equal(t, "test_checkout_v2.py", scriptFilename("Feature: Checkout  v2!\n\n  Scenario: s\n    Given a\n"))
}
