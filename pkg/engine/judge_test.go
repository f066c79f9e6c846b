package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testsmith-ai/testsmith/pkg/mocks"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

func stateWithArtifact(kind models.ArtifactKind, content string, iterations int) models.WorkflowState {
	state := testState()

	artifact := state.Artifact(kind)
	artifact.Content = content
	artifact.Version = iterations + 1
	artifact.Iterations = iterations
	artifact.History = []models.DocumentVersion{{
		ID: "v", Kind: kind, Version: artifact.Version, Content: content,
	}}

	patch := models.StatePatch{}
	patch.SetArtifact(kind, artifact)

	return models.Apply(state, patch)
}

func TestJudgePassRoutesToReview(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageJudgeRequirements).
		Return(textResponse("judge_requirements", evaluationJSON(t, 88, models.JudgePass, "solid spec")), nil)

	node := newJudgeRequirementsNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 0)

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StageReviewSpec, next.CurrentStage)
	assert.Equal(t, 1, next.Requirements.Iterations)
	require.NotNil(t, next.Requirements.Evaluation)
	assert.Equal(t, models.JudgePass, next.Requirements.Evaluation.Result)
	assert.InDelta(t, 88, next.Requirements.Evaluation.Score, 0.0001)
}

func TestJudgeFailRoutesToRegeneration(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageJudgeRequirements).
		Return(textResponse("judge_requirements", evaluationJSON(t, 55, models.JudgeFail, "missing edge cases")), nil)

	node := newJudgeRequirementsNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 0)

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StageRequirements, next.CurrentStage)
	assert.Equal(t, 1, next.Requirements.Iterations)
}

func TestJudgeFailAtFinalIterationEscalates(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageJudgeRequirements).
		Return(textResponse("judge_requirements", evaluationJSON(t, 55, models.JudgeFail, "still missing edge cases")), nil)

	node := newJudgeRequirementsNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 2)

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StageReviewSpec, next.CurrentStage)
	assert.Equal(t, 3, next.Requirements.Iterations)

	evaluation := next.Requirements.Evaluation
	require.NotNil(t, evaluation)
	assert.Equal(t, models.JudgeNeedsHuman, evaluation.Result)
	assert.Contains(t, evaluation.Feedback, "[MAX ITERATIONS REACHED]")
	assert.Contains(t, evaluation.Feedback, "still missing edge cases")
	assert.Contains(t, evaluation.Feedback, "regenerated 3 times")
}

func TestJudgeNeedsHumanRoutesToReview(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageJudgeStrategy).
		Return(textResponse("judge_strategy", evaluationJSON(t, 45, models.JudgeNeedsHuman, "unclear scope")), nil)

	node := newJudgeStrategyNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactStrategy, "# Strategy", 0)

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StageReviewStrategy, next.CurrentStage)
}

func TestCodePlanJudgeCriticalFailRegenerates(t *testing.T) {
	client := &mocks.MockLLMClient{}
	critical := issueSpec{
		Type:        "duplicate_utility",
		Description: "Plan duplicates the existing login helper",
		Severity:    "critical",
	}
	onStage(client, models.StageJudgeCodePlan).
		Return(textResponse("judge_code_plan", evaluationJSON(t, 95, models.JudgeFail, "duplication", critical)), nil)

	node := newJudgeCodePlanNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactCodePlan, "# Plan", 0)

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StageCodePlan, next.CurrentStage)
}

func TestCodePlanJudgeNonCriticalFailGoesToHuman(t *testing.T) {
	client := &mocks.MockLLMClient{}
	minor := issueSpec{
		Type:        "completeness",
		Description: "Missing a data teardown section",
		Severity:    "medium",
	}
	onStage(client, models.StageJudgeCodePlan).
		Return(textResponse("judge_code_plan", evaluationJSON(t, 40, models.JudgeFail, "low score", minor)), nil)

	node := newJudgeCodePlanNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactCodePlan, "# Plan", 0)

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StageReviewCodePlan, next.CurrentStage)
}

func TestCodePlanJudgeConventionViolationIsCritical(t *testing.T) {
	evaluation := models.JudgeEvaluation{Issues: []models.JudgeIssue{{
		Type:        "structure",
		Description: "Page object naming is a convention violation",
		Severity:    "high",
	}}}

	assert.True(t, hasCriticalIssue(evaluation))
}

func TestJudgeMalformedOutputRetriesOnce(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageJudgeRequirements).
		Return(textResponse("judge_requirements", "not json at all"), nil).Once()
	onStage(client, models.StageJudgeRequirements).
		Return(textResponse("judge_requirements", evaluationJSON(t, 85, models.JudgePass, "fine")), nil).Once()

	node := newJudgeRequirementsNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 0)

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StageReviewSpec, next.CurrentStage)
	assert.InDelta(t, 0.02, result.Patch.CostDelta, 0.0001)
	client.AssertNumberOfCalls(t, "Generate", 2)
}

func TestJudgeMalformedOutputTwiceFails(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageJudgeRequirements).
		Return(textResponse("judge_requirements", "still not json"), nil)

	node := newJudgeRequirementsNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 0)

	_, err := node.Run(context.Background(), state, nil)
	require.Error(t, err)
	client.AssertNumberOfCalls(t, "Generate", 2)
}

func TestJudgeBackendFailureSurfaces(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageJudgeRequirements).
		Return(nil, errors.New("provider unreachable"))

	node := newJudgeRequirementsNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 0)

	_, err := node.Run(context.Background(), state, nil)
	require.Error(t, err)
}

func TestJudgeAnnotatesLatestSnapshot(t *testing.T) {
	client := &mocks.MockLLMClient{}
	onStage(client, models.StageJudgeRequirements).
		Return(textResponse("judge_requirements", evaluationJSON(t, 72, models.JudgePass, "acceptable")), nil)

	node := newJudgeRequirementsNode(client, testLogger())
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 0)

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	last := next.Requirements.History[len(next.Requirements.History)-1]
	require.NotNil(t, last.JudgeScore)
	assert.InDelta(t, 72, *last.JudgeScore, 0.0001)
	assert.Equal(t, "acceptable", last.JudgeFeedback)
}
