package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testsmith-ai/testsmith/pkg/models"
)

func specGate() *gateNode {
	return newGateNode(models.StageReviewSpec, models.GateSpec, models.ArtifactRequirements,
		models.StageStrategy, models.StageRequirements, testLogger())
}

func TestGateSuspendsWithoutDecision(t *testing.T) {
	node := specGate()
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 1)
	state.Requirements.Evaluation = &models.JudgeEvaluation{
		Score:         88,
		Result:        models.JudgePass,
		Feedback:      "solid",
		HumanQuestion: "should not leak",
	}

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Suspend)

	assert.Equal(t, models.SuspendGate, result.Suspend.Kind)
	assert.Equal(t, models.StageReviewSpec, result.Suspend.Stage)

	payload := result.Suspend.Gate
	require.NotNil(t, payload)
	assert.Equal(t, models.GateSpec, payload.Gate)
	assert.Equal(t, "# Requirements", payload.Content)
	assert.Equal(t, "solid", payload.JudgeFeedback)
	assert.Empty(t, payload.HumanQuestion)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StatusWaitingApproval, next.Status)
	assert.Equal(t, models.StageReviewSpec, next.CurrentStage)
	assert.Equal(t, models.GatePending, next.Gates[models.GateSpec].Status)
}

func TestGateSurfacesHumanQuestionOnEscalation(t *testing.T) {
	node := specGate()
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 1)
	state.Requirements.Evaluation = &models.JudgeEvaluation{
		Score:         45,
		Result:        models.JudgeNeedsHuman,
		Feedback:      "ambiguous",
		HumanQuestion: "Is offline mode in scope?",
	}

	result, err := node.Run(context.Background(), state, nil)
	require.NoError(t, err)
	require.NotNil(t, result.Suspend)
	assert.Equal(t, "Is offline mode in scope?", result.Suspend.Gate.HumanQuestion)
}

func TestGateApprove(t *testing.T) {
	node := specGate()
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 1)

	result, err := node.Run(context.Background(), state, &models.ResumeInput{
		Decision: &models.GateDecision{Decision: models.DecisionApprove},
	})
	require.NoError(t, err)
	assert.Nil(t, result.Suspend)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StageStrategy, next.CurrentStage)
	assert.Equal(t, models.StatusRunning, next.Status)

	gate := next.Gates[models.GateSpec]
	assert.Equal(t, models.GateApproved, gate.Status)
	require.NotNil(t, gate.ReviewedAt)

	last := next.Requirements.History[len(next.Requirements.History)-1]
	assert.True(t, last.Approved)
}

func TestGateEditOverwritesContent(t *testing.T) {
	node := specGate()
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 1)

	result, err := node.Run(context.Background(), state, &models.ResumeInput{
		Decision: &models.GateDecision{
			Decision:      models.DecisionEdit,
			Feedback:      "tightened the scope wording",
			EditedContent: "X",
		},
	})
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, "X", next.Requirements.Content)
	assert.Equal(t, 2, next.Requirements.Version)
	assert.Len(t, next.Requirements.History, 1)
	assert.Equal(t, models.StageStrategy, next.CurrentStage)

	gate := next.Gates[models.GateSpec]
	assert.Equal(t, models.GateApproved, gate.Status)
	assert.Equal(t, "Approved with edits: tightened the scope wording", gate.Feedback)

	last := next.Requirements.History[len(next.Requirements.History)-1]
	assert.Equal(t, "X", last.Content)
	assert.True(t, last.Approved)
}

func TestGateReject(t *testing.T) {
	node := specGate()
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 1)

	result, err := node.Run(context.Background(), state, &models.ResumeInput{
		Decision: &models.GateDecision{
			Decision: models.DecisionReject,
			Feedback: "missing the admin flow",
		},
	})
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StageRequirements, next.CurrentStage)
	assert.Equal(t, "missing the admin flow", next.HumanFeedback)
	assert.Equal(t, models.GateRejected, next.Gates[models.GateSpec].Status)
}

func TestGateUnknownDecisionRejects(t *testing.T) {
	node := specGate()
	state := stateWithArtifact(models.ArtifactRequirements, "# Requirements", 1)

	result, err := node.Run(context.Background(), state, &models.ResumeInput{
		Decision: &models.GateDecision{Decision: "MAYBE"},
	})
	require.NoError(t, err)

	next := models.Apply(state, result.Patch)
	assert.Equal(t, models.StageRequirements, next.CurrentStage)
	assert.Equal(t, models.GateRejected, next.Gates[models.GateSpec].Status)
}
