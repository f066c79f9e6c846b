package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/testsmith-ai/testsmith/pkg/models"
)

// gateNode is the shared suspend-for-decision policy behind every approval
// checkpoint. With no decision on hand it assembles the review payload and
// parks the session; with one it applies the verdict and routes.
type gateNode struct {
	stage        models.Stage
	gate         models.GateKey
	kind         models.ArtifactKind
	approveStage models.Stage
	rejectStage  models.Stage

	logger *slog.Logger
}

func newGateNode(stage models.Stage, gate models.GateKey, kind models.ArtifactKind, approveStage, rejectStage models.Stage, logger *slog.Logger) *gateNode {
	return &gateNode{
		stage:        stage,
		gate:         gate,
		kind:         kind,
		approveStage: approveStage,
		rejectStage:  rejectStage,
		logger:       stageLogger(logger, stage),
	}
}

func (n *gateNode) Stage() models.Stage {
	return n.stage
}

func (n *gateNode) Run(_ context.Context, state models.WorkflowState, input *models.ResumeInput) (NodeResult, error) {
	if input == nil || input.Decision == nil {
		return n.suspend(state), nil
	}

	return n.decide(state, *input.Decision), nil
}

func (n *gateNode) suspend(state models.WorkflowState) NodeResult {
	artifact := state.Artifact(n.kind)

	payload := &models.GatePayload{
		Gate:            n.gate,
		Content:         artifact.Content,
		DocumentVersion: artifact.Version,
	}

	if evaluation := artifact.Evaluation; evaluation != nil {
		payload.JudgeScore = models.Float64Ptr(evaluation.Score)
		payload.JudgeFeedback = evaluation.Feedback
		payload.JudgeResult = evaluation.Result

		if evaluation.Result == models.JudgeNeedsHuman {
			payload.HumanQuestion = evaluation.HumanQuestion
		}
	}

	// Re-entering after a rejection starts the gate record over.
	gates := copyGates(state.Gates)
	gates[n.gate] = models.ApprovalGate{Key: n.gate, Status: models.GatePending}

	n.logger.Info("Awaiting gate decision", "gate", n.gate, "version", artifact.Version)

	return NodeResult{
		Patch: models.StatePatch{
			Status:       models.StatusPtr(models.StatusWaitingApproval),
			CurrentStage: models.StagePtr(n.stage),
			Gates:        models.GatesPtr(gates),
		},
		Suspend: &models.Suspension{
			Kind:      models.SuspendGate,
			SessionID: state.ID,
			Stage:     n.stage,
			Gate:      payload,
		},
	}
}

func (n *gateNode) decide(state models.WorkflowState, decision models.GateDecision) NodeResult {
	artifact := state.Artifact(n.kind)
	gates := copyGates(state.Gates)
	now := time.Now().UTC()

	record := models.ApprovalGate{
		Key:             n.gate,
		DocumentVersion: artifact.Version,
		ReviewedAt:      &now,
	}

	patch := models.StatePatch{
		Status: models.StatusPtr(models.StatusRunning),
	}

	switch decision.Decision {
	case models.DecisionApprove, models.DecisionEdit:
		record.Status = models.GateApproved

		if decision.Decision == models.DecisionEdit {
			artifact.Content = decision.EditedContent
			record.Feedback = "Approved with edits: " + decision.Feedback
		} else {
			record.Feedback = decision.Feedback
		}

		markApproved(&artifact)
		patch.SetArtifact(n.kind, artifact)
		patch.CurrentStage = models.StagePtr(n.approveStage)

	default:
		// Anything other than an explicit approval is a rejection.
		record.Status = models.GateRejected
		record.Feedback = decision.Feedback

		patch.HumanFeedback = models.StringPtr(decision.Feedback)
		patch.CurrentStage = models.StagePtr(n.rejectStage)
	}

	gates[n.gate] = record
	patch.Gates = models.GatesPtr(gates)

	n.logger.Info("Gate decision applied",
		"gate", n.gate, "decision", decision.Decision, "next_stage", *patch.CurrentStage)

	return NodeResult{Patch: patch}
}

// markApproved flags the current content as signed off. An edited gate stores
// the human's final wording in place on the latest snapshot rather than
// minting a new version.
func markApproved(artifact *models.Artifact) {
	if len(artifact.History) == 0 {
		return
	}

	history := make([]models.DocumentVersion, len(artifact.History))
	copy(history, artifact.History)

	last := &history[len(history)-1]
	last.Approved = true
	last.Content = artifact.Content

	artifact.History = history
}

func copyGates(gates map[models.GateKey]models.ApprovalGate) map[models.GateKey]models.ApprovalGate {
	next := make(map[models.GateKey]models.ApprovalGate, len(gates))
	for key, record := range gates {
		next[key] = record
	}

	return next
}
