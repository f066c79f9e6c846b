package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/testsmith-ai/testsmith/pkg/llm"
	"github.com/testsmith-ai/testsmith/pkg/models"
	"github.com/testsmith-ai/testsmith/pkg/prompts"
)

const firstAttemptFeedback = "First attempt - no previous feedback."

// decodeWithRetry generates once and parses the structured response. A
// malformed response earns exactly one regeneration; a second malformed
// response surfaces as an infrastructure-class failure. The accumulated cost
// of all attempts is returned alongside the decoded value.
func decodeWithRetry[T any](ctx context.Context, client llm.Client, req llm.Request, decode func(string) (*T, error)) (*T, float64, error) {
	var cost float64

	resp, err := client.Generate(ctx, req)
	if err != nil {
		return nil, cost, err
	}

	cost += resp.CostUSD

	decoded, err := decode(resp.Content)
	if err == nil {
		return decoded, cost, nil
	}

	if !errors.Is(err, llm.ErrMalformedOutput) {
		return nil, cost, err
	}

	resp, retryErr := client.Generate(ctx, req)
	if retryErr != nil {
		return nil, cost, retryErr
	}

	cost += resp.CostUSD

	decoded, err = decode(resp.Content)
	if err != nil {
		return nil, cost, fmt.Errorf("structured output still malformed after retry: %w", err)
	}

	return decoded, cost, nil
}

// retryFeedback assembles the feedback a generative node injects on a retry
// pass: the latest judge feedback plus any human rejection feedback.
func retryFeedback(artifact models.Artifact, humanFeedback string) string {
	parts := []string{}

	if artifact.Iterations > 0 && artifact.Evaluation != nil && artifact.Evaluation.Feedback != "" {
		parts = append(parts, artifact.Evaluation.Feedback)
	}

	if humanFeedback != "" {
		parts = append(parts, "Human reviewer feedback: "+humanFeedback)
	}

	if len(parts) == 0 {
		return firstAttemptFeedback
	}

	return strings.Join(parts, "\n\n")
}

func newSnapshot(state models.WorkflowState, kind models.ArtifactKind, stage models.Stage, format, content string) models.DocumentVersion {
	artifact := state.Artifact(kind)

	return models.DocumentVersion{
		ID:        uuid.New().String(),
		SessionID: state.ID,
		Kind:      kind,
		Version:   artifact.Version + 1,
		Content:   content,
		Format:    format,
		CreatedBy: "agent:" + string(stage),
		CreatedAt: time.Now().UTC(),
	}
}

// appendSnapshot folds a new revision into the artifact sub-record: content
// and version advance, the snapshot joins the history, and the stale
// evaluation from the previous revision is cleared.
func appendSnapshot(artifact models.Artifact, snapshot models.DocumentVersion) models.Artifact {
	history := make([]models.DocumentVersion, len(artifact.History), len(artifact.History)+1)
	copy(history, artifact.History)

	artifact.Content = snapshot.Content
	artifact.Version = snapshot.Version
	artifact.History = append(history, snapshot)
	artifact.Evaluation = nil

	return artifact
}

// generativeNode is the shared body of the long-form document stages. Each
// instance differs only in the artifact it owns, the judge stage it hands off
// to, and how it assembles its prompt from the upstream state.
type generativeNode struct {
	stage     models.Stage
	kind      models.ArtifactKind
	judgeNext models.Stage
	format    string

	buildPrompt func(state models.WorkflowState, feedback string) (system, user string, err error)

	llm    llm.Client
	logger *slog.Logger
}

func (n *generativeNode) Stage() models.Stage {
	return n.stage
}

func (n *generativeNode) Run(ctx context.Context, state models.WorkflowState, _ *models.ResumeInput) (NodeResult, error) {
	artifact := state.Artifact(n.kind)
	feedback := retryFeedback(artifact, state.HumanFeedback)

	system, user, err := n.buildPrompt(state, feedback)
	if err != nil {
		return NodeResult{}, fmt.Errorf("failed to build %s prompt: %w", n.stage, err)
	}

	resp, err := n.llm.Generate(ctx, llm.Request{
		SystemPrompt: system,
		UserPrompt:   user,
		Stage:        string(n.stage),
	})
	if err != nil {
		return NodeResult{}, err
	}

	snapshot := newSnapshot(state, n.kind, n.stage, n.format, resp.Content)

	n.logger.Info("Generated artifact revision",
		"kind", n.kind, "version", snapshot.Version, "cost_usd", resp.CostUSD)

	patch := models.StatePatch{
		CurrentStage:  models.StagePtr(n.judgeNext),
		HumanFeedback: models.StringPtr(""),
		CostDelta:     resp.CostUSD,
	}
	patch.SetArtifact(n.kind, appendSnapshot(artifact, snapshot))

	return NodeResult{Patch: patch}, nil
}

func newRequirementsNode(client llm.Client, logger *slog.Logger) *generativeNode {
	return &generativeNode{
		stage:     models.StageRequirements,
		kind:      models.ArtifactRequirements,
		judgeNext: models.StageJudgeRequirements,
		format:    "markdown",
		buildPrompt: func(state models.WorkflowState, feedback string) (string, string, error) {
			user, err := prompts.RequirementsUser(prompts.RequirementsData{
				RawInput:      state.RawInput,
				QASummary:     prompts.FormatQASummary(toQABatches(state.QASessions)),
				TechContext:   state.Context.TechContext,
				CodebaseMap:   state.Context.CodebaseMap,
				FrameworkType: string(state.Context.Framework),
				JudgeFeedback: feedback,
				Iteration:     state.Requirements.Iterations + 1,
			})

			return prompts.RequirementsSystem, user, err
		},
		llm:    client,
		logger: stageLogger(logger, models.StageRequirements),
	}
}

func newStrategyNode(client llm.Client, logger *slog.Logger) *generativeNode {
	return &generativeNode{
		stage:     models.StageStrategy,
		kind:      models.ArtifactStrategy,
		judgeNext: models.StageJudgeStrategy,
		format:    "markdown",
		buildPrompt: func(state models.WorkflowState, feedback string) (string, string, error) {
			user, err := prompts.StrategyUser(prompts.StrategyData{
				Requirements:  state.Requirements.Content,
				TechContext:   state.Context.TechContext,
				FrameworkType: string(state.Context.Framework),
				JudgeFeedback: feedback,
				Iteration:     state.Strategy.Iterations + 1,
			})

			return prompts.StrategySystem, user, err
		},
		llm:    client,
		logger: stageLogger(logger, models.StageStrategy),
	}
}

func newCodePlanNode(client llm.Client, logger *slog.Logger) *generativeNode {
	return &generativeNode{
		stage:     models.StageCodePlan,
		kind:      models.ArtifactCodePlan,
		judgeNext: models.StageJudgeCodePlan,
		format:    "markdown",
		buildPrompt: func(state models.WorkflowState, feedback string) (string, string, error) {
			user, err := prompts.CodePlanUser(prompts.CodePlanData{
				TestCases:     state.TestCases.Content,
				TechContext:   state.Context.TechContext,
				CodebaseMap:   state.Context.CodebaseMap,
				Conventions:   state.Context.ConventionsSummary,
				FrameworkType: string(state.Context.Framework),
				JudgeFeedback: feedback,
				Iteration:     state.CodePlan.Iterations + 1,
			})

			return prompts.CodePlanSystem, user, err
		},
		llm:    client,
		logger: stageLogger(logger, models.StageCodePlan),
	}
}

func stageLogger(logger *slog.Logger, stage models.Stage) *slog.Logger {
	return logger.With("module", "engine", "stage", stage)
}
