package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/testsmith-ai/testsmith/pkg/llm"
	"github.com/testsmith-ai/testsmith/pkg/models"
	"github.com/testsmith-ai/testsmith/pkg/prompts"
)

// judgeNode is the shared retry-with-escalation policy behind every quality
// gate. Instances differ in the artifact they score, the rubric prompt, and
// the three routing destinations.
type judgeNode struct {
	stage      models.Stage
	kind       models.ArtifactKind
	passStage  models.Stage
	failStage  models.Stage
	humanStage models.Stage

	// criticalSplit enables the code-plan routing rule: FAIL regenerates
	// only when a critical issue is flagged, otherwise the human decides.
	criticalSplit bool

	system    string
	userFn    func(prompts.JudgeData) (string, error)
	buildData func(state models.WorkflowState) prompts.JudgeData

	llm    llm.Client
	logger *slog.Logger
}

func (n *judgeNode) Stage() models.Stage {
	return n.stage
}

func (n *judgeNode) Run(ctx context.Context, state models.WorkflowState, _ *models.ResumeInput) (NodeResult, error) {
	artifact := state.Artifact(n.kind)
	iteration := artifact.Iterations
	isFinal := iteration >= state.MaxJudgeIterations-1

	data := n.buildData(state)
	data.Content = artifact.Content
	data.Iteration = iteration + 1
	data.MaxIterations = state.MaxJudgeIterations
	data.IsFinalIteration = isFinal

	user, err := n.userFn(data)
	if err != nil {
		return NodeResult{}, fmt.Errorf("failed to build %s prompt: %w", n.stage, err)
	}

	req := llm.Request{
		SystemPrompt: n.system,
		UserPrompt:   user,
		Stage:        string(n.stage),
	}

	evaluation, cost, err := decodeWithRetry(ctx, n.llm, req, llm.DecodeEvaluation)
	if err != nil {
		return NodeResult{}, err
	}

	destination := n.route(*evaluation)

	if destination == n.failStage && isFinal {
		destination = n.humanStage
		evaluation.Result = models.JudgeNeedsHuman
		evaluation.Feedback = exhaustedFeedback(evaluation.Feedback, iteration+1)
	}

	n.logger.Info("Judged artifact",
		"kind", n.kind, "score", evaluation.Score, "result", evaluation.Result,
		"iteration", iteration+1, "next_stage", destination, "cost_usd", cost)

	artifact.Evaluation = evaluation
	artifact.Iterations = iteration + 1
	annotateLatestSnapshot(&artifact, *evaluation)

	patch := models.StatePatch{
		CurrentStage: models.StagePtr(destination),
		CostDelta:    cost,
	}
	patch.SetArtifact(n.kind, artifact)

	return NodeResult{Patch: patch}, nil
}

func (n *judgeNode) route(evaluation models.JudgeEvaluation) models.Stage {
	switch evaluation.Result {
	case models.JudgePass:
		return n.passStage
	case models.JudgeFail:
		if n.criticalSplit && !hasCriticalIssue(evaluation) {
			return n.humanStage
		}

		return n.failStage
	case models.JudgeNeedsHuman:
		return n.humanStage
	}

	return n.humanStage
}

// hasCriticalIssue scans the issue list for the two objectively disqualifying
// defects: duplicating an existing utility, or violating stated conventions.
func hasCriticalIssue(evaluation models.JudgeEvaluation) bool {
	for _, issue := range evaluation.Issues {
		desc := strings.ToLower(issue.Description)
		kind := strings.ToLower(issue.Type)

		if strings.Contains(desc, "duplicate") || strings.Contains(kind, "duplicate") {
			return true
		}

		if strings.Contains(desc, "convention") && strings.Contains(desc, "violat") {
			return true
		}
	}

	return false
}

func exhaustedFeedback(feedback string, regenerations int) string {
	return fmt.Sprintf(
		"[MAX ITERATIONS REACHED] %s\n\nThis document has been regenerated %d times and still does not meet quality standards. Human review is required.",
		feedback, regenerations)
}

// annotateLatestSnapshot copies the score and feedback onto the history entry
// the judge just evaluated, so the audit trail carries the verdict.
func annotateLatestSnapshot(artifact *models.Artifact, evaluation models.JudgeEvaluation) {
	if len(artifact.History) == 0 {
		return
	}

	history := make([]models.DocumentVersion, len(artifact.History))
	copy(history, artifact.History)

	last := &history[len(history)-1]
	last.JudgeScore = models.Float64Ptr(evaluation.Score)
	last.JudgeFeedback = evaluation.Feedback

	artifact.History = history
}

func newJudgeRequirementsNode(client llm.Client, logger *slog.Logger) *judgeNode {
	return &judgeNode{
		stage:      models.StageJudgeRequirements,
		kind:       models.ArtifactRequirements,
		passStage:  models.StageReviewSpec,
		failStage:  models.StageRequirements,
		humanStage: models.StageReviewSpec,
		system:     prompts.JudgeRequirementsSystem,
		userFn:     prompts.JudgeRequirementsUser,
		buildData: func(state models.WorkflowState) prompts.JudgeData {
			return prompts.JudgeData{RawInput: state.RawInput}
		},
		llm:    client,
		logger: stageLogger(logger, models.StageJudgeRequirements),
	}
}

func newJudgeStrategyNode(client llm.Client, logger *slog.Logger) *judgeNode {
	return &judgeNode{
		stage:      models.StageJudgeStrategy,
		kind:       models.ArtifactStrategy,
		passStage:  models.StageReviewStrategy,
		failStage:  models.StageStrategy,
		humanStage: models.StageReviewStrategy,
		system:     prompts.JudgeStrategySystem,
		userFn:     prompts.JudgeStrategyUser,
		buildData: func(state models.WorkflowState) prompts.JudgeData {
			return prompts.JudgeData{Requirements: state.Requirements.Content}
		},
		llm:    client,
		logger: stageLogger(logger, models.StageJudgeStrategy),
	}
}

func newJudgeTestCasesNode(client llm.Client, logger *slog.Logger) *judgeNode {
	return &judgeNode{
		stage:      models.StageJudgeTestCases,
		kind:       models.ArtifactTestCases,
		passStage:  models.StageReviewTestCases,
		failStage:  models.StageTestCases,
		humanStage: models.StageReviewTestCases,
		system:     prompts.JudgeTestCasesSystem,
		userFn:     prompts.JudgeTestCasesUser,
		buildData: func(state models.WorkflowState) prompts.JudgeData {
			return prompts.JudgeData{Strategy: state.Strategy.Content}
		},
		llm:    client,
		logger: stageLogger(logger, models.StageJudgeTestCases),
	}
}

func newJudgeCodePlanNode(client llm.Client, logger *slog.Logger) *judgeNode {
	return &judgeNode{
		stage:         models.StageJudgeCodePlan,
		kind:          models.ArtifactCodePlan,
		passStage:     models.StageReviewCodePlan,
		failStage:     models.StageCodePlan,
		humanStage:    models.StageReviewCodePlan,
		criticalSplit: true,
		system:        prompts.JudgeCodePlanSystem,
		userFn:        prompts.JudgeCodePlanUser,
		buildData: func(state models.WorkflowState) prompts.JudgeData {
			return prompts.JudgeData{
				TestCases:   state.TestCases.Content,
				TechContext: state.Context.TechContext,
				CodebaseMap: state.Context.CodebaseMap,
			}
		},
		llm:    client,
		logger: stageLogger(logger, models.StageJudgeCodePlan),
	}
}

func newJudgeCodeNode(client llm.Client, logger *slog.Logger) *judgeNode {
	return &judgeNode{
		stage:      models.StageJudgeCode,
		kind:       models.ArtifactScript,
		passStage:  models.StageReviewCode,
		failStage:  models.StageScripting,
		humanStage: models.StageReviewCode,
		system:     prompts.JudgeCodeSystem,
		userFn:     prompts.JudgeCodeUser,
		buildData: func(state models.WorkflowState) prompts.JudgeData {
			return prompts.JudgeData{
				CodePlan:      state.CodePlan.Content,
				TestCases:     state.TestCases.Content,
				FrameworkType: string(state.Context.Framework),
			}
		},
		llm:    client,
		logger: stageLogger(logger, models.StageJudgeCode),
	}
}
