package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/testsmith-ai/testsmith/pkg/gherkin"
	"github.com/testsmith-ai/testsmith/pkg/llm"
	"github.com/testsmith-ai/testsmith/pkg/models"
	"github.com/testsmith-ai/testsmith/pkg/prompts"
)

// maxRepairAttempts bounds the syntax-repair loop inside the test-case node.
// The loop is independent of the judge retry cycle.
const maxRepairAttempts = 2

// TestCasesNode generates the Gherkin document and runs a local repair loop:
// when the parser rejects the output, generation is re-invoked once with the
// error list injected. The document proceeds to the judge either way; the
// validity flag travels with it.
type TestCasesNode struct {
	llm    llm.Client
	logger *slog.Logger
}

func NewTestCasesNode(client llm.Client, logger *slog.Logger) *TestCasesNode {
	return &TestCasesNode{llm: client, logger: stageLogger(logger, models.StageTestCases)}
}

func (n *TestCasesNode) Stage() models.Stage {
	return models.StageTestCases
}

func (n *TestCasesNode) Run(ctx context.Context, state models.WorkflowState, _ *models.ResumeInput) (NodeResult, error) {
	artifact := state.TestCases
	feedback := retryFeedback(artifact, state.HumanFeedback)

	var (
		content    string
		validation gherkin.ValidationResult
		totalCost  float64
		gherkinErr string
	)

	for attempt := 1; attempt <= maxRepairAttempts; attempt++ {
		user, err := prompts.TestCasesUser(prompts.TestCasesData{
			Strategy:      state.Strategy.Content,
			Requirements:  state.Requirements.Content,
			TechContext:   state.Context.TechContext,
			FrameworkType: string(state.Context.Framework),
			JudgeFeedback: feedback,
			GherkinErrors: gherkinErr,
			Iteration:     artifact.Iterations + 1,
		})
		if err != nil {
			return NodeResult{}, fmt.Errorf("failed to build test cases prompt: %w", err)
		}

		resp, err := n.llm.Generate(ctx, llm.Request{
			SystemPrompt: prompts.TestCasesSystem,
			UserPrompt:   user,
			Stage:        string(models.StageTestCases),
		})
		if err != nil {
			return NodeResult{}, err
		}

		totalCost += resp.CostUSD
		content = resp.Content

		validation = gherkin.Validate(content)
		if validation.IsValid {
			break
		}

		gherkinErr = gherkin.FormatErrorsForPrompt(validation)
		n.logger.Warn("Generated Gherkin failed validation",
			"attempt", attempt, "errors", len(validation.Errors))
	}

	snapshot := newSnapshot(state, models.ArtifactTestCases, models.StageTestCases, "gherkin", content)

	n.logger.Info("Generated test cases",
		"version", snapshot.Version, "valid", validation.IsValid,
		"scenarios", validation.ScenarioCount, "cost_usd", totalCost)

	patch := models.StatePatch{
		CurrentStage:   models.StagePtr(models.StageJudgeTestCases),
		TestCasesValid: models.BoolPtr(validation.IsValid),
		HumanFeedback:  models.StringPtr(""),
		CostDelta:      totalCost,
	}
	patch.SetArtifact(models.ArtifactTestCases, appendSnapshot(artifact, snapshot))

	return NodeResult{Patch: patch}, nil
}
