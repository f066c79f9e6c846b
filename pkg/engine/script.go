package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/testsmith-ai/testsmith/pkg/gherkin"
	"github.com/testsmith-ai/testsmith/pkg/llm"
	"github.com/testsmith-ai/testsmith/pkg/models"
	"github.com/testsmith-ai/testsmith/pkg/prompts"
)

// ScriptingNode turns the approved code plan and Gherkin document into the
// final test script and derives the script's file name from the feature
// title.
type ScriptingNode struct {
	llm    llm.Client
	logger *slog.Logger
}

func NewScriptingNode(client llm.Client, logger *slog.Logger) *ScriptingNode {
	return &ScriptingNode{llm: client, logger: stageLogger(logger, models.StageScripting)}
}

func (n *ScriptingNode) Stage() models.Stage {
	return models.StageScripting
}

func (n *ScriptingNode) Run(ctx context.Context, state models.WorkflowState, _ *models.ResumeInput) (NodeResult, error) {
	artifact := state.Script
	feedback := retryFeedback(artifact, state.HumanFeedback)

	user, err := prompts.ScriptingUser(prompts.ScriptingData{
		TestCases:     state.TestCases.Content,
		CodePlan:      state.CodePlan.Content,
		TechContext:   state.Context.TechContext,
		CodebaseMap:   state.Context.CodebaseMap,
		FrameworkType: string(state.Context.Framework),
		JudgeFeedback: feedback,
		Iteration:     artifact.Iterations + 1,
	})
	if err != nil {
		return NodeResult{}, fmt.Errorf("failed to build scripting prompt: %w", err)
	}

	resp, err := n.llm.Generate(ctx, llm.Request{
		SystemPrompt: prompts.ScriptingSystem,
		UserPrompt:   user,
		Stage:        string(models.StageScripting),
	})
	if err != nil {
		return NodeResult{}, err
	}

	snapshot := newSnapshot(state, models.ArtifactScript, models.StageScripting, "code", resp.Content)
	filename := scriptFilename(state.TestCases.Content)

	n.logger.Info("Generated test script",
		"version", snapshot.Version, "filename", filename, "cost_usd", resp.CostUSD)

	patch := models.StatePatch{
		CurrentStage:   models.StagePtr(models.StageJudgeCode),
		ScriptFilename: models.StringPtr(filename),
		HumanFeedback:  models.StringPtr(""),
		CostDelta:      resp.CostUSD,
	}
	patch.SetArtifact(models.ArtifactScript, appendSnapshot(artifact, snapshot))

	return NodeResult{Patch: patch}, nil
}

// scriptFilename slugs the feature title into a pytest-style file name,
// falling back to a generic name when the Gherkin document has no parseable
// title.
func scriptFilename(testCases string) string {
	title := gherkin.Validate(testCases).FeatureTitle

	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, strings.TrimSpace(title))

	for strings.Contains(slug, "__") {
		slug = strings.ReplaceAll(slug, "__", "_")
	}

	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "generated"
	}

	return "test_" + slug + ".py"
}
