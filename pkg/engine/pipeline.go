package engine

import (
	"log/slog"

	"github.com/testsmith-ai/testsmith/pkg/llm"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

// NewPipelineRouter registers the full sixteen-stage graph: clarification,
// five generative stages, five judges, and five approval gates. The final
// gate's approval target is the completion marker.
func NewPipelineRouter(client llm.Client, logger *slog.Logger) (*Router, error) {
	router := NewRouter()

	nodes := []Node{
		NewClarificationNode(client, logger),

		newRequirementsNode(client, logger),
		newJudgeRequirementsNode(client, logger),
		newGateNode(models.StageReviewSpec, models.GateSpec, models.ArtifactRequirements,
			models.StageStrategy, models.StageRequirements, logger),

		newStrategyNode(client, logger),
		newJudgeStrategyNode(client, logger),
		newGateNode(models.StageReviewStrategy, models.GateStrategy, models.ArtifactStrategy,
			models.StageTestCases, models.StageStrategy, logger),

		NewTestCasesNode(client, logger),
		newJudgeTestCasesNode(client, logger),
		newGateNode(models.StageReviewTestCases, models.GateTestCases, models.ArtifactTestCases,
			models.StageCodePlan, models.StageTestCases, logger),

		newCodePlanNode(client, logger),
		newJudgeCodePlanNode(client, logger),
		newGateNode(models.StageReviewCodePlan, models.GateCodePlan, models.ArtifactCodePlan,
			models.StageScripting, models.StageCodePlan, logger),

		NewScriptingNode(client, logger),
		newJudgeCodeNode(client, logger),
		newGateNode(models.StageReviewCode, models.GateCode, models.ArtifactScript,
			models.StageCompleted, models.StageScripting, logger),
	}

	for _, node := range nodes {
		if err := router.Register(node); err != nil {
			return nil, err
		}
	}

	return router, nil
}
