// Package engine implements the pipeline state machine: the stage nodes, the
// judge retry policy, the human approval gates, and the runner that threads a
// WorkflowState through them with checkpointing at every transition.
package engine

import (
	"context"

	"github.com/testsmith-ai/testsmith/pkg/models"
)

// NodeResult is what a node hands back to the runner. Patch carries the fields
// the node changed; a non-nil Suspend parks the session awaiting external
// input instead of continuing to the next stage.
type NodeResult struct {
	Patch   models.StatePatch
	Suspend *models.Suspension
}

// Node executes one stage. Business outcomes (quality fail, rejection, low
// confidence) are encoded in the returned patch's CurrentStage; an error is
// reserved for infrastructure faults and halts the session.
//
// input carries externally supplied answers or decisions and is non-nil only
// on the first node invocation after a resume.
type Node interface {
	Stage() models.Stage
	Run(ctx context.Context, state models.WorkflowState, input *models.ResumeInput) (NodeResult, error)
}
