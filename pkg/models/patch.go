package models

import "time"

// StatePatch is the typed partial update a node returns. Every set pointer
// replaces the corresponding state field wholesale (last writer wins); slice
// and map fields are fully replaced, never appended; a node that wants an
// append constructs the concatenated value itself. CostDelta is the one
// additive field: it is summed into AccumulatedCostUSD.
type StatePatch struct {
	Status       *Status
	CurrentStage *Stage
	ErrorMessage *string

	QASessions   *[]QASession
	QAConfidence *float64
	QACompleted  *bool
	QARounds     *int

	// Framework refines Context.Framework when clarification detects a more
	// specific classification than the context scan did. The rest of the
	// context bundle stays immutable after load.
	Framework *FrameworkType

	Requirements *Artifact
	Strategy     *Artifact
	TestCases    *Artifact
	CodePlan     *Artifact
	Script       *Artifact

	TestCasesValid *bool
	ScriptFilename *string

	Gates         *map[GateKey]ApprovalGate
	HumanFeedback *string

	ExecutionResult *map[string]any
	HealingAttempts *int
	FinalReport     *string

	CostDelta float64
}

// SetArtifact stores a full replacement for the sub-record of the given kind.
func (p *StatePatch) SetArtifact(kind ArtifactKind, a Artifact) {
	switch kind {
	case ArtifactRequirements:
		p.Requirements = &a
	case ArtifactStrategy:
		p.Strategy = &a
	case ArtifactTestCases:
		p.TestCases = &a
	case ArtifactCodePlan:
		p.CodePlan = &a
	case ArtifactScript:
		p.Script = &a
	}
}

// Apply merges a patch into a state copy and returns the result. The input
// state is never mutated, which keeps the runner's merge step a pure reducer.
func Apply(state WorkflowState, patch StatePatch) WorkflowState {
	next := state

	if patch.Status != nil {
		next.Status = *patch.Status
	}

	if patch.CurrentStage != nil {
		next.CurrentStage = *patch.CurrentStage
	}

	if patch.ErrorMessage != nil {
		next.ErrorMessage = *patch.ErrorMessage
	}

	if patch.QASessions != nil {
		next.QASessions = *patch.QASessions
	}

	if patch.QAConfidence != nil {
		next.QAConfidence = *patch.QAConfidence
	}

	if patch.QACompleted != nil {
		next.QACompleted = *patch.QACompleted
	}

	if patch.QARounds != nil {
		next.QARounds = *patch.QARounds
	}

	if patch.Framework != nil {
		next.Context.Framework = *patch.Framework
	}

	if patch.Requirements != nil {
		next.Requirements = *patch.Requirements
	}

	if patch.Strategy != nil {
		next.Strategy = *patch.Strategy
	}

	if patch.TestCases != nil {
		next.TestCases = *patch.TestCases
	}

	if patch.CodePlan != nil {
		next.CodePlan = *patch.CodePlan
	}

	if patch.Script != nil {
		next.Script = *patch.Script
	}

	if patch.TestCasesValid != nil {
		next.TestCasesValid = *patch.TestCasesValid
	}

	if patch.ScriptFilename != nil {
		next.ScriptFilename = *patch.ScriptFilename
	}

	if patch.Gates != nil {
		next.Gates = *patch.Gates
	}

	if patch.HumanFeedback != nil {
		next.HumanFeedback = *patch.HumanFeedback
	}

	if patch.ExecutionResult != nil {
		next.ExecutionResult = *patch.ExecutionResult
	}

	if patch.HealingAttempts != nil {
		next.HealingAttempts = *patch.HealingAttempts
	}

	if patch.FinalReport != nil {
		next.FinalReport = *patch.FinalReport
	}

	next.AccumulatedCostUSD += patch.CostDelta
	next.UpdatedAt = time.Now().UTC()

	return next
}

// Helpers for building patches without intermediate variables.

func StatusPtr(v Status) *Status    { return &v }
func StagePtr(v Stage) *Stage       { return &v }
func StringPtr(v string) *string    { return &v }
func BoolPtr(v bool) *bool          { return &v }
func IntPtr(v int) *int             { return &v }
func Float64Ptr(v float64) *float64 { return &v }

func FrameworkPtr(v FrameworkType) *FrameworkType { return &v }

func GatesPtr(v map[GateKey]ApprovalGate) *map[GateKey]ApprovalGate { return &v }
