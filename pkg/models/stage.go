// Package models defines the core domain models for the judge-gated test
// generation pipeline: the stage set, the workflow state threaded through every
// node, and the typed state patch nodes return.
package models

import "strings"

// Stage identifies one node in the pipeline's directed graph. It doubles as the
// value of WorkflowState.CurrentStage, which drives all routing.
type Stage string

const (
	StageClarification Stage = "clarification"

	StageRequirements      Stage = "requirements"
	StageJudgeRequirements Stage = "judge_requirements"
	StageReviewSpec        Stage = "review_spec"

	StageStrategy       Stage = "strategy"
	StageJudgeStrategy  Stage = "judge_strategy"
	StageReviewStrategy Stage = "review_strategy"

	StageTestCases       Stage = "test_cases"
	StageJudgeTestCases  Stage = "judge_test_cases"
	StageReviewTestCases Stage = "review_test_cases"

	StageCodePlan       Stage = "code_plan"
	StageJudgeCodePlan  Stage = "judge_code_plan"
	StageReviewCodePlan Stage = "review_code_plan"

	StageScripting  Stage = "scripting"
	StageJudgeCode  Stage = "judge_code"
	StageReviewCode Stage = "review_code"

	// Reserved for downstream stages that only exist as state stubs today.
	StageExecution Stage = "execution"
	StageHealing   Stage = "healing"
	StageReporting Stage = "reporting"

	StageCompleted Stage = "completed"
	StageFailed    Stage = "failed"
)

// Valid reports whether s is a member of the stage set. The router refuses to
// dispatch unknown stages, so a typo in a transition fails loudly instead of
// silently parking a session.
func (s Stage) Valid() bool {
	switch s {
	case StageClarification,
		StageRequirements, StageJudgeRequirements, StageReviewSpec,
		StageStrategy, StageJudgeStrategy, StageReviewStrategy,
		StageTestCases, StageJudgeTestCases, StageReviewTestCases,
		StageCodePlan, StageJudgeCodePlan, StageReviewCodePlan,
		StageScripting, StageJudgeCode, StageReviewCode,
		StageExecution, StageHealing, StageReporting,
		StageCompleted, StageFailed:
		return true
	}

	return false
}

// Terminal reports whether the run loop must stop at s.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageFailed
}

// Status is the high-level lifecycle state of a session.
type Status string

const (
	StatusRunning         Status = "RUNNING"
	StatusWaitingApproval Status = "WAITING_APPROVAL"
	StatusCompleted       Status = "COMPLETED"
	StatusFailed          Status = "FAILED"
)

// JudgeResult is the categorical outcome of a judge evaluation.
type JudgeResult string

const (
	JudgePass       JudgeResult = "PASS"
	JudgeFail       JudgeResult = "FAIL"
	JudgeNeedsHuman JudgeResult = "NEEDS_HUMAN"
)

// FrameworkType is the test framework category detected from the team context.
type FrameworkType string

const (
	FrameworkUIE2E   FrameworkType = "ui_e2e"
	FrameworkAPI     FrameworkType = "api"
	FrameworkUnit    FrameworkType = "unit"
	FrameworkUnknown FrameworkType = "unknown"
)

// ParseFrameworkType normalizes a detected framework label. Model output uses
// upper case ("UI_E2E"), context scanning uses lower case; both map to the
// same constants. Unrecognized labels degrade to FrameworkUnknown.
func ParseFrameworkType(s string) FrameworkType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ui_e2e":
		return FrameworkUIE2E
	case "api":
		return FrameworkAPI
	case "unit":
		return FrameworkUnit
	default:
		return FrameworkUnknown
	}
}

// ArtifactKind names one of the five generated documents.
type ArtifactKind string

const (
	ArtifactRequirements ArtifactKind = "requirements"
	ArtifactStrategy     ArtifactKind = "strategy"
	ArtifactTestCases    ArtifactKind = "test_cases"
	ArtifactCodePlan     ArtifactKind = "code_plan"
	ArtifactScript       ArtifactKind = "script"
)

// GateKey identifies one of the five fixed human approval gates.
type GateKey string

const (
	GateSpec      GateKey = "spec"
	GateStrategy  GateKey = "strategy"
	GateTestCases GateKey = "test_cases"
	GateCodePlan  GateKey = "code_plan"
	GateCode      GateKey = "code"
)

// GateKeys lists every gate in pipeline order.
func GateKeys() []GateKey {
	return []GateKey{GateSpec, GateStrategy, GateTestCases, GateCodePlan, GateCode}
}

// GateStatus is the lifecycle of a single approval gate record.
type GateStatus string

const (
	GatePending  GateStatus = "pending"
	GateApproved GateStatus = "approved"
	GateRejected GateStatus = "rejected"
)

// Decision is a human reviewer's verdict at a gate.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
	DecisionEdit    Decision = "EDIT"
)
