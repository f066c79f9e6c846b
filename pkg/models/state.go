package models

import (
	"time"

	"github.com/google/uuid"
)

// Question is a single clarifying question inside a Q&A round.
type Question struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Required bool   `json:"required"`
}

// QASession records one clarification round: the questions asked, the answers
// supplied by the human, and the confidence value that triggered the round.
// Sessions are appended to the state and never mutated afterwards, except for
// the answer map being filled in on resume.
type QASession struct {
	ID          string            `json:"id"`
	BatchNumber int               `json:"batch_number"`
	Questions   []Question        `json:"questions"`
	Answers     map[string]string `json:"answers"`
	Confidence  float64           `json:"confidence"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

// DocumentVersion is an immutable snapshot of one generated artifact revision.
// Superseded versions stay in the history list for audit.
type DocumentVersion struct {
	ID            string       `json:"id"`
	SessionID     string       `json:"session_id"`
	Kind          ArtifactKind `json:"kind"`
	Version       int          `json:"version"`
	Content       string       `json:"content"`
	Format        string       `json:"format"`
	CreatedBy     string       `json:"created_by"`
	Approved      bool         `json:"approved"`
	StorageURL    string       `json:"storage_url,omitempty"`
	JudgeScore    *float64     `json:"judge_score,omitempty"`
	JudgeFeedback string       `json:"judge_feedback,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

// JudgeIssue is one structured finding inside a judge evaluation.
type JudgeIssue struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Section     string `json:"section,omitempty"`
}

// JudgeEvaluation is the result of a single judge invocation. Only the latest
// evaluation per artifact is retained; the snapshot history carries the audit
// trail.
type JudgeEvaluation struct {
	Score           float64      `json:"score"`
	Result          JudgeResult  `json:"result"`
	Feedback        string       `json:"feedback"`
	Issues          []JudgeIssue `json:"issues"`
	Recommendations []string     `json:"recommendations"`
	HumanQuestion   string       `json:"human_question,omitempty"`
	Timestamp       time.Time    `json:"timestamp"`
}

// ApprovalGate is the record for one human review checkpoint.
type ApprovalGate struct {
	Key             GateKey    `json:"key"`
	Status          GateStatus `json:"status"`
	Reviewer        string     `json:"reviewer,omitempty"`
	Feedback        string     `json:"feedback,omitempty"`
	DocumentVersion int        `json:"document_version,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

// TeamContext is the immutable-after-load reference bundle injected into
// prompts. The engine passes it through without parsing.
type TeamContext struct {
	TechContext        string        `json:"tech_context"`
	CodebaseMap        string        `json:"codebase_map"`
	Framework          FrameworkType `json:"framework"`
	ConventionsSummary string        `json:"conventions_summary"`
}

// Artifact groups the mutable per-document fields: current content, the
// monotonically increasing version counter, the snapshot history, the latest
// judge evaluation, and the retry-iteration counter.
type Artifact struct {
	Content    string            `json:"content"`
	Version    int               `json:"version"`
	History    []DocumentVersion `json:"history"`
	Evaluation *JudgeEvaluation  `json:"evaluation,omitempty"`
	Iterations int               `json:"iterations"`
}

// WorkflowState is the single record threaded through every stage transition.
// The runner owns the canonical copy between node invocations; nodes receive a
// read-only view and return a StatePatch.
type WorkflowState struct {
	// Identity
	ID           string `json:"id"`
	TraceID      string `json:"trace_id"`
	Status       Status `json:"status"`
	CurrentStage Stage  `json:"current_stage"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Reference context and raw input
	Context  TeamContext `json:"context"`
	RawInput string      `json:"raw_input"`

	// Clarification
	QASessions            []QASession `json:"qa_sessions"`
	QAConfidence          float64     `json:"qa_confidence"`
	QAConfidenceThreshold float64     `json:"qa_confidence_threshold"`
	QACompleted           bool        `json:"qa_completed"`
	QARounds              int         `json:"qa_rounds"`

	// Artifacts
	Requirements Artifact `json:"requirements"`
	Strategy     Artifact `json:"strategy"`
	TestCases    Artifact `json:"test_cases"`
	CodePlan     Artifact `json:"code_plan"`
	Script       Artifact `json:"script"`

	TestCasesValid bool   `json:"test_cases_valid"`
	ScriptFilename string `json:"script_filename,omitempty"`

	// Gates
	Gates         map[GateKey]ApprovalGate `json:"gates"`
	HumanFeedback string                   `json:"human_feedback,omitempty"`

	// Stubs for not-yet-implemented downstream stages.
	ExecutionResult map[string]any `json:"execution_result,omitempty"`
	HealingAttempts int            `json:"healing_attempts"`
	FinalReport     string         `json:"final_report,omitempty"`

	// Accounting and limits
	AccumulatedCostUSD float64 `json:"accumulated_cost_usd"`
	MaxJudgeIterations int     `json:"max_judge_iterations"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultMaxJudgeIterations bounds every judge retry loop.
const DefaultMaxJudgeIterations = 3

// MaxQARounds caps the clarification loop; once reached the pipeline proceeds
// regardless of confidence.
const MaxQARounds = 3

// NewWorkflowState builds a fresh session state with every collection
// initialized to an empty container and all five gates registered as pending.
// Nodes read these fields unconditionally, so none may start out nil.
func NewWorkflowState(rawInput string, teamCtx TeamContext, confidenceThreshold float64) WorkflowState {
	now := time.Now().UTC()

	gates := make(map[GateKey]ApprovalGate, len(GateKeys()))
	for _, key := range GateKeys() {
		gates[key] = ApprovalGate{Key: key, Status: GatePending}
	}

	emptyArtifact := func() Artifact {
		return Artifact{History: []DocumentVersion{}}
	}

	return WorkflowState{
		ID:           uuid.New().String(),
		TraceID:      uuid.New().String(),
		Status:       StatusRunning,
		CurrentStage: StageClarification,

		Context:  teamCtx,
		RawInput: rawInput,

		QASessions:            []QASession{},
		QAConfidenceThreshold: confidenceThreshold,

		Requirements: emptyArtifact(),
		Strategy:     emptyArtifact(),
		TestCases:    emptyArtifact(),
		CodePlan:     emptyArtifact(),
		Script:       emptyArtifact(),

		Gates: gates,

		MaxJudgeIterations: DefaultMaxJudgeIterations,

		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Artifact returns a copy of the sub-record for the given kind. The zero
// Artifact is returned for an unknown kind; callers pass compile-time constants
// so that path is unreachable in practice.
func (s *WorkflowState) Artifact(kind ArtifactKind) Artifact {
	switch kind {
	case ArtifactRequirements:
		return s.Requirements
	case ArtifactStrategy:
		return s.Strategy
	case ArtifactTestCases:
		return s.TestCases
	case ArtifactCodePlan:
		return s.CodePlan
	case ArtifactScript:
		return s.Script
	}

	return Artifact{}
}

// Suspended reports whether the session is parked awaiting external input.
func (s *WorkflowState) Suspended() bool {
	return s.Status == StatusWaitingApproval
}
