package models

// SuspensionKind distinguishes the two ways a session can pause for a person.
type SuspensionKind string

const (
	SuspendQA   SuspensionKind = "qa"
	SuspendGate SuspensionKind = "gate"
)

// QAPayload is presented to the front-end when the clarification stage needs
// answers before it can proceed.
type QAPayload struct {
	SessionID   string     `json:"session_id"`
	BatchNumber int        `json:"batch_number"`
	Questions   []Question `json:"questions"`
	Confidence  float64    `json:"confidence"`
}

// GatePayload is presented to the front-end when a human gate needs a decision.
// HumanQuestion is set only when the latest evaluation was NEEDS_HUMAN.
type GatePayload struct {
	Gate            GateKey     `json:"gate"`
	Content         string      `json:"content"`
	DocumentVersion int         `json:"document_version"`
	JudgeScore      *float64    `json:"judge_score,omitempty"`
	JudgeFeedback   string      `json:"judge_feedback"`
	JudgeResult     JudgeResult `json:"judge_result"`
	HumanQuestion   string      `json:"human_question,omitempty"`
}

// Suspension describes where and why a run paused. Exactly one of QA or Gate
// is set, matching Kind.
type Suspension struct {
	Kind      SuspensionKind `json:"kind"`
	SessionID string         `json:"session_id"`
	Stage     Stage          `json:"stage"`
	QA        *QAPayload     `json:"qa,omitempty"`
	Gate      *GatePayload   `json:"gate,omitempty"`
}

// GateDecision is the external decision object injected on resume at a gate.
type GateDecision struct {
	Decision      Decision `json:"decision"`
	Feedback      string   `json:"feedback,omitempty"`
	EditedContent string   `json:"edited_content,omitempty"`
}

// ResumeInput carries externally supplied input into a suspended session:
// answers for a clarification round, or a decision for an approval gate.
type ResumeInput struct {
	Answers  map[string]string `json:"answers,omitempty"`
	Decision *GateDecision     `json:"decision,omitempty"`
}
