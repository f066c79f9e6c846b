// Package web provides the HTTP handlers and request/response types for the
// session API.
package web

import (
	"time"

	"github.com/testsmith-ai/testsmith/pkg/engine"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

// CreateSessionRequest is the request body for starting a new session.
type CreateSessionRequest struct {
	RawInput            string   `json:"raw_input"                      validate:"required,min=3"`
	TeamID              string   `json:"team_id"                        validate:"required"`
	TechContextPaths    []string `json:"tech_context_paths,omitempty"`
	CodebaseMapPaths    []string `json:"codebase_map_paths,omitempty"`
	ConfidenceThreshold float64  `json:"confidence_threshold,omitempty" validate:"omitempty,min=0,max=1"`
}

// ResumeSessionRequest is the request body for injecting answers or a gate
// decision into a suspended session.
type ResumeSessionRequest struct {
	Answers  map[string]string    `json:"answers,omitempty"`
	Decision *GateDecisionRequest `json:"decision,omitempty"`
}

// GateDecisionRequest mirrors the decision object a reviewer submits.
type GateDecisionRequest struct {
	Decision      string `json:"decision"                 validate:"required,oneof=APPROVE REJECT EDIT"`
	Feedback      string `json:"feedback,omitempty"`
	EditedContent string `json:"edited_content,omitempty"`
}

func (r ResumeSessionRequest) toModel() models.ResumeInput {
	input := models.ResumeInput{Answers: r.Answers}

	if r.Decision != nil {
		input.Decision = &models.GateDecision{
			Decision:      models.Decision(r.Decision.Decision),
			Feedback:      r.Decision.Feedback,
			EditedContent: r.Decision.EditedContent,
		}
	}

	return input
}

// ArtifactSummary is the per-document slice of a session response. Content is
// included so the front-end can render the document under review.
type ArtifactSummary struct {
	Content    string   `json:"content,omitempty"`
	Version    int      `json:"version"`
	Iterations int      `json:"iterations"`
	JudgeScore *float64 `json:"judge_score,omitempty"`
}

// SessionResponse is the state snapshot returned by every session endpoint.
type SessionResponse struct {
	SessionID    string        `json:"session_id"`
	Status       models.Status `json:"status"`
	CurrentStage models.Stage  `json:"current_stage"`
	Outcome      string        `json:"outcome,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`

	Artifacts map[models.ArtifactKind]ArtifactSummary `json:"artifacts"`
	Gates     map[models.GateKey]models.ApprovalGate  `json:"gates"`

	ScriptFilename string  `json:"script_filename,omitempty"`
	CostUSD        float64 `json:"cost_usd"`

	SuspendedAt *models.Suspension `json:"suspended_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransformSessionResponse flattens a workflow state and optional suspension
// into the API shape.
func TransformSessionResponse(state models.WorkflowState, suspension *models.Suspension) SessionResponse {
	artifacts := make(map[models.ArtifactKind]ArtifactSummary, 5)

	for _, kind := range []models.ArtifactKind{
		models.ArtifactRequirements, models.ArtifactStrategy, models.ArtifactTestCases,
		models.ArtifactCodePlan, models.ArtifactScript,
	} {
		artifact := state.Artifact(kind)

		summary := ArtifactSummary{
			Content:    artifact.Content,
			Version:    artifact.Version,
			Iterations: artifact.Iterations,
		}
		if artifact.Evaluation != nil {
			summary.JudgeScore = models.Float64Ptr(artifact.Evaluation.Score)
		}

		artifacts[kind] = summary
	}

	return SessionResponse{
		SessionID:      state.ID,
		Status:         state.Status,
		CurrentStage:   state.CurrentStage,
		ErrorMessage:   state.ErrorMessage,
		Artifacts:      artifacts,
		Gates:          state.Gates,
		ScriptFilename: state.ScriptFilename,
		CostUSD:        state.AccumulatedCostUSD,
		SuspendedAt:    suspension,
		CreatedAt:      state.CreatedAt,
		UpdatedAt:      state.UpdatedAt,
	}
}

// TransformRunResult adds the run outcome tag to the snapshot.
func TransformRunResult(result engine.RunResult) SessionResponse {
	response := TransformSessionResponse(result.State, result.Suspension)
	response.Outcome = string(result.Outcome)

	return response
}
