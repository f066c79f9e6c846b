package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/testsmith-ai/testsmith/pkg/llm"
	"github.com/testsmith-ai/testsmith/pkg/models"
	"github.com/testsmith-ai/testsmith/pkg/prompts"
)

const qaStatusPendingAnswers = "pending_answers"
const qaStatusAnswered = "answered"

// ClarificationNode runs the first pipeline stage. It asks the model to
// assess whether the raw input carries enough detail; when confidence is
// below the threshold it appends a clarifying-question round and suspends
// until answers arrive. After the round cap the pipeline proceeds regardless.
type ClarificationNode struct {
	llm    llm.Client
	logger *slog.Logger
}

func NewClarificationNode(client llm.Client, logger *slog.Logger) *ClarificationNode {
	return &ClarificationNode{llm: client, logger: logger.With("module", "engine", "stage", models.StageClarification)}
}

func (n *ClarificationNode) Stage() models.Stage {
	return models.StageClarification
}

func (n *ClarificationNode) Run(ctx context.Context, state models.WorkflowState, input *models.ResumeInput) (NodeResult, error) {
	sessions := injectAnswers(state.QASessions, input)

	userPrompt, err := prompts.ClarificationUser(prompts.ClarificationData{
		RawInput:            state.RawInput,
		TechContext:         state.Context.TechContext,
		QASummary:           prompts.FormatQASummary(toQABatches(sessions)),
		BatchNumber:         state.QARounds + 1,
		MaxBatches:          models.MaxQARounds,
		ConfidenceThreshold: state.QAConfidenceThreshold,
	})
	if err != nil {
		return NodeResult{}, fmt.Errorf("failed to build clarification prompt: %w", err)
	}

	req := llm.Request{
		SystemPrompt: prompts.ClarificationSystem,
		UserPrompt:   userPrompt,
		Stage:        string(models.StageClarification),
	}

	clar, cost, err := decodeWithRetry(ctx, n.llm, req, llm.DecodeClarification)
	if err != nil {
		return NodeResult{}, err
	}

	patch := models.StatePatch{
		QASessions:   &sessions,
		QAConfidence: models.Float64Ptr(clar.Confidence),
		CostDelta:    cost,
	}

	// The round cap makes the final invocation proceed regardless of the
	// reported confidence.
	forceProceed := state.QARounds >= models.MaxQARounds-1

	if clar.Confidence >= state.QAConfidenceThreshold || clar.CanProceed || forceProceed {
		n.logger.Info("Clarification complete",
			"confidence", clar.Confidence, "rounds", state.QARounds, "forced", forceProceed)

		patch.Status = models.StatusPtr(models.StatusRunning)
		patch.QACompleted = models.BoolPtr(true)
		patch.CurrentStage = models.StagePtr(models.StageRequirements)

		if framework := models.ParseFrameworkType(clar.FrameworkType); framework != models.FrameworkUnknown {
			patch.Framework = models.FrameworkPtr(framework)
		}

		return NodeResult{Patch: patch}, nil
	}

	round := models.QASession{
		ID:          uuid.New().String(),
		BatchNumber: state.QARounds + 1,
		Questions:   clar.Questions,
		Answers:     map[string]string{},
		Confidence:  clar.Confidence,
		Status:      qaStatusPendingAnswers,
		CreatedAt:   time.Now().UTC(),
	}
	sessions = append(sessions, round)

	n.logger.Info("Clarification needs answers",
		"confidence", clar.Confidence, "batch", round.BatchNumber, "questions", len(round.Questions))

	patch.QASessions = &sessions
	patch.QARounds = models.IntPtr(state.QARounds + 1)
	patch.Status = models.StatusPtr(models.StatusWaitingApproval)
	patch.CurrentStage = models.StagePtr(models.StageClarification)

	return NodeResult{
		Patch: patch,
		Suspend: &models.Suspension{
			Kind:      models.SuspendQA,
			SessionID: state.ID,
			Stage:     models.StageClarification,
			QA: &models.QAPayload{
				SessionID:   state.ID,
				BatchNumber: round.BatchNumber,
				Questions:   round.Questions,
				Confidence:  clar.Confidence,
			},
		},
	}, nil
}

// injectAnswers copies the session list and fills the answer map of the most
// recent pending round from the resume input.
func injectAnswers(sessions []models.QASession, input *models.ResumeInput) []models.QASession {
	next := make([]models.QASession, len(sessions))
	copy(next, sessions)

	if input == nil || len(input.Answers) == 0 {
		return next
	}

	for i := len(next) - 1; i >= 0; i-- {
		if next[i].Status != qaStatusPendingAnswers {
			continue
		}

		answers := make(map[string]string, len(input.Answers))
		for id, text := range input.Answers {
			answers[id] = text
		}

		next[i].Answers = answers
		next[i].Status = qaStatusAnswered

		break
	}

	return next
}

func toQABatches(sessions []models.QASession) []prompts.QABatch {
	batches := make([]prompts.QABatch, 0, len(sessions))

	for _, session := range sessions {
		batch := prompts.QABatch{Number: session.BatchNumber}

		for _, q := range session.Questions {
			batch.Pairs = append(batch.Pairs, prompts.QAPair{
				Question: q.Text,
				Answer:   session.Answers[q.ID],
			})
		}

		batches = append(batches, batch)
	}

	return batches
}
