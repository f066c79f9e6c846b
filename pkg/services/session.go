package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
	"github.com/testsmith-ai/testsmith/pkg/engine"
	"github.com/testsmith-ai/testsmith/pkg/knowledge"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

// DefaultConfidenceThreshold applies when a create request omits one.
const DefaultConfidenceThreshold = 0.85

// Session is the facade the HTTP layer talks to: it validates requests,
// loads the team context bundle, and delegates execution to the runner.
type Session struct {
	runner   *engine.Runner
	fetcher  *knowledge.Fetcher
	store    checkpoint.Store
	validate *validator.Validate
	logger   *slog.Logger
}

func NewSession(runner *engine.Runner, fetcher *knowledge.Fetcher, store checkpoint.Store, logger *slog.Logger) *Session {
	return &Session{
		runner:   runner,
		fetcher:  fetcher,
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "services"),
	}
}

// CreateSessionRequest carries everything needed to start a pipeline run.
type CreateSessionRequest struct {
	RawInput            string   `validate:"required,min=3"`
	TeamID              string   `validate:"required"`
	TechContextPaths    []string
	CodebaseMapPaths    []string
	ConfidenceThreshold float64  `validate:"omitempty,min=0,max=1"`
}

// Create initializes a new session without executing any stage; the caller
// follows up with Run.
func (s *Session) Create(ctx context.Context, req CreateSessionRequest) (models.WorkflowState, error) {
	if strings.TrimSpace(req.RawInput) == "" {
		return models.WorkflowState{}, &ServiceError{Op: "create_session", Err: ErrEmptyRawInput}
	}

	if req.ConfidenceThreshold < 0 || req.ConfidenceThreshold > 1 {
		return models.WorkflowState{}, &ServiceError{Op: "create_session", Err: ErrInvalidThreshold}
	}

	if err := s.validate.Struct(req); err != nil {
		return models.WorkflowState{}, &ServiceError{Op: "create_session", Err: fmt.Errorf("%w: %w", ErrInvalidRequest, err)}
	}

	if req.ConfidenceThreshold == 0 {
		req.ConfidenceThreshold = DefaultConfidenceThreshold
	}

	teamCtx := s.fetcher.Fetch(req.TeamID, req.TechContextPaths, req.CodebaseMapPaths)

	state, err := s.runner.CreateSession(ctx, req.RawInput, teamCtx, req.ConfidenceThreshold)
	if err != nil {
		return models.WorkflowState{}, &ServiceError{Op: "create_session", Err: err}
	}

	return state, nil
}

// Get returns the latest checkpoint for a session.
func (s *Session) Get(ctx context.Context, sessionID string) (*checkpoint.Checkpoint, error) {
	return s.store.Load(ctx, sessionID)
}

// Run advances the session until it completes, fails, or suspends. A nil
// input polls a suspended session without side effects.
func (s *Session) Run(ctx context.Context, sessionID string, input *models.ResumeInput) (engine.RunResult, error) {
	return s.runner.Run(ctx, sessionID, input)
}

// Resume injects external input into a suspended session and drives it
// forward. Unlike Run it insists on actual input.
func (s *Session) Resume(ctx context.Context, sessionID string, input models.ResumeInput) (engine.RunResult, error) {
	if len(input.Answers) == 0 && input.Decision == nil {
		return engine.RunResult{}, &ServiceError{Op: "resume_session", Err: ErrMissingResumeInput}
	}

	return s.runner.Run(ctx, sessionID, &input)
}

// Abandon marks a session failed and frees its checkpoint.
func (s *Session) Abandon(ctx context.Context, sessionID string) error {
	return s.runner.Abandon(ctx, sessionID)
}

// HealthCheck reports whether the checkpoint store is reachable.
func (s *Session) HealthCheck(ctx context.Context) (string, bool) {
	if err := s.store.HealthCheck(ctx); err != nil {
		return "Checkpoint store is unhealthy: " + err.Error(), false
	}

	return "Checkpoint store is healthy", true
}
