package web

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/testsmith-ai/testsmith/pkg/services"
)

type APIHandlers struct {
	sessions  *services.Session
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(sessions *services.Session, validate *validator.Validate, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		sessions:  sessions,
		validator: validate,
		logger:    logger.With("module", "web"),
	}
}

// CreateSession starts a session and runs it until the first suspension,
// completion, or failure.
func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	state, err := h.sessions.Create(c.Context(), services.CreateSessionRequest{
		RawInput:            req.RawInput,
		TeamID:              req.TeamID,
		TechContextPaths:    req.TechContextPaths,
		CodebaseMapPaths:    req.CodebaseMapPaths,
		ConfidenceThreshold: req.ConfidenceThreshold,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	result, err := h.sessions.Run(c.Context(), state.ID, nil)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(TransformRunResult(result))
}

// GetSession returns the latest checkpointed snapshot.
func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	cp, err := h.sessions.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformSessionResponse(cp.State, cp.Suspension))
}

// ResumeSession injects answers or a gate decision and drives the session
// forward.
func (h *APIHandlers) ResumeSession(c fiber.Ctx) error {
	var req ResumeSessionRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if req.Decision != nil {
		if err := h.validator.Struct(req.Decision); err != nil {
			return badRequest(c, "Validation failed: "+err.Error())
		}
	}

	result, err := h.sessions.Resume(c.Context(), c.Params("id"), req.toModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransformRunResult(result))
}

// AbandonSession marks a parked session failed and frees its checkpoint.
func (h *APIHandlers) AbandonSession(c fiber.Ctx) error {
	if err := h.sessions.Abandon(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HealthCheck reports checkpoint store health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	message, healthy := h.sessions.HealthCheck(c.Context())
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "unhealthy",
			"message": message,
		})
	}

	return c.JSON(fiber.Map{
		"status":  "healthy",
		"message": message,
	})
}
