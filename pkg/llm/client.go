// Package llm provides a uniform call surface over interchangeable
// text-generation providers. The active provider is chosen once, at
// construction time, from an explicit Config; callers never know which one is
// behind the interface. Retry policy deliberately does not live here; the
// judge engine owns it.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrGenerationFailed normalizes every provider-level fault (network, auth,
// quota). The underlying message is wrapped; the adapter never retries.
var ErrGenerationFailed = errors.New("generation failed")

// Request is one generation call. Temperature and MaxTokens are optional;
// omitted values fall back to the stage defaults.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Stage        string
	Temperature  *float64
	MaxTokens    *int
}

// Response is the unified result from any provider.
type Response struct {
	Content      string  `json:"content"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	Stage        string  `json:"stage"`
	Model        string  `json:"model"`
	LatencyMS    int64   `json:"latency_ms"`
}

// Client is the generation capability every node depends on.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Config selects and parameterizes the provider. No ambient environment
// lookups happen inside the adapter; the binary resolves flags and passes the
// result here.
type Config struct {
	Provider string        `validate:"required,oneof=anthropic openai"`
	APIKey   string        `validate:"required"`
	Model    string        `validate:"required"`
	BaseURL  string        `validate:"omitempty,url"`
	Timeout  time.Duration `validate:"omitempty,min=1s"`
}

const defaultTimeout = 120 * time.Second

// NewClient validates the config and builds the provider implementation.
func NewClient(cfg Config) (Client, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid llm config: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case "anthropic":
		return newAnthropicClient(cfg, httpClient), nil
	case "openai":
		return newOpenAIClient(cfg, httpClient), nil
	}

	return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
}

// VerifyConnection issues a minimal generation call to confirm the configured
// provider is reachable. Used by the API's readiness path.
func VerifyConnection(ctx context.Context, client Client) error {
	resp, err := client.Generate(ctx, Request{
		SystemPrompt: "You are a helpful assistant.",
		UserPrompt:   "Reply with exactly: OK",
		Stage:        "health_check",
	})
	if err != nil {
		return err
	}

	if resp.Content == "" {
		return fmt.Errorf("%w: provider returned empty content", ErrGenerationFailed)
	}

	return nil
}

func resolveParams(req Request) (temperature float64, maxTokens int) {
	temperature = DefaultTemperature(req.Stage)
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	maxTokens = TokenBudget(req.Stage)
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}

	return temperature, maxTokens
}
