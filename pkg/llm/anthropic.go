package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicAPIVersion     = "2023-06-01"

	// Approximate Claude Sonnet pricing per million tokens.
	anthropicInputCostPerMTok  = 3.0
	anthropicOutputCostPerMTok = 15.0
)

type anthropicClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func newAnthropicClient(cfg Config, httpClient *http.Client) *anthropicClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = anthropicDefaultBaseURL
	}

	return &anthropicClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *anthropicClient) Generate(ctx context.Context, req Request) (*Response, error) {
	temperature, maxTokens := resolveParams(req)
	start := time.Now()

	body, err := json.Marshal(anthropicRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      req.SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: req.UserPrompt}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	var parsed anthropicResponse

	err = json.Unmarshal(respBody, &parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed provider response: %w", ErrGenerationFailed, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		message := httpResp.Status
		if parsed.Error != nil {
			message = parsed.Error.Message
		}

		return nil, fmt.Errorf("%w: anthropic: %s", ErrGenerationFailed, message)
	}

	if len(parsed.Content) == 0 {
		return nil, fmt.Errorf("%w: anthropic: empty content", ErrGenerationFailed)
	}

	inputTokens := parsed.Usage.InputTokens
	outputTokens := parsed.Usage.OutputTokens

	return &Response{
		Content:      parsed.Content[0].Text,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      float64(inputTokens)/1_000_000*anthropicInputCostPerMTok + float64(outputTokens)/1_000_000*anthropicOutputCostPerMTok,
		Stage:        req.Stage,
		Model:        c.model,
		LatencyMS:    time.Since(start).Milliseconds(),
	}, nil
}
