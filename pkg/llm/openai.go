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
	openaiDefaultBaseURL = "https://api.openai.com"

	// Approximate GPT-4o pricing per million tokens.
	openaiInputCostPerMTok  = 2.5
	openaiOutputCostPerMTok = 10.0
)

type openaiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func newOpenAIClient(cfg Config, httpClient *http.Client) *openaiClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = openaiDefaultBaseURL
	}

	return &openaiClient{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type openaiRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []openaiMessage `json:"messages"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *openaiClient) Generate(ctx context.Context, req Request) (*Response, error) {
	temperature, maxTokens := resolveParams(req)
	start := time.Now()

	body, err := json.Marshal(openaiRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openaiMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	var parsed openaiResponse

	err = json.Unmarshal(respBody, &parsed)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed provider response: %w", ErrGenerationFailed, err)
	}

	if httpResp.StatusCode != http.StatusOK {
		message := httpResp.Status
		if parsed.Error != nil {
			message = parsed.Error.Message
		}

		return nil, fmt.Errorf("%w: openai: %s", ErrGenerationFailed, message)
	}

	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai: empty choices", ErrGenerationFailed)
	}

	inputTokens := parsed.Usage.PromptTokens
	outputTokens := parsed.Usage.CompletionTokens

	return &Response{
		Content:      parsed.Choices[0].Message.Content,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      float64(inputTokens)/1_000_000*openaiInputCostPerMTok + float64(outputTokens)/1_000_000*openaiOutputCostPerMTok,
		Stage:        req.Stage,
		Model:        c.model,
		LatencyMS:    time.Since(start).Milliseconds(),
	}, nil
}
