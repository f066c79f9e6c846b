package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/testsmith-ai/testsmith/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedOutput indicates the backend did not honor the structured output
// contract. Treated as an infrastructure-class failure by the engine after one
// bounded local retry.
var ErrMalformedOutput = errors.New("malformed structured output")

// ExtractJSON strips optional markdown code fences and parses the remainder as
// a JSON object. Judge and clarification nodes depend on this; generative
// nodes pass raw text through.
func ExtractJSON(text string) (map[string]any, error) {
	stripped := stripFences(text)

	var result map[string]any

	err := json.Unmarshal([]byte(stripped), &result)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	return result, nil
}

func stripFences(text string) string {
	stripped := strings.TrimSpace(text)

	if strings.HasPrefix(stripped, "```json") {
		stripped = strings.TrimPrefix(stripped, "```json")
	} else if strings.HasPrefix(stripped, "```") {
		stripped = strings.TrimPrefix(stripped, "```")
	}

	stripped = strings.TrimSuffix(strings.TrimSpace(stripped), "```")

	return strings.TrimSpace(stripped)
}

const evaluationSchema = `{
	"type": "object",
	"required": ["score", "result", "feedback"],
	"properties": {
		"score": {"type": "number", "minimum": 0, "maximum": 100},
		"result": {"type": "string", "enum": ["PASS", "FAIL", "NEEDS_HUMAN"]},
		"feedback": {"type": "string"},
		"issues": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type", "description"],
				"properties": {
					"type": {"type": "string"},
					"description": {"type": "string"},
					"severity": {"type": "string"},
					"section": {"type": "string"}
				}
			}
		},
		"recommendations": {"type": "array", "items": {"type": "string"}},
		"human_question": {"type": ["string", "null"]}
	}
}`

const clarificationSchema = `{
	"type": "object",
	"required": ["ai_confidence", "can_proceed"],
	"properties": {
		"ai_confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"can_proceed": {"type": "boolean"},
		"framework_type": {"type": "string"},
		"questions": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "text"],
				"properties": {
					"id": {"type": "string"},
					"text": {"type": "string"},
					"category": {"type": "string"},
					"is_required": {"type": "boolean"}
				}
			}
		}
	}
}`

func validateAgainstSchema(schema, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrMalformedOutput, strings.Join(details, "; "))
	}

	return nil
}

type evaluationDocument struct {
	Score           float64 `json:"score"`
	Result          string  `json:"result"`
	Feedback        string  `json:"feedback"`
	Issues          []struct {
		Type        string `json:"type"`
		Description string `json:"description"`
		Severity    string `json:"severity"`
		Section     string `json:"section"`
	} `json:"issues"`
	Recommendations []string `json:"recommendations"`
	HumanQuestion   *string  `json:"human_question"`
}

// DecodeEvaluation parses a judge response into a JudgeEvaluation, enforcing
// the output schema before decoding.
func DecodeEvaluation(text string) (*models.JudgeEvaluation, error) {
	stripped := stripFences(text)

	if err := validateAgainstSchema(evaluationSchema, stripped); err != nil {
		return nil, err
	}

	var doc evaluationDocument

	err := json.Unmarshal([]byte(stripped), &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	evaluation := &models.JudgeEvaluation{
		Score:           doc.Score,
		Result:          models.JudgeResult(doc.Result),
		Feedback:        doc.Feedback,
		Issues:          make([]models.JudgeIssue, 0, len(doc.Issues)),
		Recommendations: doc.Recommendations,
		Timestamp:       time.Now().UTC(),
	}

	for _, issue := range doc.Issues {
		evaluation.Issues = append(evaluation.Issues, models.JudgeIssue{
			Type:        issue.Type,
			Description: issue.Description,
			Severity:    issue.Severity,
			Section:     issue.Section,
		})
	}

	if evaluation.Recommendations == nil {
		evaluation.Recommendations = []string{}
	}

	if doc.HumanQuestion != nil {
		evaluation.HumanQuestion = *doc.HumanQuestion
	}

	return evaluation, nil
}

// Clarification is the structured result of the clarification stage.
type Clarification struct {
	Confidence    float64
	CanProceed    bool
	FrameworkType string
	Questions     []models.Question
}

type clarificationDocument struct {
	Confidence    float64 `json:"ai_confidence"`
	CanProceed    bool    `json:"can_proceed"`
	FrameworkType string  `json:"framework_type"`
	Questions     []struct {
		ID       string `json:"id"`
		Text     string `json:"text"`
		Category string `json:"category"`
		Required bool   `json:"is_required"`
	} `json:"questions"`
}

// DecodeClarification parses a clarification response, enforcing the output
// schema before decoding.
func DecodeClarification(text string) (*Clarification, error) {
	stripped := stripFences(text)

	if err := validateAgainstSchema(clarificationSchema, stripped); err != nil {
		return nil, err
	}

	var doc clarificationDocument

	err := json.Unmarshal([]byte(stripped), &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}

	clarification := &Clarification{
		Confidence:    doc.Confidence,
		CanProceed:    doc.CanProceed,
		FrameworkType: doc.FrameworkType,
		Questions:     make([]models.Question, 0, len(doc.Questions)),
	}

	for _, q := range doc.Questions {
		clarification.Questions = append(clarification.Questions, models.Question{
			ID:       q.ID,
			Text:     q.Text,
			Category: q.Category,
			Required: q.Required,
		})
	}

	return clarification, nil
}
