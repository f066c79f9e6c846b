// Package prompts holds the per-stage system prompts and user prompt
// templates that drive generation and judging.
package prompts

import (
	"fmt"
	"strings"
	"text/template"
)

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(text))
}

func render(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder

	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering prompt %q: %w", tmpl.Name(), err)
	}

	return b.String(), nil
}

// FormatQASummary flattens completed question batches into a prompt section.
// Each answered question becomes a "Q: ... / A: ..." pair; unanswered
// questions are marked as skipped.
func FormatQASummary(batches []QABatch) string {
	if len(batches) == 0 {
		return "None"
	}

	var b strings.Builder

	for _, batch := range batches {
		fmt.Fprintf(&b, "Batch %d:\n", batch.Number)

		for _, qa := range batch.Pairs {
			fmt.Fprintf(&b, "Q: %s\n", qa.Question)

			if qa.Answer == "" {
				b.WriteString("A: (not answered)\n")
			} else {
				fmt.Fprintf(&b, "A: %s\n", qa.Answer)
			}
		}

		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

// QABatch is one completed clarification round for prompt formatting.
type QABatch struct {
	Number int
	Pairs  []QAPair
}

type QAPair struct {
	Question string
	Answer   string
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}

	return s
}
