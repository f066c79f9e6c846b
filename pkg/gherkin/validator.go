// Package gherkin validates generated test case documents before they are
// handed to the judge. The scripting pipeline only accepts syntactically
// valid feature files, so generation retries locally on validation failure.
package gherkin

import (
	"fmt"
	"strings"

	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"
)

// ValidationResult describes the outcome of validating one feature document.
type ValidationResult struct {
	IsValid       bool
	Errors        []string
	ScenarioCount int
	FeatureTitle  string
}

// Validate parses content as a Gherkin feature document and reports syntax
// errors, the scenario count and the feature title.
func Validate(content string) ValidationResult {
	if strings.TrimSpace(content) == "" {
		return ValidationResult{
			IsValid: false,
			Errors:  []string{"empty or whitespace-only content"},
		}
	}

	ids := &messages.Incrementing{}

	doc, err := gherkin.ParseGherkinDocument(strings.NewReader(content), ids.NewId)
	if err != nil {
		return ValidationResult{
			IsValid: false,
			Errors:  splitParseErrors(err),
		}
	}

	if doc.Feature == nil {
		return ValidationResult{
			IsValid: false,
			Errors:  []string{"no feature found in document"},
		}
	}

	count := 0
	for _, child := range doc.Feature.Children {
		if child.Scenario != nil {
			count++
		}
	}

	return ValidationResult{
		IsValid:       true,
		Errors:        []string{},
		ScenarioCount: count,
		FeatureTitle:  doc.Feature.Name,
	}
}

// splitParseErrors breaks the parser's composite error into one message per
// line so each can be numbered in the repair prompt.
func splitParseErrors(err error) []string {
	lines := strings.Split(err.Error(), "\n")

	errors := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			errors = append(errors, line)
		}
	}

	if len(errors) == 0 {
		errors = append(errors, err.Error())
	}

	return errors
}

// FormatErrorsForPrompt renders validation errors as a numbered list suitable
// for injection into a regeneration prompt. Returns an empty string for valid
// results.
func FormatErrorsForPrompt(result ValidationResult) string {
	if result.IsValid {
		return ""
	}

	if len(result.Errors) == 0 {
		return "The Gherkin content has unknown syntax errors."
	}

	var b strings.Builder

	b.WriteString("The following Gherkin syntax errors were found:\n")

	for i, msg := range result.Errors {
		fmt.Fprintf(&b, "%d. %s\n", i+1, msg)
	}

	return strings.TrimSpace(b.String())
}
