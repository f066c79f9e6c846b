// Package knowledge loads team-specific context documents used to ground
// generation: the tech stack description and the codebase map.
package knowledge

import (
	"log/slog"
	"os"
	"strings"

	"github.com/testsmith-ai/testsmith/pkg/log"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

const conventionsFallbackChars = 500

// Fetcher reads team context from markdown files on disk.
type Fetcher struct {
	logger *slog.Logger
}

func NewFetcher() *Fetcher {
	return &Fetcher{
		logger: log.WithModule("knowledge"),
	}
}

// Fetch loads context documents for a team. Multiple paths per document are
// concatenated. Missing or unreadable files are skipped with a warning so an
// incomplete knowledge base degrades instead of failing the session.
func (f *Fetcher) Fetch(teamID string, techContextPaths, codebaseMapPaths []string) models.TeamContext {
	f.logger.Info("Fetching team context", "team_id", teamID)

	techContext := f.readPaths(techContextPaths, "tech_context")
	codebaseMap := f.readPaths(codebaseMapPaths, "codebase_map")

	framework := models.FrameworkUnknown
	conventions := ""

	if techContext != "" {
		framework = DetectFramework(techContext)
		conventions = ExtractConventionsSummary(techContext)
	}

	f.logger.Info("Team context loaded",
		"team_id", teamID,
		"framework", framework,
		"conventions_len", len(conventions))

	return models.TeamContext{
		TechContext:        techContext,
		CodebaseMap:        codebaseMap,
		Framework:          framework,
		ConventionsSummary: conventions,
	}
}

func (f *Fetcher) readPaths(paths []string, label string) string {
	contents := make([]string, 0, len(paths))

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			f.logger.Warn("Failed to read context file", "label", label, "path", path, "error", err)

			continue
		}

		f.logger.Info("Loaded context file", "label", label, "path", path, "chars", len(data))
		contents = append(contents, string(data))
	}

	return strings.Join(contents, "\n\n")
}

var frameworkKeywords = []struct {
	framework models.FrameworkType
	keywords  []string
}{
	{models.FrameworkUIE2E, []string{"playwright", "selenium", "cypress", "browser", "e2e"}},
	{models.FrameworkAPI, []string{"httpx", "requests", "fastapi", "endpoint", "rest", "openapi"}},
	{models.FrameworkUnit, []string{"pytest", "unittest", "mock", "patch", "fixture"}},
}

// DetectFramework classifies the target test framework by keyword scanning.
// Categories are checked in priority order, UI E2E first.
func DetectFramework(techContext string) models.FrameworkType {
	lower := strings.ToLower(techContext)

	for _, entry := range frameworkKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.framework
			}
		}
	}

	return models.FrameworkUnknown
}

// ExtractConventionsSummary pulls the conventions section out of the tech
// context, delimited by the next markdown header. Falls back to the first 500
// characters when no such section exists.
func ExtractConventionsSummary(techContext string) string {
	var section []string

	inSection := false

	for _, line := range strings.Split(techContext, "\n") {
		lower := strings.ToLower(line)

		if strings.Contains(lower, "convention") ||
			strings.Contains(lower, "coding standard") ||
			strings.Contains(lower, "style guide") {
			inSection = true
			section = append(section, line)

			continue
		}

		if inSection && strings.HasPrefix(line, "#") {
			break
		}

		if inSection {
			section = append(section, line)
		}
	}

	if len(section) > 0 {
		return strings.TrimSpace(strings.Join(section, "\n"))
	}

	if len(techContext) > conventionsFallbackChars {
		return techContext[:conventionsFallbackChars]
	}

	return techContext
}
