package llm

// Per-stage output token budgets, consulted when the caller omits an explicit
// budget. Judges are short structured verdicts; the test-case and code-plan
// generators produce the longest documents.
var tokenBudgets = map[string]int{
	"clarification":      2048,
	"requirements":       8192,
	"judge_requirements": 2048,
	"strategy":           4096,
	"judge_strategy":     2048,
	"test_cases":         16384,
	"judge_test_cases":   2048,
	"code_plan":          16384,
	"judge_code_plan":    2048,
	"scripting":          8192,
	"judge_code":         2048,
}

const defaultTokenBudget = 4096

// TokenBudget returns the default output budget for a stage.
func TokenBudget(stage string) int {
	if budget, ok := tokenBudgets[stage]; ok {
		return budget
	}

	return defaultTokenBudget
}

// The code plan wants colder sampling than the prose stages.
const (
	defaultTemperature  = 0.3
	codePlanTemperature = 0.2
)

// DefaultTemperature returns the sampling temperature for a stage.
func DefaultTemperature(stage string) float64 {
	if stage == "code_plan" {
		return codePlanTemperature
	}

	return defaultTemperature
}
