package schema

import (
	"fmt"
	"strings"
)

const answerPreviewLength = 100

// Format renders a short, indented summary of a result for terminal output.
func Format(r *QueryResult, showDetails bool) string {
	if !r.Successful() {
		if msg := r.FailureMessage(); msg != "" {
			return msg
		}
		return "Query failed"
	}

	lines := []string{
		fmt.Sprintf("Intent: %s", r.Intent()),
		fmt.Sprintf("Agent: %s", r.Agent()),
	}

	if showDetails {
		lines = append(lines, fmt.Sprintf("Response: %s", Truncate(r.Answer(), answerPreviewLength)))

		switch {
		case r.HasEvaluation():
			lines = append(lines, fmt.Sprintf("Quality: %.0f/10", r.EvaluationScore()))
		case r.EvaluationError() != "":
			lines = append(lines, fmt.Sprintf("Evaluation error: %s", r.EvaluationError()))
		}
	}

	return "\n   " + strings.Join(lines, "\n   ")
}

// Truncate shortens s to n runes and appends an ellipsis when it was cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
