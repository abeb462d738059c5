package parser

import (
	"strconv"
	"strings"
)

const (
	DefaultScore               = 5
	MinScore                   = 1
	MaxScore                   = 10
	DefaultEvaluationReasoning = "No reasoning provided"
)

// EvaluationResult holds the four quality scores on a 1-10 scale.
type EvaluationResult struct {
	Relevance    int    `json:"relevance_score" mapstructure:"relevance_score"`
	Completeness int    `json:"completeness_score" mapstructure:"completeness_score"`
	Accuracy     int    `json:"accuracy_score" mapstructure:"accuracy_score"`
	Overall      int    `json:"overall_score" mapstructure:"overall_score"`
	Reasoning    string `json:"reasoning" mapstructure:"reasoning"`
}

// DefaultEvaluation returns the neutral evaluation used when nothing parses.
func DefaultEvaluation() EvaluationResult {
	return EvaluationResult{
		Relevance:    DefaultScore,
		Completeness: DefaultScore,
		Accuracy:     DefaultScore,
		Overall:      DefaultScore,
		Reasoning:    DefaultEvaluationReasoning,
	}
}

// ParseEvaluation parses the Relevance / Completeness / Accuracy / Overall /
// Reasoning block. For scores the last valid line wins; for reasoning the
// first one does.
func ParseEvaluation(text string) EvaluationResult {
	result := DefaultEvaluation()

	scores := map[string]*int{
		"relevance":    &result.Relevance,
		"completeness": &result.Completeness,
		"accuracy":     &result.Accuracy,
		"overall":      &result.Overall,
	}

	fields := labeledLines(text)
	for _, f := range fields {
		name := strings.TrimSuffix(f.label, " score")
		dst, ok := scores[name]
		if !ok {
			continue
		}
		if v, ok := parseScore(f.value); ok {
			*dst = v
		}
	}

	if v, ok := first(fields, "reasoning"); ok && v != "" {
		result.Reasoning = v
	}

	return result
}

// parseScore accepts "7", "7/10" and "[7]".
func parseScore(s string) (int, bool) {
	s = trimNumber(s)
	s, _, _ = strings.Cut(s, "/")
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < MinScore || v > MaxScore {
		return 0, false
	}
	return v, true
}
