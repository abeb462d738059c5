package parser

import (
	"math"
	"strconv"
	"strings"
)

// Intent is the domain a query is routed to.
type Intent string

const (
	IntentHR      Intent = "hr"
	IntentTech    Intent = "tech"
	IntentFinance Intent = "finance"
	IntentGeneral Intent = "general"
)

// Intents lists the closed set of intents in routing order.
var Intents = []Intent{IntentHR, IntentTech, IntentFinance, IntentGeneral}

const (
	DefaultConfidence      = 0.5
	DefaultIntentReasoning = "Unable to determine reasoning"
)

// IntentClassification is the parsed answer of the classification prompt.
type IntentClassification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ParseIntentValue maps free text onto the closed intent set. Anything
// unrecognised becomes IntentGeneral.
func ParseIntentValue(s string) Intent {
	candidate := Intent(strings.ToLower(trimDecoration(s)))
	for _, i := range Intents {
		if candidate == i {
			return i
		}
	}
	return IntentGeneral
}

// Valid reports whether i belongs to the closed intent set.
func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

// ParseIntent parses the Intent / Confidence / Reasoning block.
func ParseIntent(text string) IntentClassification {
	fields := labeledLines(text)

	result := IntentClassification{
		Intent:     IntentGeneral,
		Confidence: DefaultConfidence,
		Reasoning:  DefaultIntentReasoning,
	}

	if v, ok := first(fields, "intent"); ok {
		result.Intent = ParseIntentValue(v)
	}
	if v, ok := first(fields, "confidence"); ok {
		result.Confidence = parseConfidence(v)
	}
	if v, ok := first(fields, "reasoning"); ok && v != "" {
		result.Reasoning = v
	}

	return result
}

func parseConfidence(s string) float64 {
	s = trimNumber(s)
	percent := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")

	c, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(c) {
		return DefaultConfidence
	}
	if percent {
		c /= 100
	}
	return math.Min(1, math.Max(0, c))
}
