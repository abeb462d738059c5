package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ragrouter/src/core/parser"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name string
		text string
		want parser.IntentClassification
	}{
		{
			name: "well formed",
			text: "Intent: hr\nConfidence: 0.9\nReasoning: Question about vacation policies",
			want: parser.IntentClassification{Intent: parser.IntentHR, Confidence: 0.9, Reasoning: "Question about vacation policies"},
		},
		{
			name: "case insensitive labels and values",
			text: "INTENT: Tech\nconfidence: 0.8\nREASONING: IT support question",
			want: parser.IntentClassification{Intent: parser.IntentTech, Confidence: 0.8, Reasoning: "IT support question"},
		},
		{
			name: "surrounding noise and indentation",
			text: "Sure, here is my classification.\n\n   Intent: [finance]\n   Confidence: 0.75\n   Reasoning: Expense limits",
			want: parser.IntentClassification{Intent: parser.IntentFinance, Confidence: 0.75, Reasoning: "Expense limits"},
		},
		{
			name: "unknown intent falls back to general only for that field",
			text: "Intent: legal\nConfidence: 0.6\nReasoning: Contract question",
			want: parser.IntentClassification{Intent: parser.IntentGeneral, Confidence: 0.6, Reasoning: "Contract question"},
		},
		{
			name: "unparseable confidence",
			text: "Intent: hr\nConfidence: very high\nReasoning: Leave policy",
			want: parser.IntentClassification{Intent: parser.IntentHR, Confidence: parser.DefaultConfidence, Reasoning: "Leave policy"},
		},
		{
			name: "NaN confidence keeps the other fields",
			text: "Intent: tech\nConfidence: NaN\nReasoning: VPN issue",
			want: parser.IntentClassification{Intent: parser.IntentTech, Confidence: parser.DefaultConfidence, Reasoning: "VPN issue"},
		},
		{
			name: "confidence above range is clamped",
			text: "Intent: tech\nConfidence: 7",
			want: parser.IntentClassification{Intent: parser.IntentTech, Confidence: 1, Reasoning: parser.DefaultIntentReasoning},
		},
		{
			name: "confidence below range is clamped",
			text: "Intent: tech\nConfidence: -0.2",
			want: parser.IntentClassification{Intent: parser.IntentTech, Confidence: 0, Reasoning: parser.DefaultIntentReasoning},
		},
		{
			name: "percent confidence",
			text: "Intent: finance\nConfidence: 85%",
			want: parser.IntentClassification{Intent: parser.IntentFinance, Confidence: 0.85, Reasoning: parser.DefaultIntentReasoning},
		},
		{
			name: "leading dot confidence",
			text: "Intent: finance\nConfidence: .5",
			want: parser.IntentClassification{Intent: parser.IntentFinance, Confidence: 0.5, Reasoning: parser.DefaultIntentReasoning},
		},
		{
			name: "empty reasoning uses default",
			text: "Intent: hr\nConfidence: 0.4\nReasoning:",
			want: parser.IntentClassification{Intent: parser.IntentHR, Confidence: 0.4, Reasoning: parser.DefaultIntentReasoning},
		},
		{
			name: "reasoning keeps text after further colons",
			text: "Reasoning: mentions VPN: a tech topic\nIntent: tech",
			want: parser.IntentClassification{Intent: parser.IntentTech, Confidence: parser.DefaultConfidence, Reasoning: "mentions VPN: a tech topic"},
		},
		{
			name: "first intent line wins",
			text: "Intent: finance\nIntent: hr",
			want: parser.IntentClassification{Intent: parser.IntentFinance, Confidence: parser.DefaultConfidence, Reasoning: parser.DefaultIntentReasoning},
		},
		{
			name: "empty input",
			text: "",
			want: parser.IntentClassification{Intent: parser.IntentGeneral, Confidence: parser.DefaultConfidence, Reasoning: parser.DefaultIntentReasoning},
		},
		{
			name: "garbage input",
			text: "\x00\x01 no labels here at all",
			want: parser.IntentClassification{Intent: parser.IntentGeneral, Confidence: parser.DefaultConfidence, Reasoning: parser.DefaultIntentReasoning},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parser.ParseIntent(tt.text)
			assert.Equal(t, tt.want.Intent, got.Intent)
			assert.InDelta(t, tt.want.Confidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.want.Reasoning, got.Reasoning)
		})
	}
}

func TestParseIntentValue(t *testing.T) {
	tests := []struct {
		in   string
		want parser.Intent
	}{
		{"hr", parser.IntentHR},
		{" HR ", parser.IntentHR},
		{"tech.", parser.IntentTech},
		{"\"finance\"", parser.IntentFinance},
		{"general", parser.IntentGeneral},
		{"hr|tech", parser.IntentGeneral},
		{"", parser.IntentGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.ParseIntentValue(tt.in))
		})
	}
}

func TestIntentValid(t *testing.T) {
	for _, i := range parser.Intents {
		assert.True(t, i.Valid(), i)
	}
	assert.False(t, parser.Intent("legal").Valid())
}

func TestParseEvaluation(t *testing.T) {
	tests := []struct {
		name string
		text string
		want parser.EvaluationResult
	}{
		{
			name: "well formed",
			text: "Relevance: 9\nCompleteness: 8\nAccuracy: 7\nOverall: 8\nReasoning: Covers the policy well",
			want: parser.EvaluationResult{Relevance: 9, Completeness: 8, Accuracy: 7, Overall: 8, Reasoning: "Covers the policy well"},
		},
		{
			name: "missing fields default individually",
			text: "Relevance: 9\nOverall: 6",
			want: parser.EvaluationResult{Relevance: 9, Completeness: 5, Accuracy: 5, Overall: 6, Reasoning: parser.DefaultEvaluationReasoning},
		},
		{
			name: "malformed score keeps default",
			text: "Relevance: high\nCompleteness: 8\nAccuracy: 7.5\nOverall: 8\nReasoning: ok",
			want: parser.EvaluationResult{Relevance: 5, Completeness: 8, Accuracy: 5, Overall: 8, Reasoning: "ok"},
		},
		{
			name: "out of range score keeps default",
			text: "Relevance: 11\nCompleteness: 0\nAccuracy: 10\nOverall: 1",
			want: parser.EvaluationResult{Relevance: 5, Completeness: 5, Accuracy: 10, Overall: 1, Reasoning: parser.DefaultEvaluationReasoning},
		},
		{
			name: "slash ten and score suffix",
			text: "Relevance Score: 8/10\ncompleteness: [7]\nACCURACY: 9\nOverall Score: 8/10",
			want: parser.EvaluationResult{Relevance: 8, Completeness: 7, Accuracy: 9, Overall: 8, Reasoning: parser.DefaultEvaluationReasoning},
		},
		{
			name: "last valid score wins",
			text: "Overall: 4\nOverall: 9\nOverall: nope",
			want: parser.EvaluationResult{Relevance: 5, Completeness: 5, Accuracy: 5, Overall: 9, Reasoning: parser.DefaultEvaluationReasoning},
		},
		{
			name: "first reasoning wins",
			text: "Reasoning: first\nReasoning: second",
			want: parser.EvaluationResult{Relevance: 5, Completeness: 5, Accuracy: 5, Overall: 5, Reasoning: "first"},
		},
		{
			name: "empty input",
			text: "",
			want: parser.DefaultEvaluation(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parser.ParseEvaluation(tt.text))
		})
	}
}
