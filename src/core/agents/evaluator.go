package agents

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"

	"ragrouter/src/core/parser"
	"ragrouter/src/tracing"
)

// Evaluator grades an agent's answer with a second model pass.
type Evaluator struct {
	llm    llms.Model
	prompt prompts.PromptTemplate
	opts   options
}

func NewEvaluator(llm llms.Model, opts ...Option) *Evaluator {
	return &Evaluator{
		llm:    llm,
		prompt: prompts.NewPromptTemplate(EvaluationPromptTmpl, []string{"question", "response", "agent_type"}),
		opts:   newOptions(0, opts),
	}
}

// EvaluateResponse scores response and records the scores on the current trace.
func (e *Evaluator) EvaluateResponse(ctx context.Context, question, response, agentType string) (parser.EvaluationResult, error) {
	return tracing.Observe(ctx, e.opts.tracer, "evaluator-score", question, func(ctx context.Context) (parser.EvaluationResult, error) {
		p, err := e.prompt.Format(map[string]any{
			"question":   question,
			"response":   response,
			"agent_type": agentType,
		})
		if err != nil {
			return parser.EvaluationResult{}, fmt.Errorf("failed to format evaluation prompt: %w", err)
		}

		text, err := llms.GenerateFromSinglePrompt(ctx, e.llm, p, llms.WithTemperature(e.opts.temperature))
		if err != nil {
			return parser.EvaluationResult{}, fmt.Errorf("failed to evaluate response: %w", err)
		}

		result := parser.ParseEvaluation(text)
		tracing.Score(ctx, e.opts.tracer, "relevance", float64(result.Relevance), "")
		tracing.Score(ctx, e.opts.tracer, "completeness", float64(result.Completeness), "")
		tracing.Score(ctx, e.opts.tracer, "accuracy", float64(result.Accuracy), "")
		tracing.Score(ctx, e.opts.tracer, "overall", float64(result.Overall), result.Reasoning)
		return result, nil
	})
}
