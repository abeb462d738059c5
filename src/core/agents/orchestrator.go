package agents

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"

	"ragrouter/src/core/parser"
	"ragrouter/src/core/schema"
	"ragrouter/src/tracing"
)

// GeneralRoute is the routing target for queries no domain agent handles.
const GeneralRoute = "general_response"

// Orchestrator classifies queries and decides which agent answers them.
type Orchestrator struct {
	llm    llms.Model
	prompt prompts.PromptTemplate
	opts   options
}

func NewOrchestrator(llm llms.Model, opts ...Option) *Orchestrator {
	return &Orchestrator{
		llm:    llm,
		prompt: prompts.NewPromptTemplate(ClassificationPromptTmpl, []string{"query"}),
		opts:   newOptions(0, opts),
	}
}

// ClassifyIntent asks the model for the intent of query. Malformed model
// output degrades to defaults; only model errors are returned.
func (o *Orchestrator) ClassifyIntent(ctx context.Context, query string) (parser.IntentClassification, error) {
	return tracing.Observe(ctx, o.opts.tracer, "orchestrator-classify", query, func(ctx context.Context) (parser.IntentClassification, error) {
		p, err := o.prompt.Format(map[string]any{"query": query})
		if err != nil {
			return parser.IntentClassification{}, fmt.Errorf("failed to format classification prompt: %w", err)
		}

		text, err := llms.GenerateFromSinglePrompt(ctx, o.llm, p, llms.WithTemperature(o.opts.temperature))
		if err != nil {
			return parser.IntentClassification{}, fmt.Errorf("failed to classify intent: %w", err)
		}

		return parser.ParseIntent(text), nil
	})
}

// RouteQuery classifies query and names the agent it should go to.
func (o *Orchestrator) RouteQuery(ctx context.Context, query string) (*schema.RoutingInfo, error) {
	c, err := o.ClassifyIntent(ctx, query)
	if err != nil {
		return nil, err
	}
	return &schema.RoutingInfo{
		Intent:     string(c.Intent),
		Confidence: c.Confidence,
		Reasoning:  c.Reasoning,
		RouteTo:    RouteTarget(c.Intent),
	}, nil
}

// RouteTarget maps an intent to the agent that handles it.
func RouteTarget(intent parser.Intent) string {
	if intent == parser.IntentGeneral || !intent.Valid() {
		return GeneralRoute
	}
	return string(intent) + "_agent"
}
