package agents_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	lcschema "github.com/tmc/langchaingo/schema"

	"ragrouter/src/core/agents"
	"ragrouter/src/core/parser"
	"ragrouter/src/tracing"
)

// fakeLLM answers every prompt with reply and remembers what it was asked.
type fakeLLM struct {
	reply string
	err   error

	mu           sync.Mutex
	prompts      []string
	temperatures []float64
}

func (f *fakeLLM) GenerateContent(_ context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.CallOptions{}
	for _, o := range options {
		o(&opts)
	}

	var sb strings.Builder
	for _, m := range messages {
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				sb.WriteString(tc.Text)
			}
		}
	}

	f.mu.Lock()
	f.prompts = append(f.prompts, sb.String())
	f.temperatures = append(f.temperatures, opts.Temperature)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeLLM) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type fakeRetriever struct {
	docs  []lcschema.Document
	query string
}

func (r *fakeRetriever) GetRelevantDocuments(_ context.Context, query string) ([]lcschema.Document, error) {
	r.query = query
	return r.docs, nil
}

type recorder struct {
	mu     sync.Mutex
	events []tracing.Event
}

func (r *recorder) Record(_ context.Context, e tracing.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}
func (r *recorder) Close() error  { return nil }
func (r *recorder) Enabled() bool { return true }

func TestDomainAgentAnswerQuery(t *testing.T) {
	llm := &fakeLLM{reply: "  You receive 20 vacation days per year.\n"}
	retriever := &fakeRetriever{docs: []lcschema.Document{
		{PageContent: strings.Repeat("v", 250), Metadata: map[string]any{"source": "data/hr_docs/vacation.txt", "filename": "vacation.txt"}},
		{PageContent: "Short chunk", Metadata: map[string]any{}},
	}}

	agent := agents.NewDomainAgent(llm, retriever, agents.HRDomain)
	resp, err := agent.AnswerQuery(context.Background(), "How many vacation days do I get?")
	require.NoError(t, err)

	assert.Equal(t, "hr_agent", resp.Agent)
	assert.Equal(t, "You receive 20 vacation days per year.", resp.Answer)
	require.Len(t, resp.SourceDocuments, 2)
	assert.Equal(t, strings.Repeat("v", 200)+"...", resp.SourceDocuments[0].Content)
	assert.Equal(t, "vacation.txt", resp.SourceDocuments[0].Filename)
	assert.Equal(t, "data/hr_docs/vacation.txt", resp.SourceDocuments[0].Source)
	assert.Equal(t, "Short chunk...", resp.SourceDocuments[1].Content)
	assert.Equal(t, "Unknown", resp.SourceDocuments[1].Filename)
	assert.Equal(t, "Unknown", resp.SourceDocuments[1].Source)

	assert.Equal(t, "How many vacation days do I get?", retriever.query)
	prompt := llm.lastPrompt()
	assert.Contains(t, prompt, "You are TechCorp's HR assistant.")
	assert.Contains(t, prompt, "redirect the user to appropriate department")
	assert.Contains(t, prompt, "Question: How many vacation days do I get?")
	assert.Contains(t, prompt, "Short chunk")
	assert.Equal(t, []float64{0.2}, llm.temperatures)
}

func TestDomainPrompts(t *testing.T) {
	tests := []struct {
		domain   agents.Domain
		agent    string
		redirect string
	}{
		{agents.HRDomain, "hr_agent", "appropriate department"},
		{agents.TechDomain, "tech_agent", "submit an IT ticket or contact the helpdesk"},
		{agents.FinanceDomain, "finance_agent", "contact the finance department directly"},
	}

	for _, tt := range tests {
		t.Run(tt.agent, func(t *testing.T) {
			assert.Equal(t, tt.agent, tt.domain.Agent)
			text, err := tt.domain.Prompt().Format(map[string]any{"context": "CTX", "question": "Q?"})
			require.NoError(t, err)
			assert.Contains(t, text, tt.redirect)
			assert.Contains(t, text, "Context: CTX")
			assert.True(t, strings.HasSuffix(text, "Answer:"))
		})
	}
}

func TestDomainAgentPropagatesModelErrors(t *testing.T) {
	llm := &fakeLLM{err: errors.New("rate limited")}
	agent := agents.NewDomainAgent(llm, &fakeRetriever{}, agents.FinanceDomain)

	_, err := agent.AnswerQuery(context.Background(), "What is the meal limit?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finance_agent")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestRouteQuery(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		intent    string
		routeTo   string
		confident float64
	}{
		{"tech", "Intent: tech\nConfidence: 0.92\nReasoning: Laptop issue", "tech", "tech_agent", 0.92},
		{"finance", "Intent: FINANCE\nConfidence: 0.8\nReasoning: Expense", "finance", "finance_agent", 0.8},
		{"general", "Intent: general\nConfidence: 0.4\nReasoning: Weather", "general", "general_response", 0.4},
		{"garbage", "I cannot help with that.", "general", "general_response", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeLLM{reply: tt.reply}
			o := agents.NewOrchestrator(llm)

			routing, err := o.RouteQuery(context.Background(), "My laptop won't start")
			require.NoError(t, err)
			assert.Equal(t, tt.intent, routing.Intent)
			assert.Equal(t, tt.routeTo, routing.RouteTo)
			assert.InDelta(t, tt.confident, routing.Confidence, 1e-9)
			assert.Contains(t, llm.lastPrompt(), "User Query: My laptop won't start")
			assert.Equal(t, []float64{0}, llm.temperatures)
		})
	}
}

func TestClassifyIntentError(t *testing.T) {
	o := agents.NewOrchestrator(&fakeLLM{err: errors.New("timeout")})
	_, err := o.RouteQuery(context.Background(), "q")
	assert.Error(t, err)
}

func TestRouteTarget(t *testing.T) {
	assert.Equal(t, "hr_agent", agents.RouteTarget(parser.IntentHR))
	assert.Equal(t, "general_response", agents.RouteTarget(parser.IntentGeneral))
	assert.Equal(t, "general_response", agents.RouteTarget("legal"))
}

func TestEvaluateResponse(t *testing.T) {
	llm := &fakeLLM{reply: "Relevance: 9\nCompleteness: 7\nAccuracy: 8\nOverall: 8\nReasoning: Clear and correct."}
	rec := &recorder{}
	e := agents.NewEvaluator(llm, agents.WithTracer(rec))

	result, err := e.EvaluateResponse(context.Background(), "How do I reset my password?", "Use the portal.", "tech_agent")
	require.NoError(t, err)
	assert.Equal(t, parser.EvaluationResult{Relevance: 9, Completeness: 7, Accuracy: 8, Overall: 8, Reasoning: "Clear and correct."}, result)

	prompt := llm.lastPrompt()
	assert.Contains(t, prompt, "Original Question: How do I reset my password?")
	assert.Contains(t, prompt, "Agent Response: Use the portal.")
	assert.Contains(t, prompt, "Agent Type: tech_agent")

	var scores []string
	for _, ev := range rec.events {
		if ev.Type == tracing.EventScore {
			scores = append(scores, ev.Name)
		}
	}
	assert.Equal(t, []string{"relevance", "completeness", "accuracy", "overall"}, scores)
}
