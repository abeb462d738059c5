package system_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragrouter/src/core/parser"
	"ragrouter/src/core/schema"
	"ragrouter/src/core/system"
)

type fakeRouter struct {
	intent string
	err    error
}

func (r fakeRouter) RouteQuery(_ context.Context, _ string) (*schema.RoutingInfo, error) {
	if r.err != nil {
		return nil, r.err
	}
	routeTo := r.intent + "_agent"
	if r.intent == "general" {
		routeTo = "general_response"
	}
	return &schema.RoutingInfo{Intent: r.intent, Confidence: 0.9, Reasoning: "test", RouteTo: routeTo}, nil
}

type nilRouter struct{}

func (nilRouter) RouteQuery(context.Context, string) (*schema.RoutingInfo, error) { return nil, nil }

type nilAgent struct{}

func (nilAgent) Name() string { return "hr_agent" }

func (nilAgent) AnswerQuery(context.Context, string) (*schema.ResponseInfo, error) { return nil, nil }

type fakeAgent struct {
	name   string
	answer string
	err    error
	calls  int
}

func (a *fakeAgent) Name() string { return a.name }

func (a *fakeAgent) AnswerQuery(_ context.Context, _ string) (*schema.ResponseInfo, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return &schema.ResponseInfo{
		Agent:           a.name,
		Answer:          a.answer,
		SourceDocuments: []schema.SourceDocument{{Filename: a.name + ".txt"}},
	}, nil
}

type fakeEvaluator struct {
	err   error
	calls int
}

func (e *fakeEvaluator) EvaluateResponse(_ context.Context, _, _, _ string) (parser.EvaluationResult, error) {
	e.calls++
	if e.err != nil {
		return parser.EvaluationResult{}, e.err
	}
	return parser.EvaluationResult{Relevance: 8, Completeness: 7, Accuracy: 9, Overall: 8, Reasoning: "ok"}, nil
}

func newSystem(router system.Router, eval system.ResponseEvaluator) (*system.System, map[parser.Intent]*fakeAgent) {
	fakes := map[parser.Intent]*fakeAgent{
		parser.IntentHR:      {name: "hr_agent", answer: "20 days of vacation."},
		parser.IntentTech:    {name: "tech_agent", answer: "Restart the laptop."},
		parser.IntentFinance: {name: "finance_agent", answer: "$75 per day."},
	}
	agents := make(map[parser.Intent]system.Answerer, len(fakes))
	for k, v := range fakes {
		agents[k] = v
	}
	return system.New(system.Config{
		Router:     router,
		Agents:     agents,
		Evaluator:  eval,
		StoreNames: func() []string { return []string{"finance", "hr", "tech"} },
		Provider:   "openai",
		Model:      "gpt-3.5-turbo",
	}), fakes
}

func TestProcessQueryDispatchesToDomainAgent(t *testing.T) {
	eval := &fakeEvaluator{}
	sys, fakes := newSystem(fakeRouter{intent: "tech"}, eval)

	result, err := sys.ProcessQuery(context.Background(), "My laptop won't start", true)
	require.NoError(t, err)

	assert.True(t, result.Successful())
	assert.Equal(t, "My laptop won't start", result.Query)
	assert.Equal(t, "tech", result.Intent())
	assert.Equal(t, "tech_agent", result.Agent())
	assert.Equal(t, "Restart the laptop.", result.Answer())
	assert.Equal(t, 1, fakes[parser.IntentTech].calls)
	assert.Zero(t, fakes[parser.IntentHR].calls)
	assert.Equal(t, 1, eval.calls)
	assert.Equal(t, 8.0, result.EvaluationScore())
}

func TestProcessQueryGeneralFallback(t *testing.T) {
	eval := &fakeEvaluator{}
	sys, fakes := newSystem(fakeRouter{intent: "general"}, eval)

	result, err := sys.ProcessQuery(context.Background(), "What's the weather?", true)
	require.NoError(t, err)

	assert.Equal(t, "general", result.Agent())
	assert.Equal(t, system.GeneralFallbackAnswer, result.Answer())
	assert.Empty(t, result.SourceDocuments())
	assert.Nil(t, result.Evaluation)
	assert.Zero(t, eval.calls)
	for _, a := range fakes {
		assert.Zero(t, a.calls)
	}
}

func TestProcessQueryWithoutEvaluation(t *testing.T) {
	eval := &fakeEvaluator{}
	sys, _ := newSystem(fakeRouter{intent: "hr"}, eval)

	result, err := sys.ProcessQuery(context.Background(), "How many vacation days?", false)
	require.NoError(t, err)
	assert.Nil(t, result.Evaluation)
	assert.Zero(t, eval.calls)
}

func TestProcessQueryCapturesEvaluationFailure(t *testing.T) {
	sys, _ := newSystem(fakeRouter{intent: "finance"}, &fakeEvaluator{err: errors.New("model timeout")})

	result, err := sys.ProcessQuery(context.Background(), "Meal limit?", true)
	require.NoError(t, err)

	assert.True(t, result.Successful())
	assert.False(t, result.HasEvaluation())
	assert.Zero(t, result.EvaluationScore())
	assert.Equal(t, "Evaluation failed: model timeout", result.EvaluationError())
}

func TestProcessQueryFailures(t *testing.T) {
	t.Run("routing", func(t *testing.T) {
		sys, _ := newSystem(fakeRouter{err: errors.New("no credentials")}, nil)
		_, err := sys.ProcessQuery(context.Background(), "q", false)
		assert.ErrorContains(t, err, "no credentials")
	})

	t.Run("agent", func(t *testing.T) {
		sys, fakes := newSystem(fakeRouter{intent: "hr"}, nil)
		fakes[parser.IntentHR].err = errors.New("store offline")
		_, err := sys.ProcessQuery(context.Background(), "q", false)
		assert.ErrorContains(t, err, "store offline")
	})
}

func TestProcessQueryEmptyResults(t *testing.T) {
	t.Run("router without decision", func(t *testing.T) {
		sys, fakes := newSystem(nilRouter{}, nil)

		_, err := sys.ProcessQuery(context.Background(), "How many vacation days?", false)
		assert.ErrorIs(t, err, system.ErrEmptyResult)
		for _, a := range fakes {
			assert.Zero(t, a.calls)
		}

		_, err = sys.Classify(context.Background(), "How many vacation days?")
		assert.ErrorIs(t, err, system.ErrEmptyResult)

		result := system.SafeProcessQuery(context.Background(), sys, "How many vacation days?", false)
		require.NotNil(t, result)
		assert.False(t, result.Successful())
		assert.Equal(t, schema.UnknownIntent, result.Intent())
	})

	t.Run("agent without response", func(t *testing.T) {
		eval := &fakeEvaluator{}
		sys := system.New(system.Config{
			Router:    fakeRouter{intent: "hr"},
			Agents:    map[parser.Intent]system.Answerer{parser.IntentHR: nilAgent{}},
			Evaluator: eval,
		})

		_, err := sys.ProcessQuery(context.Background(), "How many vacation days?", true)
		require.ErrorIs(t, err, system.ErrEmptyResult)
		assert.ErrorContains(t, err, "hr_agent")
		assert.Zero(t, eval.calls)

		_, err = sys.Answer(context.Background(), "hr", "How many vacation days?")
		assert.ErrorIs(t, err, system.ErrEmptyResult)

		result := system.SafeProcessQuery(context.Background(), sys, "How many vacation days?", true)
		require.NotNil(t, result)
		assert.False(t, result.Successful())
		assert.Contains(t, result.FailureMessage(), "no response")
	})
}

func TestSafeProcessQuery(t *testing.T) {
	sys, _ := newSystem(fakeRouter{err: errors.New("no credentials")}, nil)

	result := system.SafeProcessQuery(context.Background(), sys, "How many vacation days?", false)
	require.NotNil(t, result)
	assert.False(t, result.Successful())
	assert.Equal(t, "How many vacation days?", result.Query)
	assert.True(t, strings.Contains(result.FailureMessage(), "no credentials"))
	assert.Equal(t, schema.UnknownIntent, result.Intent())

	ok, _ := newSystem(fakeRouter{intent: "hr"}, nil)
	assert.True(t, system.SafeProcessQuery(context.Background(), ok, "q", false).Successful())
}

func TestAnswer(t *testing.T) {
	sys, _ := newSystem(fakeRouter{}, nil)

	resp, err := sys.Answer(context.Background(), "finance", "Meal limit?")
	require.NoError(t, err)
	assert.Equal(t, "finance_agent", resp.Agent)

	_, err = sys.Answer(context.Background(), "legal", "q")
	assert.ErrorIs(t, err, system.ErrUnknownIntent)
}

func TestInfo(t *testing.T) {
	sys, _ := newSystem(fakeRouter{}, &fakeEvaluator{})
	info := sys.Info()

	assert.Equal(t, []string{"orchestrator", "hr_agent", "tech_agent", "finance_agent", "evaluator"}, info.Agents)
	assert.Equal(t, []string{"finance", "hr", "tech"}, info.VectorStores)
	assert.False(t, info.TracingConfigured)
	assert.Equal(t, "gpt-3.5-turbo", info.Model)
}

func TestCheckHealth(t *testing.T) {
	sys := system.New(system.Config{
		Router: fakeRouter{},
		Checks: []system.Component{
			{Name: "weaviate", Check: func(context.Context) error { return nil }},
			{Name: "ollama", Check: func(context.Context) error { return errors.New("connection refused") }},
		},
	})

	status := sys.CheckHealth(context.Background())
	assert.Equal(t, "unhealthy", status.Status)
	assert.Equal(t, system.StatusUp, status.Components["weaviate"])
	assert.Equal(t, system.StatusDown, status.Components["ollama"])

	healthy := system.New(system.Config{Router: fakeRouter{}}).CheckHealth(context.Background())
	assert.Equal(t, "healthy", healthy.Status)
	assert.Empty(t, healthy.Components)
}
