// Package system ties the orchestrator, the domain agents and the evaluator
// into the end-to-end query pipeline.
package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"ragrouter/src/core/parser"
	"ragrouter/src/core/schema"
	"ragrouter/src/log"
	"ragrouter/src/tracing"
)

var (
	ErrUnknownIntent = errors.New("unknown intent")
	ErrEmptyResult   = errors.New("empty result")
)

const (
	GeneralAgent = "general"

	GeneralFallbackAnswer = "I'm sorry, I couldn't determine which department can best help you with that question. " +
		"Please contact our general support team or try rephrasing your question with more specific details " +
		"about whether it's related to HR, IT, or Finance."

	queryLogLength = 100
)

// Router classifies a query into a routing decision.
type Router interface {
	RouteQuery(ctx context.Context, query string) (*schema.RoutingInfo, error)
}

// Answerer is a domain agent.
type Answerer interface {
	Name() string
	AnswerQuery(ctx context.Context, query string) (*schema.ResponseInfo, error)
}

// ResponseEvaluator grades an answer.
type ResponseEvaluator interface {
	EvaluateResponse(ctx context.Context, question, response, agentType string) (parser.EvaluationResult, error)
}

// Processor runs a query end to end.
type Processor interface {
	ProcessQuery(ctx context.Context, query string, evaluate bool) (*schema.QueryResult, error)
}

type Config struct {
	Router    Router
	Agents    map[parser.Intent]Answerer
	Evaluator ResponseEvaluator
	Tracer    tracing.Tracer

	// StoreNames lists the vector stores backing the agents.
	StoreNames        func() []string
	Provider          string
	Model             string
	TracingConfigured bool
	Checks            []Component
}

type System struct {
	cfg    Config
	logger logr.Logger
}

func New(cfg Config) *System {
	if cfg.Tracer == nil {
		cfg.Tracer = tracing.Noop{}
	}
	if cfg.Agents == nil {
		cfg.Agents = map[parser.Intent]Answerer{}
	}
	return &System{
		cfg:    cfg,
		logger: log.WithName("system"),
	}
}

// ProcessQuery classifies query, dispatches it to the matching agent or the
// general fallback and, when asked, evaluates the answer. A failed
// evaluation is recorded on the result instead of failing the query.
func (s *System) ProcessQuery(ctx context.Context, query string, evaluate bool) (*schema.QueryResult, error) {
	return tracing.Observe(ctx, s.cfg.Tracer, "multi-agent-query", query, func(ctx context.Context) (*schema.QueryResult, error) {
		s.logger.Info("processing query", "query", schema.Truncate(query, queryLogLength))

		routing, err := s.cfg.Router.RouteQuery(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to route query: %w", err)
		}
		if routing == nil {
			return nil, fmt.Errorf("failed to route query: %w: no routing decision", ErrEmptyResult)
		}
		s.logger.V(1).Info("query routed", "intent", routing.Intent, "confidence", routing.Confidence)

		var response *schema.ResponseInfo
		agent, ok := s.cfg.Agents[parser.Intent(routing.Intent)]
		if ok && parser.Intent(routing.Intent) != parser.IntentGeneral {
			response, err = agent.AnswerQuery(ctx, query)
			if err != nil {
				return nil, err
			}
			if response == nil {
				return nil, fmt.Errorf("agent %s: %w: no response", agent.Name(), ErrEmptyResult)
			}
		} else {
			response = GeneralResponse()
		}

		result := &schema.QueryResult{
			Query:    query,
			Routing:  routing,
			Response: response,
		}

		if evaluate && response.Agent != GeneralAgent && s.cfg.Evaluator != nil {
			eval, err := s.cfg.Evaluator.EvaluateResponse(ctx, query, response.Answer, response.Agent)
			if err != nil {
				s.logger.Error(err, "evaluation failed", "agent", response.Agent)
				result.Evaluation = &schema.EvaluationOutcome{Error: fmt.Sprintf("Evaluation failed: %v", err)}
			} else {
				result.Evaluation = &schema.EvaluationOutcome{Result: &eval}
			}
		}

		return result, nil
	})
}

// GeneralResponse is the canned answer for queries no domain covers.
func GeneralResponse() *schema.ResponseInfo {
	return &schema.ResponseInfo{
		Agent:           GeneralAgent,
		Answer:          GeneralFallbackAnswer,
		SourceDocuments: []schema.SourceDocument{},
	}
}

// Classify returns the routing decision for query without answering it.
func (s *System) Classify(ctx context.Context, query string) (*schema.RoutingInfo, error) {
	routing, err := s.cfg.Router.RouteQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if routing == nil {
		return nil, fmt.Errorf("%w: no routing decision", ErrEmptyResult)
	}
	return routing, nil
}

// Answer sends query straight to the agent for intent.
func (s *System) Answer(ctx context.Context, intent, query string) (*schema.ResponseInfo, error) {
	agent, ok := s.cfg.Agents[parser.Intent(intent)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIntent, intent)
	}
	response, err := agent.AnswerQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, fmt.Errorf("agent %s: %w: no response", agent.Name(), ErrEmptyResult)
	}
	return response, nil
}

// SafeProcessQuery never returns nil; failures become an empty result.
func SafeProcessQuery(ctx context.Context, p Processor, query string, evaluate bool) *schema.QueryResult {
	result, err := p.ProcessQuery(ctx, query, evaluate)
	if err != nil {
		log.Error(err, "query failed", "query", schema.Truncate(query, queryLogLength))
		return schema.NewEmptyResult(query, fmt.Sprintf("Query processing failed: %v", err))
	}
	if result == nil {
		return schema.NewEmptyResult(query, "Query processing failed")
	}
	return result
}

// Info describes the running system.
type Info struct {
	Agents            []string `json:"agents"`
	VectorStores      []string `json:"vector_stores"`
	TracingConfigured bool     `json:"tracing_configured"`
	Provider          string   `json:"provider"`
	Model             string   `json:"model"`
}

func (s *System) Info() Info {
	agents := []string{"orchestrator"}
	for _, intent := range []parser.Intent{parser.IntentHR, parser.IntentTech, parser.IntentFinance} {
		if a, ok := s.cfg.Agents[intent]; ok {
			agents = append(agents, a.Name())
		}
	}
	if s.cfg.Evaluator != nil {
		agents = append(agents, "evaluator")
	}

	stores := []string{}
	if s.cfg.StoreNames != nil {
		stores = s.cfg.StoreNames()
	}

	return Info{
		Agents:            agents,
		VectorStores:      stores,
		TracingConfigured: s.cfg.TracingConfigured,
		Provider:          s.cfg.Provider,
		Model:             s.cfg.Model,
	}
}
