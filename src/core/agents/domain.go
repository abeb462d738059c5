// Package agents holds the language-model agents: the per-domain retrieval
// agents, the intent orchestrator and the response evaluator.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	lcschema "github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"ragrouter/src/core/parser"
	"ragrouter/src/core/schema"
	"ragrouter/src/tracing"
)

const (
	DefaultTopK              = 5
	DefaultDomainTemperature = 0.2
	snippetLength            = 200
)

// Domain describes how an agent presents itself in its prompt.
type Domain struct {
	Intent   parser.Intent
	Agent    string
	Role     string
	Scope    string
	Redirect string
	Guidance string
}

var (
	HRDomain = Domain{
		Intent:   parser.IntentHR,
		Agent:    "hr_agent",
		Role:     "HR assistant",
		Scope:    "HR-related questions about company policies, benefits, employment procedures, and workplace guidelines",
		Redirect: "appropriate department",
		Guidance: "Provide a helpful, accurate answer based on the company policies. If specific procedures are mentioned, include the relevant steps. Be professional and empathetic in your response.",
	}
	TechDomain = Domain{
		Intent:   parser.IntentTech,
		Agent:    "tech_agent",
		Role:     "IT Support assistant",
		Scope:    "technical questions about software, hardware, IT policies, system access, security procedures, and troubleshooting",
		Redirect: "submit an IT ticket or contact the helpdesk",
		Guidance: "Provide clear, step-by-step technical guidance when applicable. Include relevant contact information or escalation procedures when appropriate. Prioritize security and compliance in your responses.",
	}
	FinanceDomain = Domain{
		Intent:   parser.IntentFinance,
		Agent:    "finance_agent",
		Role:     "Finance assistant",
		Scope:    "questions about expense policies, procurement procedures, budget guidelines, reimbursements, and financial compliance",
		Redirect: "contact the finance department directly",
		Guidance: "Provide accurate information about financial policies and procedures. Include relevant approval processes, limits, and contact information. Emphasize compliance requirements when applicable.",
	}

	Domains = []Domain{HRDomain, TechDomain, FinanceDomain}
)

// Prompt returns the retrieval prompt for d. It expects "context" and
// "question" at format time.
func (d Domain) Prompt() prompts.PromptTemplate {
	return prompts.PromptTemplate{
		Template:       DomainPromptTmpl,
		InputVariables: []string{"context", "question"},
		TemplateFormat: prompts.TemplateFormatGoTemplate,
		PartialVariables: map[string]any{
			"role":     d.Role,
			"domain":   d.Scope,
			"redirect": d.Redirect,
			"guidance": d.Guidance,
		},
	}
}

type options struct {
	tracer      tracing.Tracer
	temperature float64
	topK        int
}

type Option func(*options)

func WithTracer(t tracing.Tracer) Option {
	return func(o *options) {
		o.tracer = t
	}
}

func WithTemperature(temperature float64) Option {
	return func(o *options) {
		o.temperature = temperature
	}
}

// WithTopK sets how many chunks a store-backed agent retrieves.
func WithTopK(k int) Option {
	return func(o *options) {
		o.topK = k
	}
}

func newOptions(temperature float64, opts []Option) options {
	o := options{tracer: tracing.Noop{}, temperature: temperature, topK: DefaultTopK}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DomainAgent answers questions for one domain from retrieved passages.
type DomainAgent struct {
	domain Domain
	chain  chains.RetrievalQA
	opts   options
}

func NewDomainAgent(llm llms.Model, retriever lcschema.Retriever, d Domain, opts ...Option) *DomainAgent {
	qa := chains.NewRetrievalQA(
		chains.NewStuffDocuments(chains.NewLLMChain(llm, d.Prompt())),
		retriever,
	)
	qa.ReturnSourceDocuments = true

	return &DomainAgent{
		domain: d,
		chain:  qa,
		opts:   newOptions(DefaultDomainTemperature, opts),
	}
}

// NewStoreAgent retrieves the top k chunks of store for every question.
func NewStoreAgent(llm llms.Model, store vectorstores.VectorStore, d Domain, opts ...Option) *DomainAgent {
	o := newOptions(DefaultDomainTemperature, opts)
	return NewDomainAgent(llm, vectorstores.ToRetriever(store, o.topK), d, opts...)
}

func NewHRAgent(llm llms.Model, store vectorstores.VectorStore, opts ...Option) *DomainAgent {
	return NewStoreAgent(llm, store, HRDomain, opts...)
}

func NewTechAgent(llm llms.Model, store vectorstores.VectorStore, opts ...Option) *DomainAgent {
	return NewStoreAgent(llm, store, TechDomain, opts...)
}

func NewFinanceAgent(llm llms.Model, store vectorstores.VectorStore, opts ...Option) *DomainAgent {
	return NewStoreAgent(llm, store, FinanceDomain, opts...)
}

func (a *DomainAgent) Name() string {
	return a.domain.Agent
}

func (a *DomainAgent) Intent() parser.Intent {
	return a.domain.Intent
}

// AnswerQuery runs retrieval and answer generation for query.
func (a *DomainAgent) AnswerQuery(ctx context.Context, query string) (*schema.ResponseInfo, error) {
	return tracing.Observe(ctx, a.opts.tracer, a.domain.Agent, query, func(ctx context.Context) (*schema.ResponseInfo, error) {
		out, err := chains.Call(ctx, a.chain, map[string]any{"query": query}, chains.WithTemperature(a.opts.temperature))
		if err != nil {
			return nil, fmt.Errorf("failed to answer with %s: %w", a.domain.Agent, err)
		}

		answer, _ := out["text"].(string)
		docs, _ := out["source_documents"].([]lcschema.Document)

		return &schema.ResponseInfo{
			Agent:           a.domain.Agent,
			Answer:          strings.TrimSpace(answer),
			SourceDocuments: sourceSnippets(docs),
		}, nil
	})
}

func sourceSnippets(docs []lcschema.Document) []schema.SourceDocument {
	out := make([]schema.SourceDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, schema.SourceDocument{
			Content:  truncateRunes(d.PageContent, snippetLength) + "...",
			Source:   metadataString(d.Metadata, "source"),
			Filename: metadataString(d.Metadata, "filename"),
		})
	}
	return out
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func metadataString(m map[string]any, key string) string {
	if v, ok := m[key]; ok && v != nil {
		if s := fmt.Sprint(v); s != "" {
			return s
		}
	}
	return schema.UnknownSource
}
