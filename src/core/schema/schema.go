// Package schema holds the end-to-end query result and the accessors that
// keep it safe to consume when upstream stages failed part way.
package schema

import (
	"ragrouter/src/core/parser"
)

const (
	UnknownIntent = "unknown"
	NoAgent       = "none"
	UnknownSource = "Unknown"
)

// SourceDocument is a retrieved passage quoted in an answer.
type SourceDocument struct {
	Filename string         `json:"filename" mapstructure:"filename"`
	Source   string         `json:"source,omitempty" mapstructure:"source"`
	Content  string         `json:"content,omitempty" mapstructure:"content"`
	Metadata map[string]any `json:"metadata,omitempty" mapstructure:"metadata"`
}

// RoutingInfo is the orchestrator's decision for a query.
type RoutingInfo struct {
	Intent     string  `json:"intent" mapstructure:"intent"`
	Confidence float64 `json:"confidence" mapstructure:"confidence"`
	Reasoning  string  `json:"reasoning" mapstructure:"reasoning"`
	RouteTo    string  `json:"route_to" mapstructure:"route_to"`
}

// ResponseInfo is the answer produced by a domain agent or the fallback.
type ResponseInfo struct {
	Agent           string           `json:"agent" mapstructure:"agent"`
	Answer          string           `json:"answer" mapstructure:"answer"`
	SourceDocuments []SourceDocument `json:"source_documents" mapstructure:"source_documents"`
}

// EvaluationOutcome records either a parsed evaluation or why it failed.
type EvaluationOutcome struct {
	Result *parser.EvaluationResult `json:"evaluation,omitempty" mapstructure:"evaluation"`
	Error  string                   `json:"error,omitempty" mapstructure:"error"`
}

// QueryResult is the unified record returned for every processed query.
// All accessors are safe on a nil receiver.
type QueryResult struct {
	Query        string             `json:"query" mapstructure:"query"`
	Routing      *RoutingInfo       `json:"routing,omitempty" mapstructure:"routing"`
	Response     *ResponseInfo      `json:"response,omitempty" mapstructure:"response"`
	Evaluation   *EvaluationOutcome `json:"evaluation,omitempty" mapstructure:"evaluation"`
	ErrorMessage string             `json:"error,omitempty" mapstructure:"-"`
}

// NewEmptyResult represents a query that produced nothing usable.
func NewEmptyResult(query, message string) *QueryResult {
	if message == "" {
		message = "Query failed"
	}
	return &QueryResult{Query: query, ErrorMessage: message}
}

// Successful is true only when routing happened and a non-empty answer exists.
func (r *QueryResult) Successful() bool {
	return r != nil && r.Routing != nil && r.Response != nil && r.Response.Answer != ""
}

func (r *QueryResult) Intent() string {
	if r == nil || r.Routing == nil {
		return UnknownIntent
	}
	return r.Routing.Intent
}

func (r *QueryResult) Confidence() float64 {
	if r == nil || r.Routing == nil {
		return 0
	}
	return r.Routing.Confidence
}

func (r *QueryResult) Agent() string {
	if r == nil || r.Response == nil {
		return NoAgent
	}
	return r.Response.Agent
}

func (r *QueryResult) Answer() string {
	if r == nil || r.Response == nil {
		return ""
	}
	return r.Response.Answer
}

// SourceDocuments never returns nil.
func (r *QueryResult) SourceDocuments() []SourceDocument {
	if r == nil || r.Response == nil || r.Response.SourceDocuments == nil {
		return []SourceDocument{}
	}
	return r.Response.SourceDocuments
}

// HasEvaluation reports whether a parsed evaluation is attached.
func (r *QueryResult) HasEvaluation() bool {
	return r != nil && r.Evaluation != nil && r.Evaluation.Result != nil
}

// EvaluationData returns the evaluation when one exists.
func (r *QueryResult) EvaluationData() (parser.EvaluationResult, bool) {
	if !r.HasEvaluation() {
		return parser.EvaluationResult{}, false
	}
	return *r.Evaluation.Result, true
}

// EvaluationScore is the overall score, or 0 when evaluation did not run or failed.
func (r *QueryResult) EvaluationScore() float64 {
	if !r.HasEvaluation() {
		return 0
	}
	return float64(r.Evaluation.Result.Overall)
}

// EvaluationError returns the captured evaluation failure, if any.
func (r *QueryResult) EvaluationError() string {
	if r == nil || r.Evaluation == nil {
		return ""
	}
	return r.Evaluation.Error
}

// FailureMessage returns the message of a failed result.
func (r *QueryResult) FailureMessage() string {
	if r == nil {
		return "Query failed"
	}
	return r.ErrorMessage
}
