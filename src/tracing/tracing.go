// Package tracing records query spans and quality scores to a trace sink.
package tracing

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"

	"ragrouter/src/log"
)

type EventType string

const (
	EventSpan  EventType = "span"
	EventScore EventType = "score"
)

// Event is a single span or score belonging to a trace.
type Event struct {
	ID        int64         `json:"id"`
	TraceID   string        `json:"trace_id"`
	Type      EventType     `json:"type"`
	Name      string        `json:"name"`
	Input     any           `json:"input,omitempty"`
	Output    any           `json:"output,omitempty"`
	Error     string        `json:"error,omitempty"`
	Value     float64       `json:"value,omitempty"`
	Comment   string        `json:"comment,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Tracer is a trace sink.
type Tracer interface {
	Record(ctx context.Context, e Event) error
	Close() error
	Enabled() bool
}

type traceKey struct{}

var node *snowflake.Node

func init() {
	var err error
	node, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// TraceID returns the trace carried by ctx, or "" outside of a trace.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// ensureTrace returns ctx carrying a trace id, starting a new trace if needed.
func ensureTrace(ctx context.Context) (context.Context, string) {
	if id := TraceID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, traceKey{}, id), id
}

// Observe runs fn as a named span. Nested spans share the trace of the
// outermost one. Sink failures are logged and never change fn's result.
func Observe[T any](ctx context.Context, tracer Tracer, name string, input any, fn func(ctx context.Context) (T, error)) (T, error) {
	if tracer == nil || !tracer.Enabled() {
		return fn(ctx)
	}

	ctx, traceID := ensureTrace(ctx)
	start := time.Now()
	out, err := fn(ctx)

	e := Event{
		ID:        node.Generate().Int64(),
		TraceID:   traceID,
		Type:      EventSpan,
		Name:      name,
		Input:     input,
		StartedAt: start,
		Duration:  time.Since(start),
	}
	if err != nil {
		e.Error = err.Error()
	} else {
		e.Output = out
	}
	record(ctx, tracer, e)

	return out, err
}

// Score attaches a named numeric score to the current trace.
func Score(ctx context.Context, tracer Tracer, name string, value float64, comment string) {
	if tracer == nil || !tracer.Enabled() {
		return
	}
	ctx, traceID := ensureTrace(ctx)
	record(ctx, tracer, Event{
		ID:        node.Generate().Int64(),
		TraceID:   traceID,
		Type:      EventScore,
		Name:      name,
		Value:     value,
		Comment:   comment,
		StartedAt: time.Now(),
	})
}

func record(ctx context.Context, tracer Tracer, e Event) {
	if err := tracer.Record(ctx, e); err != nil {
		log.Error(err, "failed to record trace event", "name", e.Name, "trace_id", e.TraceID)
	}
}

// Noop discards every event.
type Noop struct{}

func (Noop) Record(context.Context, Event) error { return nil }
func (Noop) Close() error                        { return nil }
func (Noop) Enabled() bool                       { return false }
