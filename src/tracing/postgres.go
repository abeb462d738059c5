package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TraceEvent is the row stored for each event.
type TraceEvent struct {
	ID         int64  `gorm:"primaryKey;autoIncrement:false"`
	TraceID    string `gorm:"index;not null"`
	Type       string `gorm:"not null"`
	Name       string `gorm:"not null"`
	Input      string `gorm:"type:text"`
	Output     string `gorm:"type:text"`
	Error      string `gorm:"type:text"`
	Value      float64
	Comment    string `gorm:"type:text"`
	StartedAt  time.Time
	DurationMs int64
	CreatedAt  time.Time
}

func (TraceEvent) TableName() string {
	return "trace_events"
}

// PostgresTracer writes events to the trace_events table.
type PostgresTracer struct {
	db *gorm.DB
}

// NewPostgresTracer migrates the trace_events table and returns the sink.
func NewPostgresTracer(db *gorm.DB) (*PostgresTracer, error) {
	if err := db.AutoMigrate(&TraceEvent{}); err != nil {
		return nil, fmt.Errorf("failed to migrate trace events: %w", err)
	}
	return &PostgresTracer{db: db}, nil
}

func (t *PostgresTracer) Record(ctx context.Context, e Event) error {
	row, err := toRow(e)
	if err != nil {
		return err
	}
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to store trace event: %w", err)
	}
	return nil
}

// Events returns the events of a trace in the order they were recorded.
func (t *PostgresTracer) Events(ctx context.Context, traceID string) ([]TraceEvent, error) {
	var rows []TraceEvent
	if err := t.db.WithContext(ctx).Where("trace_id = ?", traceID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load trace events: %w", err)
	}
	return rows, nil
}

func (t *PostgresTracer) Close() error {
	return nil
}

func (t *PostgresTracer) Enabled() bool {
	return true
}

func toRow(e Event) (TraceEvent, error) {
	input, err := marshalField(e.Input)
	if err != nil {
		return TraceEvent{}, fmt.Errorf("failed to encode span input: %w", err)
	}
	output, err := marshalField(e.Output)
	if err != nil {
		return TraceEvent{}, fmt.Errorf("failed to encode span output: %w", err)
	}
	return TraceEvent{
		ID:         e.ID,
		TraceID:    e.TraceID,
		Type:       string(e.Type),
		Name:       e.Name,
		Input:      input,
		Output:     output,
		Error:      e.Error,
		Value:      e.Value,
		Comment:    e.Comment,
		StartedAt:  e.StartedAt,
		DurationMs: e.Duration.Milliseconds(),
	}, nil
}

func marshalField(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
