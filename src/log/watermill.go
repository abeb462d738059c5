package log

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/go-logr/logr"
)

// WatermillAdapter routes watermill logs into a logr logger.
type WatermillAdapter struct {
	logger logr.Logger
}

// NewWatermillAdapter wraps the global logger under name.
func NewWatermillAdapter(name string) *WatermillAdapter {
	return &WatermillAdapter{logger: logger.WithName(name)}
}

func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(err, msg, flatten(fields)...)
}

func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, flatten(fields)...)
}

func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.V(1).Info(msg, flatten(fields)...)
}

func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.V(2).Info(msg, flatten(fields)...)
}

func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillAdapter{logger: a.logger.WithValues(flatten(fields)...)}
}

func flatten(fields watermill.LogFields) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	return kv
}
