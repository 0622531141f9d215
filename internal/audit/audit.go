// Package audit writes every workflow event to the structured log.
package audit

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/timesheet-management/internal/core/events"
)

type Subscriber interface {
	Subscribe(eventType string, handler events.Handler)
}

var auditedTypes = []string{
	events.EventTypeTimesheetSubmitted,
	events.EventTypeTimesheetApproved,
	events.EventTypeTimesheetRejected,
	events.EventTypeAssignmentCreated,
	events.EventTypeAssignmentRemoved,
	events.EventTypeManagerReassigned,
}

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger.With("component", "audit")}
}

func (l *Logger) Register(bus Subscriber) {
	for _, t := range auditedTypes {
		bus.Subscribe(t, l.Handle)
	}
}

func (l *Logger) Handle(ctx context.Context, e events.Event) error {
	attrs := []any{
		"event_id", e.EventID(),
		"event_type", e.EventType(),
		"occurred_at", e.OccurredAt(),
	}
	if data, ok := e.Payload().(map[string]interface{}); ok {
		for k, v := range data {
			if ptr, ok := v.(*int64); ok {
				if ptr == nil {
					continue
				}
				v = *ptr
			}
			attrs = append(attrs, k, v)
		}
	}

	level := slog.LevelInfo
	if e.EventType() == events.EventTypeManagerReassigned {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "audit", attrs...)
	return nil
}
