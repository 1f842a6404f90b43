package logging

import (
	"context"
	"log/slog"

	"recognizer/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItemID is the standardized structured logging key for library item identifiers.
	FieldItemID = "item_id"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldEventType classifies a log line for filtering (e.g. "queue_empty").
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldStatus carries a queue row status.
	FieldStatus = "status"
)

// ContextFields turns the item scope on ctx into log attributes.
func ContextFields(ctx context.Context) []slog.Attr {
	scope, ok := services.ScopeFromContext(ctx)
	if !ok {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if scope.ItemID != 0 {
		fields = append(fields, ItemID(scope.ItemID))
	}
	if scope.Stage != "" {
		fields = append(fields, slog.String(FieldStage, scope.Stage))
	}
	if scope.RequestID != "" {
		fields = append(fields, slog.String(FieldCorrelationID, scope.RequestID))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
