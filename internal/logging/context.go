package logging

import (
	"context"
	"log/slog"

	"factflow/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldWorkItemID is the standardized structured logging key for work item identifiers.
	FieldWorkItemID = "work_item_id"
	// FieldStage is the standardized structured logging key for the target stage.
	FieldStage = "stage"
	// FieldActorID is the standardized structured logging key for the acting user.
	FieldActorID = "actor_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.WorkItemIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldWorkItemID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if actor, ok := services.ActorIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldActorID, actor))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
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
	return logger.With(attrsToArgs(fields)...)
}
