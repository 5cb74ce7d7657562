package event

import (
	"context"

	"github.com/ipshield/backend/internal/domain/shared"
	"github.com/ipshield/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes every domain event to the structured log with its
// JSON payload, tagged with the request and trace of the publishing call
type AuditLogHandler struct {
	serializer *EventSerializer
	logger     *zap.Logger
}

// NewAuditLogHandler creates the handler; serializer may be nil to log
// envelopes only
func NewAuditLogHandler(serializer *EventSerializer, log *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		serializer: serializer,
		logger:     log.Named("audit"),
	}
}

// EventTypes subscribes to everything
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

// Handle logs the event
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	if id := logger.GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if user := logger.GetUsername(ctx); user != "" {
		fields = append(fields, zap.String("username", user))
	}
	if h.serializer != nil && h.serializer.IsRegistered(event.EventType()) {
		payload, err := h.serializer.Serialize(event)
		if err != nil {
			return err
		}
		fields = append(fields, zap.ByteString("payload", payload))
	}

	logger.WithTraceContext(ctx, h.logger).Info("domain event", fields...)
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
