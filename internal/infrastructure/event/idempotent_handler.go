package event

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ipshield/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var _ shared.EventHandler = (*IdempotentHandler)(nil)

// IdempotencyMetrics may be shared by several handlers to get totals
type IdempotencyMetrics struct {
	EventsProcessed atomic.Int64
	EventsDuplicate atomic.Int64
	EventsFailed    atomic.Int64
}

// IdempotencyStats is a snapshot of IdempotencyMetrics
type IdempotencyStats struct {
	EventsProcessed int64 `json:"events_processed"`
	EventsDuplicate int64 `json:"events_duplicate"`
	EventsFailed    int64 `json:"events_failed"`
}

func (m *IdempotencyMetrics) Stats() IdempotencyStats {
	return IdempotencyStats{
		EventsProcessed: m.EventsProcessed.Load(),
		EventsDuplicate: m.EventsDuplicate.Load(),
		EventsFailed:    m.EventsFailed.Load(),
	}
}

// IdempotentHandler delivers each event ID to the wrapped handler once per
// TTL. A redelivered ContractCompleted must not count a customer's contract
// twice. The key is claimed before delivery and given back on failure so a
// retry can run.
type IdempotentHandler struct {
	next    shared.EventHandler
	store   shared.IdempotencyStore
	cfg     shared.IdempotencyConfig
	log     *zap.Logger
	metrics *IdempotencyMetrics
}

type IdempotentHandlerOption func(*IdempotentHandler)

// WithIdempotencyConfig changes the TTL or turns deduplication off
func WithIdempotencyConfig(cfg shared.IdempotencyConfig) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.cfg = cfg }
}

func WithIdempotencyMetrics(m *IdempotencyMetrics) IdempotentHandlerOption {
	return func(h *IdempotentHandler) { h.metrics = m }
}

func NewIdempotentHandler(next shared.EventHandler, store shared.IdempotencyStore, log *zap.Logger, opts ...IdempotentHandlerOption) *IdempotentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &IdempotentHandler{
		next:    next,
		store:   store,
		cfg:     shared.DefaultIdempotencyConfig(),
		log:     log,
		metrics: new(IdempotencyMetrics),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *IdempotentHandler) EventTypes() []string {
	return h.next.EventTypes()
}

func (h *IdempotentHandler) GetMetrics() *IdempotencyMetrics {
	return h.metrics
}

func (h *IdempotentHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	if !h.cfg.Enabled {
		return h.next.Handle(ctx, e)
	}

	key := h.key(e)
	log := h.log.With(zap.Stringer("event_id", e.EventID()), zap.String("event_type", e.EventType()))
	if !h.claim(ctx, key, log) {
		h.metrics.EventsDuplicate.Add(1)
		trace.SpanFromContext(ctx).AddEvent("duplicate_event_skipped",
			trace.WithAttributes(attribute.Stringer("event.id", e.EventID())))
		log.Debug("duplicate event skipped")
		return nil
	}

	if err := h.next.Handle(ctx, e); err != nil {
		h.metrics.EventsFailed.Add(1)
		log.Error("event handler failed", zap.Error(err))
		if err := h.store.Release(ctx, key); err != nil {
			log.Warn("failed to release event key", zap.Error(err))
		}
		return err
	}
	h.metrics.EventsProcessed.Add(1)
	return nil
}

// claim is false only for a key someone already holds. When the store
// cannot answer the event is delivered anyway.
func (h *IdempotentHandler) claim(ctx context.Context, key string, log *zap.Logger) bool {
	ok, err := h.store.MarkProcessed(ctx, key, h.cfg.TTL)
	if err != nil {
		log.Warn("idempotency store unavailable, handling without dedup", zap.Error(err))
		return true
	}
	return ok
}

// key is per wrapped handler type, and prefixed apart from payment
// Idempotency-Key entries.
func (h *IdempotentHandler) key(e shared.DomainEvent) string {
	return fmt.Sprintf("event:%T:%s", h.next, e.EventID())
}
