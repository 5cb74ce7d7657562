// Package event dispatches contract domain events to in-process handlers.
package event

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ipshield/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// InMemoryEventBus runs handlers synchronously on the publishing goroutine.
// Services publish after commit, so a handler error cannot undo the write;
// it is logged and the remaining handlers still run.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	stopped  atomic.Bool
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger.Named("events"),
	}
}

// Publish always returns nil; delivery failures are the handlers' concern
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	for _, e := range events {
		for _, h := range b.registry.Match(e.EventType()) {
			b.deliver(ctx, h, e)
		}
	}
	return nil
}

func (b *InMemoryEventBus) deliver(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) {
	started := time.Now()
	fields := []zap.Field{
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.String("handler", fmt.Sprintf("%T", h)),
	}

	if err := safeHandle(ctx, h, e); err != nil {
		b.logger.Error("event handler failed",
			append(fields, zap.String("aggregate_id", e.AggregateID().String()), zap.Error(err))...)
		return
	}
	b.logger.Debug("event handled", append(fields, zap.Duration("duration", time.Since(started)))...)
}

// safeHandle turns a handler panic into an error
func safeHandle(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

// Subscribe falls back to the handler's own EventTypes when none are passed.
// A handler reporting no types receives every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.String("handler", fmt.Sprintf("%T", handler)),
		zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

func (b *InMemoryEventBus) Start(context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("event bus started", zap.Int("handlers", b.registry.Len()))
	return nil
}

// Stop turns later Publish calls into no-ops
func (b *InMemoryEventBus) Stop(context.Context) error {
	b.stopped.Store(true)
	b.logger.Info("event bus stopped")
	return nil
}
