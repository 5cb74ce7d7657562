package shared

import "context"

// EventPublisher is the side of the bus application services see
type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler receives the event types it lists, or every type when the
// list is empty.
type EventHandler interface {
	EventTypes() []string
	Handle(ctx context.Context, event DomainEvent) error
}

// EventBus fans published events out to subscribers between Start and Stop
type EventBus interface {
	EventPublisher
	Subscribe(h EventHandler, eventTypes ...string)
	Unsubscribe(h EventHandler)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
