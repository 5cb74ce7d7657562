package event

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/ipshield/backend/internal/domain/shared"
)

// EventFactory returns an empty event to decode into
type EventFactory func() shared.DomainEvent

// EventSerializer turns events into JSON and back. Decoding needs the
// event type name, since the JSON alone does not say which struct it is.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]EventFactory
}

// NewEventSerializer knows no types yet; see RegisterAllEvents
func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: map[string]EventFactory{}}
}

// Register replaces any earlier factory for eventType
func (s *EventSerializer) Register(eventType string, factory EventFactory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.factories[eventType] = factory
}

func (s *EventSerializer) Serialize(e shared.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", e.EventType(), err)
	}
	return data, nil
}

func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	factory := s.factory(eventType)
	if factory == nil {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}
	e := factory()
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event %s: %w", eventType, err)
	}
	return e, nil
}

func (s *EventSerializer) IsRegistered(eventType string) bool {
	return s.factory(eventType) != nil
}

// RegisteredTypes is sorted by name
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.factories))
}

func (s *EventSerializer) factory(eventType string) EventFactory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.factories[eventType]
}
