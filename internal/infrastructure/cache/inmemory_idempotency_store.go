// Package cache holds the idempotency key stores used by payment endpoints
// and the shared Redis client.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/ipshield/backend/internal/domain/shared"
)

const sweepEvery = 5 * time.Minute

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// InMemoryIdempotencyStore keeps claims in process memory, so it only
// protects a single API instance. It backs payment recording when Redis is
// disabled.
type InMemoryIdempotencyStore struct {
	mu     sync.Mutex
	claims map[string]time.Time // key -> expiry
	now    func() time.Time

	stop context.CancelFunc
	done chan struct{}
}

// NewInMemoryIdempotencyStore starts a sweeper that drops expired claims;
// Close stops it.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	ctx, cancel := context.WithCancel(context.Background())
	s := &InMemoryIdempotencyStore{
		claims: make(map[string]time.Time),
		now:    time.Now,
		stop:   cancel,
		done:   make(chan struct{}),
	}
	go s.sweep(ctx)
	return s
}

// MarkProcessed is false while an earlier claim on key is still live
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.live(key, now) {
		return false, nil
	}
	s.claims[key] = now.Add(ttl)
	return true, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live(key, s.now()), nil
}

func (s *InMemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.claims, key)
	s.mu.Unlock()
	return nil
}

// Close waits for the sweeper to exit. Calling it again is a no-op.
func (s *InMemoryIdempotencyStore) Close() error {
	s.stop()
	<-s.done
	return nil
}

// Size counts stored claims, including expired ones not yet swept
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims)
}

// live must be called with mu held
func (s *InMemoryIdempotencyStore) live(key string, now time.Time) bool {
	expiry, ok := s.claims[key]
	return ok && now.Before(expiry)
}

func (s *InMemoryIdempotencyStore) sweep(ctx context.Context) {
	defer close(s.done)
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for key := range s.claims {
		if !s.live(key, now) {
			delete(s.claims, key)
		}
	}
}
