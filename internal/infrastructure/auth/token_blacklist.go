package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes staff tokens before they expire.
// Logout revokes a single jti; a password change revokes every token the user holds.
type TokenBlacklist interface {
	// Revoke rejects one token; ttl is its remaining lifetime
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// RevokeAllForUser rejects every token issued to the user up to now.
	// ttl should cover the longest-lived token the user could hold.
	RevokeAllForUser(ctx context.Context, userID string, ttl time.Duration) error
	IsRevokedForUser(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}

// BlacklistKeyPrefix namespaces revocation keys in the shared Redis database
const BlacklistKeyPrefix = "ipshield:auth:revoked:"

// RedisTokenBlacklist shares revocations between instances through Redis
type RedisTokenBlacklist struct {
	client redis.UniversalClient
}

// NewRedisTokenBlacklist creates a blacklist on client
func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, BlacklistKeyPrefix+"jti:"+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, BlacklistKeyPrefix+"jti:"+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

// RevokeAllForUser stores the revocation second; tokens with an earlier iat are rejected
func (b *RedisTokenBlacklist) RevokeAllForUser(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, BlacklistKeyPrefix+"user:"+userID, time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke user tokens: %w", err)
	}
	return nil
}

// IsRevokedForUser compares at second precision, matching the iat claim,
// so a token issued in the revocation second itself stays valid.
func (b *RedisTokenBlacklist) IsRevokedForUser(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	revokedAt, err := b.client.Get(ctx, BlacklistKeyPrefix+"user:"+userID).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to check user token revocation: %w", err)
	}
	return issuedAt.Unix() < revokedAt, nil
}

// InMemoryTokenBlacklist is used when Redis is disabled. Revocations are lost
// on restart and are not shared between instances.
type InMemoryTokenBlacklist struct {
	mu    sync.Mutex
	jtis  map[string]time.Time // jti -> expiry
	users map[string]revocation
	now   func() time.Time
}

type revocation struct {
	at      time.Time
	expires time.Time
}

// NewInMemoryTokenBlacklist creates an empty in-process blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		jtis:  make(map[string]time.Time),
		users: make(map[string]revocation),
		now:   time.Now,
	}
}

func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sweep()
	b.jtis[jti] = b.now().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expiry, ok := b.jtis[jti]
	if !ok {
		return false, nil
	}
	if b.now().After(expiry) {
		delete(b.jtis, jti)
		return false, nil
	}
	return true, nil
}

func (b *InMemoryTokenBlacklist) RevokeAllForUser(_ context.Context, userID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sweep()
	now := b.now()
	r := revocation{at: now}
	if ttl > 0 {
		r.expires = now.Add(ttl)
	}
	b.users[userID] = r
	return nil
}

func (b *InMemoryTokenBlacklist) IsRevokedForUser(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.users[userID]
	if !ok || r.expired(b.now()) {
		return false, nil
	}
	return issuedAt.Unix() < r.at.Unix(), nil
}

func (r revocation) expired(now time.Time) bool {
	return !r.expires.IsZero() && now.After(r.expires)
}

// sweep drops entries that can no longer match a live token. Callers hold mu.
func (b *InMemoryTokenBlacklist) sweep() {
	now := b.now()
	for jti, expiry := range b.jtis {
		if now.After(expiry) {
			delete(b.jtis, jti)
		}
	}
	for id, r := range b.users {
		if r.expired(now) {
			delete(b.users, id)
		}
	}
}

var (
	_ TokenBlacklist = (*RedisTokenBlacklist)(nil)
	_ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
)
