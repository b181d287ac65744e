// Package kv wraps the Redis commands the session and credential subsystems
// rely on: plain TTL'd keys, membership sets, and an atomic compare-and-delete.
// Any store speaking this primitive set (GET/SET EX/DEL/SADD/SREM/SMEMBERS/
// FLUSHALL) is substitutable behind it.
package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable is returned when the backing store is unreachable or
// misbehaving. It is always propagated to the caller, never swallowed; retry
// policy belongs to the Redis client, not this layer.
var ErrStoreUnavailable = errors.New("kv store unavailable")

// deleteIfEqualsScript deletes a key only when its current value matches the
// expected one. Used to consume single-use hashes: two concurrent verifiers
// can both read the canonical copy, but only one delete wins.
const deleteIfEqualsScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var deleteIfEqualsLua = redis.NewScript(deleteIfEqualsScript)

// Store is a thin adapter over a Redis client. Operations are individually
// atomic; multi-key sequences composed on top of it are not.
type Store struct {
	redis redis.UniversalClient
}

// NewStore wraps the given Redis client.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{redis: client}
}

// Set stores value under key, expiring after ttl.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns the value at key. ok is false when the key is absent or expired.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return value, true, nil
}

// Delete removes key and reports how many keys were removed (0 or 1).
// Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) (int64, error) {
	count, err := s.redis.Del(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

// DeleteIfEquals removes key only if its current value is byte-identical to
// expected, atomically. Returns true when this caller performed the delete.
func (s *Store) DeleteIfEquals(ctx context.Context, key, expected string) (bool, error) {
	result, err := deleteIfEqualsLua.Run(ctx, s.redis, []string{key}, expected).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return result == 1, nil
}

// AddToSet adds member to the set at setKey.
func (s *Store) AddToSet(ctx context.Context, setKey, member string) (int64, error) {
	count, err := s.redis.SAdd(ctx, setKey, member).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

// RemoveFromSet removes member from the set at setKey.
func (s *Store) RemoveFromSet(ctx context.Context, setKey, member string) (int64, error) {
	count, err := s.redis.SRem(ctx, setKey, member).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

// MembersOf returns all members of the set at setKey. An absent set yields an
// empty slice.
func (s *Store) MembersOf(ctx context.Context, setKey string) ([]string, error) {
	members, err := s.redis.SMembers(ctx, setKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return members, nil
}

// FlushAll wipes the entire store. Administrative reset only; nothing on a
// user-facing path may call this.
func (s *Store) FlushAll(ctx context.Context) error {
	if err := s.redis.FlushAll(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping returns a point-in-time availability check and its latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return time.Since(start), nil
}
