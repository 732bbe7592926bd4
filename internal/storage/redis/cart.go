// Package redis persists session cart snapshots in Redis so carts survive
// process restarts. The in-memory session store stays authoritative;
// snapshots follow it with last-write-wins semantics.
package redis

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-redis/redis/v8"

	"github.com/luxewear/storefront/internal/domain/cart"
	"github.com/luxewear/storefront/internal/session"
)

var _ session.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore implements session.SnapshotStore backed by Redis.
type SnapshotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a SnapshotStore and verifies connectivity.
func New(ctx context.Context, addr string, ttl time.Duration) (*SnapshotStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}

	return &SnapshotStore{rdb: rdb, ttl: ttl}, nil
}

// Ping reports whether the Redis backend is reachable.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (s *SnapshotStore) Close() error {
	return s.rdb.Close()
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// SaveCart stores the cart snapshot under the session's key, refreshing the
// TTL on every write.
func (s *SnapshotStore) SaveCart(ctx context.Context, sessionID string, items []cart.LineItem) error {
	data := encodeItems(items)
	if err := s.rdb.Set(ctx, cartKey(sessionID), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "set cart snapshot")
	}
	return nil
}

// LoadCart returns the snapshot for the session, or ok=false when none exists.
func (s *SnapshotStore) LoadCart(ctx context.Context, sessionID string) ([]cart.LineItem, bool, error) {
	data, err := s.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "get cart snapshot")
	}

	items, err := decodeItems(data)
	if err != nil {
		return nil, false, errors.Wrap(err, "decode cart snapshot")
	}
	return items, true, nil
}

// Delete removes the session's snapshot.
func (s *SnapshotStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return errors.Wrap(err, "delete cart snapshot")
	}
	return nil
}
