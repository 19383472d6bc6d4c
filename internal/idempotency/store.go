// Package idempotency remembers payment gateway charge references for
// in-flight checkouts.  The checkout flow charges the gateway before
// its local transaction commits; if the process dies in that window the
// buyer has been charged with no order row.  Storing the charge
// reference under a key derived from the checkout attempt lets a
// retried checkout pick up the already-captured charge instead of
// capturing a second one.  The same key is forwarded to the gateway as
// its idempotency key, so gateway-side retries dedupe as well.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists charge references in redis with a TTL.  A nil redis
// client disables the store: lookups miss and writes are no-ops, which
// degrades to the pre-idempotency behavior instead of failing checkout.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a Store writing under the given TTL.  The TTL should
// comfortably exceed the longest plausible retry window; entries are
// deleted eagerly after a successful commit anyway.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// KeyFor derives the idempotency key for a checkout attempt.  Two
// attempts with the same buyer, offer, quantity and payment token are
// the same purchase; anything else is a new one.
func KeyFor(userID, offerID uint64, quantity int, token string) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%d|%d|%d|%s", userID, offerID, quantity, token))
	return hex.EncodeToString(sum[:])
}

func (s *Store) redisKey(key string) string { return "checkout:charge:" + key }

// Lookup returns the charge reference remembered for the key, or ""
// when none is known.
func (s *Store) Lookup(ctx context.Context, key string) (string, error) {
	if s.rdb == nil {
		return "", nil
	}
	v, err := s.rdb.Get(ctx, s.redisKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Remember stores the charge reference for the key.  It is called
// immediately after a successful capture, before the local transaction
// commits.
func (s *Store) Remember(ctx context.Context, key, chargeID string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, s.redisKey(key), chargeID, s.ttl).Err()
}

// Clear drops the key after the checkout has committed.  A leftover
// entry is harmless (the TTL reaps it) but would block an intentional
// identical re-purchase from charging again, so eager cleanup matters.
func (s *Store) Clear(ctx context.Context, key string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, s.redisKey(key)).Err()
}
