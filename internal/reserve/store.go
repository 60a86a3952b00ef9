// Package reserve hosts the client-facing display-name pre-check: a
// Redis-backed reservation store and its REST handler. It exists purely to
// cut down doomed join attempts; the hub's own uniqueness check stays
// authoritative and re-validates every join regardless.
package reserve

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "huddle:name:"

// Store reserves display names with a TTL so abandoned reservations expire
// on their own.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

// Exists reports whether name currently has a live reservation.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+name).Result()
	if err != nil {
		return false, fmt.Errorf("check name reservation: %w", err)
	}
	return n > 0, nil
}

// Reserve claims name for the store's TTL. It returns false when the name
// is already reserved.
func (s *Store) Reserve(ctx context.Context, name string) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+name, "1", s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve name: %w", err)
	}
	return ok, nil
}

// Release frees a reservation early, e.g. when the client gave up before
// joining. Releasing an unknown name is a no-op.
func (s *Store) Release(ctx context.Context, name string) error {
	if err := s.client.Del(ctx, keyPrefix+name).Err(); err != nil {
		return fmt.Errorf("release name: %w", err)
	}
	return nil
}
