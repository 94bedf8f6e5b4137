package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pinKey = "game:current:pin"

// opTimeout bounds every call against the shared store so a slow Redis
// surfaces as an error instead of a hang.
const opTimeout = 2 * time.Second

// PinStore keeps the live PIN in Redis so every worker sees the same code.
// Expiry is handled by the key TTL, refreshed on each mint.
type PinStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPinStore(client *redis.Client, ttl time.Duration) *PinStore {
	return &PinStore{client: client, ttl: ttl}
}

func (s *PinStore) Get(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pin, err := s.client.Get(ctx, pinKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get pin: %w", err)
	}
	return pin, nil
}

func (s *PinStore) Put(ctx context.Context, pin string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	// SETNX makes concurrent mints converge on whichever write lands first.
	ok, err := s.client.SetNX(ctx, pinKey, pin, s.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("redis set pin: %w", err)
	}
	if ok {
		return pin, nil
	}
	winner, err := s.client.Get(ctx, pinKey).Result()
	if err != nil {
		return "", fmt.Errorf("redis get pin after race: %w", err)
	}
	return winner, nil
}

func (s *PinStore) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := s.client.Del(ctx, pinKey).Err(); err != nil {
		return fmt.Errorf("redis del pin: %w", err)
	}
	return nil
}
