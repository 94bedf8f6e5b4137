package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const playersKey = "game:players"

// Roster stores the joined player names in a Redis set. SADD is the atomic
// insert-if-absent that makes duplicate joins lose deterministically.
type Roster struct {
	client *redis.Client
}

func NewRoster(client *redis.Client) *Roster {
	return &Roster{client: client}
}

func (r *Roster) Add(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	added, err := r.client.SAdd(ctx, playersKey, name).Result()
	if err != nil {
		return false, fmt.Errorf("redis add player: %w", err)
	}
	return added == 1, nil
}

// Members returns the roster. Redis sets are unordered; callers treat the
// order as undetermined.
func (r *Roster) Members(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	members, err := r.client.SMembers(ctx, playersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list players: %w", err)
	}
	return members, nil
}

func (r *Roster) Remove(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := r.client.SRem(ctx, playersKey, name).Err(); err != nil {
		return fmt.Errorf("redis remove player: %w", err)
	}
	return nil
}

func (r *Roster) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := r.client.Del(ctx, playersKey).Err(); err != nil {
		return fmt.Errorf("redis clear players: %w", err)
	}
	return nil
}
