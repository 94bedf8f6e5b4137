package redis

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"classquiz-service/internal/app"
	"classquiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const stateKey = "game:current"

// SessionStore is a Redis-aware implementation of app.SessionStore.
// Notes:
//   - The live Game stays in process memory; its mutex is what serializes
//     transitions, so correctness never depends on Redis.
//   - Each transition mirrors the snapshot JSON under game:current so
//     sibling stateless workers can serve polling reads.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	game   *app.Game
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Current() (*app.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game, s.game != nil
}

func (s *SessionStore) Put(ctx context.Context, game *app.Game) {
	s.mu.Lock()
	s.game = game
	s.mu.Unlock()
	s.Sync(ctx, game.Snapshot())
}

// Sync mirrors the snapshot; best effort, a write failure only degrades
// cross-worker reads.
func (s *SessionStore) Sync(ctx context.Context, state domain.GameState) {
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_ = s.client.Set(ctx, stateKey, data, s.ttl).Err()
}

func (s *SessionStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.game = nil
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_ = s.client.Del(ctx, stateKey).Err()
}

// Snapshot reads the mirrored state, for workers that do not own the session.
func (s *SessionStore) Snapshot(ctx context.Context) (domain.GameState, bool) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, stateKey).Bytes()
	if err != nil {
		return domain.GameState{}, false
	}
	var state domain.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.GameState{}, false
	}
	return state, true
}
