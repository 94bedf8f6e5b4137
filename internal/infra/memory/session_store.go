package memory

import (
	"context"
	"sync"

	"classquiz-service/internal/app"
	"classquiz-service/internal/domain"
)

// SessionStore is the in-process implementation of app.SessionStore. It holds
// the single live game and the last synced snapshot.
type SessionStore struct {
	mu       sync.RWMutex
	game     *app.Game
	snapshot domain.GameState
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Current() (*app.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game, s.game != nil
}

func (s *SessionStore) Put(_ context.Context, game *app.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = game
	s.snapshot = game.Snapshot()
}

func (s *SessionStore) Sync(_ context.Context, state domain.GameState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = state
}

func (s *SessionStore) Clear(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = nil
	s.snapshot = domain.GameState{}
}

// Snapshot returns the last synced state, mirroring the redis store's API.
func (s *SessionStore) Snapshot() (domain.GameState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.game != nil
}
