package memory

import (
	"context"
	"sync"
	"time"
)

// PinStore keeps the live PIN in process memory with an idle TTL.
type PinStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu        sync.Mutex
	pin       string
	expiresAt time.Time
}

func NewPinStore(ttl time.Duration) *PinStore {
	return &PinStore{ttl: ttl, clock: time.Now}
}

// NewPinStoreWithClock is test-only for deterministic expiry.
func NewPinStoreWithClock(ttl time.Duration, clock func() time.Time) *PinStore {
	return &PinStore{ttl: ttl, clock: clock}
}

func (s *PinStore) Get(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pin == "" || s.clock().After(s.expiresAt) {
		return "", nil
	}
	return s.pin, nil
}

func (s *PinStore) Put(_ context.Context, pin string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	if s.pin != "" && now.Before(s.expiresAt) {
		return s.pin, nil
	}
	s.pin = pin
	s.expiresAt = now.Add(s.ttl)
	return pin, nil
}

func (s *PinStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = ""
	return nil
}
