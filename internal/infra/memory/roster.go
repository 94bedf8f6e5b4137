package memory

import (
	"context"
	"sync"
)

// Roster is an in-process player set preserving join order.
type Roster struct {
	mu      sync.Mutex
	names   map[string]struct{}
	ordered []string
}

func NewRoster() *Roster {
	return &Roster{names: make(map[string]struct{})}
}

func (r *Roster) Add(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; ok {
		return false, nil
	}
	r.names[name] = struct{}{}
	r.ordered = append(r.ordered, name)
	return true, nil
}

func (r *Roster) Members(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := make([]string, len(r.ordered))
	copy(members, r.ordered)
	return members, nil
}

func (r *Roster) Remove(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[name]; !ok {
		return nil
	}
	delete(r.names, name)
	for i, existing := range r.ordered {
		if existing == name {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Roster) Clear(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = make(map[string]struct{})
	r.ordered = nil
	return nil
}
