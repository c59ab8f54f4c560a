package wizard

import (
	"context"
	"sync"
)

// MemoryStore keeps wizard state in process memory. State is lost on restart,
// which is acceptable for a single-admin bot running in polling mode without
// redis.
type MemoryStore struct {
	mu     sync.Mutex
	states map[int64]*State
}

// NewMemoryStore creates an in-memory wizard store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: map[int64]*State{}}
}

// Get returns the state for a chat, or nil when no wizard is active.
func (s *MemoryStore) Get(ctx context.Context, chatID int64) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[chatID]
	if !ok {
		return nil, nil
	}
	copied := *st
	return &copied, nil
}

// Set replaces the state for a chat.
func (s *MemoryStore) Set(ctx context.Context, chatID int64, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *state
	s.states[chatID] = &copied
	return nil
}

// Clear removes the state for a chat.
func (s *MemoryStore) Clear(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.states, chatID)
	return nil
}
