package checkpoint

import (
	"context"
	"sync"

	"github.com/vsignlabs/vsignd/internal/message"
)

// MemoryStore keeps thread state in process memory. Used when no Redis
// address is configured and in tests; state is lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	threads map[string]*ThreadState
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{threads: make(map[string]*ThreadState)}
}

// Load returns a copy of the thread state so callers can mutate freely.
func (s *MemoryStore) Load(_ context.Context, threadID string) (*ThreadState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.threads[threadID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *state
	cp.Messages = append([]message.Message(nil), state.Messages...)
	return &cp, nil
}

// Save stores a copy of the state.
func (s *MemoryStore) Save(_ context.Context, threadID string, state *ThreadState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *state
	cp.Messages = append([]message.Message(nil), state.Messages...)
	s.threads[threadID] = &cp
	return nil
}

// Delete removes the thread. Absent threads are a no-op.
func (s *MemoryStore) Delete(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.threads, threadID)
	return nil
}
