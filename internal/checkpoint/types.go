// Package checkpoint persists per-thread conversation state so a turn
// can resume exactly where the previous one left off, across process
// restarts when backed by Redis.
package checkpoint

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vsignlabs/vsignd/internal/intent"
	"github.com/vsignlabs/vsignd/internal/message"
)

var (
	// ErrNotFound indicates no state exists for the thread.
	ErrNotFound = errors.New("thread state not found")
	// ErrInvalidConfig indicates invalid store configuration.
	ErrInvalidConfig = errors.New("invalid checkpoint configuration")
)

// ThreadState is everything the engine knows about one conversation.
type ThreadState struct {
	Messages  []message.Message `json:"messages"`
	Intent    intent.Verdict    `json:"intent"`
	Summary   string            `json:"summary"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Store persists thread state keyed by thread ID.
type Store interface {
	// Load returns the state for a thread, ErrNotFound when absent.
	Load(ctx context.Context, threadID string) (*ThreadState, error)
	// Save writes the state for a thread.
	Save(ctx context.Context, threadID string, state *ThreadState) error
	// Delete removes a thread's state. Deleting an absent thread is not
	// an error.
	Delete(ctx context.Context, threadID string) error
}

// Locker hands out per-thread locks so concurrent requests on the same
// thread serialize while different threads run in parallel.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLocker creates a Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for a thread and returns the release func.
func (l *Locker) Lock(threadID string) func() {
	l.mu.Lock()
	m, ok := l.locks[threadID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[threadID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
