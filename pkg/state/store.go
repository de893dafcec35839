package state

import (
	"context"
	"encoding/json"
	"sync"
)

// ThreadStore persists per-thread state across runs. Implementations must
// serialize writers for a given thread; callers never coordinate among
// themselves. Load for an unknown thread returns a nil document and no
// error.
type ThreadStore interface {
	Load(ctx context.Context, threadID string) (json.RawMessage, error)
	Save(ctx context.Context, threadID string, state json.RawMessage) error
}

// MemoryStore is an in-process ThreadStore. It is safe for concurrent use;
// a single mutex gives the single-writer-at-a-time guarantee.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[string]json.RawMessage
}

// NewMemoryStore creates an empty in-memory thread store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]json.RawMessage),
	}
}

// Load returns a copy of the thread's persisted state
func (m *MemoryStore) Load(_ context.Context, threadID string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.states[threadID]
	if !ok {
		return nil, nil
	}
	return append(json.RawMessage(nil), raw...), nil
}

// Save stores a copy of the thread's state
func (m *MemoryStore) Save(_ context.Context, threadID string, state json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states[threadID] = append(json.RawMessage(nil), state...)
	return nil
}
