package sharelink

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps tokens in a mutex-guarded map. The lock serializes
// lookup and delete, which is all the at-most-once guarantee needs at
// this scale. Intended for development and tests.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[string]Token
}

// NewMemoryStore creates an empty in-memory token store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[string]Token)}
}

// Put stores a token
func (m *MemoryStore) Put(ctx context.Context, t Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[t.ID] = t
	return nil
}

// GetAndDelete removes and returns a token in one critical section
func (m *MemoryStore) GetAndDelete(ctx context.Context, id string) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[id]
	if !ok {
		return Token{}, ErrNotFound
	}
	delete(m.tokens, id)
	return t, nil
}

// DeleteOlderThan removes unconsumed tokens created before cutoff
func (m *MemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, t := range m.tokens {
		if t.CreatedAt.Before(cutoff) {
			delete(m.tokens, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many unconsumed tokens are held
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}
