package profile

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests. It records every Put so tests
// can assert on the exact sequence of writes.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]ChatUser
	avatars map[string]string
	puts    []ChatUser
}

// NewMemoryStore builds an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]ChatUser),
		avatars: make(map[string]string),
	}
}

// Put overwrites the record at users/{UserID} and appends to the put history.
func (s *MemoryStore) Put(_ context.Context, user ChatUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[Key(user.UserID)] = user
	s.puts = append(s.puts, user)
	return nil
}

// Get retrieves the record at users/{userID}.
func (s *MemoryStore) Get(_ context.Context, userID string) (*ChatUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.records[Key(userID)]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

// SetAvatar stores the avatar key for userID.
func (s *MemoryStore) SetAvatar(_ context.Context, userID, avatarKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avatars[userID] = avatarKey
	return nil
}

// GetAvatar returns the avatar key for userID.
func (s *MemoryStore) GetAvatar(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.avatars[userID], nil
}

// Puts returns a copy of the write history, in order.
func (s *MemoryStore) Puts() []ChatUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChatUser, len(s.puts))
	copy(out, s.puts)
	return out
}
