package demoauth

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrUnknownToken = errors.New("unknown demo auth token")

// Store maps header tokens to usernames. A zero ttl never expires.
type Store interface {
	Put(ctx context.Context, token, username string, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Seed loads static tokens into store.
func Seed(ctx context.Context, store Store, tokens map[string]string) error {
	for token, username := range tokens {
		if err := store.Put(ctx, token, username, 0); err != nil {
			return err
		}
	}
	return nil
}

type memoryEntry struct {
	username  string
	expiresAt time.Time
}

// MemoryStore is a Store for a single process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Put(_ context.Context, token, username string, ttl time.Duration) error {
	entry := memoryEntry{username: username}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[token] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, token string) (string, error) {
	s.mu.RLock()
	entry, ok := s.entries[token]
	s.mu.RUnlock()

	if !ok {
		return "", ErrUnknownToken
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, token)
		s.mu.Unlock()
		return "", ErrUnknownToken
	}
	return entry.username, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.entries, token)
	s.mu.Unlock()
	return nil
}
