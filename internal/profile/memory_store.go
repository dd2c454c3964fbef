package profile

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore builds an in-memory profile store for development and
// testing. Merge semantics match the Postgres implementation.
func NewMemoryStore() Store {
	return &memoryStore{records: make(map[string]Record)}
}

func (s *memoryStore) Get(_ context.Context, uid string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[uid]
	if !ok {
		return Record{}, ErrNotFound
	}
	if rec.Pin != nil {
		cred := *rec.Pin
		rec.Pin = &cred
	}
	return rec, nil
}

func (s *memoryStore) MergeUpsert(_ context.Context, uid string, patch Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.records[uid]
	rec.UID = uid
	if patch.PhoneNumber != nil {
		rec.PhoneNumber = *patch.PhoneNumber
	}
	if patch.DisplayName != nil {
		rec.DisplayName = *patch.DisplayName
	}
	if patch.Email != nil {
		rec.Email = *patch.Email
	}
	if patch.Pin != nil {
		cred := *patch.Pin
		rec.Pin = &cred
	}
	if patch.HasPin != nil {
		rec.HasPin = *patch.HasPin
	}
	now := time.Now().UTC()
	if now.After(rec.UpdatedAt) {
		rec.UpdatedAt = now
	}
	s.records[uid] = rec
	return nil
}
