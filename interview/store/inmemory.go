// Package store provides persistence backends for interview session records.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/novexa-ai/interviewd/interview"
)

// InMemoryStore implements record storage using in-memory storage
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*interview.Record
}

// NewInMemoryStore creates a new in-memory record store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*interview.Record),
	}
}

// Save saves a session record to the store
func (s *InMemoryStore) Save(ctx context.Context, record *interview.Record) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("session record cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record.Clone()
	return nil
}

// Load loads a session record from the store
func (s *InMemoryStore) Load(ctx context.Context, id string) (*interview.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[id]
	if !exists {
		return nil, fmt.Errorf("session record %s not found", id)
	}
	return record.Clone(), nil
}

// Delete removes a session record from the store
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return fmt.Errorf("session record %s not found", id)
	}
	delete(s.records, id)
	return nil
}

// List returns all record ids in the store
func (s *InMemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids, nil
}
