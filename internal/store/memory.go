package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/i474232898/apod-api/internal/apod"
)

// MemoryStore is a concurrency-safe in-memory record store keyed by date.
type MemoryStore struct {
	mu sync.RWMutex

	// key: canonical date, value: record
	data map[string]apod.Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]apod.Record),
	}
}

// FindByDate returns the record stored for date.
func (s *MemoryStore) FindByDate(_ context.Context, date string) (apod.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[date]
	if !ok {
		return apod.Record{}, apod.ErrNotFound
	}
	return rec, nil
}

// FindRange returns all records with start <= date <= end (inclusive).
func (s *MemoryStore) FindRange(_ context.Context, start, end string) ([]apod.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]apod.Record, 0)
	for date, rec := range s.data {
		if date >= start && date <= end {
			result = append(result, rec)
		}
	}
	return result, nil
}

// Insert stores rec under a fresh ID unless its date is already taken.
func (s *MemoryStore) Insert(_ context.Context, rec apod.Record) (apod.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[rec.Date]; ok {
		return apod.Record{}, apod.ErrDuplicate
	}

	rec.ID = uuid.NewString()
	s.data[rec.Date] = rec
	return rec, nil
}

// Len reports how many records are stored.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) Close(context.Context) error { return nil }
