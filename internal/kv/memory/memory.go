// Package memory is the in-process backend: a mutex-guarded KV map and the
// income dataset held in memory.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"duka/internal/core"
)

// DatasetFile is the optional dataset override looked up by NewFromDir.
const DatasetFile = "income.json"

type Store struct {
	mu      sync.RWMutex
	dataset []core.MonthlyRecord
	entries map[string][]byte
}

// New returns a store holding dataset. A nil dataset means the fixture.
func New(dataset []core.MonthlyRecord) *Store {
	if dataset == nil {
		dataset = core.IncomeFixture()
	}
	return &Store{
		dataset: append([]core.MonthlyRecord(nil), dataset...),
		entries: map[string][]byte{},
	}
}

// NewFromDir loads base/income.json when present and valid, otherwise it
// falls back to the fixture.
func NewFromDir(base string) (*Store, error) {
	raw, err := os.ReadFile(filepath.Join(base, DatasetFile))
	if os.IsNotExist(err) {
		return New(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var data []core.MonthlyRecord
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	for i := range data {
		data[i].Position = i
	}
	if err := core.ValidateDataset(data); err != nil {
		return nil, err
	}
	return New(data), nil
}

// ReadDataset implements ports.DatasetReader.
func (s *Store) ReadDataset(_ context.Context) ([]core.MonthlyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.MonthlyRecord(nil), s.dataset...), nil
}

// Get implements ports.KVStore.
func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements ports.KVStore.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements ports.KVStore.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }
