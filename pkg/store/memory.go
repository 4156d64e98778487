package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/matzehuels/gmplayout/pkg/facility"
)

// MemoryStore keeps layouts in memory. Stored layouts are deep copies, so
// callers may keep mutating what they saved.
type MemoryStore struct {
	mu      sync.RWMutex
	layouts map[string]*facility.Layout
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{layouts: make(map[string]*facility.Layout)}
}

func (s *MemoryStore) Save(_ context.Context, l *facility.Layout) error {
	if err := ValidateID(l.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layouts[l.ID] = l.Clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*facility.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.layouts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return l.Clone(), nil
}

func (s *MemoryStore) List(_ context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.layouts))
	for _, l := range s.layouts {
		out = append(out, Summarize(l))
	}
	sortSummaries(out)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.layouts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.layouts, id)
	return nil
}

func (s *MemoryStore) Match(_ context.Context, p Pattern) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.layouts))
	for id := range s.layouts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []Match
	for _, id := range ids {
		out = append(out, MatchLayout(s.layouts[id], p)...)
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
