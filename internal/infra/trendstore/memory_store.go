package trendstore

import (
	"context"
	"sort"
	"sync"

	"github.com/yanqian/skincare-api/internal/domain/recommendation"
)

// MemoryStore counts concern tags in process memory for tests/dev.
type MemoryStore struct {
	mu     sync.RWMutex
	counts map[string]int64
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counts: make(map[string]int64)}
}

// IncrementConcerns bumps each tag by one.
func (s *MemoryStore) IncrementConcerns(_ context.Context, concerns []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range concerns {
		if c == "" {
			continue
		}
		s.counts[c]++
	}
	return nil
}

// TopConcerns returns the most requested tags, ties broken alphabetically.
func (s *MemoryStore) TopConcerns(_ context.Context, limit int) ([]recommendation.ConcernTrend, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = len(s.counts)
	}
	items := make([]recommendation.ConcernTrend, 0, len(s.counts))
	for concern, count := range s.counts {
		items = append(items, recommendation.ConcernTrend{Concern: concern, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Concern < items[j].Concern
		}
		return items[i].Count > items[j].Count
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var _ recommendation.TrendStore = (*MemoryStore)(nil)
