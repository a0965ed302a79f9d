package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"AffairsRelay/internal/domain"
	"AffairsRelay/internal/ports"
)

// MemoryStore keeps seen URLs in process memory. It is meant for dry runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.SeenRecord
}

var _ ports.SeenStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store, optionally seeded with URLs.
func NewMemoryStore(seed ...string) *MemoryStore {
	s := &MemoryStore{records: make(map[string]domain.SeenRecord, len(seed))}
	for _, u := range seed {
		s.records[u] = domain.SeenRecord{URL: u, Status: domain.StatusProcessed}
	}
	return s
}

// Seen reports whether the exact URL has been recorded.
func (s *MemoryStore) Seen(_ context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[url]
	return ok, nil
}

// Save upserts a processed record per URL.
func (s *MemoryStore) Save(_ context.Context, urls []string, scrapedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range urls {
		s.records[u] = domain.SeenRecord{URL: u, ScrapedAt: scrapedAt, Status: domain.StatusProcessed}
	}
	return nil
}

// Records returns a snapshot sorted by URL.
func (s *MemoryStore) Records() []domain.SeenRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SeenRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}
