package media

import (
	"context"
	"sync"
)

// MemoryStore keeps the catalog in process memory. It is the fallback when no
// Redis URL is configured; the instance is constructed once at startup and
// handed to the handlers.
type MemoryStore struct {
	mu    sync.Mutex
	items []*Item
}

// NewMemoryStore returns an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add prepends the item so the catalog stays newest-first.
func (s *MemoryStore) Add(ctx context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copy := *item
	s.items = append([]*Item{&copy}, s.items...)
	return nil
}

// List filters the full catalog, then paginates.
func (s *MemoryStore) List(ctx context.Context, q Query) ([]*Item, string, error) {
	s.mu.Lock()
	snapshot := make([]*Item, len(s.items))
	for i, it := range s.items {
		copy := *it
		snapshot[i] = &copy
	}
	s.mu.Unlock()

	page, next := paginate(filterItems(snapshot, q), q.Limit, q.Cursor)
	return page, next, nil
}
