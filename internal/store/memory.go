package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/erazemk/gildedrose/internal/model"
)

// Memory keeps items in a map. It is safe for concurrent use.
type Memory struct {
	mu     sync.RWMutex
	items  map[int64]model.Item
	nextID int64
	now    func() time.Time
}

// NewMemory constructs an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		items: make(map[int64]model.Item),
		now:   time.Now,
	}
}

// ListItems returns copies of the stored items ordered by ID.
func (m *Memory) ListItems(_ context.Context, typ model.ItemType) ([]model.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.Item, 0, len(m.items))
	for _, item := range m.items {
		if typ != "" && item.Type != typ {
			continue
		}
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// GetItem returns a copy of an item, or nil if it does not exist.
func (m *Memory) GetItem(_ context.Context, id int64) (*model.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

// SaveItem inserts item when its ID is zero and replaces it otherwise.
// It returns nil if a replaced item does not exist.
func (m *Memory) SaveItem(_ context.Context, item model.Item) (*model.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	if item.ID == 0 {
		m.nextID++
		item.ID = m.nextID
		item.CreatedAt = now
	} else {
		existing, ok := m.items[item.ID]
		if !ok {
			return nil, nil
		}
		item.CreatedAt = existing.CreatedAt
		item.ImageMime = existing.ImageMime
	}
	item.UpdatedAt = now
	m.items[item.ID] = item
	return &item, nil
}

// DeleteItem removes an item and reports whether it existed.
func (m *Memory) DeleteItem(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)
	return true, nil
}
