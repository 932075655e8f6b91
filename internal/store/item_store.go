package store

import (
	"context"
	"database/sql"

	"github.com/erazemk/gildedrose/internal/model"
)

// Items is the SQLite-backed item store used by the inventory service.
type Items struct {
	DB *sql.DB
}

// NewItems wraps a database handle as an item store.
func NewItems(db *sql.DB) *Items {
	return &Items{DB: db}
}

// ListItems returns all items, optionally filtered by type.
func (s *Items) ListItems(ctx context.Context, typ model.ItemType) ([]model.Item, error) {
	return ListItems(ctx, s.DB, typ)
}

// GetItem returns an item by ID, or nil if it does not exist.
func (s *Items) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	return GetItem(ctx, s.DB, id)
}

// SaveItem inserts item when its ID is zero and replaces it otherwise.
// It returns nil if a replaced item no longer exists.
func (s *Items) SaveItem(ctx context.Context, item model.Item) (*model.Item, error) {
	if item.ID == 0 {
		return CreateItem(ctx, s.DB, item)
	}
	ok, err := ReplaceItem(ctx, s.DB, item)
	if err != nil || !ok {
		return nil, err
	}
	return GetItem(ctx, s.DB, item.ID)
}

// DeleteItem removes an item and reports whether it existed.
func (s *Items) DeleteItem(ctx context.Context, id int64) (bool, error) {
	return DeleteItem(ctx, s.DB, id)
}

// AdvanceItems runs advance over all items inside one transaction.
func (s *Items) AdvanceItems(ctx context.Context, advance func([]model.Item) []model.Item) ([]model.Item, error) {
	return AdvanceItems(ctx, s.DB, advance)
}
