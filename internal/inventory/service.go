// Package inventory manages the item catalogue and ages it one day at a time.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/gildedrose/internal/logging"
	"github.com/erazemk/gildedrose/internal/metrics"
	"github.com/erazemk/gildedrose/internal/model"
	"github.com/erazemk/gildedrose/internal/quality"
)

var (
	// ErrNotFound is returned when no item has the requested ID.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidItem is returned when an item fails validation.
	ErrInvalidItem = errors.New("invalid item")
)

// Store persists items. Lookups of missing items return nil without an error.
type Store interface {
	ListItems(ctx context.Context, typ model.ItemType) ([]model.Item, error)
	GetItem(ctx context.Context, id int64) (*model.Item, error)
	// SaveItem inserts item when its ID is zero and replaces it otherwise,
	// returning nil if the item to replace does not exist.
	SaveItem(ctx context.Context, item model.Item) (*model.Item, error)
	DeleteItem(ctx context.Context, id int64) (bool, error)
}

// Advancer is implemented by stores that can apply a day advance atomically.
type Advancer interface {
	AdvanceItems(ctx context.Context, advance func([]model.Item) []model.Item) ([]model.Item, error)
}

// Service is the entry point for item management.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Recorder

	// advanceMu keeps two day advances from working on the same items.
	advanceMu sync.Mutex
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics sets the recorder that tracks day advances.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// NewService constructs a Service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateQuality advances every item in the store by one day and returns the
// updated items.
func (s *Service) UpdateQuality(ctx context.Context) ([]model.Item, error) {
	s.advanceMu.Lock()
	defer s.advanceMu.Unlock()

	start := time.Now()
	items, err := s.advance(ctx)
	s.metrics.RecordQualityRun(len(items), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Item{}
	}

	s.logger.Info("inventory advanced one day",
		logging.FieldCount, len(items),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return items, nil
}

func (s *Service) advance(ctx context.Context) ([]model.Item, error) {
	if adv, ok := s.store.(Advancer); ok {
		items, err := adv.AdvanceItems(ctx, quality.AdvanceOneDay)
		if err != nil {
			return nil, fmt.Errorf("advancing items: %w", err)
		}
		return items, nil
	}

	items, err := s.store.ListItems(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("loading items: %w", err)
	}

	items = quality.AdvanceOneDay(items)

	saved := make([]model.Item, 0, len(items))
	for _, item := range items {
		stored, err := s.store.SaveItem(ctx, item)
		if err != nil {
			return nil, fmt.Errorf("saving item %d: %w", item.ID, err)
		}
		if stored == nil {
			// Deleted while we were working on it.
			continue
		}
		saved = append(saved, *stored)
	}
	return saved, nil
}

// ListItems returns all items, optionally restricted to one type.
func (s *Service) ListItems(ctx context.Context, typ model.ItemType) ([]model.Item, error) {
	if typ != "" && !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidItem, typ)
	}
	items, err := s.store.ListItems(ctx, typ)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// FindItem returns the item with the given ID.
func (s *Service) FindItem(ctx context.Context, id int64) (*model.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding item %d: %w", id, err)
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// CreateItem stores a new item. Any ID on the input is ignored.
func (s *Service) CreateItem(ctx context.Context, item model.Item) (*model.Item, error) {
	if err := validate(&item); err != nil {
		return nil, err
	}
	item.ID = 0

	created, err := s.store.SaveItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}
	return created, nil
}

// UpdateItem replaces every attribute of the item with the given ID.
func (s *Service) UpdateItem(ctx context.Context, id int64, item model.Item) (*model.Item, error) {
	if err := validate(&item); err != nil {
		return nil, err
	}

	existing, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding item %d: %w", id, err)
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	item.ID = id
	updated, err := s.store.SaveItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("updating item %d: %w", id, err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// DeleteItem removes the item with the given ID.
func (s *Service) DeleteItem(ctx context.Context, id int64) error {
	ok, err := s.store.DeleteItem(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", id, err)
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func validate(item *model.Item) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidItem)
	}
	if !item.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidItem, item.Type)
	}
	return nil
}
