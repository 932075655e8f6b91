package store

import (
	"context"
	"testing"

	"github.com/erazemk/gildedrose/internal/model"
)

func TestMemorySaveAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	saved, err := m.SaveItem(ctx, model.Item{Name: "Oreo", SellIn: 10, Quality: 30, Type: model.ItemTypeNormal})
	if err != nil {
		t.Fatalf("SaveItem: %v", err)
	}
	if saved.ID != 1 {
		t.Errorf("expected first id 1, got %d", saved.ID)
	}

	got, _ := m.GetItem(ctx, saved.ID)
	if got == nil || got.Name != "Oreo" {
		t.Fatalf("expected Oreo, got %+v", got)
	}

	if missing, _ := m.GetItem(ctx, 99); missing != nil {
		t.Errorf("expected nil for missing id, got %+v", missing)
	}
}

func TestMemorySaveMissingReturnsNil(t *testing.T) {
	m := NewMemory()

	got, err := m.SaveItem(context.Background(), model.Item{ID: 5, Name: "Ghost"})
	if err != nil {
		t.Fatalf("SaveItem: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil when replacing a missing item, got %+v", got)
	}
}

func TestMemoryListReturnsCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.SaveItem(ctx, model.Item{Name: "b", Type: model.ItemTypeAged})
	m.SaveItem(ctx, model.Item{Name: "a", Type: model.ItemTypeNormal})

	list, _ := m.ListItems(ctx, "")
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Fatalf("expected two items ordered by id, got %+v", list)
	}

	list[0].Name = "mutated"
	got, _ := m.GetItem(ctx, 1)
	if got.Name != "b" {
		t.Errorf("expected stored item to be unaffected, got %q", got.Name)
	}

	aged, _ := m.ListItems(ctx, model.ItemTypeAged)
	if len(aged) != 1 {
		t.Errorf("expected 1 aged item, got %d", len(aged))
	}
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	saved, _ := m.SaveItem(ctx, model.Item{Name: "x"})

	if ok, _ := m.DeleteItem(ctx, saved.ID); !ok {
		t.Error("expected delete to report existing item")
	}
	if ok, _ := m.DeleteItem(ctx, saved.ID); ok {
		t.Error("expected second delete to report missing item")
	}
}
