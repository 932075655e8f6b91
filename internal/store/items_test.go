package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/gildedrose/internal/db"
	"github.com/erazemk/gildedrose/internal/model"
	"github.com/erazemk/gildedrose/internal/quality"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, model.Item{
		ID: 42, Name: "Oreo", SellIn: 10, Quality: 30, Type: model.ItemTypeNormal,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == 42 {
		t.Error("expected ID to be assigned by the database")
	}
	if item.Name != "Oreo" || item.SellIn != 10 || item.Quality != 30 || item.Type != model.ItemTypeNormal {
		t.Errorf("unexpected item: %+v", item)
	}
	if item.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	got, err := GetItem(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got == nil || got.Name != "Oreo" {
		t.Errorf("expected to read back Oreo, got %+v", got)
	}
}

func TestGetItemMissing(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetItem(context.Background(), database, 404)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing item, got %+v", got)
	}
}

func TestListItemsByType(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, model.Item{Name: "Oreo", SellIn: 10, Quality: 30, Type: model.ItemTypeNormal})
	CreateItem(ctx, database, model.Item{Name: "Brie", SellIn: 5, Quality: 10, Type: model.ItemTypeAged})
	CreateItem(ctx, database, model.Item{Name: "Milk", SellIn: 3, Quality: 8, Type: model.ItemTypeNormal})

	all, err := ListItems(ctx, database, "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	if all[0].Name != "Oreo" || all[2].Name != "Milk" {
		t.Errorf("expected items ordered by id, got %q..%q", all[0].Name, all[2].Name)
	}

	normal, _ := ListItems(ctx, database, model.ItemTypeNormal)
	if len(normal) != 2 {
		t.Errorf("expected 2 normal items, got %d", len(normal))
	}
}

func TestReplaceItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, model.Item{Name: "Oreo", SellIn: 10, Quality: 30, Type: model.ItemTypeNormal})

	ok, err := ReplaceItem(ctx, database, model.Item{
		ID: item.ID, Name: "Ticket", SellIn: 4, Quality: 12, Type: model.ItemTypeTickets,
	})
	if err != nil || !ok {
		t.Fatalf("ReplaceItem: ok=%v err=%v", ok, err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Name != "Ticket" || got.SellIn != 4 || got.Quality != 12 || got.Type != model.ItemTypeTickets {
		t.Errorf("expected every field replaced, got %+v", got)
	}

	ok, err = ReplaceItem(ctx, database, model.Item{ID: 999, Name: "Ghost", Type: model.ItemTypeNormal})
	if err != nil || ok {
		t.Errorf("expected missing item to be reported, got ok=%v err=%v", ok, err)
	}
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, model.Item{Name: "Delete Me", Type: model.ItemTypeNormal})

	ok, err := DeleteItem(ctx, database, item.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteItem: ok=%v err=%v", ok, err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got != nil {
		t.Error("expected deleted item to be gone")
	}

	ok, _ = DeleteItem(ctx, database, item.ID)
	if ok {
		t.Error("expected second delete to report a missing item")
	}
}

func TestAdvanceItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, model.Item{Name: "Oreo", SellIn: 10, Quality: 30, Type: model.ItemTypeNormal})
	CreateItem(ctx, database, model.Item{Name: "Concert", SellIn: -1, Quality: 30, Type: model.ItemTypeTickets})
	CreateItem(ctx, database, model.Item{Name: "Sulfuras", SellIn: 0, Quality: 80, Type: model.ItemTypeLegendary})

	items, err := AdvanceItems(ctx, database, quality.AdvanceOneDay)
	if err != nil {
		t.Fatalf("AdvanceItems: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	stored, _ := ListItems(ctx, database, "")
	want := []struct{ sellIn, quality int }{{9, 29}, {-2, 0}, {0, 80}}
	for i, w := range want {
		if stored[i].SellIn != w.sellIn || stored[i].Quality != w.quality {
			t.Errorf("item %q: got (%d, %d), want (%d, %d)",
				stored[i].Name, stored[i].SellIn, stored[i].Quality, w.sellIn, w.quality)
		}
	}
}

func TestAdvanceItemsEmpty(t *testing.T) {
	database := db.NewTestDB(t)

	items, err := AdvanceItems(context.Background(), database, quality.AdvanceOneDay)
	if err != nil {
		t.Fatalf("AdvanceItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

func TestAdvanceItemsWithConcurrentWriter(t *testing.T) {
	database := db.NewTestFileDB(t)
	ctx := context.Background()

	if _, err := CreateItem(ctx, database, model.Item{Name: "Oreo", SellIn: 10, Quality: 30, Type: model.ItemTypeNormal}); err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	created := make(chan error, 1)
	items, err := AdvanceItems(ctx, database, func(items []model.Item) []model.Item {
		// Another connection writes while the advance holds its transaction.
		go func() {
			_, err := CreateItem(ctx, database, model.Item{Name: "Late Oreo", SellIn: 5, Quality: 20, Type: model.ItemTypeNormal})
			created <- err
		}()
		select {
		case err := <-created:
			created <- err
		case <-time.After(200 * time.Millisecond):
		}
		return quality.AdvanceOneDay(items)
	})
	if err != nil {
		t.Fatalf("AdvanceItems: %v", err)
	}
	if len(items) != 1 || items[0].SellIn != 9 || items[0].Quality != 29 {
		t.Errorf("unexpected advanced items: %+v", items)
	}

	if err := <-created; err != nil {
		t.Fatalf("concurrent CreateItem: %v", err)
	}

	stored, err := ListItems(ctx, database, "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stored))
	}
	if stored[1].Name != "Late Oreo" || stored[1].SellIn != 5 || stored[1].Quality != 20 {
		t.Errorf("expected the late item to be stored unadvanced, got %+v", stored[1])
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, model.Item{Name: "Photo Item", Type: model.ItemTypeAged})

	ok, err := SetItemImage(ctx, database, item.ID, []byte("fake image data"), "image/jpeg")
	if err != nil || !ok {
		t.Fatalf("SetItemImage: ok=%v err=%v", ok, err)
	}

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" || mime != "image/jpeg" {
		t.Errorf("unexpected image %q (%s)", data, mime)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.ImageMime != "image/jpeg" {
		t.Errorf("expected item to report image mime, got %q", got.ImageMime)
	}
}
