package quality

import (
	"math"
	"testing"

	"github.com/erazemk/gildedrose/internal/model"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name        string
		typ         model.ItemType
		sellIn      int
		quality     int
		wantSellIn  int
		wantQuality int
	}{
		// Normal items lose one point a day, two once past due.
		{"normal", model.ItemTypeNormal, 10, 30, 9, 29},
		{"normal past due", model.ItemTypeNormal, -1, 30, -2, 28},
		{"normal on sell date", model.ItemTypeNormal, 0, 30, -1, 28},
		{"normal last day before due", model.ItemTypeNormal, 1, 30, 0, 29},
		{"normal at zero", model.ItemTypeNormal, 5, 0, 4, 0},
		{"normal past due with one left is rejected", model.ItemTypeNormal, 0, 1, -1, 1},
		{"normal past due with two left", model.ItemTypeNormal, 0, 2, -1, 0},
		{"normal below range stays", model.ItemTypeNormal, 10, -1, 9, -1},
		{"normal above range moves into range", model.ItemTypeNormal, 10, 51, 9, 50},
		{"normal far above range stays", model.ItemTypeNormal, 10, 80, 9, 80},

		// Aged items gain instead.
		{"aged", model.ItemTypeAged, 10, 30, 9, 31},
		{"aged past due", model.ItemTypeAged, -3, 30, -4, 32},
		{"aged at max", model.ItemTypeAged, 10, 50, 9, 50},
		{"aged past due near max is rejected", model.ItemTypeAged, 0, 49, -1, 49},
		{"aged reaches max", model.ItemTypeAged, 0, 48, -1, 50},
		{"aged below range moves into range", model.ItemTypeAged, 3, -1, 2, 0},
		{"aged far below range stays", model.ItemTypeAged, 3, -5, 2, -5},

		// Tickets gain more as the event approaches and drop to zero after it.
		{"tickets far out", model.ItemTypeTickets, 15, 30, 14, 31},
		{"tickets at eleven days", model.ItemTypeTickets, 11, 30, 10, 31},
		{"tickets at ten days", model.ItemTypeTickets, 10, 30, 9, 32},
		{"tickets at six days", model.ItemTypeTickets, 6, 30, 5, 32},
		{"tickets at five days", model.ItemTypeTickets, 5, 30, 4, 33},
		{"tickets two days out", model.ItemTypeTickets, 2, 30, 1, 33},
		{"tickets last day", model.ItemTypeTickets, 1, 30, 0, 33},
		{"tickets on event day", model.ItemTypeTickets, 0, 30, -1, 0},
		{"tickets past due", model.ItemTypeTickets, -1, 30, -2, 0},
		{"tickets past due out of range", model.ItemTypeTickets, -1, 80, -2, 0},
		{"tickets capped per increment", model.ItemTypeTickets, 3, 48, 2, 50},
		{"tickets one below max", model.ItemTypeTickets, 3, 49, 2, 50},
		{"tickets at max", model.ItemTypeTickets, 3, 50, 2, 50},
		{"tickets above range stay", model.ItemTypeTickets, 3, 60, 2, 60},
		{"tickets just below range climb in", model.ItemTypeTickets, 3, -1, 2, 2},
		{"tickets far below range stay", model.ItemTypeTickets, 3, -2, 2, -2},

		// Legendary items never change.
		{"legendary", model.ItemTypeLegendary, 0, 80, 0, 80},
		{"legendary negative sellIn", model.ItemTypeLegendary, -5, 80, -5, 80},
		{"legendary in range", model.ItemTypeLegendary, 10, 30, 10, 30},

		// Unknown types behave like legendary ones.
		{"unknown type", model.ItemType("CONJURED"), 3, 20, 3, 20},
		{"empty type", model.ItemType(""), 3, 20, 3, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := model.Item{ID: 7, Name: tt.name, SellIn: tt.sellIn, Quality: tt.quality, Type: tt.typ}
			got := Advance(in)

			if got.SellIn != tt.wantSellIn {
				t.Errorf("sellIn = %d, want %d", got.SellIn, tt.wantSellIn)
			}
			if got.Quality != tt.wantQuality {
				t.Errorf("quality = %d, want %d", got.Quality, tt.wantQuality)
			}
			if got.ID != in.ID || got.Name != in.Name || got.Type != in.Type {
				t.Errorf("identity fields changed: got %+v from %+v", got, in)
			}
			if in.SellIn != tt.sellIn || in.Quality != tt.quality {
				t.Errorf("Advance mutated its argument: %+v", in)
			}
		})
	}
}

func TestAdvanceOneDayKeepsOrderAndUpdatesInPlace(t *testing.T) {
	items := []model.Item{
		{ID: 1, Name: "Oreo", SellIn: 10, Quality: 30, Type: model.ItemTypeNormal},
		{ID: 2, Name: "Brie", SellIn: 2, Quality: 0, Type: model.ItemTypeAged},
		{ID: 3, Name: "Concert", SellIn: 2, Quality: 30, Type: model.ItemTypeTickets},
		{ID: 4, Name: "Sulfuras", SellIn: 0, Quality: 80, Type: model.ItemTypeLegendary},
	}

	got := AdvanceOneDay(items)

	if len(got) != len(items) {
		t.Fatalf("expected %d items, got %d", len(items), len(got))
	}
	for i, item := range got {
		if item.ID != int64(i+1) {
			t.Errorf("item %d: expected id %d, got %d", i, i+1, item.ID)
		}
	}
	if &got[0] != &items[0] {
		t.Error("expected result to share the input's backing array")
	}

	want := []struct{ sellIn, quality int }{{9, 29}, {1, 1}, {1, 33}, {0, 80}}
	for i, w := range want {
		if items[i].SellIn != w.sellIn || items[i].Quality != w.quality {
			t.Errorf("item %d: got (%d, %d), want (%d, %d)",
				i, items[i].SellIn, items[i].Quality, w.sellIn, w.quality)
		}
	}
}

func TestAdvanceOneDayEmpty(t *testing.T) {
	if got := AdvanceOneDay(nil); len(got) != 0 {
		t.Errorf("expected empty result for nil input, got %d items", len(got))
	}
	if got := AdvanceOneDay([]model.Item{}); len(got) != 0 {
		t.Errorf("expected empty result for empty input, got %d items", len(got))
	}
}

func TestAdvanceOneDayIsNotIdempotent(t *testing.T) {
	items := []model.Item{{SellIn: 3, Quality: 10, Type: model.ItemTypeNormal}}

	AdvanceOneDay(items)
	AdvanceOneDay(items)

	if items[0].SellIn != 1 || items[0].Quality != 8 {
		t.Errorf("expected two days of aging, got sellIn=%d quality=%d", items[0].SellIn, items[0].Quality)
	}
}

func TestSellInDecreasesForAgingTypes(t *testing.T) {
	for _, typ := range []model.ItemType{model.ItemTypeNormal, model.ItemTypeAged, model.ItemTypeTickets} {
		for _, sellIn := range []int{-100, -1, 0, 1, 5, 6, 10, 11, 100} {
			for _, q := range []int{-10, 0, 25, 50, 90} {
				got := Advance(model.Item{SellIn: sellIn, Quality: q, Type: typ})
				if got.SellIn != sellIn-1 {
					t.Errorf("%s (sellIn=%d, quality=%d): sellIn = %d, want %d", typ, sellIn, q, got.SellIn, sellIn-1)
				}
			}
		}
	}
}

func TestSellInWrapsAtMinInt(t *testing.T) {
	normal := Advance(model.Item{SellIn: math.MinInt, Quality: 30, Type: model.ItemTypeNormal})
	if normal.SellIn != math.MaxInt || normal.Quality != 28 {
		t.Errorf("normal: got (%d, %d), want (%d, 28)", normal.SellIn, normal.Quality, math.MaxInt)
	}

	tickets := Advance(model.Item{SellIn: math.MinInt, Quality: 30, Type: model.ItemTypeTickets})
	if tickets.SellIn != math.MaxInt || tickets.Quality != 0 {
		t.Errorf("tickets: got (%d, %d), want (%d, 0)", tickets.SellIn, tickets.Quality, math.MaxInt)
	}

	// After wrapping the tickets are far from their concert again.
	tickets = Advance(tickets)
	if tickets.SellIn != math.MaxInt-1 || tickets.Quality != 1 {
		t.Errorf("tickets next day: got (%d, %d), want (%d, 1)", tickets.SellIn, tickets.Quality, math.MaxInt-1)
	}
}

func TestNormalQualityNeverSaturates(t *testing.T) {
	for sellIn := -3; sellIn <= 3; sellIn++ {
		for q := -3; q <= 53; q++ {
			got := Advance(model.Item{SellIn: sellIn, Quality: q, Type: model.ItemTypeNormal})

			delta := 1
			if sellIn < 1 {
				delta = 2
			}
			want := q - delta
			if want < model.MinQuality || want > model.MaxQuality {
				want = q
			}
			if got.Quality != want {
				t.Errorf("normal (sellIn=%d, quality=%d): quality = %d, want %d", sellIn, q, got.Quality, want)
			}
		}
	}
}
