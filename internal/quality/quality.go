// Package quality advances items by one simulated day.
//
// Every attempted change to an item's quality is applied only when the result
// stays within [model.MinQuality, model.MaxQuality]. Otherwise the change is
// dropped and the previous value is kept, even when that value is itself out
// of range. Tickets past their sell date are the one exception: their quality
// is set to zero outright.
//
// SellIn is decremented with ordinary int arithmetic, so math.MinInt wraps to
// math.MaxInt and the item is treated as far from its sell date afterwards.
package quality

import "github.com/erazemk/gildedrose/internal/model"

const (
	// ticketsDoubleAt is the sellIn at or below which tickets gain a second point.
	ticketsDoubleAt = 10
	// ticketsTripleAt is the sellIn at or below which tickets gain a third point.
	ticketsTripleAt = 5
)

// AdvanceOneDay ages every item by one day and returns the same slice.
// Elements are updated in place; order and length are preserved.
func AdvanceOneDay(items []model.Item) []model.Item {
	for i := range items {
		items[i] = Advance(items[i])
	}
	return items
}

// Advance returns item as it will be one day later.
func Advance(item model.Item) model.Item {
	pastDue := item.SellIn < 1

	switch item.Type {
	case model.ItemTypeNormal:
		return advanceNormal(item, pastDue)
	case model.ItemTypeAged:
		return advanceAged(item, pastDue)
	case model.ItemTypeTickets:
		return advanceTickets(item, pastDue)
	case model.ItemTypeLegendary:
		return item
	default:
		// Unknown types are left alone, like legendary items.
		return item
	}
}

func advanceNormal(item model.Item, pastDue bool) model.Item {
	item.Quality = adjust(item.Quality, -rate(pastDue))
	item.SellIn--
	return item
}

func advanceAged(item model.Item, pastDue bool) model.Item {
	item.Quality = adjust(item.Quality, rate(pastDue))
	item.SellIn--
	return item
}

func advanceTickets(item model.Item, pastDue bool) model.Item {
	item.Quality = adjust(item.Quality, 1)
	if item.SellIn <= ticketsDoubleAt {
		item.Quality = adjust(item.Quality, 1)
	}
	if item.SellIn <= ticketsTripleAt {
		item.Quality = adjust(item.Quality, 1)
	}
	if pastDue {
		item.Quality = 0
	}
	item.SellIn--
	return item
}

// rate is how many quality points normal and aged items move per day.
func rate(pastDue bool) int {
	if pastDue {
		return 2
	}
	return 1
}

// adjust returns quality+delta if that is in range, and quality otherwise.
func adjust(quality, delta int) int {
	next := quality + delta
	if next < model.MinQuality || next > model.MaxQuality {
		return quality
	}
	return next
}
