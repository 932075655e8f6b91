package model

import (
	"fmt"
	"strings"
	"time"
)

// ItemType is the category an item belongs to. It decides how the item ages.
type ItemType string

// Item types.
const (
	ItemTypeNormal    ItemType = "NORMAL"
	ItemTypeAged      ItemType = "AGED"
	ItemTypeTickets   ItemType = "TICKETS"
	ItemTypeLegendary ItemType = "LEGENDARY"
)

// Quality bounds. Changes that would leave this band are discarded.
const (
	MinQuality = 0
	MaxQuality = 50
)

// ItemTypes lists every known item type in display order.
var ItemTypes = []ItemType{ItemTypeNormal, ItemTypeAged, ItemTypeTickets, ItemTypeLegendary}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeNormal, ItemTypeAged, ItemTypeTickets, ItemTypeLegendary:
		return true
	}
	return false
}

// ParseItemType parses an item type case-insensitively.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown item type %q", s)
	}
	return t, nil
}

// Item is a sellable item tracked by the inventory.
type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SellIn    int       `json:"sellIn"`
	Quality   int       `json:"quality"`
	Type      ItemType  `json:"type"`
	ImageMime string    `json:"image_mime,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
