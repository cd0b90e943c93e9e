package reservation

import (
	"fmt"
	"sync"
)

type ItemType string

const (
	TypeAddon      ItemType = "addon"
	TypeProtection ItemType = "protection"
	TypePromotion  ItemType = "promotion"
	TypeTransport  ItemType = "transport"
	TypeDiet       ItemType = "diet"
)

// LineItem is one priced entry contributing to the reservation total.
// Promotions carry negative prices.
type LineItem struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Type  ItemType `json:"type"`
}

// Ledger is the in-memory list of priced line items for one wizard session.
// It is the single source of truth for the running total. The ledger does not
// dedupe on add: sections check existence first (ItemByID / FindByTypeAndName)
// and keep their own items unique.
type Ledger struct {
	mu    sync.Mutex
	items []LineItem
	seq   map[ItemType]int
}

func NewLedger() *Ledger {
	return &Ledger{seq: make(map[ItemType]int)}
}

// AddItem appends a line item. When explicitID is empty an id is derived from
// the item type and a per-type counter. The id actually used is returned.
func (l *Ledger) AddItem(item LineItem, explicitID string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if explicitID != "" {
		item.ID = explicitID
	} else {
		l.seq[item.Type]++
		item.ID = fmt.Sprintf("%s-%d", item.Type, l.seq[item.Type])
	}
	l.items = append(l.items, item)
	return item.ID
}

// RemoveItem deletes the item with the given id. Removing an absent id is a
// no-op and reports false.
func (l *Ledger) RemoveItem(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, it := range l.items {
		if it.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveItemsByType bulk-removes every item of the given type. Used by
// single-select sections (promotion, transport) that keep at most one item.
func (l *Ledger) RemoveItemsByType(t ItemType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.items[:0]
	removed := 0
	for _, it := range l.items {
		if it.Type == t {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	l.items = kept
	return removed
}

func (l *Ledger) ItemByID(id string) (LineItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.ID == id {
			return it, true
		}
	}
	return LineItem{}, false
}

// FindByTypeAndName is the fallback identity lookup for items whose tracked id
// mapping was lost (e.g. after a rebuild from the persisted draft).
func (l *Ledger) FindByTypeAndName(t ItemType, name string) (LineItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, it := range l.items {
		if it.Type == t && it.Name == name {
			return it, true
		}
	}
	return LineItem{}, false
}

// Items returns a snapshot of the current line items.
func (l *Ledger) Items() []LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// Total is the plain signed sum of all item prices. No floor at zero: a
// promotion larger than the rest of the basket yields a negative total and
// sections decide what to do about it.
func (l *Ledger) Total() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	var sum float64
	for _, it := range l.items {
		sum += it.Price
	}
	return sum
}

func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
	l.seq = make(map[ItemType]int)
}
