package wizard

import (
	"fmt"

	"obozy/internal/reservation"
)

// catalogItem is the unified view of a multi-select catalog entry (addon,
// protection tier, diet).
type catalogItem struct {
	ID    string
	Name  string
	Price float64
}

// deterministicItemID keys a line item to its catalog entry so replay after a
// rebuild finds items it already placed.
func deterministicItemID(t reservation.ItemType, catalogID string) string {
	return fmt.Sprintf("%s-%s", t, catalogID)
}

// multiSelect keeps one multi-select section's three places in sync: the
// selected catalog-ID set, the session ledger, and (via the caller) the
// persisted draft. It diffs against its own previous-ID map, never against the
// draft, so a stale blob cannot resurrect removed items.
type multiSelect struct {
	itemType reservation.ItemType
	selected []string
	// prev maps a selected catalog ID to the ledger item id it placed.
	prev map[string]string
}

func newMultiSelect(t reservation.ItemType) *multiSelect {
	return &multiSelect{itemType: t, prev: make(map[string]string)}
}

// hydrate seeds the selected set from the persisted draft. No ledger work
// happens here; prices are unknown until the catalog loads.
func (m *multiSelect) hydrate(ids []string) {
	m.selected = append([]string(nil), ids...)
}

// replay places line items for previously-selected IDs that are missing from
// the ledger. It is idempotent: existence is checked by deterministic id, then
// by (type, name), before anything is added, so replaying twice after a
// remount never duplicates items. IDs absent from the catalog are skipped.
func (m *multiSelect) replay(ledger *reservation.Ledger, cat map[string]catalogItem) {
	for _, id := range m.selected {
		if _, tracked := m.prev[id]; tracked {
			continue
		}
		ci, inCatalog := cat[id]
		itemID := deterministicItemID(m.itemType, id)
		if _, exists := ledger.ItemByID(itemID); exists {
			m.prev[id] = itemID
			continue
		}
		if !inCatalog {
			continue
		}
		if existing, found := ledger.FindByTypeAndName(m.itemType, ci.Name); found {
			m.prev[id] = existing.ID
			continue
		}
		ledger.AddItem(reservation.LineItem{
			Name:  ci.Name,
			Price: ci.Price,
			Type:  m.itemType,
		}, itemID)
		m.prev[id] = itemID
	}
}

// set applies a new selection: removed = prev − current drops line items
// (falling back to a (type, name) lookup when the tracked id is gone), added =
// current − prev inserts them, guarding against double invocation by checking
// the deterministic id first.
func (m *multiSelect) set(ledger *reservation.Ledger, cat map[string]catalogItem, ids []string) {
	current := make(map[string]bool, len(ids))
	for _, id := range ids {
		current[id] = true
	}

	for id, itemID := range m.prev {
		if current[id] {
			continue
		}
		if !ledger.RemoveItem(itemID) {
			if ci, inCatalog := cat[id]; inCatalog {
				if existing, found := ledger.FindByTypeAndName(m.itemType, ci.Name); found {
					ledger.RemoveItem(existing.ID)
				}
			}
		}
		delete(m.prev, id)
	}

	for _, id := range ids {
		if _, tracked := m.prev[id]; tracked {
			continue
		}
		ci, inCatalog := cat[id]
		if !inCatalog {
			continue
		}
		itemID := deterministicItemID(m.itemType, id)
		if _, exists := ledger.ItemByID(itemID); !exists {
			ledger.AddItem(reservation.LineItem{
				Name:  ci.Name,
				Price: ci.Price,
				Type:  m.itemType,
			}, itemID)
		}
		m.prev[id] = itemID
	}

	m.selected = append([]string(nil), ids...)
}
