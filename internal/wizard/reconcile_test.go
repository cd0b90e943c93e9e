package wizard

import (
	"testing"

	"obozy/internal/reservation"
)

func TestReplayAdoptsItemPlacedUnderForeignID(t *testing.T) {
	ledger := reservation.NewLedger()
	foreignID := ledger.AddItem(reservation.LineItem{
		Name:  "Tarcza",
		Price: 50,
		Type:  reservation.TypeProtection,
	}, "")

	m := newMultiSelect(reservation.TypeProtection)
	m.hydrate([]string{"p1"})
	cat := map[string]catalogItem{"p1": {ID: "p1", Name: "Tarcza", Price: 50}}

	m.replay(ledger, cat)

	if got := len(ledger.Items()); got != 1 {
		t.Fatalf("expected the existing item to be adopted, got %d items", got)
	}
	if m.prev["p1"] != foreignID {
		t.Fatalf("expected p1 to track the existing item id %q, got %q", foreignID, m.prev["p1"])
	}
}

func TestSetRemovesByNameWhenTrackedIDIsGone(t *testing.T) {
	ledger := reservation.NewLedger()
	m := newMultiSelect(reservation.TypeAddon)
	cat := map[string]catalogItem{"a1": {ID: "a1", Name: "Transport bagazu", Price: 20}}

	m.set(ledger, cat, []string{"a1"})
	if got := len(ledger.Items()); got != 1 {
		t.Fatalf("expected 1 item after select, got %d", got)
	}

	// Simulate a rebuild in which the same addon landed under a different
	// ledger id than the one this section tracked.
	ledger.Clear()
	ledger.AddItem(reservation.LineItem{
		Name:  "Transport bagazu",
		Price: 20,
		Type:  reservation.TypeAddon,
	}, "")

	m.set(ledger, cat, nil)
	if got := len(ledger.Items()); got != 0 {
		t.Fatalf("expected deselect to remove the item by name, got %+v", ledger.Items())
	}
}
