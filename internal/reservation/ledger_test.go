package reservation

import "testing"

func TestTotalIsPlainSignedSum(t *testing.T) {
	l := NewLedger()
	l.AddItem(LineItem{Name: "Transport bagazu", Price: 20, Type: TypeAddon}, "")
	l.AddItem(LineItem{Name: "Tarcza", Price: 50, Type: TypeProtection}, "")
	l.AddItem(LineItem{Name: "Wczesna rezerwacja", Price: -100, Type: TypePromotion}, "")

	if got := l.Total(); got != -30 {
		t.Fatalf("expected total -30, got %v", got)
	}
}

func TestAddItemDerivesPerTypeIDs(t *testing.T) {
	l := NewLedger()
	id1 := l.AddItem(LineItem{Name: "a", Type: TypeAddon}, "")
	id2 := l.AddItem(LineItem{Name: "b", Type: TypeAddon}, "")
	id3 := l.AddItem(LineItem{Name: "p", Type: TypeProtection}, "")

	if id1 != "addon-1" || id2 != "addon-2" {
		t.Fatalf("expected addon-1/addon-2, got %q/%q", id1, id2)
	}
	if id3 != "protection-1" {
		t.Fatalf("expected protection-1, got %q", id3)
	}

	explicit := l.AddItem(LineItem{Name: "c", Type: TypeAddon}, "addon-abc")
	if explicit != "addon-abc" {
		t.Fatalf("expected explicit id to win, got %q", explicit)
	}
}

func TestRemoveItemAbsentIsNoOp(t *testing.T) {
	l := NewLedger()
	id := l.AddItem(LineItem{Name: "a", Price: 10, Type: TypeAddon}, "")

	if l.RemoveItem("missing") {
		t.Fatal("expected removing absent id to report false")
	}
	if got := l.Total(); got != 10 {
		t.Fatalf("expected total unchanged at 10, got %v", got)
	}
	if !l.RemoveItem(id) {
		t.Fatal("expected removing existing id to report true")
	}
	if got := l.Total(); got != 0 {
		t.Fatalf("expected empty total 0, got %v", got)
	}
}

func TestRemoveItemsByType(t *testing.T) {
	l := NewLedger()
	l.AddItem(LineItem{Name: "a", Price: 10, Type: TypeAddon}, "")
	l.AddItem(LineItem{Name: "t1", Price: 40, Type: TypeTransport}, "")
	l.AddItem(LineItem{Name: "t2", Price: 65, Type: TypeTransport}, "")

	if removed := l.RemoveItemsByType(TypeTransport); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if removed := l.RemoveItemsByType(TypeTransport); removed != 0 {
		t.Fatalf("expected 0 removed on second pass, got %d", removed)
	}

	items := l.Items()
	if len(items) != 1 || items[0].Type != TypeAddon {
		t.Fatalf("expected only the addon to remain, got %+v", items)
	}
}

func TestFindByTypeAndName(t *testing.T) {
	l := NewLedger()
	l.AddItem(LineItem{Name: "Tarcza", Price: 50, Type: TypeProtection}, "")

	if _, ok := l.FindByTypeAndName(TypeProtection, "Tarcza"); !ok {
		t.Fatal("expected to find protection by type and name")
	}
	if _, ok := l.FindByTypeAndName(TypeAddon, "Tarcza"); ok {
		t.Fatal("expected type mismatch to miss")
	}
}
