package wizard

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"obozy/internal/catalog"
	"obozy/internal/draft"
	"obozy/internal/reservation"
)

type fakeSource struct {
	addons      []catalog.Addon
	protections []catalog.Protection
	promotions  []catalog.Promotion
	diets       []catalog.Diet
	cities      []catalog.TransportCity
}

func (f *fakeSource) Addons(ctx context.Context) ([]catalog.Addon, error) { return f.addons, nil }
func (f *fakeSource) Protections(ctx context.Context) ([]catalog.Protection, error) {
	return f.protections, nil
}
func (f *fakeSource) Promotions(ctx context.Context) ([]catalog.Promotion, error) {
	return f.promotions, nil
}
func (f *fakeSource) Diets(ctx context.Context, campID, propertyID string) ([]catalog.Diet, error) {
	return f.diets, nil
}
func (f *fakeSource) TransportCities(ctx context.Context, campID, propertyID string) ([]catalog.TransportCity, error) {
	return f.cities, nil
}
func (f *fakeSource) Documents(ctx context.Context) ([]catalog.Document, error) { return nil, nil }

func testSource() *fakeSource {
	return &fakeSource{
		addons: []catalog.Addon{
			{ID: "a1", Name: "Transport bagazu", Price: 20},
			{ID: "a2", Name: "Ubezpieczenie sprzetu", Price: 35},
		},
		protections: []catalog.Protection{
			{ID: "p1", Name: "Tarcza", Price: 50},
		},
		promotions: []catalog.Promotion{
			{ID: "promo1", Name: "Wczesna rezerwacja", Price: -100},
			{ID: "promo2", Name: "Rodzenstwo", Price: -50},
		},
		diets: []catalog.Diet{
			{ID: "d1", Name: "Wegetarianska", Price: 15},
		},
		cities: []catalog.TransportCity{
			{Name: "Warszawa", Price: 40, Active: true},
			{Name: "Krakow", Price: 65, Active: true},
			{Name: "Lodz", Price: 30, Active: false},
		},
	}
}

func testStore(t *testing.T) draft.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return draft.NewRedisStore(client, time.Hour)
}

func countByType(items []reservation.LineItem, typ reservation.ItemType) int {
	n := 0
	for _, it := range items {
		if it.Type == typ {
			n++
		}
	}
	return n
}

func TestHydratesLegacyDraftWithProtectionNames(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := draft.NewRedisStore(client, time.Hour)

	// Older drafts carried only display names for the protection section and a
	// scalar instead of an array. Rebuilding from one must still price it.
	legacy := `{"selectedProtection":"Tarcza","selectedAddons":["a1"]}`
	if err := mr.Set("wizard:draft:old", legacy); err != nil {
		t.Fatalf("seeding draft: %v", err)
	}

	s, err := NewSession(ctx, "old", store, testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := s.Items()
	if countByType(items, reservation.TypeProtection) != 1 {
		t.Fatalf("expected protection replayed from its name, got %+v", items)
	}
	if countByType(items, reservation.TypeAddon) != 1 {
		t.Fatalf("expected addon a1 replayed, got %+v", items)
	}
	if got := s.Total(); got != 70 {
		t.Fatalf("expected total 70, got %v", got)
	}

	// The selection must behave like an ID-based one from here on.
	s.SetProtections(ctx, nil)
	if countByType(s.Items(), reservation.TypeProtection) != 0 {
		t.Fatalf("expected protection removable after hydration, got %+v", s.Items())
	}
}

func TestSetAddonsDiffsAgainstPreviousSelection(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, "s1", testStore(t), testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.SetAddons(ctx, []string{"a1"})
	s.SetAddons(ctx, []string{"a1", "a2"})
	s.SetAddons(ctx, []string{"a2"})

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 addon item, got %+v", items)
	}
	if items[0].Name != "Ubezpieczenie sprzetu" || items[0].Price != 35 {
		t.Fatalf("expected only a2 to remain, got %+v", items[0])
	}
}

func TestRebuildReplaysSelectionsOnce(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	src := testSource()

	s, err := NewSession(ctx, "s1", store, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.SetAddons(ctx, []string{"a1", "a2"})
	s.SetProtections(ctx, []string{"p1"})

	// A second mount from the same draft must not duplicate line items.
	rebuilt, err := NewSession(ctx, "s1", store, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := rebuilt.Items()
	if got := countByType(items, reservation.TypeAddon); got != 2 {
		t.Fatalf("expected 2 addon items after rebuild, got %d: %+v", got, items)
	}
	if got := countByType(items, reservation.TypeProtection); got != 1 {
		t.Fatalf("expected 1 protection item after rebuild, got %d: %+v", got, items)
	}
	if rebuilt.Total() != s.Total() {
		t.Fatalf("expected totals to match: %v vs %v", rebuilt.Total(), s.Total())
	}
}

func TestTransportBillsPricierLeg(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, "s1", testStore(t), testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	needsConfirm, err := s.SetTransport(ctx, draft.TransportData{
		DepartureType: TransportCollective, DepartureCity: "Warszawa",
		ReturnType: TransportCollective, ReturnCity: "Krakow",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !needsConfirm {
		t.Fatal("expected differing collective cities to require confirmation")
	}

	items := s.Items()
	if len(items) != 1 {
		t.Fatalf("expected a single transport item, got %+v", items)
	}
	if items[0].Price != 65 {
		t.Fatalf("expected the pricier leg (65) to be billed, got %v", items[0].Price)
	}
	if items[0].Name != "Transport zbiorowy (Krakow)" {
		t.Fatalf("expected the pricier leg's city in the name, got %q", items[0].Name)
	}

	// Confirming latches the modal for this selection.
	s.ConfirmTransportCities(ctx)
	needsConfirm, err = s.SetTransport(ctx, draft.TransportData{
		DepartureType: TransportCollective, DepartureCity: "Warszawa",
		ReturnType: TransportCollective, ReturnCity: "Krakow",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if needsConfirm {
		t.Fatal("expected confirmed selection not to re-raise the modal")
	}

	// Changing the selection resets the latch.
	needsConfirm, err = s.SetTransport(ctx, draft.TransportData{
		DepartureType: TransportCollective, DepartureCity: "Krakow",
		ReturnType: TransportCollective, ReturnCity: "Warszawa",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !needsConfirm {
		t.Fatal("expected a changed selection to require confirmation again")
	}
}

func TestTransportOwnBothLegsHasNoItem(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, "s1", testStore(t), testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	needsConfirm, err := s.SetTransport(ctx, draft.TransportData{
		DepartureType: TransportOwn, ReturnType: TransportOwn,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if needsConfirm {
		t.Fatal("own transport must not require confirmation")
	}
	if len(s.Items()) != 0 {
		t.Fatalf("expected no transport item, got %+v", s.Items())
	}
}

func TestSetPromotionSwapsSingleItem(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, "s1", testStore(t), testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := s.SetPromotion(ctx, "promo2", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetPromotion(ctx, "promo1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items := s.Items()
	if got := countByType(items, reservation.TypePromotion); got != 1 {
		t.Fatalf("expected a single promotion item, got %d: %+v", got, items)
	}
	if s.Total() != -100 {
		t.Fatalf("expected total -100, got %v", s.Total())
	}

	if err := s.SetPromotion(ctx, "ghost", nil); err == nil {
		t.Fatal("expected unknown promotion to error")
	}
	if err := s.SetPromotion(ctx, "", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := countByType(s.Items(), reservation.TypePromotion); got != 0 {
		t.Fatalf("expected promotion cleared, got %d items", got)
	}
}

func TestValidateReportsFailingSection(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, "s1", testStore(t), testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, failed := s.Validate()
	if ok || failed != "transport" {
		t.Fatalf("expected transport to fail first, got ok=%v failed=%q", ok, failed)
	}

	s.SetTransport(ctx, draft.TransportData{DepartureType: TransportOwn, ReturnType: TransportOwn})
	ok, failed = s.Validate()
	if ok || failed != "source" {
		t.Fatalf("expected source to fail next, got ok=%v failed=%q", ok, failed)
	}

	s.SetSource(ctx, SourceOther, "")
	if ok, _ := s.Validate(); ok {
		t.Fatal("expected source 'inne' without text to fail")
	}
	s.SetSource(ctx, SourceOther, "znajomi")
	if ok, failed := s.Validate(); !ok {
		t.Fatalf("expected validation to pass, failed=%q", failed)
	}
}

func TestManagerRebuildsSessionWithSameTotal(t *testing.T) {
	ctx := context.Background()
	store := testStore(t)
	src := testSource()

	m := NewManager(store, src)
	session, err := m.Create(ctx, "camp-1", "prop-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	session.SetAddons(ctx, []string{"a1"})
	session.SetProtections(ctx, []string{"p1"})
	if err := session.SetPromotion(ctx, "promo1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Total() != -30 {
		t.Fatalf("expected total -30, got %v", session.Total())
	}

	// A fresh manager simulates a process restart; the session is rebuilt
	// from the persisted draft.
	rebuilt, err := NewManager(store, src).Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rebuilt.Total() != -30 {
		t.Fatalf("expected rebuilt total -30, got %v", rebuilt.Total())
	}
	if len(rebuilt.Items()) != 3 {
		t.Fatalf("expected 3 items after rebuild, got %+v", rebuilt.Items())
	}
	if rebuilt.CampID != "camp-1" || rebuilt.PropertyID != "prop-1" {
		t.Fatalf("expected camp binding to survive rebuild, got %q/%q", rebuilt.CampID, rebuilt.PropertyID)
	}
}

func TestManagerGetUnknownSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(testStore(t), testSource())
	if _, err := m.Get(ctx, "nope"); err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestInactiveCityPricesAsZero(t *testing.T) {
	ctx := context.Background()
	s, err := NewSession(ctx, "s1", testStore(t), testSource())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Lodz is inactive so it is absent from the loaded catalog.
	if _, err := s.SetTransport(ctx, draft.TransportData{
		DepartureType: TransportCollective, DepartureCity: "Lodz",
		ReturnType: TransportOwn,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := s.Items()
	if len(items) != 1 || items[0].Price != 0 {
		t.Fatalf("expected unpriced transport item for inactive city, got %+v", items)
	}
}
