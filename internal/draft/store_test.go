package draft

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, time.Hour)
}

func TestLoadMissingSessionReturnsNil(t *testing.T) {
	store := newTestStore(t)
	st, err := store.Load(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != nil {
		t.Fatalf("expected nil state for missing session, got %+v", st)
	}
}

func TestApplyPreservesSiblingSections(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Apply(ctx, "s1", PromotionAction{SelectedPromotion: "promo-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Apply(ctx, "s1", TransportAction{
		Data: TransportData{DepartureType: "collective", DepartureCity: "Warszawa", ReturnType: "own"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A later addons save must not clobber what other sections wrote.
	st, err := store.Apply(ctx, "s1", AddonsAction{SelectedAddons: []string{"a1", "a2"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.SelectedPromotion != "promo-1" {
		t.Fatalf("expected promotion promo-1 to survive, got %q", st.SelectedPromotion)
	}
	if st.Transport.DepartureCity != "Warszawa" {
		t.Fatalf("expected transport city Warszawa to survive, got %q", st.Transport.DepartureCity)
	}
	if len(st.SelectedAddons) != 2 {
		t.Fatalf("expected 2 addons, got %d", len(st.SelectedAddons))
	}

	reloaded, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.SelectedPromotion != "promo-1" || reloaded.Transport.DepartureCity != "Warszawa" {
		t.Fatalf("reloaded state lost section data: %+v", reloaded)
	}
}

func TestConcurrentAppliesSerialize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := store.Apply(ctx, "s1", AddonsAction{SelectedAddons: []string{"a1"}}); err != nil {
				t.Errorf("addons apply: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := store.Apply(ctx, "s1", PromotionAction{SelectedPromotion: "promo-1"}); err != nil {
				t.Errorf("promotion apply: %v", err)
			}
		}()
	}
	wg.Wait()

	st, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.SelectedAddons) != 1 || st.SelectedPromotion != "promo-1" {
		t.Fatalf("a racing apply dropped a section: %+v", st)
	}
}

func TestSessionLockIsStableAcrossDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	before := store.sessionLock("s1")
	if _, err := store.Apply(ctx, "s1", DietsAction{SelectedDiets: []string{"d1"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.sessionLock("s1") != before {
		t.Fatal("expected the same lock for a session id across its lifetime")
	}
}

func TestDeleteRemovesDraft(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Apply(ctx, "s1", DietsAction{SelectedDiets: []string{"d1"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != nil {
		t.Fatalf("expected nil state after delete, got %+v", st)
	}
}

func TestFlexStringsAcceptsLegacyScalar(t *testing.T) {
	var st State
	legacy := []byte(`{"selectedProtection": "Tarcza", "selectedDiets": ["wege"]}`)
	if err := json.Unmarshal(legacy, &st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.SelectedProtection) != 1 || st.SelectedProtection[0] != "Tarcza" {
		t.Fatalf("expected single protection Tarcza, got %v", st.SelectedProtection)
	}

	var st2 State
	current := []byte(`{"selectedProtection": ["Tarcza", "Pelna ochrona"]}`)
	if err := json.Unmarshal(current, &st2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st2.SelectedProtection) != 2 {
		t.Fatalf("expected 2 protections, got %v", st2.SelectedProtection)
	}

	var st3 State
	empty := []byte(`{"selectedProtection": ""}`)
	if err := json.Unmarshal(empty, &st3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st3.SelectedProtection != nil {
		t.Fatalf("expected nil protections for empty scalar, got %v", st3.SelectedProtection)
	}
}
