package wizard

import "testing"

func TestValidateAllMissingSlotIsValid(t *testing.T) {
	r := NewValidatorRegistry()
	ok, failed := r.ValidateAll()
	if !ok || failed != "" {
		t.Fatalf("expected empty registry to validate, got ok=%v failed=%q", ok, failed)
	}
}

func TestValidateAllShortCircuitsInRegistrationOrder(t *testing.T) {
	r := NewValidatorRegistry()
	var ran []string
	r.Register("transport", func() bool {
		ran = append(ran, "transport")
		return false
	})
	r.Register("source", func() bool {
		ran = append(ran, "source")
		return false
	})

	ok, failed := r.ValidateAll()
	if ok {
		t.Fatal("expected validation to fail")
	}
	if failed != "transport" {
		t.Fatalf("expected first-registered section to fail first, got %q", failed)
	}
	if len(ran) != 1 {
		t.Fatalf("expected short-circuit after first failure, ran %v", ran)
	}
}

func TestUnregisterMakesSlotValidAgain(t *testing.T) {
	r := NewValidatorRegistry()
	unregister := r.Register("transport", func() bool { return false })

	if ok, _ := r.ValidateAll(); ok {
		t.Fatal("expected registered failing validator to fail")
	}
	unregister()
	if ok, failed := r.ValidateAll(); !ok {
		t.Fatalf("expected unregistered slot to count as valid, failed=%q", failed)
	}
}

func TestRegisterReplacesExistingValidator(t *testing.T) {
	r := NewValidatorRegistry()
	r.Register("source", func() bool { return false })
	r.Register("source", func() bool { return true })

	if ok, _ := r.ValidateAll(); !ok {
		t.Fatal("expected replacement validator to win")
	}
}
