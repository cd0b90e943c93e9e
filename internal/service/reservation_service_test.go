package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestGenerateReservationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateReservationCode()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("expected 8 characters, got %q", code)
		}
		for _, c := range code {
			if (c < '0' || c > '9') && (c < 'A' || c > 'F') {
				t.Fatalf("expected uppercase hex, got %q", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected varying codes, got %d distinct out of 100", len(seen))
	}
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &pq.Error{Code: "23505"}
	if !isUniqueViolation(dup) {
		t.Fatal("expected a 23505 pq error to count as a unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("creating reservation: %w", dup)) {
		t.Fatal("expected a wrapped 23505 pq error to count as a unique violation")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatal("a foreign key violation is not a duplicate code")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Fatal("a plain error is not a duplicate code")
	}
}
