package password

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("Secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if err := h.Compare(hash, "Secret1"); err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if err := h.Compare(hash, "secret1"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}

func TestNewHasherDefaultsOutOfRangeCost(t *testing.T) {
	if got := NewHasher(0).cost; got != DefaultCost {
		t.Fatalf("cost = %d", got)
	}
}
