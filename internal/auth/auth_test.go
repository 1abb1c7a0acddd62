package auth

import (
	"errors"
	"testing"
)

func TestGateFromPlainPassword(t *testing.T) {
	g, err := NewGate("", "rahasia")
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	if err := g.Check("rahasia"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}
	if err := g.Check("salah"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

func TestGateDefaultsPassword(t *testing.T) {
	g, err := NewGate("", "")
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	if err := g.Check(DefaultPassword); err != nil {
		t.Fatalf("default password rejected: %v", err)
	}
}

func TestGateFromHash(t *testing.T) {
	h, err := HashPassword("rahasia")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	g, err := NewGate(h, "ignored")
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	if err := g.Check("rahasia"); err != nil {
		t.Fatalf("hash not used: %v", err)
	}
	if err := g.Check("ignored"); !errors.Is(err, ErrWrongPassword) {
		t.Fatal("plain password must be ignored when a hash is set")
	}
}

func TestGateRejectsMalformedHash(t *testing.T) {
	if _, err := NewGate("not-a-bcrypt-hash", ""); err == nil {
		t.Fatal("expected error for malformed hash")
	}
}
