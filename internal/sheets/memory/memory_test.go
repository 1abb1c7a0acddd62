package memory

import (
	"context"
	"testing"
)

func TestMirrorReplacesAndCopies(t *testing.T) {
	m := New()
	in := [][]string{{"Minggu ke"}, {"1"}}
	if err := m.ReplaceLedger(context.Background(), in); err != nil {
		t.Fatalf("replace: %v", err)
	}
	in[1][0] = "changed"

	got := m.Records()
	if len(got) != 2 || got[1][0] != "1" {
		t.Fatalf("mirror must hold its own copy, got %v", got)
	}

	got[0][0] = "mutated"
	if m.Records()[0][0] != "Minggu ke" {
		t.Fatal("Records must return a copy")
	}

	if err := m.ReplaceLedger(context.Background(), [][]string{{"Minggu ke"}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if len(m.Records()) != 1 || m.Writes() != 2 {
		t.Fatalf("unexpected state: %v writes=%d", m.Records(), m.Writes())
	}
}
