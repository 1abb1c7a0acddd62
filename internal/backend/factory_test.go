package backend

import (
	"context"
	"testing"

	"nannyledger/internal/config"
	"nannyledger/internal/sheets/memory"
)

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{MirrorBackend: "sheets", GoogleSpreadsheetID: "abc", GoogleSheetName: "Ledger"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != SheetsMirror || cfg.GoogleSpreadsheetID != "abc" || cfg.GoogleSheetName != "Ledger" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{MirrorBackend: "ftp"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestCreateMirror(t *testing.T) {
	f := NewFactory(nil)

	m, err := f.CreateMirror(context.Background(), Config{Type: MemoryMirror})
	if err != nil {
		t.Fatalf("memory mirror: %v", err)
	}
	if _, ok := m.(*memory.Mirror); !ok {
		t.Fatalf("expected *memory.Mirror, got %T", m)
	}

	if _, err := f.CreateMirror(context.Background(), Config{Type: SheetsMirror}); err == nil {
		t.Fatal("sheets mirror without spreadsheet id must fail")
	}
}

func TestMirrorTypesAreValid(t *testing.T) {
	for _, mt := range MirrorTypes() {
		if !mt.IsValid() {
			t.Fatalf("%s should be valid", mt)
		}
	}
	if MirrorType("sqlite").IsValid() {
		t.Fatal("sqlite is not a mirror")
	}
}
