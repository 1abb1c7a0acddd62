package main

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"nannyledger/internal/core"
	"nannyledger/internal/export"
	"nannyledger/internal/services"
	"nannyledger/internal/storage"
)

func TestRunWritesLedgerFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := storage.NewSQLiteRepository(filepath.Join(dir, "nanny.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	defer repo.Close()

	ledger := services.NewLedgerService(repo, nil)
	if _, err := ledger.AddEntry(context.Background(), core.NewEntry{PayDate: core.NewDate(2025, 9, 5), Workdays: 5}); err != nil {
		t.Fatalf("add: %v", err)
	}

	out := filepath.Join(dir, "ledger.csv")
	if err := run(context.Background(), ledger, out); err != nil {
		t.Fatalf("run: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 2 || records[0][0] != export.Header[0] || records[1][1] != "5 September 2025" {
		t.Fatalf("unexpected export: %v", records)
	}
}
