package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nannyledger/internal/amqp"
	"nannyledger/internal/core"
	"nannyledger/internal/export"
	"nannyledger/internal/services"
	"nannyledger/internal/sheets/memory"
	"nannyledger/internal/storage"
)

func TestHandleEventMirrorsWholeLedger(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "nanny.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	defer repo.Close()

	svc := services.NewLedgerService(repo, nil)
	mirror := memory.New()
	w := NewMirrorWorker(svc, mirror)

	if err := w.MirrorAll(ctx); err != nil {
		t.Fatalf("initial mirror: %v", err)
	}
	if got := mirror.Records(); len(got) != 1 || got[0][0] != export.Header[0] {
		t.Fatalf("empty ledger should mirror header only, got %v", got)
	}

	e, err := svc.AddEntry(ctx, core.NewEntry{PayDate: core.NewDate(2025, 9, 5), Workdays: 5, NewLoan: 200000})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := w.HandleEvent(ctx, amqp.NewLedgerEvent(amqp.EventEntryCreated, e.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got := mirror.Records()
	if len(got) != 2 || got[1][8] != "200000" {
		t.Fatalf("unexpected mirror contents: %v", got)
	}
	if mirror.Writes() != 2 {
		t.Fatalf("expected 2 writes, got %d", mirror.Writes())
	}
}

type failingSource struct{}

func (failingSource) Records(context.Context) ([][]string, error) {
	return nil, errors.New("database is locked")
}

func TestHandleEventReturnsSourceError(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(failingSource{}, mirror)

	err := w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventSettingsUpdated, 0))
	if err == nil {
		t.Fatal("expected error so the event is requeued")
	}
	if mirror.Writes() != 0 {
		t.Fatal("mirror must not be touched on failure")
	}
}

type staticSource [][]string

func (s staticSource) Records(context.Context) ([][]string, error) {
	return s, nil
}

func TestResyncMirrorsUntilCancelled(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(staticSource{export.Header}, mirror)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Resync(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for mirror.Writes() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected periodic writes, got %d", mirror.Writes())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Resync did not stop after cancel")
	}
}
