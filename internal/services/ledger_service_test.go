package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"nannyledger/internal/amqp"
	"nannyledger/internal/core"
	"nannyledger/internal/storage"
)

type recordingPublisher struct {
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e *amqp.LedgerEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func newTestService(t *testing.T, pub Publisher) *LedgerService {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "nanny.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewLedgerService(repo, pub)
}

func addScenario(t *testing.T, svc *LedgerService) {
	t.Helper()
	ctx := context.Background()
	if err := svc.SaveSettings(ctx, core.DefaultSettings()); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	weeks := []core.NewEntry{
		{PayDate: core.NewDate(2025, 9, 5), Workdays: 5, NewLoan: 200000},
		{PayDate: core.NewDate(2025, 9, 12), Workdays: 5, CashAdvance: 50000, Installment: 50000, Note: "cicil"},
	}
	for _, w := range weeks {
		if _, err := svc.AddEntry(ctx, w); err != nil {
			t.Fatalf("add entry: %v", err)
		}
	}
}

func TestLedgerScenario(t *testing.T) {
	svc := newTestService(t, nil)
	addScenario(t, svc)

	l, err := svc.Ledger(context.Background())
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(l.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(l.Rows))
	}
	if l.Rows[0].NetPaid != 375000 || l.Rows[1].NetPaid != 275000 {
		t.Fatalf("unexpected net paid: %d, %d", l.Rows[0].NetPaid, l.Rows[1].NetPaid)
	}
	if l.LoanBalance != 150000 {
		t.Fatalf("expected balance 150000, got %d", l.LoanBalance)
	}
	if l.Totals.NetPaid != 650000 || l.Totals.Workdays != 10 {
		t.Fatalf("unexpected totals: %+v", l.Totals)
	}
}

func TestCSVMatchesView(t *testing.T) {
	svc := newTestService(t, nil)
	addScenario(t, svc)
	ctx := context.Background()

	var buf bytes.Buffer
	if err := svc.WriteCSV(ctx, &buf); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	l, _ := svc.Ledger(ctx)
	if len(records) != len(l.Rows)+1 {
		t.Fatalf("expected %d records, got %d", len(l.Rows)+1, len(records))
	}
	for i, row := range l.Rows {
		rec := records[i+1]
		if rec[3] != strconv.FormatInt(int64(row.GrossPay), 10) ||
			rec[8] != strconv.FormatInt(int64(row.LoanBalance), 10) ||
			rec[9] != strconv.FormatInt(int64(row.NetPaid), 10) {
			t.Fatalf("row %d differs between csv and view: %v vs %+v", i, rec, row)
		}
	}
}

func TestSettingsChangeRecomputesHistory(t *testing.T) {
	svc := newTestService(t, nil)
	addScenario(t, svc)
	ctx := context.Background()

	if err := svc.SaveSettings(ctx, core.Settings{WeeklySalary: 400000, MealPerDay: 10000, StandardWorkdays: 5}); err != nil {
		t.Fatalf("save: %v", err)
	}
	l, _ := svc.Ledger(ctx)
	if l.Rows[0].GrossPay != 400000 {
		t.Fatalf("past week not recomputed: %d", l.Rows[0].GrossPay)
	}
	if l.LoanBalance != 150000 {
		t.Fatalf("balance must not depend on salary, got %d", l.LoanBalance)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)
	ctx := context.Background()

	if err := svc.SaveSettings(ctx, core.DefaultSettings()); err != nil {
		t.Fatalf("save: %v", err)
	}
	e, err := svc.AddEntry(ctx, core.NewEntry{PayDate: core.NewDate(2025, 1, 3), Workdays: 5})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.DeleteEntry(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []amqp.EventType{amqp.EventSettingsUpdated, amqp.EventEntryCreated, amqp.EventEntryDeleted}
	if len(pub.events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(pub.events))
	}
	for i, typ := range want {
		if pub.events[i].Type != typ {
			t.Fatalf("event %d: got %s want %s", i, pub.events[i].Type, typ)
		}
	}
	if pub.events[1].EntryID != e.ID {
		t.Fatalf("entry id not carried: %d", pub.events[1].EntryID)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(t, pub)
	ctx := context.Background()

	if _, err := svc.AddEntry(ctx, core.NewEntry{PayDate: core.NewDate(2025, 1, 3), Workdays: 5}); err != nil {
		t.Fatalf("add should succeed despite publish failure: %v", err)
	}
	l, _ := svc.Ledger(ctx)
	if len(l.Rows) != 1 {
		t.Fatalf("entry not stored")
	}
}

func TestInvalidWriteDoesNotPublish(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(t, pub)

	_, err := svc.AddEntry(context.Background(), core.NewEntry{Workdays: 5})
	if !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := svc.SaveSettings(context.Background(), core.Settings{StandardWorkdays: 0}); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("no event expected, got %d", len(pub.events))
	}
}
