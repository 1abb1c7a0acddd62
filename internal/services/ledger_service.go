package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"nannyledger/internal/amqp"
	"nannyledger/internal/core"
	"nannyledger/internal/export"
)

// LedgerStore is the persistence the service needs. *storage.SQLiteRepository
// satisfies it.
type LedgerStore interface {
	GetSettings(ctx context.Context) (core.Settings, error)
	SaveSettings(ctx context.Context, s core.Settings) error
	AddEntry(ctx context.Context, in core.NewEntry) (core.Entry, error)
	DeleteEntry(ctx context.Context, id int64) error
	ListEntries(ctx context.Context) ([]core.Entry, error)
	Ping(ctx context.Context) error
}

// Publisher announces ledger changes. *amqp.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// Ledger is one projection of the whole ledger.
type Ledger struct {
	Settings    core.Settings
	Rows        []core.Row
	LoanBalance core.Money
	Totals      core.Totals
}

// LedgerService orchestrates ledger operations across SQLite and AMQP
type LedgerService struct {
	store     LedgerStore
	publisher Publisher
}

// NewLedgerService wires a store and an optional publisher. Pass a nil
// interface, not a typed nil pointer, to disable publishing.
func NewLedgerService(store LedgerStore, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// Ledger loads settings and entries and projects them once.
func (s *LedgerService) Ledger(ctx context.Context) (Ledger, error) {
	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return Ledger{}, fmt.Errorf("load settings: %w", err)
	}
	entries, err := s.store.ListEntries(ctx)
	if err != nil {
		return Ledger{}, fmt.Errorf("load entries: %w", err)
	}

	rows := core.Project(settings, entries)
	return Ledger{
		Settings:    settings,
		Rows:        rows,
		LoanBalance: core.CurrentLoanBalance(rows),
		Totals:      core.Summarize(rows),
	}, nil
}

// AddEntry stores a pay week and announces it.
func (s *LedgerService) AddEntry(ctx context.Context, in core.NewEntry) (core.Entry, error) {
	e, err := s.store.AddEntry(ctx, in)
	if err != nil {
		return core.Entry{}, fmt.Errorf("add entry: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventEntryCreated, e.ID))
	return e, nil
}

// DeleteEntry removes a pay week. Unknown ids succeed without effect.
func (s *LedgerService) DeleteEntry(ctx context.Context, id int64) error {
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventEntryDeleted, id))
	return nil
}

// SaveSettings replaces the payroll settings. Later projections use them for
// every row, past weeks included.
func (s *LedgerService) SaveSettings(ctx context.Context, settings core.Settings) error {
	if err := s.store.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.publish(ctx, amqp.NewLedgerEvent(amqp.EventSettingsUpdated, 0))
	return nil
}

// WriteCSV streams the projected ledger as CSV.
func (s *LedgerService) WriteCSV(ctx context.Context, w io.Writer) error {
	l, err := s.Ledger(ctx)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(w, l.Rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// Records returns the projected ledger as export records, header first.
func (s *LedgerService) Records(ctx context.Context) ([][]string, error) {
	l, err := s.Ledger(ctx)
	if err != nil {
		return nil, err
	}
	return export.Records(l.Rows), nil
}

// Ping checks the backing store.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping ledger event", "type", event.Type)
		return
	}
	// The write already succeeded; a lost event only delays the mirror.
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", event.Type,
			"entry_id", event.EntryID,
			"error", err)
	}
}
