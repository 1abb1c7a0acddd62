package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nannyledger/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetSettings returns the stored payroll settings. A missing row (never
// seeded) yields the built-in defaults.
func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	row, err := r.queries.GetSettings(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		slog.WarnContext(ctx, "Settings row missing, using defaults")
		return core.DefaultSettings(), nil
	}
	if err != nil {
		return core.Settings{}, fmt.Errorf("get settings: %w", err)
	}
	return core.Settings{
		WeeklySalary:     core.Money(row.SalaryWeekly),
		MealPerDay:       core.Money(row.MealPerDay),
		StandardWorkdays: int(row.WorkdaysStandard),
	}, nil
}

// SaveSettings validates and overwrites the settings row.
func (r *SQLiteRepository) SaveSettings(ctx context.Context, s core.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := r.queries.UpsertSettings(ctx, settingsRow(s)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	slog.InfoContext(ctx, "Settings saved",
		"salary_weekly", int64(s.WeeklySalary),
		"meal_per_day", int64(s.MealPerDay),
		"workdays_standard", s.StandardWorkdays)
	return nil
}

// SeedSettings writes s only when no settings row exists yet.
func (r *SQLiteRepository) SeedSettings(ctx context.Context, s core.Settings) (bool, error) {
	if err := s.Validate(); err != nil {
		return false, err
	}
	seeded, err := r.queries.SeedSettings(ctx, settingsRow(s))
	if err != nil {
		return false, fmt.Errorf("seed settings: %w", err)
	}
	return seeded, nil
}

// AddEntry validates and stores a new pay week.
func (r *SQLiteRepository) AddEntry(ctx context.Context, in core.NewEntry) (core.Entry, error) {
	if err := in.Validate(); err != nil {
		return core.Entry{}, err
	}

	createdAt := time.Now().UTC().Truncate(time.Second)
	note := strings.TrimSpace(in.Note)
	id, err := r.queries.CreateEntry(ctx, CreateEntryParams{
		PayDate:     in.PayDate.ISO(),
		Workdays:    int64(in.Workdays),
		Kasbon:      int64(in.CashAdvance),
		Installment: int64(in.Installment),
		NewLoan:     int64(in.NewLoan),
		Note:        note,
		CreatedAt:   createdAt.Format(time.RFC3339),
	})
	if err != nil {
		return core.Entry{}, fmt.Errorf("create entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", id,
		"pay_date", in.PayDate.ISO(),
		"workdays", in.Workdays,
		"kasbon", int64(in.CashAdvance),
		"installment", int64(in.Installment),
		"new_loan", int64(in.NewLoan))

	return core.Entry{
		ID:          id,
		PayDate:     in.PayDate,
		Workdays:    in.Workdays,
		CashAdvance: in.CashAdvance,
		Installment: in.Installment,
		NewLoan:     in.NewLoan,
		Note:        note,
		CreatedAt:   createdAt,
	}, nil
}

// DeleteEntry removes an entry. Deleting an unknown id is not an error.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	if n == 0 {
		slog.DebugContext(ctx, "Delete of unknown entry ignored", "id", id)
		return nil
	}
	slog.InfoContext(ctx, "Entry deleted", "id", id)
	return nil
}

// ListEntries returns every entry ordered by pay date, then id.
func (r *SQLiteRepository) ListEntries(ctx context.Context) ([]core.Entry, error) {
	rows, err := r.queries.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := make([]core.Entry, 0, len(rows))
	for _, row := range rows {
		e, err := entryFromRow(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func settingsRow(s core.Settings) SettingsRow {
	return SettingsRow{
		SalaryWeekly:     int64(s.WeeklySalary),
		MealPerDay:       int64(s.MealPerDay),
		WorkdaysStandard: int64(s.StandardWorkdays),
	}
}

func entryFromRow(row EntryRow) (core.Entry, error) {
	payDate, err := core.ParseDate(row.PayDate)
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry %d: bad pay_date %q: %w", row.ID, row.PayDate, err)
	}
	createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry %d: bad created_at %q: %w", row.ID, row.CreatedAt, err)
	}
	return core.Entry{
		ID:          row.ID,
		PayDate:     payDate,
		Workdays:    int(row.Workdays),
		CashAdvance: core.Money(row.Kasbon),
		Installment: core.Money(row.Installment),
		NewLoan:     core.Money(row.NewLoan),
		Note:        row.Note,
		CreatedAt:   createdAt,
	}, nil
}
