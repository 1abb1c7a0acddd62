package storage

import (
	"context"
	"database/sql"
)

const (
	getSettings = `SELECT salary_weekly, meal_per_day, workdays_standard FROM settings WHERE id = 1`

	upsertSettings = `INSERT INTO settings (id, salary_weekly, meal_per_day, workdays_standard)
VALUES (1, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    salary_weekly = excluded.salary_weekly,
    meal_per_day = excluded.meal_per_day,
    workdays_standard = excluded.workdays_standard`

	seedSettings = `INSERT OR IGNORE INTO settings (id, salary_weekly, meal_per_day, workdays_standard)
VALUES (1, ?, ?, ?)`

	createEntry = `INSERT INTO entries (pay_date, workdays, kasbon, installment, new_loan, note, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	deleteEntry = `DELETE FROM entries WHERE id = ?`

	listEntries = `SELECT id, pay_date, workdays, kasbon, installment, new_loan, note, created_at
FROM entries
ORDER BY pay_date ASC, id ASC`
)

// SettingsRow mirrors the settings table.
type SettingsRow struct {
	SalaryWeekly     int64
	MealPerDay       int64
	WorkdaysStandard int64
}

// EntryRow mirrors the entries table.
type EntryRow struct {
	ID          int64
	PayDate     string
	Workdays    int64
	Kasbon      int64
	Installment int64
	NewLoan     int64
	Note        string
	CreatedAt   string
}

type CreateEntryParams struct {
	PayDate     string
	Workdays    int64
	Kasbon      int64
	Installment int64
	NewLoan     int64
	Note        string
	CreatedAt   string
}

type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the SQL used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) GetSettings(ctx context.Context) (SettingsRow, error) {
	var s SettingsRow
	err := q.db.QueryRowContext(ctx, getSettings).Scan(&s.SalaryWeekly, &s.MealPerDay, &s.WorkdaysStandard)
	return s, err
}

func (q *Queries) UpsertSettings(ctx context.Context, s SettingsRow) error {
	_, err := q.db.ExecContext(ctx, upsertSettings, s.SalaryWeekly, s.MealPerDay, s.WorkdaysStandard)
	return err
}

// SeedSettings inserts the settings row only if none exists and reports
// whether a row was written.
func (q *Queries) SeedSettings(ctx context.Context, s SettingsRow) (bool, error) {
	res, err := q.db.ExecContext(ctx, seedSettings, s.SalaryWeekly, s.MealPerDay, s.WorkdaysStandard)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (q *Queries) CreateEntry(ctx context.Context, arg CreateEntryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createEntry,
		arg.PayDate,
		arg.Workdays,
		arg.Kasbon,
		arg.Installment,
		arg.NewLoan,
		arg.Note,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteEntry returns the number of rows removed (0 or 1).
func (q *Queries) DeleteEntry(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteEntry, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ListEntries(ctx context.Context) ([]EntryRow, error) {
	rows, err := q.db.QueryContext(ctx, listEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []EntryRow
	for rows.Next() {
		var e EntryRow
		if err := rows.Scan(
			&e.ID,
			&e.PayDate,
			&e.Workdays,
			&e.Kasbon,
			&e.Installment,
			&e.NewLoan,
			&e.Note,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
