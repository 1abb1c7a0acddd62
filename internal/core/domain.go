package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultWeeklySalary, DefaultMealPerDay and DefaultStandardWorkdays seed the
	// settings row on first startup when the environment does not override them.
	DefaultWeeklySalary     Money = 325000
	DefaultMealPerDay       Money = 10000
	DefaultStandardWorkdays       = 5

	MinStandardWorkdays = 1
	MaxStandardWorkdays = 7

	// MaxWorkdays bounds the worked days of a single pay week.
	MaxWorkdays = 7

	MaxNoteLength = 500

	// MaxAmount bounds every stored amount so that a week's pay and the
	// running loan balance stay far inside int64.
	MaxAmount Money = 1_000_000_000_000
)

type (
	// Money is an amount in the currency minor unit (one rupiah).
	Money int64

	Date struct {
		time.Time
	}

	// Settings is the singleton payroll configuration.
	Settings struct {
		WeeklySalary     Money
		MealPerDay       Money
		StandardWorkdays int
	}

	// NewEntry carries the user input for a pay week before it is stored.
	NewEntry struct {
		PayDate     Date
		Workdays    int
		CashAdvance Money // kasbon, deducted from the same week
		Installment Money
		NewLoan     Money
		Note        string
	}

	// Entry is one recorded pay week. Entries are never edited, only deleted.
	Entry struct {
		ID          int64
		PayDate     Date
		Workdays    int
		CashAdvance Money
		Installment Money
		NewLoan     Money
		Note        string
		CreatedAt   time.Time
	}
)

// ValidationError reports user input that cannot be stored. Message is meant
// for display.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// UserMessage returns the display message of a validation error, or the
// plain error text otherwise.
func UserMessage(err error) string {
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	return err.Error()
}

var (
	ErrMissingPayDate          = &ValidationError{Field: "payday", Message: "Tanggal gajian wajib diisi"}
	ErrInvalidPayDate          = &ValidationError{Field: "payday", Message: "Tanggal gajian tidak valid"}
	ErrInvalidWorkdays         = &ValidationError{Field: "workdays", Message: fmt.Sprintf("Hari kerja harus 0..%d", MaxWorkdays)}
	ErrInvalidStandardWorkdays = &ValidationError{Field: "workdays_standard", Message: "Hari kerja standar harus 1..7"}
	ErrInvalidAmount           = &ValidationError{Field: "amount", Message: "Nominal tidak valid"}
	ErrNoteTooLong             = &ValidationError{Field: "note", Message: fmt.Sprintf("Catatan maksimal %d karakter", MaxNoteLength)}
)

func checkAmount(field string, m Money) error {
	switch {
	case m < 0:
		return &ValidationError{Field: field, Message: "Nominal tidak boleh negatif"}
	case m > MaxAmount:
		return &ValidationError{Field: field, Message: "Nominal terlalu besar"}
	}
	return nil
}

// NewDate creates a Date at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD calendar date. An empty string yields
// ErrMissingPayDate.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrMissingPayDate
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, ErrInvalidPayDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date as YYYY-MM-DD.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// DefaultSettings returns the built-in payroll defaults.
func DefaultSettings() Settings {
	return Settings{
		WeeklySalary:     DefaultWeeklySalary,
		MealPerDay:       DefaultMealPerDay,
		StandardWorkdays: DefaultStandardWorkdays,
	}
}

func (s Settings) Validate() error {
	if s.StandardWorkdays < MinStandardWorkdays || s.StandardWorkdays > MaxStandardWorkdays {
		return ErrInvalidStandardWorkdays
	}
	if err := checkAmount("salary_weekly", s.WeeklySalary); err != nil {
		return err
	}
	return checkAmount("meal_per_day", s.MealPerDay)
}

// normalized guards the projector against a stored divisor below 1, which
// can only come from a hand-edited database.
func (s Settings) normalized() Settings {
	if s.StandardWorkdays < MinStandardWorkdays {
		s.StandardWorkdays = DefaultStandardWorkdays
	}
	return s
}

func (e NewEntry) Validate() error {
	if e.PayDate.IsZero() {
		return ErrMissingPayDate
	}
	if e.Workdays < 0 || e.Workdays > MaxWorkdays {
		return ErrInvalidWorkdays
	}
	if err := checkAmount("kasbon", e.CashAdvance); err != nil {
		return err
	}
	if err := checkAmount("installment", e.Installment); err != nil {
		return err
	}
	if err := checkAmount("new_loan", e.NewLoan); err != nil {
		return err
	}
	if len(e.Note) > MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}
