package core

import "sort"

// Row is one projected pay week.
type Row struct {
	Week          int // 1-based position in the ordered ledger
	Entry         Entry
	GrossPay      Money
	MealAllowance Money
	LoanBalance   Money // outstanding loan after this week
	NetPaid       Money
}

// Totals sums the projected columns of a ledger.
type Totals struct {
	Workdays      int
	GrossPay      Money
	MealAllowance Money
	CashAdvance   Money
	Installment   Money
	NewLoan       Money
	NetPaid       Money
}

// SortEntries orders entries by pay date, then by id (creation order).
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.PayDate.Equal(b.PayDate.Time) {
			return a.PayDate.Before(b.PayDate.Time)
		}
		return a.ID < b.ID
	})
}

// Project folds the ordered entries into ledger rows, carrying the loan
// balance from one week to the next. Entries must already be sorted with
// SortEntries; Project does not reorder them.
func Project(s Settings, entries []Entry) []Row {
	s = s.normalized()
	rows := make([]Row, 0, len(entries))
	var loan Money
	for i, e := range entries {
		gross := grossPay(s, e.Workdays)
		meal := s.MealPerDay * Money(e.Workdays)
		loan = loan + e.NewLoan - e.Installment
		rows = append(rows, Row{
			Week:          i + 1,
			Entry:         e,
			GrossPay:      gross,
			MealAllowance: meal,
			LoanBalance:   loan,
			NetPaid:       gross + meal - e.CashAdvance - e.Installment,
		})
	}
	return rows
}

// DailyRate is the weekly salary spread over the standard workdays.
func DailyRate(s Settings) float64 {
	s = s.normalized()
	return float64(s.WeeklySalary) / float64(s.StandardWorkdays)
}

// grossPay computes WeeklySalary / StandardWorkdays * workdays as an exact
// fraction and rounds half away from zero only once, at the end.
func grossPay(s Settings, workdays int) Money {
	num := int64(s.WeeklySalary) * int64(workdays)
	den := int64(s.StandardWorkdays)
	q, r := num/den, num%den
	if r < 0 {
		r = -r
	}
	if 2*r >= den {
		if num < 0 {
			q--
		} else {
			q++
		}
	}
	return Money(q)
}

// CurrentLoanBalance is the loan outstanding after the last row, or zero.
func CurrentLoanBalance(rows []Row) Money {
	if len(rows) == 0 {
		return 0
	}
	return rows[len(rows)-1].LoanBalance
}

// Summarize totals the projected rows.
func Summarize(rows []Row) Totals {
	var t Totals
	for _, r := range rows {
		t.Workdays += r.Entry.Workdays
		t.GrossPay += r.GrossPay
		t.MealAllowance += r.MealAllowance
		t.CashAdvance += r.Entry.CashAdvance
		t.Installment += r.Entry.Installment
		t.NewLoan += r.Entry.NewLoan
		t.NetPaid += r.NetPaid
	}
	return t
}
