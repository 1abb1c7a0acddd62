// Package export turns projected ledger rows into tabular records.
//
// The same records feed the CSV download and the spreadsheet mirror, so the
// two can never disagree on a figure.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"nannyledger/internal/core"
)

// Header is the fixed CSV column order: week index, formatted pay date,
// workdays, gross pay, meal allowance, cash advance, installment, new loan,
// loan balance after, net paid, note.
var Header = []string{
	"Minggu ke",
	"Tanggal Gajian",
	"Hari Kerja",
	"Gaji Pokok",
	"Uang Makan",
	"Kasbon Minggu Ini",
	"Cicilan",
	"Pinjaman Baru",
	"Sisa Pinjaman",
	"Total Dibayar",
	"Catatan",
}

// Record renders one projected row. Currency columns are plain integers.
func Record(r core.Row) []string {
	return []string{
		strconv.Itoa(r.Week),
		core.FormatDateID(r.Entry.PayDate),
		strconv.Itoa(r.Entry.Workdays),
		r.GrossPay.String(),
		r.MealAllowance.String(),
		r.Entry.CashAdvance.String(),
		r.Entry.Installment.String(),
		r.Entry.NewLoan.String(),
		r.LoanBalance.String(),
		r.NetPaid.String(),
		r.Entry.Note,
	}
}

const noteColumn = 10

// escapeFormula prefixes a quote to free text that a spreadsheet would
// otherwise evaluate as a formula when the downloaded file is opened.
// The sheet mirror writes RAW values and never needs this.
func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

// Records returns the header followed by one record per row.
func Records(rows []core.Row) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, Header)
	for _, r := range rows {
		out = append(out, Record(r))
	}
	return out
}

// WriteCSV streams the ledger as CSV.
func WriteCSV(w io.Writer, rows []core.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		rec := Record(r)
		rec[noteColumn] = escapeFormula(rec[noteColumn])
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv week %d: %w", r.Week, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
