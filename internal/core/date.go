package core

import "strconv"

var monthsID = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDateID renders a date in the Indonesian long form, e.g.
// "5 September 2025". The zero date renders as an empty string.
func FormatDateID(d Date) string {
	if d.IsZero() {
		return ""
	}
	y, m, day := d.Date()
	return strconv.Itoa(day) + " " + monthsID[m-1] + " " + strconv.Itoa(y)
}
