package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nannyledger/internal/core"
)

const maxBodyBytes = 64 << 10

// RequestBodyParser reads form-encoded or JSON bodies through one accessor,
// so browser forms and scripted clients share the same handlers.
type RequestBodyParser struct {
	contentType string
	jsonData    map[string]any
	formData    url.Values
}

// ParseBody reads and decodes the request body once.
func ParseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, error) {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}

	if strings.HasPrefix(p.contentType, "application/json") {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		p.jsonData = make(map[string]any)
		if len(body) > 0 {
			if err := json.Unmarshal(body, &p.jsonData); err != nil {
				return nil, err
			}
		}
		return p, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	p.formData = r.PostForm
	return p, nil
}

// Get returns the trimmed, control-character-free value of key.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if v, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(v))
		}
		return ""
	}
	return sanitizeInput(p.formData.Get(key))
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters other than tab and newlines, then
// trims surrounding space.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// ParseNewEntry reads the weekly entry form. Amounts accept any
// thousands separators; a blank workdays field means a full week.
func ParseNewEntry(p *RequestBodyParser) (core.NewEntry, error) {
	var in core.NewEntry
	var err error

	if in.PayDate, err = core.ParseDate(p.Get("payday")); err != nil {
		return in, err
	}
	if in.Workdays, err = core.ParseCount(p.Get("workdays"), core.DefaultStandardWorkdays); err != nil {
		return in, &core.ValidationError{Field: "workdays", Message: core.ErrInvalidWorkdays.Message}
	}
	if in.CashAdvance, err = parseAmountField(p, "kasbon"); err != nil {
		return in, err
	}
	if in.Installment, err = parseAmountField(p, "installment"); err != nil {
		return in, err
	}
	if in.NewLoan, err = parseAmountField(p, "new_loan"); err != nil {
		return in, err
	}
	in.Note = p.Get("note")
	return in, in.Validate()
}

// ParseSettings reads the settings form.
func ParseSettings(p *RequestBodyParser) (core.Settings, error) {
	var s core.Settings
	var err error

	if s.WeeklySalary, err = parseAmountField(p, "salary_weekly"); err != nil {
		return s, err
	}
	if s.MealPerDay, err = parseAmountField(p, "meal_per_day"); err != nil {
		return s, err
	}
	if s.StandardWorkdays, err = core.ParseCount(p.Get("workdays_standard"), core.DefaultStandardWorkdays); err != nil {
		return s, core.ErrInvalidStandardWorkdays
	}
	return s, s.Validate()
}

// ParseEntryID reads the id of the row to delete.
func ParseEntryID(p *RequestBodyParser) (int64, error) {
	id, err := strconv.ParseInt(p.Get("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, &core.ValidationError{Field: "id", Message: "ID baris tidak valid"}
	}
	return id, nil
}

func parseAmountField(p *RequestBodyParser, field string) (core.Money, error) {
	m, err := core.ParseAmount(p.Get(field))
	if err != nil {
		return 0, &core.ValidationError{Field: field, Message: core.ErrInvalidAmount.Message}
	}
	return m, nil
}
