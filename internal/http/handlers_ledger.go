package http

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"nannyledger/internal/core"
	applog "nannyledger/internal/log"
	"nannyledger/internal/session"
)

const (
	msgEntrySaved    = "Minggu berhasil disimpan"
	msgEntryDeleted  = "Baris dihapus"
	msgSettingsSaved = "Pengaturan tersimpan"
)

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowed(http.MethodPost).Write(w)
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	in, err := ParseNewEntry(p)
	if err != nil {
		s.rejectInput(w, r, p, applog.OpCreate, err)
		return
	}
	e, err := s.ledger.AddEntry(r.Context(), in)
	if err != nil {
		if core.IsValidation(err) {
			s.rejectInput(w, r, p, applog.OpCreate, err)
			return
		}
		s.internalError(w, r, applog.OpCreate, err)
		return
	}

	if p.IsJSON() {
		NewResponse().Status(http.StatusCreated).JSON(map[string]any{
			"id":       e.ID,
			"pay_date": e.PayDate.ISO(),
		}).Write(w)
		return
	}
	s.redirectWithFlash(w, r, session.FlashSuccess, msgEntrySaved)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowed(http.MethodPost).Write(w)
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	id, err := ParseEntryID(p)
	if err != nil {
		s.rejectInput(w, r, p, applog.OpDelete, err)
		return
	}
	if err := s.ledger.DeleteEntry(r.Context(), id); err != nil {
		s.internalError(w, r, applog.OpDelete, err)
		return
	}

	if p.IsJSON() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.redirectWithFlash(w, r, session.FlashSuccess, msgEntryDeleted)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowed(http.MethodPost).Write(w)
		return
	}
	p, ok := s.parseBody(w, r)
	if !ok {
		return
	}

	settings, err := ParseSettings(p)
	if err != nil {
		s.rejectInput(w, r, p, applog.OpSettings, err)
		return
	}
	if err := s.ledger.SaveSettings(r.Context(), settings); err != nil {
		if core.IsValidation(err) {
			s.rejectInput(w, r, p, applog.OpSettings, err)
			return
		}
		s.internalError(w, r, applog.OpSettings, err)
		return
	}

	if p.IsJSON() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.redirectWithFlash(w, r, session.FlashSuccess, msgSettingsSaved)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		MethodNotAllowed("GET, HEAD").Write(w)
		return
	}

	// Buffered so a failure mid-way still yields a clean 500.
	var buf bytes.Buffer
	if err := s.ledger.WriteCSV(r.Context(), &buf); err != nil {
		s.internalError(w, r, applog.OpExport, err)
		return
	}

	applog.FromContext(r.Context()).Info("Ledger exported",
		applog.FieldOperation, applog.OpExport,
		"bytes", buf.Len())

	h := w.Header()
	h.Set("Content-Type", "text/csv; charset=utf-8")
	h.Set("Content-Disposition", `attachment; filename="ledger.csv"`)
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *Server) parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p, err := ParseBody(w, r)
	if err != nil {
		applog.FromContext(r.Context()).Warn("Unreadable request body", applog.FieldError, err)
		http.Error(w, "Permintaan tidak valid", http.StatusBadRequest)
		return nil, false
	}
	return p, true
}

// rejectInput answers a validation failure: 422 for JSON clients, a flash
// and redirect for the browser form. Nothing has been written.
func (s *Server) rejectInput(w http.ResponseWriter, r *http.Request, p *RequestBodyParser, op string, err error) {
	applog.FromContext(r.Context()).Info("Input rejected",
		applog.FieldOperation, op,
		applog.FieldError, err,
		applog.FieldErrorType, applog.ErrorTypeValidation)

	if p.IsJSON() {
		field := ""
		var v *core.ValidationError
		if errors.As(err, &v) {
			field = v.Field
		}
		ValidationFailed(field, core.UserMessage(err)).Write(w)
		return
	}
	s.redirectWithFlash(w, r, session.FlashError, core.UserMessage(err))
}
