package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewResponse().
		Status(http.StatusAccepted).
		Header("X-Test", "1").
		Text("ok").
		Write(w)

	if w.Code != http.StatusAccepted {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusAccepted)
	}
	if w.Body.String() != "ok" {
		t.Errorf("Body = %q, want %q", w.Body.String(), "ok")
	}
	if w.Header().Get("X-Test") != "1" {
		t.Error("custom header not written")
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestResponseBuilder_JSON(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(map[string]int{"rows": 3}).Write(w)

	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["rows"] != 3 {
		t.Fatalf("unexpected body %q (%v)", w.Body.String(), err)
	}
}

func TestResponseBuilder_JSONEncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().JSON(make(chan int)).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowed("GET, POST").Write(w)

	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "GET, POST" {
		t.Fatalf("got %d Allow=%q", w.Code, w.Header().Get("Allow"))
	}
}

func TestValidationFailed(t *testing.T) {
	w := httptest.NewRecorder()
	ValidationFailed("workdays", "Hari kerja harus 0..7").Write(w)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Status code = %d, want 422", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["field"] != "workdays" || body["error"] != "Hari kerja harus 0..7" {
		t.Fatalf("unexpected body %v", body)
	}
}
