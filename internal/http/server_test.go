package http

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nannyledger/internal/auth"
	"nannyledger/internal/middleware/ratelimit"
	"nannyledger/internal/services"
	"nannyledger/internal/session"
	"nannyledger/internal/storage"
)

const testPassword = "rahasia"

type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *testClient {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "nanny.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	gate, err := auth.NewGate("", testPassword)
	if err != nil {
		t.Fatalf("gate: %v", err)
	}

	srv, err := NewServer(Options{
		Title:    "Buku Gaji Test",
		Ledger:   services.NewLedgerService(repo, nil),
		Gate:     gate,
		Sessions: session.NewManager(session.NewMemoryStore(time.Hour), time.Hour, false),
		Limiter:  limiter,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &testClient{
		t:    t,
		base: ts.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) get(path string) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.client.Get(c.base + path)
	if err != nil {
		c.t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(c.t, resp)
}

func (c *testClient) post(path string, form url.Values) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.client.PostForm(c.base+path, form)
	if err != nil {
		c.t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(c.t, resp)
}

func (c *testClient) postJSON(path, body string) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.client.Post(c.base+path, "application/json", strings.NewReader(body))
	if err != nil {
		c.t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(c.t, resp)
}

func (c *testClient) login() {
	c.t.Helper()
	resp, _ := c.post("/login", url.Values{"password": {testPassword}})
	expectRedirect(c.t, resp, "/")
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	c := newTestServer(t, nil)

	for _, path := range []string{"/", "/export.csv"} {
		resp, _ := c.get(path)
		expectRedirect(t, resp, "/login")
	}
	resp, _ := c.post("/entries", url.Values{"payday": {"2025-09-05"}})
	expectRedirect(t, resp, "/login")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	c := newTestServer(t, nil)

	resp, body := c.post("/login", url.Values{"password": {"salah"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Password salah") {
		t.Fatalf("login page should show the error, got %q", body)
	}

	resp, _ = c.get("/")
	expectRedirect(t, resp, "/login")
}

func TestLoginPageCarriesSecurityHeaders(t *testing.T) {
	c := newTestServer(t, nil)

	resp, body := c.get("/login")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Buku Gaji Test") || !strings.Contains(body, "Masuk") {
		t.Fatalf("unexpected login page: %q", body)
	}
	if resp.Header.Get("Content-Security-Policy") == "" || resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Fatalf("security headers missing: %v", resp.Header)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("request id header missing")
	}
}

func TestLedgerFlow(t *testing.T) {
	c := newTestServer(t, nil)
	c.login()

	resp, body := c.get("/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Belum ada data") {
		t.Fatal("empty ledger should show the empty state")
	}

	resp, _ = c.post("/entries", url.Values{
		"payday":   {"2025-09-05"},
		"workdays": {"5"},
		"new_loan": {"200.000"},
		"note":     {"pinjam"},
	})
	expectRedirect(t, resp, "/")

	_, body = c.get("/")
	for _, want := range []string{"Minggu berhasil disimpan", "5 September 2025", "Rp325.000", "Rp200.000", "pinjam"} {
		if !strings.Contains(body, want) {
			t.Fatalf("ledger view missing %q", want)
		}
	}

	_, body = c.get("/")
	if strings.Contains(body, "Minggu berhasil disimpan") {
		t.Fatal("flash must be shown only once")
	}

	resp, body = c.get("/export.csv")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != `attachment; filename="ledger.csv"` {
		t.Fatalf("unexpected content disposition %q", cd)
	}
	records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 || records[1][0] != "1" || records[1][8] != "200000" || records[1][9] != "375000" {
		t.Fatalf("unexpected csv: %v", records)
	}

	resp, _ = c.post("/entries/delete", url.Values{"id": {"1"}})
	expectRedirect(t, resp, "/")
	_, body = c.get("/")
	if !strings.Contains(body, "Baris dihapus") || !strings.Contains(body, "Belum ada data") {
		t.Fatal("delete should flash and empty the ledger")
	}
}

func TestCreateEntryValidationFlashesError(t *testing.T) {
	c := newTestServer(t, nil)
	c.login()

	resp, _ := c.post("/entries", url.Values{"payday": {"2025-09-05"}, "workdays": {"9"}})
	expectRedirect(t, resp, "/")

	_, body := c.get("/")
	if !strings.Contains(body, "alert-danger") || !strings.Contains(body, "Hari kerja harus 0..7") {
		t.Fatalf("expected validation flash, got %q", body)
	}
	if !strings.Contains(body, "Belum ada data") {
		t.Fatal("rejected entry must not be stored")
	}
}

func TestJSONClientsGetStatusCodes(t *testing.T) {
	c := newTestServer(t, nil)
	c.login()

	resp, body := c.postJSON("/entries", `{"payday":"2025-09-05","workdays":8}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	var failure map[string]string
	if err := json.Unmarshal([]byte(body), &failure); err != nil || failure["field"] != "workdays" {
		t.Fatalf("unexpected error body %q (%v)", body, err)
	}

	resp, body = c.postJSON("/entries", `{"payday":"2025-09-05","workdays":5,"kasbon":"50000"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
	}

	resp, _ = c.postJSON("/settings", `{"salary_weekly":400000,"meal_per_day":12000,"workdays_standard":5}`)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	_, body = c.get("/export.csv")
	if !strings.Contains(body, ",400000,60000,50000,") {
		t.Fatalf("settings change should reproject history, got %q", body)
	}
}

func TestSettingsForm(t *testing.T) {
	c := newTestServer(t, nil)
	c.login()

	resp, _ := c.post("/settings", url.Values{
		"salary_weekly":     {"350.000"},
		"meal_per_day":      {"15000"},
		"workdays_standard": {"6"},
	})
	expectRedirect(t, resp, "/")
	_, body := c.get("/")
	if !strings.Contains(body, "Pengaturan tersimpan") || !strings.Contains(body, "Rp350.000") {
		t.Fatalf("settings not applied: %q", body)
	}

	resp, _ = c.post("/settings", url.Values{"salary_weekly": {"1"}, "meal_per_day": {"1"}, "workdays_standard": {"0"}})
	expectRedirect(t, resp, "/")
	_, body = c.get("/")
	if !strings.Contains(body, "Hari kerja standar harus 1..7") || !strings.Contains(body, "Rp350.000") {
		t.Fatal("invalid settings must flash an error and keep the old values")
	}
}

func TestLogoutEndsSession(t *testing.T) {
	c := newTestServer(t, nil)
	c.login()

	resp, _ := c.post("/logout", nil)
	expectRedirect(t, resp, "/login")
	resp, _ = c.get("/")
	expectRedirect(t, resp, "/login")
}

func TestMethodChecks(t *testing.T) {
	c := newTestServer(t, nil)
	c.login()

	resp, _ := c.get("/entries")
	if resp.StatusCode != http.StatusMethodNotAllowed || resp.Header.Get("Allow") != http.MethodPost {
		t.Fatalf("expected 405 with Allow, got %d %q", resp.StatusCode, resp.Header.Get("Allow"))
	}
	resp, _ = c.get("/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	c := newTestServer(t, nil)

	resp, body := c.get("/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", resp.StatusCode)
	}
	var health map[string]any
	if err := json.Unmarshal([]byte(body), &health); err != nil || health["status"] != "ok" {
		t.Fatalf("unexpected health body %q (%v)", body, err)
	}

	resp, _ = c.get("/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz: expected 200, got %d", resp.StatusCode)
	}
}

func TestProbeRequestsAreRejected(t *testing.T) {
	c := newTestServer(t, nil)

	resp, _ := c.get("/wp-login.php")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for probe, got %d", resp.StatusCode)
	}
}

func TestPostsAreRateLimited(t *testing.T) {
	c := newTestServer(t, ratelimit.NewLimiter(ratelimit.Config{Requests: 2, Period: time.Minute}))

	for i := 0; i < 2; i++ {
		resp, _ := c.post("/login", url.Values{"password": {"salah"}})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}
	resp, _ := c.post("/login", url.Values{"password": {testPassword}})
	if resp.StatusCode != http.StatusTooManyRequests || resp.Header.Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d", resp.StatusCode)
	}

	resp, _ = c.get("/login")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET must not be limited, got %d", resp.StatusCode)
	}
}
