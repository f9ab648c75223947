package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskscan/internal/adapters/counterfile"
	"riskscan/internal/adapters/memory"
	"riskscan/internal/domain"
	"riskscan/internal/services/profiles"
	"riskscan/internal/services/tally"
)

type stubScanner struct {
	out    domain.ScanOutcome
	err    error
	gotURL string
}

func (s *stubScanner) Scan(ctx context.Context, url string) (domain.ScanOutcome, error) {
	s.gotURL = url
	return s.out, s.err
}

type stubChecker struct {
	report domain.Report
	err    error
	gotURL string
}

func (s *stubChecker) Check(ctx context.Context, url string) (domain.Report, error) {
	s.gotURL = url
	return s.report, s.err
}

type fixture struct {
	handler http.Handler
	scanner *stubScanner
	checker *stubChecker
	history *memory.History
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hist := memory.NewHistory()
	tl := tally.Load(context.Background(), counterfile.New(filepath.Join(t.TempDir(), "counts.json")))
	f := &fixture{scanner: &stubScanner{}, checker: &stubChecker{}, history: hist}
	f.handler = New(f.scanner, f.checker, hist, profiles.New(hist), tl).Routes()
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m), w.Body.String())
	return m
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Backend is running", decodeBody(t, w)["message"])

	w = f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["status"])
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Route not found", decodeBody(t, w)["error"])

	w = f.do(http.MethodDelete, "/scans", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOptions(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodOptions, "/urlscan", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	req := httptest.NewRequest(http.MethodOptions, "/save-scan", nil)
	req.Header.Set("Origin", "http://localhost:5500")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w = httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestURLScan(t *testing.T) {
	f := newFixture(t)
	score := 70.0
	f.scanner.out = domain.ScanOutcome{Status: domain.StatusSuspicious, Score: &score, Tags: []string{}}

	w := f.do(http.MethodPost, "/urlscan", `{"url":"https://example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://example.com", f.scanner.gotURL)
	assert.JSONEq(t, `{"status":"Suspicious","score":70,"tags":[],"reportUrl":null}`, w.Body.String())
}

func TestURLScanErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		msg    string
	}{
		{name: "bad json", body: `{`, status: http.StatusBadRequest, msg: "Invalid JSON body"},
		{name: "missing url", body: `{}`, status: http.StatusBadRequest, msg: "url is required"},
		{name: "submit", body: `{"url":"https://x.test"}`, err: &domain.SubmitError{StatusCode: 400, Body: "DNS Error"}, status: http.StatusBadGateway, msg: MsgSubmitFailed},
		{name: "poll", body: `{"url":"https://x.test"}`, err: &domain.PollError{StatusCode: 500, Body: "oops"}, status: http.StatusBadGateway, msg: MsgResultFailed},
		{name: "timeout", body: `{"url":"https://x.test"}`, err: domain.ErrPollTimeout, status: http.StatusGatewayTimeout, msg: MsgTimeout},
		{name: "other", body: `{"url":"https://x.test"}`, err: errors.New("?"), status: http.StatusInternalServerError, msg: MsgCheckFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.scanner.err = tt.err
			w := f.do(http.MethodPost, "/urlscan", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.msg, decodeBody(t, w)["error"])
		})
	}
}

func TestURLScanDetails(t *testing.T) {
	f := newFixture(t)
	f.scanner.err = &domain.SubmitError{StatusCode: 400, Body: "DNS Error"}
	w := f.do(http.MethodPost, "/urlscan", `{"url":"https://x.test"}`)
	assert.Equal(t, "DNS Error", decodeBody(t, w)["details"])
}

func TestURLScanWithoutScanner(t *testing.T) {
	hist := memory.NewHistory()
	tl := tally.Load(context.Background(), counterfile.New(filepath.Join(t.TempDir(), "c.json")))
	h := New(nil, nil, hist, profiles.New(hist), tl).Routes()

	req := httptest.NewRequest(http.MethodPost, "/urlscan", strings.NewReader(`{"url":"https://x.test"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCheck(t *testing.T) {
	f := newFixture(t)
	f.checker.report = domain.Report{URL: "https://example.com", Scan: domain.ScanOutcome{Status: domain.StatusSafe}, Text: "Site: example.com\n"}

	w := f.do(http.MethodPost, "/check", `{"url":" example.com "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://example.com", f.checker.gotURL)
	assert.Equal(t, "Site: example.com\n", decodeBody(t, w)["text"])
}

func TestCheckFailures(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodPost, "/check", `{"url":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.checker.err = &domain.AggregationError{Err: domain.ErrPollTimeout}
	w = f.do(http.MethodPost, "/check", `{"url":"example.com"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, MsgCheckFailed, decodeBody(t, w)["error"])
}

func TestSaveAndListScans(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/save-scan", `{"url":"https://a.example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "url and result are required", decodeBody(t, w)["error"])

	for i, u := range []string{"https://a.example.com", "https://b.test", "https://c.test"} {
		w = f.do(http.MethodPost, "/save-scan", `{"url":"`+u+`","result":"Safe | No PhishStats match"}`)
		require.Equal(t, http.StatusOK, w.Code, i)
	}
	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])

	w = f.do(http.MethodGet, "/scans?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Success bool                `json:"success"`
		Data    []domain.ScanRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.Success)
	require.Len(t, out.Data, 2)
	assert.Equal(t, "https://c.test", out.Data[0].URL)

	w = f.do(http.MethodGet, "/scans", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out.Data, 3)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/scans?limit=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/scans?limit=0", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/scans?limit=101", "").Code)
}

func TestProfiles(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/profiles/example.com", "").Code)

	_, err := f.history.Save(context.Background(), domain.ScanRecord{URL: "https://example.com", Domain: "example.com", Result: "Malicious | PhishStats match"})
	require.NoError(t, err)

	w := f.do(http.MethodGet, "/profiles/example.com", "")
	require.Equal(t, http.StatusOK, w.Code)
	var prof domain.Profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prof))
	assert.Equal(t, domain.StatusMalicious, prof.Status)
	assert.Equal(t, 1, prof.Statuses.Malicious)
}

func TestCountsAndMetrics(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/counts", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"safe":0,"suspicious":0,"malicious":0}`, w.Body.String())

	w = f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
