package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecoveryRespondsAndLogsRequestID(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	// Same nesting as main: RequestID outermost so Recovery sees the id.
	handler := RequestID()(Recovery(logger)(panicking))

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("X-Request-ID", "req-test-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var entry struct {
		Msg       string `json:"msg"`
		Panic     string `json:"panic"`
		Method    string `json:"method"`
		Path      string `json:"path"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(logBuf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v (%s)", err, logBuf.String())
	}
	if entry.Msg != "panic recovered" || entry.Panic != "boom" {
		t.Errorf("log entry = %+v", entry)
	}
	if entry.Method != http.MethodGet || entry.Path != "/courses" {
		t.Errorf("log entry = %+v", entry)
	}
	if entry.RequestID != "req-test-1" {
		t.Errorf("request_id = %q, want req-test-1", entry.RequestID)
	}
}

func TestRequestIDMintsAndEchoes(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = w.Header().Get("X-Request-ID")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if seen == "" {
		t.Fatal("no request id minted")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("echoed id = %q, want %q", got, seen)
	}
}
