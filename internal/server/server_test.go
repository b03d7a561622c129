package server

// Notes:
// - Handlers are exercised through Handler() with httptest, so routing,
//   middleware and error mapping are covered together.
// - ListenAndServe is tested once on an ephemeral port to check startup
//   and graceful shutdown; timeouts are not tested.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	md2doc "github.com/alnah/go-md2doc"
	"github.com/alnah/go-md2doc/internal/history"
)

var fixedTime = time.Date(2025, 3, 7, 9, 5, 3, 0, time.UTC)

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

func newTestConverter(t *testing.T) *md2doc.Converter {
	t.Helper()
	conv, err := md2doc.NewConverter(
		md2doc.WithFilenamePrefix("notes"),
		md2doc.WithClock(func() time.Time { return fixedTime }),
	)
	if err != nil {
		t.Fatalf("NewConverter() error = %v", err)
	}
	return conv
}

func newTestServer(t *testing.T, withHistory bool) (*Server, *history.Store) {
	t.Helper()
	var store *history.Store
	if withHistory {
		store = history.NewStore(filepath.Join(t.TempDir(), "history.yaml"), 10)
	}
	srv := New(Options{
		Converter: newTestConverter(t),
		Store:     store,
		Now:       func() time.Time { return fixedTime },
		Version:   "test",
	})
	return srv, store
}

func do(t *testing.T, h http.Handler, method, target, contentType string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) problem {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("Content-Type = %q, want application/problem+json", ct)
	}
	var p problem
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding problem: %v", err)
	}
	return p
}

// ---------------------------------------------------------------------------
// TestConvert - Download endpoint
// ---------------------------------------------------------------------------

func TestConvert(t *testing.T) {
	t.Parallel()

	form := url.Values{"text": {"# Form"}, "title": {"From form"}}.Encode()

	tests := []struct {
		name        string
		contentType string
		target      string
		body        string
	}{
		{"json", "application/json", "/convert", `{"text":"# JSON","title":"From JSON"}`},
		{"form", "application/x-www-form-urlencoded", "/convert", form},
		{"raw text", "text/plain; charset=utf-8", "/convert?title=Raw", "# Raw"},
		{"no content type", "", "/convert", "plain words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, _ := newTestServer(t, false)
			rec := do(t, srv.Handler(), http.MethodPost, tt.target, tt.contentType, tt.body)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != md2doc.DocContentType {
				t.Errorf("Content-Type = %q, want %q", ct, md2doc.DocContentType)
			}

			_, params, err := mime.ParseMediaType(rec.Header().Get("Content-Disposition"))
			if err != nil {
				t.Fatalf("parsing Content-Disposition: %v", err)
			}
			want := fmt.Sprintf("notes_%d.doc", fixedTime.UnixMilli())
			if params["filename"] != want {
				t.Errorf("filename = %q, want %q", params["filename"], want)
			}

			if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\xEF\xBB\xBF")) {
				t.Error("body should start with a UTF-8 BOM")
			}
			if got := rec.Header().Get("Content-Length"); got != fmt.Sprint(rec.Body.Len()) {
				t.Errorf("Content-Length = %s, body is %d bytes", got, rec.Body.Len())
			}
		})
	}
}

func TestConvert_TitleReachesDocument(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), http.MethodPost, "/convert", "application/json", `{"text":"x","title":"Quarterly"}`)

	if !strings.Contains(rec.Body.String(), "<title>Quarterly</title>") {
		t.Errorf("document should carry the requested title, got %q", rec.Body.String())
	}
}

func TestConvert_RecordsHistory(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, true)
	rec := do(t, srv.Handler(), http.MethodPost, "/convert", "application/json", `{"text":"# Saved"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	id := rec.Header().Get(HistoryIDHeader)
	if id == "" {
		t.Fatalf("missing %s header", HistoryIDHeader)
	}

	stored, err := store.Get(id)
	if err != nil {
		t.Fatalf("store.Get(%q) error = %v", id, err)
	}
	if stored.Input != "# Saved" {
		t.Errorf("stored input = %q, want %q", stored.Input, "# Saved")
	}
	if !stored.Timestamp.Equal(fixedTime) {
		t.Errorf("stored timestamp = %v, want %v", stored.Timestamp, fixedTime)
	}
}

// brokenWriter accepts headers but fails every body write, like a client
// that hung up mid-download.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestConvert_FailedDownloadNotRecorded(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, true)
	req := httptest.NewRequest(http.MethodPost, "/convert", strings.NewReader(`{"text":"# Lost"}`))
	req.Header.Set("Content-Type", "application/json")
	w := brokenWriter{httptest.NewRecorder()}
	srv.Handler().ServeHTTP(w, req)

	if w.Header().Get(HistoryIDHeader) == "" {
		t.Errorf("missing %s header before the body", HistoryIDHeader)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("store.List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d history records after a failed download, want 0", len(records))
	}
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		contentType string
		body        string
		wantStatus  int
	}{
		{"empty text", "application/json", `{"text":""}`, http.StatusBadRequest},
		{"whitespace text", "text/plain", " \n\t ", http.StatusBadRequest},
		{"malformed json", "application/json", `{"text":`, http.StatusBadRequest},
		{"body too large", "text/plain", strings.Repeat("a", 64), http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := New(Options{Converter: newTestConverter(t), MaxBodyBytes: 32})
			rec := do(t, srv.Handler(), http.MethodPost, "/convert", tt.contentType, tt.body)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			p := decodeProblem(t, rec)
			if p.Status != tt.wantStatus {
				t.Errorf("problem status = %d, want %d", p.Status, tt.wantStatus)
			}
		})
	}
}

func TestConvert_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), http.MethodGet, "/convert", "", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// TestPreview - Render without export
// ---------------------------------------------------------------------------

func TestPreview(t *testing.T) {
	t.Parallel()

	srv, store := newTestServer(t, true)
	rec := do(t, srv.Handler(), http.MethodPost, "/preview", "application/json", `{"text":"# Hi\n\n- a"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var got previewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Body != "<h1>Hi</h1><ul><li>a</li></ul>" {
		t.Errorf("body = %q", got.Body)
	}
	if got.BlockCount != 2 {
		t.Errorf("blockCount = %d, want 2", got.BlockCount)
	}
	if got.CharCount != len("# Hi\n\n- a") {
		t.Errorf("charCount = %d, want %d", got.CharCount, len("# Hi\n\n- a"))
	}
	if !strings.Contains(got.HTML, "<title>Document</title>") {
		t.Error("html should be the full document")
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(records) != 0 {
		t.Errorf("preview should not record history, got %d records", len(records))
	}
}

// ---------------------------------------------------------------------------
// TestHistory - Listing and re-export
// ---------------------------------------------------------------------------

func TestHistory_ListAndDownload(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)
	h := srv.Handler()

	first := do(t, h, http.MethodPost, "/convert", "text/plain", "first")
	second := do(t, h, http.MethodPost, "/convert", "text/plain", "second")
	firstID := first.Header().Get(HistoryIDHeader)

	rec := do(t, h, http.MethodGet, "/history", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var items []historyItem
	if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != second.Header().Get(HistoryIDHeader) || items[1].ID != firstID {
		t.Error("items should be newest first")
	}
	if items[1].Preview != "first" || items[1].CharCount != 5 {
		t.Errorf("item = %+v", items[1])
	}

	dl := do(t, h, http.MethodGet, "/history/"+firstID[:8]+"/download", "", "")
	if dl.Code != http.StatusOK {
		t.Fatalf("download status = %d, want 200; body: %s", dl.Code, dl.Body.String())
	}
	if !bytes.Equal(dl.Body.Bytes(), first.Body.Bytes()) {
		t.Error("re-export with the same clock should reproduce the original artifact")
	}
}

func TestHistory_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		withHistory bool
		target      string
		wantStatus  int
	}{
		{"list disabled", false, "/history", http.StatusNotFound},
		{"download disabled", false, "/history/abc/download", http.StatusNotFound},
		{"unknown id", true, "/history/nope/download", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv, _ := newTestServer(t, tt.withHistory)
			rec := do(t, srv.Handler(), http.MethodGet, tt.target, "", "")

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			decodeProblem(t, rec)
		})
	}
}

func TestHistory_EmptyList(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, true)
	rec := do(t, srv.Handler(), http.MethodGet, "/history", "", "")

	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
}

// ---------------------------------------------------------------------------
// TestHealth, TestCORS, TestRecovery - Middleware and misc routes
// ---------------------------------------------------------------------------

func TestHealth(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	rec := do(t, srv.Handler(), http.MethodGet, "/healthz", "", "")

	var got map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got["status"] != "ok" || got["version"] != "test" {
		t.Errorf("health = %v", got)
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	srv := New(Options{
		Converter:   newTestConverter(t),
		CORSOrigins: []string{"https://app.example.com"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/convert", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin should not be allowed, got %q", got)
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	h := recovery(srv.logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/", "", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	decodeProblem(t, rec)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"max bytes", &http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{"bad request", fmt.Errorf("%w: x", errBadRequest), http.StatusBadRequest},
		{"empty input", md2doc.ErrEmptyInput, http.StatusBadRequest},
		{"empty id", history.ErrEmptyID, http.StatusBadRequest},
		{"not found", history.ErrNotFound, http.StatusNotFound},
		{"ambiguous", history.ErrAmbiguousID, http.StatusConflict},
		{"canceled", context.Canceled, http.StatusServiceUnavailable},
		{"export", md2doc.ErrExportFailed, http.StatusInternalServerError},
		{"other", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestNew_NilConverterPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("New with nil converter should panic")
		}
	}()
	New(Options{})
}

// ---------------------------------------------------------------------------
// TestListenAndServe - Startup and graceful shutdown
// ---------------------------------------------------------------------------

func TestListenAndServe(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan net.Addr, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, "127.0.0.1:0", func(a net.Addr) { addrCh <- a })
	}()

	var addr net.Addr
	select {
	case addr = <-addrCh:
	case err := <-errCh:
		t.Fatalf("ListenAndServe() error = %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr.String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("ListenAndServe() after cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestListenAndServe_BadAddress(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	err := srv.ListenAndServe(context.Background(), "not-an-address", nil)
	if err == nil {
		t.Fatal("expected listen error")
	}
}

// ---------------------------------------------------------------------------
// TestMetrics - Prometheus exposition
// ---------------------------------------------------------------------------

func TestMetrics(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, false)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/convert", "text/plain", "# counted")
	do(t, h, http.MethodPost, "/convert", "text/plain", "")

	rec := do(t, h, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`md2doc_http_requests_total{route="POST /convert",status="200"} 1`,
		`md2doc_http_requests_total{route="POST /convert",status="400"} 1`,
		`md2doc_http_request_duration_seconds_count{route="POST /convert"} 2`,
		`md2doc_artifact_bytes_count 1`,
		`md2doc_conversions_in_flight 0`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	t.Parallel()

	first, _ := newTestServer(t, false)
	second, _ := newTestServer(t, false)

	do(t, first.Handler(), http.MethodGet, "/healthz", "", "")
	rec := do(t, second.Handler(), http.MethodGet, "/metrics", "", "")

	if strings.Contains(rec.Body.String(), `route="GET /healthz"`) {
		t.Error("servers should not share request counters")
	}
}
