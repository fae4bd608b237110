package invoke

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bobmcallan/free-apis-mcp/internal/catalog"
	"github.com/bobmcallan/free-apis-mcp/internal/common"
	"github.com/bobmcallan/free-apis-mcp/internal/config"
)

// --- Helpers ---

func testProxy() *Proxy {
	return NewProxy(config.NewDefaultConfig().Proxy, common.NewSilentLogger())
}

// countingServer counts requests and answers with handler.
func countingServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func callErrorKind(t *testing.T, err error) *CallError {
	t.Helper()
	var ce *CallError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CallError, got %T: %v", err, err)
	}
	return ce
}

// --- Call: success paths ---

func TestCall_JSONIsPrettyPrinted(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"a":1}`))
	})

	res, err := testProxy().Call(context.Background(), srv.URL, "GET")
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if !res.JSON {
		t.Error("expected JSON result")
	}
	if res.Text != "{\n  \"a\": 1\n}" {
		t.Errorf("unexpected pretty JSON %q", res.Text)
	}
	if res.Status != http.StatusOK {
		t.Errorf("expected status 200, got %d", res.Status)
	}
	if res.ContentType != "application/json" {
		t.Errorf("expected content type application/json, got %s", res.ContentType)
	}
}

func TestCall_JSONKeepsKeyOrder(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("  {\"zeta\": [1, 2], \"alpha\": {\"b\": null}}\n"))
	})

	res, err := testProxy().Call(context.Background(), srv.URL, "")
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"zeta\": [\n    1,\n    2\n  ],\n  \"alpha\": {\n    \"b\": null\n  }\n}"
	if res.Text != want {
		t.Errorf("expected\n%s\ngot\n%s", want, res.Text)
	}
}

func TestCall_PlainTextIsReturnedVerbatim(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("hello"))
	})

	res, err := testProxy().Call(context.Background(), srv.URL, "GET")
	if err != nil {
		t.Fatal(err)
	}
	if res.JSON {
		t.Error("plain text must not be reported as JSON")
	}
	if res.Text != "hello" {
		t.Errorf("expected hello, got %q", res.Text)
	}
}

func TestCall_PlainTextIsTruncated(t *testing.T) {
	body := strings.Repeat("é", 6000)
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})

	res, err := testProxy().Call(context.Background(), srv.URL, "GET")
	if err != nil {
		t.Fatal(err)
	}
	if got := len([]rune(res.Text)); got != 5000 {
		t.Errorf("expected 5000 characters, got %d", got)
	}
}

func TestCall_JSONWithByteOrderMark(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("\ufeff{\"a\":1}"))
	})

	res, err := testProxy().Call(context.Background(), srv.URL, "GET")
	if err != nil {
		t.Fatal(err)
	}
	if !res.JSON {
		t.Fatalf("BOM-prefixed JSON should be parsed as JSON, got %q", res.Text)
	}
	if res.Text != "{\n  \"a\": 1\n}" {
		t.Errorf("unexpected pretty JSON %q", res.Text)
	}
}

func TestCall_ResponseSizeLimit(t *testing.T) {
	jsonBody := `{"items": [` + strings.Repeat(`"abcdefghij",`, 15) + `"end"]}`
	textBody := strings.Repeat("x", 300)

	tests := []struct {
		name        string
		contentType string
		body        string
		limit       int64
		wantErr     bool
		wantJSON    bool
		wantLen     int
	}{
		{"json under limit", "application/json", jsonBody, int64(len(jsonBody)), false, true, 0},
		{"json over limit", "application/json", jsonBody, 100, true, false, 0},
		{"json sniffed over limit", "text/plain", jsonBody, 100, true, false, 0},
		{"text over limit is cut", "text/plain", textBody, 100, false, false, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte(tt.body))
			})

			cfg := config.NewDefaultConfig().Proxy
			cfg.MaxResponseBytes = tt.limit
			p := NewProxy(cfg, common.NewSilentLogger())

			res, err := p.Call(context.Background(), srv.URL, "GET")
			if tt.wantErr {
				ce := callErrorKind(t, err)
				if ce.Kind != KindTooLarge {
					t.Fatalf("expected too_large, got %s", ce.Kind)
				}
				if ce.Error() != "Response too large: JSON body exceeds 100 bytes" {
					t.Errorf("unexpected message %q", ce.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Call failed: %v", err)
			}
			if res.JSON != tt.wantJSON {
				t.Errorf("expected JSON=%v, got %v", tt.wantJSON, res.JSON)
			}
			if tt.wantLen > 0 && len(res.Text) != tt.wantLen {
				t.Errorf("expected %d bytes of text, got %d", tt.wantLen, len(res.Text))
			}
		})
	}
}

func TestCall_EmptyBody(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	res, err := testProxy().Call(context.Background(), srv.URL, "GET")
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "" || res.JSON {
		t.Errorf("expected empty text result, got %+v", res)
	}
}

func TestCall_Methods(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{"", http.MethodGet},
		{"GET", http.MethodGet},
		{"get", http.MethodGet},
		{"POST", http.MethodPost},
		{" post ", http.MethodPost},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != tt.want {
					t.Errorf("expected %s, got %s", tt.want, r.Method)
				}
				body, _ := io.ReadAll(r.Body)
				if len(body) != 0 {
					t.Errorf("expected no request body, got %q", body)
				}
				w.Write([]byte(`[]`))
			})
			if _, err := testProxy().Call(context.Background(), srv.URL, tt.method); err != nil {
				t.Fatalf("Call failed: %v", err)
			}
		})
	}
}

func TestCall_SetsUserAgent(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "free-apis-mcp/") {
			t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
		}
	})
	if _, err := testProxy().Call(context.Background(), srv.URL, "GET"); err != nil {
		t.Fatal(err)
	}
}

// --- Call: failure paths ---

func TestCall_UnsupportedMethodMakesNoRequest(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {})

	for _, m := range []string{"PUT", "DELETE", "patch"} {
		_, err := testProxy().Call(context.Background(), srv.URL, m)
		var um *UnsupportedMethodError
		if !errors.As(err, &um) {
			t.Fatalf("%s: expected UnsupportedMethodError, got %v", m, err)
		}
		if err.Error() != "Unsupported method: "+m {
			t.Errorf("unexpected message %q", err.Error())
		}
	}
	if n := atomic.LoadInt32(hits); n != 0 {
		t.Errorf("expected no requests, got %d", n)
	}
}

func TestCall_HTTPStatusError(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(strings.Repeat("x", 800)))
	})

	_, err := testProxy().Call(context.Background(), srv.URL, "GET")
	ce := callErrorKind(t, err)
	if ce.Kind != KindHTTPStatus {
		t.Fatalf("expected KindHTTPStatus, got %s", ce.Kind)
	}
	if ce.Status != http.StatusNotFound {
		t.Errorf("expected 404, got %d", ce.Status)
	}
	if len(ce.Body) != 500 {
		t.Errorf("expected body truncated to 500, got %d", len(ce.Body))
	}
	if !strings.HasPrefix(err.Error(), "HTTP 404: xxx") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestCall_ServerErrorWithJSONBody(t *testing.T) {
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})

	_, err := testProxy().Call(context.Background(), srv.URL, "POST")
	ce := callErrorKind(t, err)
	if ce.Kind != KindHTTPStatus || ce.Status != 500 {
		t.Fatalf("expected HTTP 500 error, got %+v", ce)
	}
	if err.Error() != `HTTP 500: {"error":"boom"}` {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestCall_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv, _ := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	p := testProxy()
	p.timeout = 50 * time.Millisecond
	p.httpClient.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := p.Call(context.Background(), srv.URL, "GET")
	ce := callErrorKind(t, err)
	if ce.Kind != KindTimeout {
		t.Fatalf("expected KindTimeout, got %s (%v)", ce.Kind, ce.Err)
	}
	if err.Error() != "Request timed out" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if time.Since(start) > 5*time.Second {
		t.Error("call outlived its timeout")
	}
}

func TestCall_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := testProxy().Call(context.Background(), url, "GET")
	ce := callErrorKind(t, err)
	if ce.Kind != KindTransport {
		t.Fatalf("expected KindTransport, got %s", ce.Kind)
	}
	if err.Error() == "" {
		t.Error("transport error should carry a message")
	}
}

func TestCall_InvalidURL(t *testing.T) {
	_, err := testProxy().Call(context.Background(), "://not a url", "GET")
	if ce := callErrorKind(t, err); ce.Kind != KindTransport {
		t.Errorf("expected KindTransport, got %s", ce.Kind)
	}
}

func TestErrorKind_String(t *testing.T) {
	for kind, want := range map[ErrorKind]string{
		KindTimeout:    "timeout",
		KindHTTPStatus: "http_status",
		KindTransport:  "transport",
		KindTooLarge:   "too_large",
		ErrorKind(0):   "unknown",
	} {
		if kind.String() != want {
			t.Errorf("expected %s, got %s", want, kind.String())
		}
	}
}

// --- QuickTest ---

type stubResolver struct {
	records map[string]catalog.Record
}

func (s stubResolver) GetAPI(_ context.Context, name string) (catalog.Record, error) {
	if r, ok := s.records[strings.ToLower(name)]; ok {
		return r, nil
	}
	return catalog.Record{}, &catalog.NotFoundError{Name: name}
}

func TestQuickTest_CallsTestURL(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		w.Write([]byte(`{"ok":true}`))
	})
	res := stubResolver{records: map[string]catalog.Record{
		"open-meteo": {API: catalog.API{Name: "Open-Meteo", Auth: catalog.AuthNone, TestURL: srv.URL + "/ping"}},
	}}

	out, err := testProxy().QuickTest(context.Background(), res, "OPEN-METEO")
	if err != nil {
		t.Fatalf("QuickTest failed: %v", err)
	}
	if out.Text != "{\n  \"ok\": true\n}" {
		t.Errorf("unexpected result %q", out.Text)
	}
	if atomic.LoadInt32(hits) != 1 {
		t.Errorf("expected 1 request, got %d", *hits)
	}
}

func TestQuickTest_NoTestURLMakesNoRequest(t *testing.T) {
	srv, hits := countingServer(t, func(w http.ResponseWriter, r *http.Request) {})
	res := stubResolver{records: map[string]catalog.Record{
		"spotify": {API: catalog.API{Name: "Spotify", Auth: catalog.AuthOAuth, URL: srv.URL}},
	}}

	_, err := testProxy().QuickTest(context.Background(), res, "spotify")
	var nt *NoTestURLError
	if !errors.As(err, &nt) {
		t.Fatalf("expected NoTestURLError, got %v", err)
	}
	if nt.Name != "Spotify" {
		t.Errorf("expected catalog name Spotify, got %s", nt.Name)
	}
	if !strings.Contains(nt.Hint(), "authentication") {
		t.Errorf("hint should mention authentication, got %q", nt.Hint())
	}
	if atomic.LoadInt32(hits) != 0 {
		t.Error("no request expected")
	}
}

func TestQuickTest_NotFound(t *testing.T) {
	_, err := testProxy().QuickTest(context.Background(), stubResolver{}, "ghost")
	if !catalog.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err.Error() != "API 'ghost' not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

// --- truncate ---

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
