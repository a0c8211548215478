package edgar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/seenimoa/edgarfetch/internal/config"
)

// newTestClient builds a client pointed at a test server, with the rate
// gate effectively open so tests do not sleep.
func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(config.EdgarConfig{
		UserAgent:         "edgarfetch tests test@example.com",
		RequestsPerSecond: 1000,
		TimeoutSeconds:    5,
		BaseURL:           baseURL,
		SearchURL:         baseURL + "/cgi-bin/browse-edgar",
		TickersURL:        baseURL + "/files/company_tickers.json",
	})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func TestNewClientRequiresUserAgent(t *testing.T) {
	_, err := NewClient(config.EdgarConfig{UserAgent: "   "})
	if err == nil {
		t.Fatal("NewClient() with blank user agent should fail")
	}
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error type = %T, want *ConfigurationError", err)
	}
}

func TestFetchSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	body, err := c.Fetch(context.Background(), srv.URL+"/anything")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("Fetch() body = %q, want %q", body, "ok")
	}
	if gotUA != "edgarfetch tests test@example.com" {
		t.Errorf("User-Agent = %q, want the configured identifying string", gotUA)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Fetch(context.Background(), srv.URL+"/missing")
	if err == nil {
		t.Fatal("Fetch() on 404 should fail")
	}
	var netErr *TransientNetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error type = %T, want *TransientNetworkError", err)
	}
	if netErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", netErr.StatusCode)
	}
}

func TestFetchConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listening anymore

	c := newTestClient(t, url)
	_, err := c.Fetch(context.Background(), url)
	if err == nil {
		t.Fatal("Fetch() against a closed server should fail")
	}
	var netErr *TransientNetworkError
	if !errors.As(err, &netErr) {
		t.Errorf("error type = %T, want *TransientNetworkError", err)
	}
}

func TestFetchWithContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, contentType, err := c.FetchWithContentType(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("FetchWithContentType() error: %v", err)
	}
	if contentType != "text/html; charset=iso-8859-1" {
		t.Errorf("contentType = %q", contentType)
	}
}

func TestAbsoluteURL(t *testing.T) {
	c := newTestClient(t, "https://registry.example")
	tests := []struct {
		href     string
		expected string
	}{
		{"/Archives/doc.htm", "https://registry.example/Archives/doc.htm"},
		{"Archives/doc.htm", "https://registry.example/Archives/doc.htm"},
		{"https://elsewhere.example/doc.htm", "https://elsewhere.example/doc.htm"},
	}
	for _, tt := range tests {
		if got := c.absoluteURL(tt.href); got != tt.expected {
			t.Errorf("absoluteURL(%q) = %q, want %q", tt.href, got, tt.expected)
		}
	}
}
