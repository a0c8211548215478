package edgar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const filingIndexPage = `<html><body>
<table class="tableFile">
  <tr><th>Seq</th><th>Description</th><th>Document</th></tr>
  <tr>
    <td>1</td>
    <td>EXHIBIT 31.1</td>
    <td><a href="/ix?doc=/Archives/edgar/data/320193/000032019323000106/exhibit311.htm">Exhibit 31.1</a></td>
  </tr>
  <tr>
    <td>2</td>
    <td>10-K</td>
    <td><a href="/ix?doc=/Archives/edgar/data/320193/000032019323000106/aapl-20230930.htm">aapl-20230930.htm</a></td>
  </tr>
  <tr>
    <td>3</td>
    <td>Complete submission text file</td>
    <td><a href="/Archives/edgar/data/320193/000032019323000106/0000320193-23-000106.txt">0000320193-23-000106.txt</a></td>
  </tr>
</table>
</body></html>`

func TestPrimaryDocumentURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(filingIndexPage))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	docURL, ok, err := c.PrimaryDocumentURL(context.Background(), srv.URL+"/index.htm")
	if err != nil {
		t.Fatalf("PrimaryDocumentURL() error: %v", err)
	}
	if !ok {
		t.Fatal("PrimaryDocumentURL() found no document link")
	}

	// The exhibit viewer link comes first in the page but must be passed
	// over; the filing's own document is the first non-exhibit viewer link.
	expected := srv.URL + "/Archives/edgar/data/320193/000032019323000106/aapl-20230930.htm"
	if docURL != expected {
		t.Errorf("docURL = %q, want %q", docURL, expected)
	}
}

func TestPrimaryDocumentURLNoViewerLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><a href="/Archives/plain.txt">plain</a></body></html>`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	docURL, ok, err := c.PrimaryDocumentURL(context.Background(), srv.URL+"/index.htm")
	if err != nil {
		t.Fatalf("PrimaryDocumentURL() error: %v", err)
	}
	if ok || docURL != "" {
		t.Errorf("got (%q, %v), want no document link", docURL, ok)
	}
}

func TestPrimaryDocumentURLIndexFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, _, err := c.PrimaryDocumentURL(context.Background(), srv.URL+"/index.htm")
	if err == nil {
		t.Fatal("PrimaryDocumentURL() should report an unreachable index page")
	}
}
