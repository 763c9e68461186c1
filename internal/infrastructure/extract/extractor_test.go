package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Test</title><script>var tracker = "evil";</script></head>
<body>
  <nav><p>Home | About | Contact us for subscriptions and much more content</p></nav>
  <header><p>The Daily Build, your morning source of infrastructure news!</p></header>
  <article>
    <p>Concurrent aggregation pipelines pull candidate items from several independent sources and merge whatever arrives.</p>
    <p>Posted: yesterday</p>
    <p>Partial failure tolerance means a broken provider only costs its own share of the page, never the whole response.</p>
  </article>
  <footer><p>All rights reserved. Subscribe to our newsletter for more excellent content.</p></footer>
</body>
</html>`

func TestExtractPullsArticleParagraphs(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	extractor := New(server.Client(), 60, nil)
	text, err := extractor.Extract(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if !strings.Contains(text, "Concurrent aggregation pipelines") {
		t.Fatalf("article text missing: %q", text)
	}
	if strings.Contains(text, "evil") {
		t.Fatal("script content leaked into extraction")
	}
	if strings.Contains(text, "Posted: yesterday") {
		t.Fatal("timestamp boilerplate should be filtered")
	}
}

func TestExtractRejectsNonHTML(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer server.Close()

	extractor := New(server.Client(), 60, nil)
	if _, err := extractor.Extract(context.Background(), server.URL); err == nil {
		t.Fatal("binary responses must be rejected")
	}
}

func TestExtractRefusesPDFURLs(t *testing.T) {
	t.Parallel()

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	extractor := New(server.Client(), 60, nil)
	if _, err := extractor.Extract(context.Background(), server.URL+"/paper.pdf"); err == nil {
		t.Fatal("pdf urls must be rejected")
	}
	if requests != 0 {
		t.Fatalf("pdf url should be rejected before fetching, saw %d requests", requests)
	}
}

func TestExtractErrorsOnServerFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	extractor := New(server.Client(), 60, nil)
	if _, err := extractor.Extract(context.Background(), server.URL); err == nil {
		t.Fatal("non-200 responses must surface as errors")
	}
}
