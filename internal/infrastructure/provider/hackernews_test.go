package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JustTrott/team-6-betterfeed-full/internal/config"
	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
)

const hnFixture = `{
  "hits": [
    {"objectID": "100", "title": "Show HN: A tiny allocator", "url": "https://example.com/allocator", "created_at": "2025-02-01T10:00:00Z"},
    {"objectID": "101", "title": "Ask HN: Favorite paper?", "url": "", "created_at": "2025-02-01T11:00:00Z"},
    {"objectID": "102", "title": "", "url": "https://example.com/ignored"}
  ]
}`

func TestHackerNewsFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("tags") != "front_page" {
			t.Errorf("tags = %s, want front_page", r.URL.Query().Get("tags"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(hnFixture))
	}))
	defer server.Close()

	adapter := NewHackerNewsAdapter(config.HackerNewsConfig{BaseURL: server.URL}, server.Client(), nil)
	candidates := adapter.Fetch(context.Background(), 10)

	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates (titleless hit dropped), got %d", len(candidates))
	}

	if candidates[0].SourceURL != "https://example.com/allocator" {
		t.Fatalf("wrong url: %s", candidates[0].SourceURL)
	}
	if candidates[0].Category != domain.CategoryTech {
		t.Fatalf("category = %s, want tech", candidates[0].Category)
	}

	// Ask HN stories link their discussion page.
	if !strings.Contains(candidates[1].SourceURL, "item?id=101") {
		t.Fatalf("ask-hn story should link the item page, got %s", candidates[1].SourceURL)
	}
}

func TestHackerNewsFetchSwallowsNetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	adapter := NewHackerNewsAdapter(config.HackerNewsConfig{BaseURL: server.URL}, nil, nil)
	if got := adapter.Fetch(context.Background(), 5); len(got) != 0 {
		t.Fatalf("expected empty result on network error, got %d", len(got))
	}
}
