package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/JustTrott/team-6-betterfeed-full/internal/config"
	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

const hnItemURL = "https://news.ycombinator.com/item?id="

// HackerNewsAdapter pulls front-page stories from the Algolia HN search API.
// Stories carry no abstract, so enrichment always needs page extraction.
type HackerNewsAdapter struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

var _ ports.FeedAdapter = (*HackerNewsAdapter)(nil)

// NewHackerNewsAdapter wires the adapter; a nil client gets the configured timeout.
func NewHackerNewsAdapter(cfg config.HackerNewsConfig, client *http.Client, logger *slog.Logger) *HackerNewsAdapter {
	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HackerNewsAdapter{baseURL: cfg.BaseURL, client: client, logger: logger}
}

// Name identifies the adapter inside the registry.
func (h *HackerNewsAdapter) Name() string {
	return "hackernews"
}

type hnSearchResponse struct {
	Hits []hnHit `json:"hits"`
}

type hnHit struct {
	ObjectID  string `json:"objectID"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}

// Fetch queries the search API for current front-page stories.
func (h *HackerNewsAdapter) Fetch(ctx context.Context, limit int) []domain.Candidate {
	if limit <= 0 || h.baseURL == "" {
		return nil
	}

	parsed, err := url.Parse(h.baseURL)
	if err != nil {
		h.warn("invalid base url", "error", err)
		return nil
	}
	query := parsed.Query()
	query.Set("tags", "front_page")
	query.Set("hitsPerPage", strconv.Itoa(limit))
	parsed.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		h.warn("build request", "error", err)
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		h.warn("request stories", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		h.warn("unexpected status", "status", resp.Status)
		return nil
	}

	var payload hnSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		h.warn("decode response", "error", err)
		return nil
	}

	candidates := make([]domain.Candidate, 0, len(payload.Hits))
	for _, hit := range payload.Hits {
		if hit.Title == "" {
			continue
		}

		// Ask HN and similar stories have no external URL; link the
		// discussion page instead.
		sourceURL := hit.URL
		if sourceURL == "" {
			if hit.ObjectID == "" {
				continue
			}
			sourceURL = hnItemURL + hit.ObjectID
		}

		publishedAt := time.Now().UTC()
		if parsed, err := time.Parse(time.RFC3339, hit.CreatedAt); err == nil {
			publishedAt = parsed
		}

		candidates = append(candidates, domain.Candidate{
			Title:       hit.Title,
			SourceURL:   sourceURL,
			Provider:    h.Name(),
			Category:    domain.CategoryTech,
			PublishedAt: publishedAt,
		})
		if len(candidates) >= limit {
			break
		}
	}

	return candidates
}

func (h *HackerNewsAdapter) warn(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Warn(msg, args...)
	}
}
