// Package provider implements the closed set of source adapters. Each
// adapter normalizes one provider's wire format into domain.Candidate and
// never surfaces failures to the caller: a broken source is an empty source.
package provider

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JustTrott/team-6-betterfeed-full/internal/config"
	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

const userAgent = "betterfeed/1.0 (article aggregation; contact: team6@betterfeed.app)"

var whitespaceExpr = regexp.MustCompile(`\s+`)

// ArxivAdapter pulls recent submissions from the arXiv Atom export API.
// Abstract pages block crawlers and full texts are PDFs, so candidates are
// marked SkipExtraction and rely on the Atom <summary> abstract instead.
type ArxivAdapter struct {
	baseURL    string
	categories []string
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.FeedAdapter = (*ArxivAdapter)(nil)

// NewArxivAdapter wires the adapter; a nil client gets the configured timeout.
func NewArxivAdapter(cfg config.ArxivConfig, client *http.Client, logger *slog.Logger) *ArxivAdapter {
	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &ArxivAdapter{
		baseURL:    cfg.BaseURL,
		categories: cfg.Categories,
		client:     client,
		logger:     logger,
	}
}

// Name identifies the adapter inside the registry.
func (a *ArxivAdapter) Name() string {
	return "arxiv"
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string     `xml:"id"`
	Title     string     `xml:"title"`
	Summary   string     `xml:"summary"`
	Published string     `xml:"published"`
	Links     []atomLink `xml:"link"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// Fetch queries the export API for the configured categories. Failures are
// logged and produce an empty slice.
func (a *ArxivAdapter) Fetch(ctx context.Context, limit int) []domain.Candidate {
	if limit <= 0 || a.baseURL == "" {
		return nil
	}

	queryURL, err := a.buildQueryURL(limit)
	if err != nil {
		a.warn("build query url", "error", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		a.warn("build request", "error", err)
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		a.warn("request feed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		a.warn("unexpected status", "status", resp.Status)
		return nil
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		a.warn("decode atom feed", "error", err)
		return nil
	}

	candidates := make([]domain.Candidate, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		candidate, ok := a.toCandidate(entry)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
		if len(candidates) >= limit {
			break
		}
	}

	return candidates
}

func (a *ArxivAdapter) buildQueryURL(limit int) (string, error) {
	parsed, err := url.Parse(a.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", a.baseURL, err)
	}

	terms := make([]string, 0, len(a.categories))
	for _, cat := range a.categories {
		terms = append(terms, "cat:"+cat)
	}
	if len(terms) == 0 {
		terms = append(terms, "cat:cs.AI")
	}

	query := parsed.Query()
	query.Set("search_query", strings.Join(terms, " OR "))
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	query.Set("max_results", strconv.Itoa(limit))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func (a *ArxivAdapter) toCandidate(entry atomEntry) (domain.Candidate, bool) {
	title := collapseWhitespace(entry.Title)
	if title == "" {
		return domain.Candidate{}, false
	}

	sourceURL := entry.ID
	for _, link := range entry.Links {
		if link.Rel == "alternate" && link.Type == "text/html" {
			sourceURL = link.Href
			break
		}
	}
	if sourceURL == "" {
		return domain.Candidate{}, false
	}

	publishedAt := time.Now().UTC()
	if parsed, err := time.Parse(time.RFC3339, entry.Published); err == nil {
		publishedAt = parsed
	}

	return domain.Candidate{
		Title:          title,
		SourceURL:      sourceURL,
		Provider:       a.Name(),
		Category:       domain.CategoryResearch,
		Abstract:       collapseWhitespace(entry.Summary),
		PublishedAt:    publishedAt,
		SkipExtraction: true,
	}, true
}

func (a *ArxivAdapter) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(s, " "))
}
