package provider

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/JustTrott/team-6-betterfeed-full/internal/config"
	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// NewsAPIAdapter pulls top headlines from NewsAPI. The API requires a key;
// without one the adapter stays registered but behaves as a permanently
// empty source, logged once.
type NewsAPIAdapter struct {
	baseURL      string
	apiKey       string
	newsCategory string
	client       *http.Client
	logger       *slog.Logger
	disabledOnce sync.Once
}

var _ ports.FeedAdapter = (*NewsAPIAdapter)(nil)

// NewNewsAPIAdapter wires the adapter; a nil client gets the configured timeout.
func NewNewsAPIAdapter(cfg config.NewsAPIConfig, client *http.Client, logger *slog.Logger) *NewsAPIAdapter {
	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &NewsAPIAdapter{
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		newsCategory: cfg.NewsCategory,
		client:       client,
		logger:       logger,
	}
}

// Name identifies the adapter inside the registry.
func (n *NewsAPIAdapter) Name() string {
	return "newsapi"
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
}

// Fetch queries top headlines. A missing API key disables the source.
func (n *NewsAPIAdapter) Fetch(ctx context.Context, limit int) []domain.Candidate {
	if limit <= 0 || n.baseURL == "" {
		return nil
	}
	if n.apiKey == "" {
		n.disabledOnce.Do(func() {
			n.warn("no API key configured, source disabled")
		})
		return nil
	}

	parsed, err := url.Parse(n.baseURL)
	if err != nil {
		n.warn("invalid base url", "error", err)
		return nil
	}
	query := parsed.Query()
	query.Set("category", n.newsCategory)
	query.Set("pageSize", strconv.Itoa(limit))
	query.Set("language", "en")
	parsed.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		n.warn("build request", "error", err)
		return nil
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Api-Key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		n.warn("request headlines", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.warn("unexpected status", "status", resp.Status)
		return nil
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		n.warn("decode response", "error", err)
		return nil
	}
	if payload.Status != "ok" {
		n.warn("api reported failure", "status", payload.Status)
		return nil
	}

	candidates := make([]domain.Candidate, 0, len(payload.Articles))
	for _, art := range payload.Articles {
		if art.Title == "" || art.URL == "" {
			continue
		}

		publishedAt := time.Now().UTC()
		if parsed, err := time.Parse(time.RFC3339, art.PublishedAt); err == nil {
			publishedAt = parsed
		}

		candidates = append(candidates, domain.Candidate{
			Title:        art.Title,
			SourceURL:    art.URL,
			Provider:     n.Name(),
			Category:     domain.CategoryNews,
			Abstract:     art.Description,
			ThumbnailURL: art.URLToImage,
			PublishedAt:  publishedAt,
		})
		if len(candidates) >= limit {
			break
		}
	}

	return candidates
}

func (n *NewsAPIAdapter) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}
