package provider

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/JustTrott/team-6-betterfeed-full/internal/config"
	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// RSSAdapter pulls items from configured RSS/Atom feeds through gofeed.
// Item descriptions double as cheap abstracts; full content, when the feed
// carries it, spares a page fetch during enrichment.
type RSSAdapter struct {
	feeds  []config.RSSFeedConfig
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ ports.FeedAdapter = (*RSSAdapter)(nil)

// NewRSSAdapter wires the gofeed parser; a nil client gets the configured timeout.
func NewRSSAdapter(cfg config.RSSConfig, client *http.Client, logger *slog.Logger) *RSSAdapter {
	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent

	return &RSSAdapter{feeds: cfg.Feeds, parser: parser, logger: logger}
}

// Name identifies the adapter inside the registry.
func (r *RSSAdapter) Name() string {
	return "rss"
}

// Fetch parses every configured feed and splits the limit across them. A
// broken feed only loses its own share.
func (r *RSSAdapter) Fetch(ctx context.Context, limit int) []domain.Candidate {
	if limit <= 0 || len(r.feeds) == 0 {
		return nil
	}

	perFeed := limit / len(r.feeds)
	if perFeed < 1 {
		perFeed = 1
	}

	var candidates []domain.Candidate
	for _, feedCfg := range r.feeds {
		parsed, err := r.parser.ParseURLWithContext(feedCfg.URL, ctx)
		if err != nil {
			r.warn("parse feed", "feed", feedCfg.Name, "error", err)
			continue
		}

		taken := 0
		for _, item := range parsed.Items {
			if item == nil || item.Title == "" || item.Link == "" {
				continue
			}

			publishedAt := time.Now().UTC()
			if item.PublishedParsed != nil {
				publishedAt = item.PublishedParsed.UTC()
			}

			thumbnail := ""
			if item.Image != nil {
				thumbnail = item.Image.URL
			}

			candidates = append(candidates, domain.Candidate{
				Title:        item.Title,
				SourceURL:    item.Link,
				Provider:     r.Name(),
				Category:     feedCategory(feedCfg.Category),
				Abstract:     item.Description,
				Content:      item.Content,
				ThumbnailURL: thumbnail,
				PublishedAt:  publishedAt,
			})
			taken++
			if taken >= perFeed || len(candidates) >= limit {
				break
			}
		}
		if len(candidates) >= limit {
			break
		}
	}

	return candidates
}

func feedCategory(value string) domain.Category {
	switch domain.Category(value) {
	case domain.CategoryResearch, domain.CategoryTech, domain.CategoryNews, domain.CategoryProgramming:
		return domain.Category(value)
	default:
		return domain.CategoryGeneral
	}
}

func (r *RSSAdapter) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
