package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/enrich"
	"github.com/JustTrott/team-6-betterfeed-full/internal/feed"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// FeedService builds the article page. The request path only touches the
// adapters and one batch lookup; scraping and LLM calls are deferred to the
// background queue.
type FeedService struct {
	aggregator    *feed.Aggregator
	repo          ports.ArticleRepository
	queue         ports.EnrichmentQueue
	truncateChars int
	logger        *slog.Logger
}

// NewFeedService wires the foreground pipeline.
func NewFeedService(aggregator *feed.Aggregator, repo ports.ArticleRepository, queue ports.EnrichmentQueue, truncateChars int, logger *slog.Logger) *FeedService {
	if truncateChars <= 0 {
		truncateChars = 300
	}
	return &FeedService{
		aggregator:    aggregator,
		repo:          repo,
		queue:         queue,
		truncateChars: truncateChars,
		logger:        logger,
	}
}

// BuildPage aggregates candidates, resolves them against the store and
// returns render-ready records. generateSummaries controls whether missing
// summaries are scheduled for background enrichment.
func (s *FeedService) BuildPage(ctx context.Context, limit int, generateSummaries bool) ([]domain.Record, error) {
	candidates := s.aggregator.FetchAll(ctx, limit)

	resolution, err := resolveCandidates(ctx, s.repo, candidates)
	if err != nil {
		// A storage hiccup must not degrade the response: serve everything
		// as new; the idempotent upsert absorbs the duplicate enrichment.
		s.warn("dedup lookup failed, serving candidates unresolved", "error", err)
		resolution = Resolution{New: dedupeByURL(candidates)}
	}

	items := make([]domain.Record, 0, len(resolution.Known)+len(resolution.New))
	var backlog []domain.EnrichmentTask

	for _, known := range resolution.Known {
		rec := known.Record
		if rec.Summary == "" {
			rec.Summary = s.placeholder(known.Candidate)
			rec.SummaryFallback = true
		}
		items = append(items, rec)

		if !known.Record.HasRealSummary() {
			stored := known.Record
			backlog = append(backlog, domain.EnrichmentTask{Candidate: known.Candidate, Record: &stored})
		}
	}

	now := time.Now().UTC()
	for _, c := range resolution.New {
		id := uuid.New().String()
		items = append(items, domain.Record{
			ID:              id,
			SourceURL:       c.SourceURL,
			Title:           c.Title,
			Summary:         s.placeholder(c),
			SummaryFallback: true,
			Provider:        c.Provider,
			Category:        c.Category,
			ThumbnailURL:    c.ThumbnailURL,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		backlog = append(backlog, domain.EnrichmentTask{Candidate: c, RecordID: id})
	}

	if generateSummaries && s.queue != nil && len(backlog) > 0 {
		s.queue.Enqueue(backlog)
	}

	return items, nil
}

// placeholder is the request path's zero-I/O summary: the abstract when the
// provider supplied one, otherwise the deterministic template.
func (s *FeedService) placeholder(c domain.Candidate) string {
	if abstract := enrich.Truncate(c.Abstract, s.truncateChars); abstract != "" {
		return abstract
	}
	return enrich.FallbackSummary(c)
}

func dedupeByURL(candidates []domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	unique := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.SourceURL == "" {
			continue
		}
		if _, ok := seen[c.SourceURL]; ok {
			continue
		}
		seen[c.SourceURL] = struct{}{}
		unique = append(unique, c)
	}
	return unique
}

func (s *FeedService) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
