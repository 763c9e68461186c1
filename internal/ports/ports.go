package ports

import (
	"context"

	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
)

// FeedAdapter pulls candidates from one external provider. Implementations
// own their request shape, auth and timeout, and swallow every failure: on
// error they log a diagnostic and return an empty slice, never an error.
type FeedAdapter interface {
	Name() string
	Fetch(ctx context.Context, limit int) []domain.Candidate
}

// ArticleRepository persists URL-keyed article records. FindByURLs is a
// single batch round trip; callers never issue per-row lookups in a loop.
type ArticleRepository interface {
	FindByURLs(ctx context.Context, urls []string) ([]domain.Record, error)
	Insert(ctx context.Context, rec domain.Record) (domain.Record, error)
	Update(ctx context.Context, id string, fields domain.RecordUpdate) (domain.Record, error)
}

// Summarizer produces a short summary of article text, bounded by maxWords.
type Summarizer interface {
	Summarize(ctx context.Context, title, text string, maxWords int) (string, error)
}

// Extractor fetches a page and returns its readable article text.
type Extractor interface {
	Extract(ctx context.Context, pageURL string) (string, error)
}

// Enricher derives the best available summary for a candidate; fallback is
// true when the result is placeholder-grade.
type Enricher interface {
	Summarize(ctx context.Context, c domain.Candidate) (summary string, fallback bool)
}

// EnrichmentQueue accepts tasks for background summarization after the
// response has been sent. Enqueue never blocks the caller.
type EnrichmentQueue interface {
	Enqueue(tasks []domain.EnrichmentTask)
}
