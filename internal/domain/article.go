package domain

import "time"

// Category is the closed taxonomy presented to feed clients. Adapters map
// provider-specific sections onto it.
type Category string

const (
	CategoryResearch    Category = "research"
	CategoryTech        Category = "tech"
	CategoryNews        Category = "news"
	CategoryProgramming Category = "programming"
	CategoryGeneral     Category = "general"
)

// Candidate is an in-memory item produced by a source adapter for one
// request. It is never persisted directly; SourceURL is its identity.
type Candidate struct {
	Title        string
	SourceURL    string
	Provider     string
	Category     Category
	Abstract     string // provider-supplied short text, may be empty
	Content      string // full text already carried by the feed item, may be empty
	ThumbnailURL string
	PublishedAt  time.Time

	// SkipExtraction marks pages that must not be scraped (binary
	// documents, abstract pages that block crawlers).
	SkipExtraction bool
}

// Record is the persisted, URL-keyed entity representing one unique article
// across all requests and providers.
type Record struct {
	ID              string
	SourceURL       string
	Title           string
	Summary         string // empty until enrichment has produced one
	SummaryFallback bool   // Summary is a templated/truncated placeholder
	Provider        string
	Category        Category
	ThumbnailURL    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasRealSummary reports whether the record already carries a
// non-placeholder summary. Such summaries are never overwritten.
func (r Record) HasRealSummary() bool {
	return r.Summary != "" && !r.SummaryFallback
}

// RecordUpdate names the mutable fields of a record; nil leaves a field
// untouched. Summary writes are guarded by the store so a placeholder can
// never clobber a real summary.
type RecordUpdate struct {
	Title           *string
	Summary         *string
	SummaryFallback *bool
}

// EnrichmentTask queues one candidate for background summarization. Record
// is nil when the candidate has not been persisted yet; RecordID then carries
// the id already served to clients, so the eventual insert resolves under it.
type EnrichmentTask struct {
	Candidate Candidate
	Record    *Record
	RecordID  string
}
