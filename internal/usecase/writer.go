package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JustTrott/team-6-betterfeed-full/internal/domain"
	"github.com/JustTrott/team-6-betterfeed-full/internal/ports"
)

// Writer idempotently creates or updates records. It never downgrades a
// summary: the repository's guard keeps real summaries immutable even when
// overlapping requests race on the same URL.
type Writer struct {
	repo   ports.ArticleRepository
	logger *slog.Logger
}

// NewWriter wires the repository.
func NewWriter(repo ports.ArticleRepository, logger *slog.Logger) *Writer {
	return &Writer{repo: repo, logger: logger}
}

// Upsert persists the task's candidate with its computed summary. Known
// records are patched in place; new ones are inserted under the id the
// foreground already handed out, when it did.
func (w *Writer) Upsert(ctx context.Context, task domain.EnrichmentTask, summary string, fallback bool) (domain.Record, error) {
	if w.repo == nil {
		return domain.Record{}, fmt.Errorf("writer has no repository")
	}

	c := task.Candidate
	if rec := task.Record; rec != nil {
		fields := domain.RecordUpdate{Title: &c.Title}
		if summary != "" && !rec.HasRealSummary() {
			fields.Summary = &summary
			fields.SummaryFallback = &fallback
		}
		return w.repo.Update(ctx, rec.ID, fields)
	}

	id := task.RecordID
	if id == "" {
		id = uuid.New().String()
	}

	return w.repo.Insert(ctx, domain.Record{
		ID:              id,
		SourceURL:       c.SourceURL,
		Title:           c.Title,
		Summary:         summary,
		SummaryFallback: fallback,
		Provider:        c.Provider,
		Category:        c.Category,
		ThumbnailURL:    c.ThumbnailURL,
	})
}
